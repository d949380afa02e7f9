package output

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Filesystem naming for per-job output. Directory names carry the match
// score prefix so a listing sorts best jobs first; the resume files inside
// do not, so the attached filename stays clean.

var (
	parenRe     = regexp.MustCompile(`\([^)]*\)`)
	bracketRe   = regexp.MustCompile(`\[[^\]]*\]`)
	apostRe     = regexp.MustCompile("['`]+")
	badCharRe   = regexp.MustCompile(`[&+/\\:*?<>|"@,.;-]+`)
	nonAlnumRe  = regexp.MustCompile(`[^A-Za-z0-9 ]+`)
	multiSpace  = regexp.MustCompile(`\s+`)
	compactDot  = regexp.MustCompile(`(\w)\.([a-z]{2,3})\b`)
	multiLocSep = regexp.MustCompile(`\s*[/;+]\s*`)
)

// PascalCase sanitizes free text into a PascalCase filename component,
// preserving acronyms and existing mixed-case words.
// "senior ML engineer" -> "SeniorMLEngineer"; "AT&T Corp." -> "ATTCorp".
func PascalCase(text string) string {
	if text == "" {
		return ""
	}

	// "C3.ai" style names keep their suffix attached.
	text = compactDot.ReplaceAllString(text, "$1$2")
	text = parenRe.ReplaceAllString(text, "")
	text = bracketRe.ReplaceAllString(text, "")
	text = apostRe.ReplaceAllString(text, "")
	text = badCharRe.ReplaceAllString(text, " ")
	text = nonAlnumRe.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")

	var sb strings.Builder
	for _, word := range strings.Fields(text) {
		if word == strings.ToLower(word) {
			sb.WriteString(capitalize(word))
		} else {
			sb.WriteString(word)
		}
	}

	out := sb.String()
	return capitalize(out)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// CleanLocation sanitizes a location string for filenames.
// "Seattle, WA / San Francisco, CA" -> "SeattleWASanFranciscoCA".
func CleanLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return "UnknownLocation"
	}

	location = multiLocSep.ReplaceAllString(location, " ")
	out := PascalCase(location)
	if out == "" {
		return "UnknownLocation"
	}
	return out
}

// Names is the set of filesystem names derived from one job record.
type Names struct {
	Base string // resume file stem, without score
	Dir  string // per-job directory, score-prefixed for sorting
	YAML string // resume YAML path relative to the output root
	PDF  string // resume PDF path relative to the output root
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ResumeFilenames derives the per-job directory and file names from the
// job record and the candidate's name.
func ResumeFilenames(yourName, jobTitle, company, location string, matchScore int) Names {
	base := fmt.Sprintf("%s_%s_%s",
		orDefault(PascalCase(company), "NoCompany"),
		orDefault(PascalCase(jobTitle), "NoJobTitle"),
		CleanLocation(location),
	)
	stem := strings.ReplaceAll(strings.TrimSpace(yourName), " ", "_")
	if stem == "" {
		stem = "Resume"
	}
	resumeBase := stem + "_" + base
	dir := fmt.Sprintf("%d_%s", matchScore, base)

	return Names{
		Base: resumeBase,
		Dir:  dir,
		YAML: dir + "/" + resumeBase + ".yaml",
		PDF:  dir + "/" + resumeBase + ".pdf",
	}
}
