// Package parser recovers structured data from free-text LLM responses.
// Models are asked for fenced YAML blocks but routinely wrap them in
// prose, stack several blocks, or drop the fences entirely, so every
// entry point here is tolerant by design of contract: callers get an
// empty result, never a panic or error, when nothing usable is found.
package parser

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// fencedBlockRe matches a fenced code block with an optional language tag.
var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\n(.*?)```")

// blockStartMarkers are lines that signal "structured payload starts here"
// when a response has no usable fences.
var blockStartMarkers = []string{
	"PROFILE_OPTIMIZATION_PLAN:",
	"FINAL_RESUME_YAML:",
	"VALIDATION_RESULTS:",
	"version:",
	"sections:",
	"metadata:",
	"changelog:",
	"profile:",
	"skills:",
	"keywords:",
}

// ExtractFencedBlocks returns the contents of every fenced code block in
// order of appearance, fences and language tags stripped.
func ExtractFencedBlocks(text string) []string {
	matches := fencedBlockRe.FindAllStringSubmatch(text, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, strings.TrimSpace(m[1]))
	}
	return blocks
}

// firstCandidateBlock picks the text most likely to be the structured
// payload: the first fenced block if any, otherwise the text truncated to
// start at the first recognized marker line.
func firstCandidateBlock(text string) string {
	if blocks := ExtractFencedBlocks(text); len(blocks) > 0 {
		return blocks[0]
	}

	trimmed := strings.TrimSpace(text)
	best := -1
	for _, marker := range blockStartMarkers {
		if idx := strings.Index(trimmed, marker); idx >= 0 && (best == -1 || idx < best) {
			best = idx
		}
	}
	if best >= 0 {
		return trimmed[best:]
	}
	return trimmed
}

// ParseFirstBlock extracts the first structured block from a response and
// parses it as YAML. It is total: any input, including empty or
// unparseable text, yields a mapping. An empty map means "nothing usable"
// and callers must treat it that way, not as a zero-value document.
func ParseFirstBlock(text string) map[string]any {
	block := firstCandidateBlock(text)
	if block == "" {
		return map[string]any{}
	}

	var out map[string]any
	if err := yaml.Unmarshal([]byte(block), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// SplitPrimaryAndTrailer splits a response into the structured primary
// payload and a free-form trailer, cutting at the first occurrence of any
// marker. The marker line itself is excluded from the primary and included
// in the trailer. With no marker present the whole text is primary.
func SplitPrimaryAndTrailer(text string, markers []string) (primary, trailer string) {
	cut := -1
	for _, marker := range markers {
		if idx := strings.Index(text, marker); idx >= 0 && (cut == -1 || idx < cut) {
			cut = idx
		}
	}
	if cut == -1 {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(text[:cut]), strings.TrimSpace(text[cut:])
}
