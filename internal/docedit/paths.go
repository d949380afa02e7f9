package docedit

import (
	"fmt"
	"sort"
	"strings"
)

// Document is a parsed nested mapping, the shape yaml.v3 produces for a
// resume file.
type Document = map[string]any

// segment is one step of a section path. A filter segment like
// "experience[Acme]" selects the first list element whose stringified
// values contain the token.
type segment struct {
	key    string
	token  string
	filter bool
}

func (s segment) String() string {
	if s.filter {
		return fmt.Sprintf("%s[%s]", s.key, s.token)
	}
	return s.key
}

// parsePath splits a dotted/bracketed path expression into segments.
// "profile.description" -> [profile, description]
// "experience[Acme]"    -> [experience{Acme}]
func parsePath(path string) []segment {
	parts := strings.Split(path, ".")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if open := strings.Index(p, "["); open > 0 && strings.HasSuffix(p, "]") {
			segs = append(segs, segment{
				key:    p[:open],
				token:  p[open+1 : len(p)-1],
				filter: true,
			})
			continue
		}
		segs = append(segs, segment{key: p})
	}
	return segs
}

// matchListItem returns the first element of list whose stringified values
// contain token, case-insensitively. List order decides ties.
func matchListItem(list []any, token string) (int, map[string]any, bool) {
	needle := strings.ToLower(token)
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, v := range m {
			if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
				return i, m, true
			}
		}
	}
	return -1, nil, false
}

// Extract walks a path through the document and returns the value it
// resolves to. Missing keys, type mismatches, and unmatched filters all
// resolve to nil rather than an error.
func Extract(doc Document, path string) any {
	return extractSegments(doc, parsePath(path))
}

func extractSegments(doc Document, segs []segment) any {
	if len(segs) == 0 {
		return nil
	}

	var cur any = doc
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		next, ok := m[seg.key]
		if !ok {
			return nil
		}
		if seg.filter {
			list, ok := next.([]any)
			if !ok {
				return nil
			}
			_, item, found := matchListItem(list, seg.token)
			if !found {
				return nil
			}
			cur = item
			continue
		}
		cur = next
	}
	return cur
}

// InferTopLevelPaths derives a section-path list from a reference document
// when none is configured: every top-level key except "sections", in
// sorted order so the result is stable across runs. The sections table of
// contents is structural, never an editable region.
func InferTopLevelPaths(doc Document) []string {
	paths := make([]string, 0, len(doc))
	for k := range doc {
		if k == "sections" {
			continue
		}
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}
