package docedit

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// canonicalOrder is the section order resume templates expect. Keys not
// listed here are emitted after these, sorted.
var canonicalOrder = []string{
	"sections",
	"profile",
	"skills",
	"education",
	"experience",
	"projects",
	"leadership",
	"awards",
}

// EscapeLaTeX escapes the special characters LaTeX cares about in a value
// string. Already-escaped characters and LaTeX commands (\textbf{...} and
// friends) pass through untouched, so formatting markup survives a second
// render. Keys are never escaped, only values.
func EscapeLaTeX(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '%', '_', '$', '&', '#':
			if i == 0 || s[i-1] != '\\' {
				b.WriteByte('\\')
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// orderedKeys returns the document keys in canonical section order, with
// unknown keys appended in sorted order.
func orderedKeys(doc Document, includeSections bool) []string {
	keys := make([]string, 0, len(doc))
	seen := make(map[string]bool, len(doc))
	for _, k := range canonicalOrder {
		if k == "sections" && !includeSections {
			seen[k] = true
			continue
		}
		if _, ok := doc[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(doc))
	for k := range doc {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Render serializes a document to YAML the way resume templates consume
// it: sections in canonical order, every string value single-quoted and
// LaTeX-escaped, keys plain. Entries under the "sections" table of
// contents are never escaped because templates match them literally.
// When includeSections is false the "sections" key is omitted entirely,
// which is how documents are shown to the model.
func Render(doc Document, includeSections bool) (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	for _, k := range orderedKeys(doc, includeSections) {
		root.Content = append(root.Content,
			keyNode(k),
			valueNode(doc[k], k != "sections"),
		)
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return string(out), nil
}

func keyNode(k string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: k}
}

func valueNode(v any, escape bool) *yaml.Node {
	switch t := v.(type) {
	case map[string]any:
		n := &yaml.Node{Kind: yaml.MappingNode}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n.Content = append(n.Content, keyNode(k), valueNode(t[k], escape))
		}
		return n
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range t {
			n.Content = append(n.Content, valueNode(item, escape))
		}
		return n
	case string:
		if escape {
			t = EscapeLaTeX(t)
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Style: yaml.SingleQuotedStyle, Value: t}
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(t)}
	}
}

// RenderSections renders only the parts of the document reachable through
// the given section paths. Used to show the validator just the regions
// optimization is allowed to touch.
func RenderSections(doc Document, paths []string) (string, error) {
	subset := FilterUpdates(doc, paths)
	return Render(subset, true)
}
