package docedit

// DeepCopy clones a parsed document value. Only the shapes produced by the
// YAML decoder (maps, slices, scalars) are handled; scalars are shared.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = DeepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = DeepCopy(val)
		}
		return out
	default:
		return v
	}
}

// CopyDocument deep-copies a document, preserving the Document type.
func CopyDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	return DeepCopy(doc).(map[string]any)
}

// ApplyUpdates overwrites the locations named by allowedPaths in doc with
// the corresponding substructures of updates, in place. A path absent from
// updates is a no-op. Filter segments shallow-merge the single matched list
// item instead of replacing it, so sibling items survive untouched.
func ApplyUpdates(doc Document, updates Document, allowedPaths []string) {
	if doc == nil || updates == nil {
		return
	}

	for _, path := range allowedPaths {
		segs := parsePath(path)
		if len(segs) == 0 {
			continue
		}

		val := extractSegments(updates, segs)
		if val == nil {
			continue
		}

		applyAt(doc, segs, val)
	}
}

// applyAt writes val at the location segs names inside doc, creating
// intermediate mappings for plain segments as needed.
func applyAt(doc Document, segs []segment, val any) {
	cur := doc
	for i, seg := range segs {
		last := i == len(segs)-1

		if seg.filter {
			list, ok := cur[seg.key].([]any)
			if !ok {
				return
			}
			idx, item, found := matchListItem(list, seg.token)
			if !found {
				return
			}
			if last {
				if patch, ok := val.(map[string]any); ok {
					for k, v := range patch {
						item[k] = DeepCopy(v)
					}
				} else {
					list[idx] = DeepCopy(val)
				}
				return
			}
			cur = item
			continue
		}

		if last {
			cur[seg.key] = DeepCopy(val)
			return
		}

		next, ok := cur[seg.key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg.key] = next
		}
		cur = next
	}
}

// FilterUpdates projects updates down to the subset reachable through
// allowedPaths. Callers apply the result rather than the raw update map
// whenever the source is model output, which confines mutation to the
// allowed sections.
func FilterUpdates(updates Document, allowedPaths []string) Document {
	out := make(Document)
	if updates == nil {
		return out
	}

	for _, path := range allowedPaths {
		segs := parsePath(path)
		if len(segs) == 0 {
			continue
		}

		val := extractSegments(updates, segs)
		if val == nil {
			continue
		}

		insertAt(out, segs, DeepCopy(val))
	}
	return out
}

// insertAt rebuilds just enough structure in out for segs to resolve to
// val. A filter segment materializes as a single-item list so a later
// ApplyUpdates pass can re-match it by token.
func insertAt(out Document, segs []segment, val any) {
	cur := out
	for i, seg := range segs {
		last := i == len(segs)-1

		if seg.filter {
			list, _ := cur[seg.key].([]any)
			if last {
				cur[seg.key] = append(list, val)
				return
			}
			next := make(map[string]any)
			cur[seg.key] = append(list, next)
			cur = next
			continue
		}

		if last {
			cur[seg.key] = val
			return
		}

		next, ok := cur[seg.key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg.key] = next
		}
		cur = next
	}
}
