package config

import "strings"

// NormalizeOptions controls the optional normalization behaviors.
type NormalizeOptions struct {
	// CoerceNumbers keeps numeric literals as JSON numbers. When false
	// (the default) they render as strings, matching the dialect's own
	// everything-is-a-string treatment.
	CoerceNumbers bool
}

// Normalize canonicalizes a parsed tree with default options.
func Normalize(t *Tree) *Tree {
	return NormalizeWith(t, NormalizeOptions{})
}

// NormalizeWith returns a canonicalized deep copy of the tree:
// repeated sibling keys fold into ordered lists, reference-shaped
// scalars are tagged, and top-level objects are regrouped by type path.
// The input tree is never modified. Normalizing an already-normalized
// tree is a no-op.
func NormalizeWith(t *Tree, opts NormalizeOptions) *Tree {
	out := t.Clone()

	// Regroup: first-seen order of each distinct type path, insertion
	// order within a group. Same-named siblings are kept, never merged.
	grouped := make([]*Object, 0, len(out.Objects))
	for _, g := range out.Groups() {
		grouped = append(grouped, g.Objects...)
	}
	out.Objects = grouped

	for _, o := range out.Objects {
		o.Props = normalizeBlock(o.Props, opts)
	}
	return out
}

func normalizeBlock(b *Block, opts NormalizeOptions) *Block {
	if b == nil {
		return &Block{}
	}

	counts := make(map[string]int, len(b.Entries))
	for _, e := range b.Entries {
		counts[e.Key]++
	}

	out := &Block{}
	folded := make(map[string]bool)
	for i, e := range b.Entries {
		if counts[e.Key] == 1 {
			out.Add(e.Key, normalizeValue(e.Value, opts))
			continue
		}
		if folded[e.Key] {
			continue
		}
		// Repeated key: fold all occurrences, in order, at the position
		// of the first one.
		var items List
		for _, later := range b.Entries[i:] {
			if later.Key == e.Key {
				items = append(items, normalizeValue(later.Value, opts))
			}
		}
		out.Add(e.Key, items)
		folded[e.Key] = true
	}
	return out
}

func normalizeValue(v Value, opts NormalizeOptions) Value {
	switch v := v.(type) {
	case Scalar:
		return normalizeScalar(v, opts)
	case List:
		out := make(List, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item, opts)
		}
		return out
	case *Block:
		return normalizeBlock(v, opts)
	default:
		return v
	}
}

func normalizeScalar(s Scalar, opts NormalizeOptions) Scalar {
	if s.Kind == ScalarNumber && !opts.CoerceNumbers {
		s.Kind = ScalarString
	}
	if s.Kind == ScalarString && IsReferencePath(s.Text) {
		s.Kind = ScalarReference
	}
	return s
}

// IsReferencePath reports whether text has the cross-object reference
// shape: a leading slash and at least one further slash-delimited
// segment ("/Common/pool_http"). The tag is presentational only; the
// referenced object is never resolved.
func IsReferencePath(text string) bool {
	if len(text) < 3 || text[0] != '/' {
		return false
	}
	rest := text[1:]
	i := strings.IndexByte(rest, '/')
	if i <= 0 || i == len(rest)-1 {
		return false
	}
	return true
}
