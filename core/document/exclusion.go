package document

import (
	"sort"
	"strings"
)

// ExclusionSet is an immutable set of field paths to drop before comparison.
// A path is a field name or a dotted path into nested mappings ("meta.etag").
// When a dotted path crosses a sequence, the rest of the path is applied to
// every mapping inside it. The zero value excludes nothing.
type ExclusionSet struct {
	root   *exclusionNode
	fields []string
}

type exclusionNode struct {
	drop     bool
	children map[string]*exclusionNode
}

// NewExclusionSet builds an exclusion set. Empty and repeated paths are ignored.
func NewExclusionSet(fields ...string) ExclusionSet {
	root := &exclusionNode{}
	seen := make(map[string]struct{}, len(fields))
	var kept []string

	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		kept = append(kept, field)

		node := root
		for _, part := range strings.Split(field, ".") {
			if node.children == nil {
				node.children = make(map[string]*exclusionNode)
			}
			child, ok := node.children[part]
			if !ok {
				child = &exclusionNode{}
				node.children[part] = child
			}
			node = child
		}
		node.drop = true
	}

	sort.Strings(kept)
	return ExclusionSet{root: root, fields: kept}
}

// Len returns the number of configured paths.
func (e ExclusionSet) Len() int {
	return len(e.fields)
}

// Fields returns the configured paths in sorted order.
func (e ExclusionSet) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Contains reports whether the exact top-level field name is excluded.
func (e ExclusionSet) Contains(field string) bool {
	if e.root == nil {
		return false
	}
	child, ok := e.root.children[field]
	return ok && child.drop
}

// Apply returns a copy of doc without the excluded paths. The result is
// always a fresh top-level map so callers may modify it.
func (e ExclusionSet) Apply(doc Document) Document {
	if e.root == nil {
		return doc.Clone()
	}
	return Document(applyMapping(e.root, doc))
}

func applyMapping(node *exclusionNode, m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		child := node.children[k]
		if child == nil {
			out[k] = v
			continue
		}
		if child.drop {
			continue
		}
		out[k] = applyValue(child, v)
	}
	return out
}

func applyValue(node *exclusionNode, v any) any {
	switch val := v.(type) {
	case map[string]any:
		return applyMapping(node, val)
	case Document:
		return Document(applyMapping(node, val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = applyValue(node, item)
		}
		return out
	default:
		return v
	}
}
