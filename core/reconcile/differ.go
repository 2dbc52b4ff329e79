package reconcile

import (
	"sort"

	"collection-reconciler/core/document"
)

// DiffOptions tunes structural comparison.
type DiffOptions struct {
	// IgnoreOrder compares sequences as multisets.
	IgnoreOrder bool
}

// Diff computes the structural difference from left (source) to right (target).
//
// Mappings are compared key by key in sorted key order. Sequences are compared
// by position, with trailing items reported as added or removed. Sets, and
// sequences when IgnoreOrder is set, report unmatched members as added or
// removed at the container path. Values of different kinds produce a single
// type_changed entry. Equality follows document.Canonicalize, so the result
// is empty exactly when both values share a canonical form.
func Diff(left, right any, opts DiffOptions) DiffTree {
	d := &differ{opts: opts}
	d.compare(nil, left, right)
	return d.changes
}

type differ struct {
	opts    DiffOptions
	changes DiffTree
}

func (d *differ) add(ct ChangeType, path Path, oldValue, newValue any) {
	d.changes = append(d.changes, Change{Type: ct, Path: path, OldValue: oldValue, NewValue: newValue})
}

func (d *differ) compare(path Path, left, right any) {
	lk, rk := comparableKind(left), comparableKind(right)
	if lk != rk {
		d.add(ChangeTypeChanged, path, left, right)
		return
	}

	switch lk {
	case document.KindMapping:
		d.compareMappings(path, asMapping(left), asMapping(right))
	case document.KindSequence:
		if d.opts.IgnoreOrder {
			d.compareUnordered(path, left.([]any), right.([]any))
		} else {
			d.compareSequences(path, left.([]any), right.([]any))
		}
	case document.KindSet:
		d.compareUnordered(path, left.(document.Set), right.(document.Set))
	default:
		if document.Canonicalize(left) != document.Canonicalize(right) {
			d.add(ChangeChanged, path, left, right)
		}
	}
}

func (d *differ) compareMappings(path Path, left, right map[string]any) {
	keys := make([]string, 0, len(left)+len(right))
	for k := range left {
		keys = append(keys, k)
	}
	for k := range right {
		if _, ok := left[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		lv, inLeft := left[k]
		rv, inRight := right[k]
		switch {
		case !inRight:
			d.add(ChangeRemoved, path.Key(k), lv, nil)
		case !inLeft:
			d.add(ChangeAdded, path.Key(k), nil, rv)
		default:
			d.compare(path.Key(k), lv, rv)
		}
	}
}

func (d *differ) compareSequences(path Path, left, right []any) {
	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		d.compare(path.Index(i), left[i], right[i])
	}
	for i := n; i < len(left); i++ {
		d.add(ChangeRemoved, path.Index(i), left[i], nil)
	}
	for i := n; i < len(right); i++ {
		d.add(ChangeAdded, path.Index(i), nil, right[i])
	}
}

// compareUnordered matches members by canonical form, counting repeats.
// Removed members are reported in source order, then added members in
// target order.
func (d *differ) compareUnordered(path Path, left, right []any) {
	leftForms := make([]document.Canonical, len(left))
	remaining := make(map[document.Canonical]int, len(left))
	for i, item := range left {
		leftForms[i] = document.Canonicalize(item)
		remaining[leftForms[i]]++
	}

	var added []any
	for _, item := range right {
		c := document.Canonicalize(item)
		if remaining[c] > 0 {
			remaining[c]--
			continue
		}
		added = append(added, item)
	}

	for i, item := range left {
		if remaining[leftForms[i]] > 0 {
			remaining[leftForms[i]]--
			d.add(ChangeRemoved, path, item, nil)
		}
	}
	for _, item := range added {
		d.add(ChangeAdded, path, nil, item)
	}
}

// comparableKind folds opaque ids into strings, matching canonical equality.
func comparableKind(v any) document.Kind {
	k := document.KindOf(v)
	if k == document.KindOpaqueID {
		return document.KindString
	}
	return k
}

func asMapping(v any) map[string]any {
	switch m := v.(type) {
	case document.Document:
		return m
	case map[string]any:
		return m
	}
	return nil
}
