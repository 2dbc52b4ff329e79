package reconcile

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"collection-reconciler/core/document"
)

// DefaultIdentityField is used when a collection does not name its own.
const DefaultIdentityField = "_id"

// CollectionSpec defines how one collection is reconciled.
type CollectionSpec struct {
	// Name is the collection (or table) name on both sides.
	Name string `json:"name" yaml:"name"`

	// IdentityField is the field whose value identifies a document.
	// If empty, DefaultIdentityField is used.
	IdentityField string `json:"identity_field" yaml:"identity_field"`

	// ExcludeFields lists field paths dropped before comparison.
	ExcludeFields []string `json:"exclude_fields" yaml:"exclude_fields"`

	// IgnoreOrder compares sequences as multisets instead of by position.
	IgnoreOrder bool `json:"ignore_order" yaml:"ignore_order"`
}

// Identity returns the effective identity field.
func (s CollectionSpec) Identity() string {
	if s.IdentityField == "" {
		return DefaultIdentityField
	}
	return s.IdentityField
}

// Exclusions builds the exclusion set for this collection.
func (s CollectionSpec) Exclusions() document.ExclusionSet {
	return document.NewExclusionSet(s.ExcludeFields...)
}

// CacheKey returns a unique key for caching based on spec parameters.
// Specs that would load or compare differently never share a key.
func (s CollectionSpec) CacheKey() string {
	fields := s.Exclusions().Fields()
	return strings.Join([]string{
		s.Name,
		s.Identity(),
		strings.Join(fields, ","),
		strconv.FormatBool(s.IgnoreOrder),
	}, "|")
}

// ChangeType classifies a single structural change.
type ChangeType string

const (
	// ChangeAdded marks a key, index or set member present only on the target side.
	ChangeAdded ChangeType = "added"
	// ChangeRemoved marks a key, index or set member present only on the source side.
	ChangeRemoved ChangeType = "removed"
	// ChangeChanged marks a scalar whose value differs.
	ChangeChanged ChangeType = "changed"
	// ChangeTypeChanged marks a value whose kind differs between sides.
	ChangeTypeChanged ChangeType = "type_changed"
)

// Change is one difference between a source and a target value.
type Change struct {
	Type     ChangeType `json:"type" yaml:"type"`
	Path     Path       `json:"path" yaml:"path"`
	OldValue any        `json:"old_value" yaml:"old_value"`
	NewValue any        `json:"new_value" yaml:"new_value"`
}

// DiffTree is the ordered list of changes between two values.
// An empty tree means the values are equal.
type DiffTree []Change

// IsEmpty reports whether the tree holds no changes.
func (t DiffTree) IsEmpty() bool {
	return len(t) == 0
}

// Count returns the number of changes of the given type.
func (t DiffTree) Count(ct ChangeType) int {
	n := 0
	for _, c := range t {
		if c.Type == ct {
			n++
		}
	}
	return n
}

// Paths returns the rendered path of every change.
func (t DiffTree) Paths() []string {
	out := make([]string, len(t))
	for i, c := range t {
		out[i] = c.Path.String()
	}
	return out
}

// DiffEntry pairs a common identity with the documents on both sides and
// their structural difference.
type DiffEntry struct {
	Identity  string            `json:"identity" yaml:"identity"`
	SourceDoc document.Document `json:"source_doc" yaml:"source_doc"`
	TargetDoc document.Document `json:"target_doc" yaml:"target_doc"`
	Diff      DiffTree          `json:"diff" yaml:"diff"`
}

// MatchResult is the output of the identity matcher.
type MatchResult struct {
	// IdentityField is the field used to key documents.
	IdentityField string

	// SourceIndex maps identity to the source document, with the identity
	// field and excluded fields stripped.
	SourceIndex map[string]document.Document

	// TargetIndex is the target-side counterpart of SourceIndex.
	TargetIndex map[string]document.Document

	// OnlyInSource holds source documents with no target counterpart,
	// identity field included, sorted by identity.
	OnlyInSource []document.Document

	// OnlyInTarget holds target documents with no source counterpart.
	OnlyInTarget []document.Document

	// Common holds identities present on both sides, sorted.
	Common []string

	// SourceDuplicates lists identities seen more than once in the source.
	SourceDuplicates []string

	// TargetDuplicates lists identities seen more than once in the target.
	TargetDuplicates []string
}

// Duplicates lists identities that occurred more than once on a side.
// The last occurrence is the one that was compared.
type Duplicates struct {
	Source []string `json:"source,omitempty" yaml:"source,omitempty"`
	Target []string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Result is the reconciliation report for one collection.
type Result struct {
	// RunID groups the results of one ReconcileAll call.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	Collection    string   `json:"collection" yaml:"collection"`
	IdentityField string   `json:"identity_field" yaml:"identity_field"`
	ExcludeFields []string `json:"exclude_fields,omitempty" yaml:"exclude_fields,omitempty"`

	// MissingInSource holds documents that exist only in the target.
	MissingInSource []document.Document `json:"missing_in_source" yaml:"missing_in_source"`

	// MissingInTarget holds documents that exist only in the source.
	MissingInTarget []document.Document `json:"missing_in_target" yaml:"missing_in_target"`

	CommonCount        int         `json:"common_count" yaml:"common_count"`
	ContentDifferences []DiffEntry `json:"content_differences" yaml:"content_differences"`

	SourceCount int         `json:"source_count" yaml:"source_count"`
	TargetCount int         `json:"target_count" yaml:"target_count"`
	Duplicates  *Duplicates `json:"duplicate_identities,omitempty" yaml:"duplicate_identities,omitempty"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	DurationMS int64     `json:"duration_ms" yaml:"duration_ms"`
}

// HasDifferences reports whether the collections diverge in any way.
func (r *Result) HasDifferences() bool {
	return len(r.MissingInSource) > 0 || len(r.MissingInTarget) > 0 || len(r.ContentDifferences) > 0
}

// Summary holds the counts of a result.
type Summary struct {
	Collection      string `json:"collection"`
	MissingInSource int    `json:"missing_in_source"`
	MissingInTarget int    `json:"missing_in_target"`
	Common          int    `json:"common"`
	Differences     int    `json:"differences"`
}

// Summary returns the counts of this result.
func (r *Result) Summary() Summary {
	return Summary{
		Collection:      r.Collection,
		MissingInSource: len(r.MissingInSource),
		MissingInTarget: len(r.MissingInTarget),
		Common:          r.CommonCount,
		Differences:     len(r.ContentDifferences),
	}
}

// DifferenceIdentities returns the identities with content differences, sorted.
func (r *Result) DifferenceIdentities() []string {
	out := make([]string, len(r.ContentDifferences))
	for i, e := range r.ContentDifferences {
		out[i] = e.Identity
	}
	sort.Strings(out)
	return out
}
