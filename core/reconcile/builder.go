package reconcile

import (
	"fmt"

	"collection-reconciler/core/document"
)

// Build assembles the report for one collection from a match result and the
// non-empty diff entries of its common identities.
//
// Documents only in the target are reported as missing in the source, and
// documents only in the source as missing in the target. Entries are kept in
// the order given. Build fails with ErrInconsistentReport when an entry names
// an identity that is not common, repeats an identity, or carries an empty diff.
func Build(collection string, match *MatchResult, entries []DiffEntry) (*Result, error) {
	if match == nil {
		return nil, fmt.Errorf("%w: collection %q has no match result", ErrInconsistentReport, collection)
	}

	common := make(map[string]struct{}, len(match.Common))
	for _, id := range match.Common {
		common[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := common[e.Identity]; !ok {
			return nil, fmt.Errorf("%w: collection %q: identity %q is not common to both sides", ErrInconsistentReport, collection, e.Identity)
		}
		if _, dup := seen[e.Identity]; dup {
			return nil, fmt.Errorf("%w: collection %q: identity %q reported twice", ErrInconsistentReport, collection, e.Identity)
		}
		if e.Diff.IsEmpty() {
			return nil, fmt.Errorf("%w: collection %q: identity %q has an empty diff", ErrInconsistentReport, collection, e.Identity)
		}
		seen[e.Identity] = struct{}{}
	}

	differences := make([]DiffEntry, len(entries))
	copy(differences, entries)

	result := &Result{
		Collection:         collection,
		IdentityField:      match.IdentityField,
		MissingInSource:    nonNil(match.OnlyInTarget),
		MissingInTarget:    nonNil(match.OnlyInSource),
		CommonCount:        len(match.Common),
		ContentDifferences: differences,
		SourceCount:        len(match.SourceIndex),
		TargetCount:        len(match.TargetIndex),
	}

	if len(match.SourceDuplicates) > 0 || len(match.TargetDuplicates) > 0 {
		result.Duplicates = &Duplicates{
			Source: match.SourceDuplicates,
			Target: match.TargetDuplicates,
		}
	}

	return result, nil
}

func nonNil(docs []document.Document) []document.Document {
	if docs == nil {
		return []document.Document{}
	}
	return docs
}
