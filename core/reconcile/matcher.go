package reconcile

import (
	"fmt"
	"sort"

	"collection-reconciler/core/document"
)

// Match keys both document lists by identity and partitions the identities
// into source-only, target-only and common sets.
//
// Excluded fields and the identity field are stripped from the indexed
// documents. The source-only and target-only lists keep the identity field,
// rendered as its identity string. When an identity repeats on one side the
// last occurrence wins and the identity is recorded as a duplicate.
func Match(source, target []document.Document, identityField string, exclude document.ExclusionSet) (*MatchResult, error) {
	if identityField == "" {
		return nil, fmt.Errorf("identity field is required")
	}

	sourceIndex, sourceDups, err := buildIndex(source, identityField, exclude)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	targetIndex, targetDups, err := buildIndex(target, identityField, exclude)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	var onlySource, onlyTarget []string
	common := make([]string, 0)
	for id := range sourceIndex {
		if _, ok := targetIndex[id]; ok {
			common = append(common, id)
		} else {
			onlySource = append(onlySource, id)
		}
	}
	for id := range targetIndex {
		if _, ok := sourceIndex[id]; !ok {
			onlyTarget = append(onlyTarget, id)
		}
	}

	sort.Strings(common)
	sort.Strings(onlySource)
	sort.Strings(onlyTarget)

	return &MatchResult{
		IdentityField:    identityField,
		SourceIndex:      sourceIndex,
		TargetIndex:      targetIndex,
		OnlyInSource:     withIdentity(onlySource, sourceIndex, identityField),
		OnlyInTarget:     withIdentity(onlyTarget, targetIndex, identityField),
		Common:           common,
		SourceDuplicates: sourceDups,
		TargetDuplicates: targetDups,
	}, nil
}

func buildIndex(docs []document.Document, identityField string, exclude document.ExclusionSet) (map[string]document.Document, []string, error) {
	index := make(map[string]document.Document, len(docs))
	dupSet := make(map[string]struct{})

	for i, doc := range docs {
		raw, ok := doc[identityField]
		if !ok {
			return nil, nil, fmt.Errorf("%w: document %d has no %q field", ErrMissingIdentity, i, identityField)
		}
		id, err := document.IdentityString(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("document %d: %w", i, err)
		}
		if _, seen := index[id]; seen {
			dupSet[id] = struct{}{}
		}

		stripped := exclude.Apply(doc)
		delete(stripped, identityField)
		index[id] = stripped
	}

	var dups []string
	for id := range dupSet {
		dups = append(dups, id)
	}
	sort.Strings(dups)

	return index, dups, nil
}

func withIdentity(ids []string, index map[string]document.Document, identityField string) []document.Document {
	out := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		doc := index[id].Clone()
		doc[identityField] = id
		out = append(out, doc)
	}
	return out
}
