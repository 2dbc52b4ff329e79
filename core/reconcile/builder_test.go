package reconcile

import (
	"encoding/json"
	"testing"

	"collection-reconciler/core/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMatch() *MatchResult {
	return &MatchResult{
		IdentityField: "_id",
		SourceIndex: map[string]document.Document{
			"1": {"name": "A"},
			"2": {"name": "B"},
		},
		TargetIndex: map[string]document.Document{
			"2": {"name": "b"},
			"3": {"name": "C"},
		},
		OnlyInSource: []document.Document{{"_id": "1", "name": "A"}},
		OnlyInTarget: []document.Document{{"_id": "3", "name": "C"}},
		Common:       []string{"2"},
	}
}

func TestBuild(t *testing.T) {
	entries := []DiffEntry{{
		Identity:  "2",
		SourceDoc: document.Document{"name": "B"},
		TargetDoc: document.Document{"name": "b"},
		Diff:      DiffTree{{Type: ChangeChanged, Path: Path{}.Key("name"), OldValue: "B", NewValue: "b"}},
	}}

	result, err := Build("users", sampleMatch(), entries)
	require.NoError(t, err)

	assert.Equal(t, "users", result.Collection)
	assert.Equal(t, []document.Document{{"_id": "3", "name": "C"}}, result.MissingInSource)
	assert.Equal(t, []document.Document{{"_id": "1", "name": "A"}}, result.MissingInTarget)
	assert.Equal(t, 1, result.CommonCount)
	assert.Equal(t, 2, result.SourceCount)
	assert.Equal(t, 2, result.TargetCount)
	assert.Len(t, result.ContentDifferences, 1)
	assert.Nil(t, result.Duplicates)
	assert.True(t, result.HasDifferences())
}

func TestBuild_Inconsistent(t *testing.T) {
	tests := []struct {
		name    string
		entries []DiffEntry
	}{
		{
			name:    "UnknownIdentity",
			entries: []DiffEntry{{Identity: "9", Diff: DiffTree{{Type: ChangeAdded}}}},
		},
		{
			name:    "SourceOnlyIdentity",
			entries: []DiffEntry{{Identity: "1", Diff: DiffTree{{Type: ChangeAdded}}}},
		},
		{
			name:    "EmptyDiff",
			entries: []DiffEntry{{Identity: "2"}},
		},
		{
			name: "RepeatedIdentity",
			entries: []DiffEntry{
				{Identity: "2", Diff: DiffTree{{Type: ChangeAdded}}},
				{Identity: "2", Diff: DiffTree{{Type: ChangeAdded}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build("users", sampleMatch(), tt.entries)
			assert.ErrorIs(t, err, ErrInconsistentReport)
		})
	}

	_, err := Build("users", nil, nil)
	assert.ErrorIs(t, err, ErrInconsistentReport)
}

func TestBuild_EmptyListsEncodeAsArrays(t *testing.T) {
	match := &MatchResult{IdentityField: "_id", Common: []string{}}

	result, err := Build("empty", match, nil)
	require.NoError(t, err)
	assert.False(t, result.HasDifferences())

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{}, decoded["missing_in_source"])
	assert.Equal(t, []any{}, decoded["missing_in_target"])
	assert.Equal(t, []any{}, decoded["content_differences"])
	assert.NotContains(t, decoded, "duplicate_identities")
}

func TestBuild_Duplicates(t *testing.T) {
	match := sampleMatch()
	match.TargetDuplicates = []string{"3"}

	result, err := Build("users", match, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Duplicates)
	assert.Equal(t, []string{"3"}, result.Duplicates.Target)
	assert.Empty(t, result.Duplicates.Source)
}
