package document_test

import (
	"testing"

	"collection-reconciler/core/document"

	"github.com/stretchr/testify/assert"
)

func TestExclusionSet_Apply(t *testing.T) {
	doc := document.Document{
		"_id":        "1",
		"name":       "A",
		"updated_at": "2024-01-01",
		"meta": map[string]any{
			"etag":  "x",
			"owner": "ops",
		},
		"items": []any{
			map[string]any{"sku": "a", "cache": 1},
			map[string]any{"sku": "b", "cache": 2},
			"loose",
		},
	}

	ex := document.NewExclusionSet("updated_at", "meta.etag", "items.cache", "missing.path")
	got := ex.Apply(doc)

	assert.Equal(t, document.Document{
		"_id":  "1",
		"name": "A",
		"meta": map[string]any{"owner": "ops"},
		"items": []any{
			map[string]any{"sku": "a"},
			map[string]any{"sku": "b"},
			"loose",
		},
	}, got)

	// The input is left untouched.
	assert.Contains(t, doc, "updated_at")
	assert.Contains(t, doc["meta"].(map[string]any), "etag")
}

func TestExclusionSet_ZeroValue(t *testing.T) {
	var ex document.ExclusionSet
	doc := document.Document{"a": 1}

	got := ex.Apply(doc)
	assert.Equal(t, doc, got)

	got["b"] = 2
	assert.NotContains(t, doc, "b")
	assert.Equal(t, 0, ex.Len())
	assert.False(t, ex.Contains("a"))
}

func TestExclusionSet_Fields(t *testing.T) {
	ex := document.NewExclusionSet("b", "a", "", "b", " c ")
	assert.Equal(t, []string{"a", "b", "c"}, ex.Fields())
	assert.True(t, ex.Contains("a"))
	assert.False(t, document.NewExclusionSet("meta.etag").Contains("meta"))
}
