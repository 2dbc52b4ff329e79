package document_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"collection-reconciler/core/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label string

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"Int", 5, int64(5)},
		{"Uint32", uint32(5), int64(5)},
		{"Float32", float32(1.5), 1.5},
		{"TextBytes", []byte("hello"), "hello"},
		{"BinaryBytes", []byte{0xff, 0x00}, document.OpaqueID("ff00")},
		{"Time", ts, "2024-03-01T12:00:00Z"},
		{"TypedString", label("x"), "x"},
		{"TypedSlice", []string{"a", "b"}, []any{"a", "b"}},
		{"TypedMap", map[string]int{"a": 1}, map[string]any{"a": int64(1)}},
		{"NilPointer", (*int)(nil), nil},
		{"Set", document.Set{1, 2}, document.Set{int64(1), int64(2)}},
		{"NaN", math.NaN(), document.OpaqueID("NaN")},
		{"PositiveInf", math.Inf(1), document.OpaqueID("+Inf")},
		{"NegativeInfFloat32", float32(math.Inf(-1)), document.OpaqueID("-Inf")},
		{"NestedNaN", map[string]any{"v": math.NaN()}, map[string]any{"v": document.OpaqueID("NaN")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := document.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeUnsupported(t *testing.T) {
	_, err := document.Normalize(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, document.ErrUnsupportedType))
	assert.Contains(t, err.Error(), `field "ch"`)

	_, err = document.Normalize(map[int]string{1: "x"})
	assert.ErrorIs(t, err, document.ErrUnsupportedType)
}

func TestNormalizeWithConverter(t *testing.T) {
	type native struct{ id string }

	conv := func(v any) (any, bool, error) {
		if n, ok := v.(native); ok {
			return document.OpaqueID(n.id), true, nil
		}
		return nil, false, nil
	}

	doc, err := document.NormalizeDocument(map[string]any{
		"_id":  native{id: "a1"},
		"refs": []any{native{id: "b2"}, 3},
	}, conv)
	require.NoError(t, err)

	assert.Equal(t, document.OpaqueID("a1"), doc["_id"])
	assert.Equal(t, []any{document.OpaqueID("b2"), int64(3)}, doc["refs"])
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := map[string]any{"n": 1, "nested": map[string]any{"m": 2}}
	_, err := document.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, 1, in["n"])
	assert.Equal(t, 2, in["nested"].(map[string]any)["m"])
}
