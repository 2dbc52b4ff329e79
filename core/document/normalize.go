package document

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"
	"unicode/utf8"
)

// ErrUnsupportedType is returned when a value cannot be mapped into the
// document model.
var ErrUnsupportedType = errors.New("unsupported value type")

// Converter maps a driver-native value into the document model. It returns
// ok=false for values it does not recognise, leaving them to the generic
// rules. Converted containers are normalized again, so a converter may return
// a map or slice whose members are still driver-native.
type Converter func(v any) (out any, ok bool, err error)

// Normalize maps v into the document model using the generic rules only.
func Normalize(v any) (any, error) {
	return NormalizeWith(v, nil)
}

// NormalizeWith maps v into the document model, consulting conv first for
// every value it visits. The input is never mutated.
func NormalizeWith(v any, conv Converter) (any, error) {
	if conv != nil {
		out, ok, err := conv(v)
		if err != nil {
			return nil, err
		}
		if ok {
			v = out
		}
	}

	switch val := v.(type) {
	case nil, bool, string, OpaqueID:
		return val, nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return normalizeUint(uint64(val)), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return normalizeUint(val), nil
	case float32:
		return normalizeFloat(float64(val)), nil
	case float64:
		return normalizeFloat(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: malformed number %q", ErrUnsupportedType, val.String())
		}
		return normalizeFloat(f), nil
	case []byte:
		if utf8.Valid(val) {
			return string(val), nil
		}
		return OpaqueID(hex.EncodeToString(val)), nil
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano), nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		return val.UTC().Format(time.RFC3339Nano), nil
	case Document:
		return normalizeMap(val, conv)
	case map[string]any:
		return normalizeMap(val, conv)
	case []any:
		return normalizeSlice(val, conv)
	case Set:
		items, err := normalizeSlice(val, conv)
		if err != nil {
			return nil, err
		}
		return Set(items), nil
	}

	return normalizeReflect(v, conv)
}

// NormalizeDocument normalizes every field of raw into a new Document.
func NormalizeDocument(raw map[string]any, conv Converter) (Document, error) {
	m, err := normalizeMap(raw, conv)
	if err != nil {
		return nil, err
	}
	return Document(m), nil
}

// normalizeFloat maps NaN and the infinities to opaque ids, since the
// report encoders have no representation for them.
func normalizeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return OpaqueID("NaN")
	case math.IsInf(f, 1):
		return OpaqueID("+Inf")
	case math.IsInf(f, -1):
		return OpaqueID("-Inf")
	}
	return f
}

func normalizeUint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

func normalizeMap(m map[string]any, conv Converter) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, item := range m {
		n, err := NormalizeWith(item, conv)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func normalizeSlice(s []any, conv Converter) ([]any, error) {
	out := make([]any, len(s))
	for i, item := range s {
		n, err := NormalizeWith(item, conv)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// normalizeReflect handles typed slices, arrays, string-keyed maps and
// pointers that the type switch does not cover.
func normalizeReflect(v any, conv Converter) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return NormalizeWith(rv.Elem().Interface(), conv)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return normalizeSlice(items, conv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map keyed by %s", ErrUnsupportedType, rv.Type().Key())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return normalizeMap(m, conv)
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return normalizeUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return normalizeFloat(rv.Float()), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}
