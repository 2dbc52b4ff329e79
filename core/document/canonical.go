package document

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Canonical is the deterministic serialized form of a value.
type Canonical string

// Hash returns the hex-encoded SHA-256 digest of the canonical form.
func (c Canonical) Hash() string {
	sum := sha256.Sum256([]byte(c))
	return hex.EncodeToString(sum[:])
}

// Canonicalize renders v into its canonical form. It panics if v contains a
// value outside the model; run Normalize first on untrusted input.
func Canonicalize(v any) Canonical {
	var b strings.Builder
	writeCanonical(&b, v)
	return Canonical(b.String())
}

// Equal reports whether a and b have the same canonical form.
func Equal(a, b any) bool {
	return Canonicalize(a) == Canonicalize(b)
}

func writeCanonical(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		b.WriteString(strconv.Quote(val))
	case OpaqueID:
		// An opaque id compares equal to its string form.
		b.WriteString(strconv.Quote(string(val)))
	case Document:
		writeMapping(b, val)
	case map[string]any:
		writeMapping(b, val)
	case []any:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, item)
		}
		b.WriteByte(']')
	case Set:
		members := make([]string, len(val))
		for i, item := range val {
			members[i] = string(Canonicalize(item))
		}
		sort.Strings(members)
		b.WriteByte('<')
		b.WriteString(strings.Join(members, ","))
		b.WriteByte('>')
	default:
		if s, ok := numberString(v); ok {
			b.WriteString(s)
			return
		}
		panic(fmt.Sprintf("document: cannot canonicalize value of type %T", v))
	}
}

func writeMapping(b *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		writeCanonical(b, m[k])
	}
	b.WriteByte('}')
}

// numberString formats any Go numeric value so that equal magnitudes produce
// the same text regardless of integer or float representation.
func numberString(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return formatFloat(float64(n)), true
	case float64:
		return formatFloat(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		if f, err := n.Float64(); err == nil {
			return formatFloat(f), true
		}
		return n.String(), true
	default:
		return "", false
	}
}

// formatFloat renders integral floats as exact integers of any magnitude,
// so they match the integer of the same value.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}
	return new(big.Float).SetFloat64(f).Text('f', 0)
}

// IdentityString renders an identity value into the opaque string used to
// key documents. Composite identities use their canonical form.
func IdentityString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", fmt.Errorf("identity value is null")
	case string:
		return val, nil
	case OpaqueID:
		return string(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	}
	if s, ok := numberString(v); ok {
		return s, nil
	}
	if KindOf(v) == KindUnknown {
		return "", fmt.Errorf("%w: identity of type %T", ErrUnsupportedType, v)
	}
	return string(Canonicalize(v)), nil
}
