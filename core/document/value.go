package document

import (
	"encoding/json"
	"fmt"
)

// Document is a single record from a collection or table.
type Document map[string]any

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// OpaqueID is a database-native identifier (e.g. a Mongo ObjectId) carried as
// its canonical string form.
type OpaqueID string

func (id OpaqueID) String() string {
	return string(id)
}

// Set is an unordered collection of values. Member order carries no meaning.
type Set []any

// Kind identifies which branch of the value model a value belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
	KindOpaqueID
	KindSet
)

var kindNames = map[Kind]string{
	KindUnknown:  "unknown",
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindSequence: "sequence",
	KindMapping:  "mapping",
	KindOpaqueID: "opaque_id",
	KindSet:      "set",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindOf reports the kind of v. Values outside the model report KindUnknown.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindSequence
	case map[string]any, Document:
		return KindMapping
	case OpaqueID:
		return KindOpaqueID
	case Set:
		return KindSet
	default:
		return KindUnknown
	}
}
