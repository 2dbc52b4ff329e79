// Package document defines the value model shared by every data source and
// the canonical form used to compare values across databases.
//
// # Value Model
//
// A Document maps field names to values drawn from a closed set of kinds:
//   - null, bool, number (any Go integer or float), string
//   - sequence ([]any), mapping (map[string]any or Document)
//   - OpaqueID: a database-native identifier carried as its string form
//   - Set: an unordered collection
//
// Driver-specific types are brought into this model with Normalize or
// NormalizeWith before they reach the reconcile engine.
//
// # Canonical Form
//
// Canonicalize renders any value into a deterministic string. Two values are
// equal for reconciliation purposes exactly when their canonical forms match:
// mapping key order is ignored, sequence order is kept, set order is ignored,
// and an integral float equals the integer of the same magnitude.
//
// # Exclusions
//
// ExclusionSet strips configured fields, including dotted paths into nested
// mappings, from a document without mutating the input.
package document
