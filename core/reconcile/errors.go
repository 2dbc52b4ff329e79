package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingIdentity is returned when a document lacks the identity field.
	ErrMissingIdentity = errors.New("document has no identity field")

	// ErrInconsistentReport is returned when diff entries disagree with the match result.
	ErrInconsistentReport = errors.New("inconsistent reconciliation report")
)

// Side names which database an operation ran against.
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

// CollectionError ties a failure to the collection, side and step it came from.
type CollectionError struct {
	Collection string
	Side       Side
	Op         string
	Err        error
}

func (e *CollectionError) Error() string {
	if e.Side != "" {
		return fmt.Sprintf("collection %q: %s %s: %v", e.Collection, e.Side, e.Op, e.Err)
	}
	return fmt.Sprintf("collection %q: %s: %v", e.Collection, e.Op, e.Err)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}
