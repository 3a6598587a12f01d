package propgraph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/propgraph/store"
)

var (
	// ErrNoEdges is returned when an operation requires the canonical edge
	// set and AddEdges has not run yet.
	ErrNoEdges = errors.New("graph has no edges")

	// ErrNoLabels is returned by NodeLabels when no label load has happened.
	ErrNoLabels = errors.New("no labels found")

	// ErrNoRelationships is returned by EdgeRelationships when no
	// relationship load has happened.
	ErrNoRelationships = errors.New("no relationships found")
)

// ErrNameCollision indicates that an attribute column name is already
// present in the node or edge attribute table.
type ErrNameCollision struct {
	Column string
}

func (e *ErrNameCollision) Error() string {
	return fmt.Sprintf("attribute column %q already exists", e.Column)
}

// ErrMissingKey indicates that a required key column is absent from the
// input table.
type ErrMissingKey struct {
	Column string
}

func (e *ErrMissingKey) Error() string {
	return fmt.Sprintf("required key column %q is missing", e.Column)
}

// ErrUnresolvedRows is returned in strict mode when rows would be dropped
// because their keys do not resolve against the canonical universe.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnresolvedRows struct {
	Dropped int
	cause   error
}

func (e *ErrUnresolvedRows) Error() string {
	return fmt.Sprintf("strict mode: %d rows did not resolve", e.Dropped)
}

func (e *ErrUnresolvedRows) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNoEdges) {
		return fmt.Errorf("%w: %w", ErrNoEdges, err)
	}
	return err
}
