// Package engine defines the bulk columnar compute contract the graph core
// delegates its heavy operations to, and provides Local, an in-process
// reference implementation.
//
// The core issues at most one backend request at a time per public graph
// operation and inspects only success or failure of dispatched commands; it
// never looks inside backend payloads. Cancellation and pacing belong to the
// backend, not the core.
package engine

import (
	"context"
	"errors"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/propgraph/column"
)

// Command names accepted by Dispatch.
const (
	CmdAddNodeLabels        = "addNodeLabels"
	CmdAddNodeProperties    = "addNodeProperties"
	CmdAddEdgeRelationships = "addEdgeRelationships"
	CmdAddEdgeProperties    = "addEdgeProperties"
)

// Argument keys for Dispatch. List-valued arguments join their elements
// with ListSeparator.
const (
	ArgGraphName           = "GraphName"
	ArgInputIndices        = "InputIndicesName"
	ArgColumnNames         = "ColumnNames"
	ArgLabelArrays         = "LabelArrayNames"
	ArgLabelMappers        = "LabelMapperNames"
	ArgRelationshipArrays  = "RelationshipArrayNames"
	ArgRelationshipMappers = "RelationshipMapperNames"
	ArgPropertyArrays      = "PropertyArrayNames"
)

// ListSeparator joins multi-valued Dispatch arguments.
const ListSeparator = "+"

// NotFound is the position reported by Lookup for values absent from the
// universe.
const NotFound int64 = -1

var (
	// ErrSymbolNotFound is returned when a named array is not registered.
	ErrSymbolNotFound = errors.New("engine: symbol not found")

	// ErrGraphNotFound is returned when a graph handle is unknown.
	ErrGraphNotFound = errors.New("engine: graph not found")

	// ErrUnknownCommand is returned by Dispatch for unrecognized operations.
	ErrUnknownCommand = errors.New("engine: unknown command")
)

// Distinct is the result of a distinct-values request for one column:
// the sorted unique values and the code broadcast over the input rows.
type Distinct struct {
	// Unique holds the distinct values in ascending order.
	Unique column.Column

	// Codes holds, for every input row, the position of its value in Unique.
	Codes []int64
}

// Compute is the bulk columnar backend the graph core delegates to.
//
// All methods are synchronous, blocking calls; implementations must be safe
// for concurrent use even though a single graph instance never overlaps
// requests.
type Compute interface {
	// CreateGraph allocates backend state and returns its opaque handle.
	CreateGraph(ctx context.Context) (string, error)

	// SortGroup sorts rows by the given key columns and groups equal keys.
	// It returns the sort permutation and the start offsets of each group
	// within the permuted order.
	SortGroup(ctx context.Context, keys []column.Column) (perm []int, segments []int, err error)

	// Membership reports which positions of values hold a value present in
	// universe, as a bitmap over value positions.
	Membership(ctx context.Context, values, universe column.Column) (*roaring.Bitmap, error)

	// Lookup returns, for each value, its position in universe or NotFound.
	Lookup(ctx context.Context, values, universe column.Column) ([]int64, error)

	// LookupPairs returns, for each (src[i], dst[i]) pair, its position in
	// the (universeSrc, universeDst) pair list or NotFound.
	LookupPairs(ctx context.Context, src, dst, universeSrc, universeDst []int64) ([]int64, error)

	// DistinctValues computes sorted unique values and code broadcasts for
	// the given columns in one request.
	DistinctValues(ctx context.Context, cols []column.Column) ([]Distinct, error)

	// Store registers a value array with the backend symbol table and
	// returns its generated name.
	Store(ctx context.Context, values column.Column) (string, error)

	// Dispatch executes a named backend command with a flat argument
	// mapping. Callers inspect only the returned error.
	Dispatch(ctx context.Context, cmd string, args map[string]string) error
}
