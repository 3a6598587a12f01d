// Package store owns the canonical vertex universe and directed edge set of
// a property graph.
//
// External identifiers are whatever the caller supplies; internal
// identifiers are dense zero-based positions assigned here. All bulk work
// (sort, group, membership, exact lookup) is delegated to the compute
// backend.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/propgraph/column"
	"github.com/hupe1980/propgraph/engine"
)

// ErrNoEdges is returned when a resolve operation runs before AddEdges has
// populated the store.
var ErrNoEdges = errors.New("store: graph has no edges")

// Canonical assigns dense internal identifiers to vertices and directed
// edges and resolves external identifiers against them.
//
// Vertices are the sorted union of all source and destination identifiers;
// a vertex's internal id is its position in that order. Edges are the
// deduplicated (src,dst) internal pairs in ascending pair order; an edge's
// internal id is its position. Duplicate pairs always collapse, so the
// store never represents a multigraph.
type Canonical struct {
	compute  engine.Compute
	vertices column.Column
	edgeSrc  []int64
	edgeDst  []int64
}

// New creates an empty canonical store backed by the given compute engine.
func New(compute engine.Compute) *Canonical {
	return &Canonical{compute: compute}
}

// Populated reports whether AddEdges has run.
func (c *Canonical) Populated() bool { return c.vertices.Len() > 0 }

// Order returns the number of vertices.
func (c *Canonical) Order() int { return c.vertices.Len() }

// Size returns the number of edges.
func (c *Canonical) Size() int { return len(c.edgeSrc) }

// Vertices returns the vertex universe in internal-id order.
func (c *Canonical) Vertices() column.Column { return c.vertices }

// EdgeSrc returns the internal source id of every edge, in edge-id order.
func (c *Canonical) EdgeSrc() []int64 { return c.edgeSrc }

// EdgeDst returns the internal destination id of every edge, in edge-id order.
func (c *Canonical) EdgeDst() []int64 { return c.edgeDst }

// AddEdges rebuilds the canonical universe from the given external source
// and destination columns: the vertex set is the sorted deduplicated union
// of both columns, the edge set the deduplicated internal (src,dst) pairs.
// It returns the number of duplicate pairs that were collapsed.
func (c *Canonical) AddEdges(ctx context.Context, src, dst column.Column) (int, error) {
	if src.Len() != dst.Len() {
		return 0, fmt.Errorf("store: src has %d rows, dst has %d", src.Len(), dst.Len())
	}
	if src.Len() == 0 {
		return 0, fmt.Errorf("store: cannot build a graph from zero edges")
	}

	union, err := column.Concat(src, dst)
	if err != nil {
		return 0, err
	}
	perm, segments, err := c.compute.SortGroup(ctx, []column.Column{union})
	if err != nil {
		return 0, err
	}
	firsts := make([]int, len(segments))
	for i, seg := range segments {
		firsts[i] = perm[seg]
	}
	vertices := union.Gather(firsts)

	srcIDs, err := c.compute.Lookup(ctx, src, vertices)
	if err != nil {
		return 0, err
	}
	dstIDs, err := c.compute.Lookup(ctx, dst, vertices)
	if err != nil {
		return 0, err
	}

	perm, segments, err = c.compute.SortGroup(ctx, []column.Column{column.Ints(srcIDs...), column.Ints(dstIDs...)})
	if err != nil {
		return 0, err
	}
	edgeSrc := make([]int64, len(segments))
	edgeDst := make([]int64, len(segments))
	for i, seg := range segments {
		edgeSrc[i] = srcIDs[perm[seg]]
		edgeDst[i] = dstIDs[perm[seg]]
	}

	c.vertices = vertices
	c.edgeSrc = edgeSrc
	c.edgeDst = edgeDst
	return src.Len() - len(segments), nil
}

// ResolveVertices returns the internal ids of the identifiers present in
// the vertex universe, along with the surviving input row positions.
// Unresolved identifiers are dropped; relative order is preserved.
func (c *Canonical) ResolveVertices(ctx context.Context, ids column.Column) ([]int64, []int, error) {
	if !c.Populated() {
		return nil, nil, ErrNoEdges
	}

	mask, err := c.compute.Membership(ctx, ids, c.vertices)
	if err != nil {
		return nil, nil, err
	}
	kept := make([]int, 0, mask.GetCardinality())
	it := mask.Iterator()
	for it.HasNext() {
		kept = append(kept, int(it.Next()))
	}

	positions, err := c.compute.Lookup(ctx, ids.Gather(kept), c.vertices)
	if err != nil {
		return nil, nil, err
	}
	return positions, kept, nil
}

// ResolveEdges composes vertex resolution with an exact pair lookup against
// the edge set. It returns the internal edge id for every surviving row and
// the surviving input row positions; rows whose pair is not a canonical
// edge are dropped.
func (c *Canonical) ResolveEdges(ctx context.Context, src, dst column.Column) ([]int64, []int, error) {
	if !c.Populated() {
		return nil, nil, ErrNoEdges
	}
	if src.Len() != dst.Len() {
		return nil, nil, fmt.Errorf("store: src has %d rows, dst has %d", src.Len(), dst.Len())
	}

	srcIDs, err := c.compute.Lookup(ctx, src, c.vertices)
	if err != nil {
		return nil, nil, err
	}
	dstIDs, err := c.compute.Lookup(ctx, dst, c.vertices)
	if err != nil {
		return nil, nil, err
	}

	edgeIDs, err := c.compute.LookupPairs(ctx, srcIDs, dstIDs, c.edgeSrc, c.edgeDst)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]int64, 0, len(edgeIDs))
	kept := make([]int, 0, len(edgeIDs))
	for i, id := range edgeIDs {
		if id == engine.NotFound {
			continue
		}
		ids = append(ids, id)
		kept = append(kept, i)
	}
	return ids, kept, nil
}

// Snapshot is the persisted form of a canonical store.
type Snapshot struct {
	Vertices column.Column `json:"vertices"`
	EdgeSrc  []int64       `json:"edge_src"`
	EdgeDst  []int64       `json:"edge_dst"`
}

// Snapshot captures the store state for persistence.
func (c *Canonical) Snapshot() Snapshot {
	return Snapshot{Vertices: c.vertices, EdgeSrc: c.edgeSrc, EdgeDst: c.edgeDst}
}

// Restore replaces the store state from a snapshot.
func (c *Canonical) Restore(snap Snapshot) error {
	if len(snap.EdgeSrc) != len(snap.EdgeDst) {
		return fmt.Errorf("store: snapshot has %d edge sources and %d destinations", len(snap.EdgeSrc), len(snap.EdgeDst))
	}
	c.vertices = snap.Vertices
	c.edgeSrc = snap.EdgeSrc
	c.edgeDst = snap.EdgeDst
	return nil
}
