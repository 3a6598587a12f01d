package propgraph

import (
	"context"
	"time"

	"github.com/hupe1980/propgraph/column"
	"github.com/hupe1980/propgraph/engine"
)

// AddEdgeRelationships dictionary-encodes the relationship columns of a
// table keyed by "src" and "dst" columns and writes the codes into the edge
// attribute table, keyed by internal edge id.
//
// Rows whose (src,dst) pair is not a canonical edge are dropped (or fail
// the load in strict mode); duplicate pairs keep their first row under
// ascending internal edge-id order, so a second relationship for the same
// edge is lost — parallel edges are not supported. Relationship
// dictionaries and columns from a previous call are replaced wholesale.
func (g *Graph) AddEdgeRelationships(ctx context.Context, table column.Table) (LoadResult, error) {
	start := time.Now()

	result, err := g.addEdgeRelationships(ctx, table)
	err = translateError(err)
	g.metrics.RecordLoad(engine.CmdAddEdgeRelationships, result.Rows, result.Dropped, time.Since(start), err)
	g.logger.LogLoad(ctx, engine.CmdAddEdgeRelationships, result, err)
	return result, err
}

func (g *Graph) addEdgeRelationships(ctx context.Context, table column.Table) (LoadResult, error) {
	src, ok := table.Get("src")
	if !ok {
		return LoadResult{}, &ErrMissingKey{Column: "src"}
	}
	dst, ok := table.Get("dst")
	if !ok {
		return LoadResult{}, &ErrMissingKey{Column: "dst"}
	}
	if !g.canon.Populated() {
		return LoadResult{}, ErrNoEdges
	}

	rels := table.Drop("src", "dst")
	for _, name := range rels.Names() {
		if g.relFrame.Table.Has(name) || g.edgeProps.Table.Has(name) {
			return LoadResult{}, &ErrNameCollision{Column: name}
		}
	}

	edgeIDs, kept, err := g.canon.ResolveEdges(ctx, src, dst)
	if err != nil {
		return LoadResult{}, err
	}
	result := LoadResult{Rows: src.Len(), Dropped: src.Len() - len(kept)}
	if g.strict && result.Dropped > 0 {
		return result, &ErrUnresolvedRows{Dropped: result.Dropped}
	}

	// Deduplicate by internal edge id, first row under ascending id order
	// wins; later relationships for the same edge are lost.
	perm, segments, err := g.compute.SortGroup(ctx, []column.Column{column.Ints(edgeIDs...)})
	if err != nil {
		return result, err
	}
	result.Deduplicated = len(kept) - len(segments)

	dedupIDs := make([]int64, len(segments))
	rows := make([]int, len(segments))
	for i, seg := range segments {
		dedupIDs[i] = edgeIDs[perm[seg]]
		rows[i] = kept[perm[seg]]
	}

	// Dictionaries are built from the surviving rows only.
	enc, err := g.encodeCategorical(ctx, rels.Gather(rows))
	if err != nil {
		return result, err
	}

	var codeTable column.Table
	for _, name := range enc.names {
		if err := codeTable.Set(name, enc.cols[name]); err != nil {
			return result, err
		}
	}

	if err := g.dispatchEncoded(ctx, engine.CmdAddEdgeRelationships, dedupIDs, codeTable, enc.dicts,
		engine.ArgRelationshipArrays, engine.ArgRelationshipMappers); err != nil {
		return result, err
	}

	g.relDicts = enc.dicts
	g.relFrame = frame{IDs: dedupIDs, Table: codeTable}
	return result, nil
}
