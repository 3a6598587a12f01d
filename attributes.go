package propgraph

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/propgraph/column"
	"github.com/hupe1980/propgraph/dictionary"
	"github.com/hupe1980/propgraph/engine"
)

// LoadNodeAttributes ingests a node attribute table: rows are sorted and
// deduplicated by the key column (first row under ascending sorted-key
// order wins), designated label columns are delegated to AddNodeLabels, the
// remaining keys are resolved against the vertex universe, and the plain
// property columns are handed to the backend keyed by internal vertex id.
//
// The graph must already be populated with edges. Attribute data never
// introduces new vertices; unresolved rows are dropped (or fail the load in
// strict mode). The stored node attribute table is replaced wholesale.
func (g *Graph) LoadNodeAttributes(ctx context.Context, table column.Table, nodeColumn string, labelColumns []string) (LoadResult, error) {
	start := time.Now()

	result, err := g.loadNodeAttributes(ctx, table, nodeColumn, labelColumns)
	err = translateError(err)
	g.metrics.RecordLoad(engine.CmdAddNodeProperties, result.Rows, result.Dropped, time.Since(start), err)
	g.logger.LogLoad(ctx, engine.CmdAddNodeProperties, result, err)
	return result, err
}

func (g *Graph) loadNodeAttributes(ctx context.Context, table column.Table, nodeColumn string, labelColumns []string) (LoadResult, error) {
	keys, ok := table.Get(nodeColumn)
	if !ok {
		return LoadResult{}, &ErrMissingKey{Column: nodeColumn}
	}
	for _, name := range labelColumns {
		if !table.Has(name) {
			return LoadResult{}, &ErrMissingKey{Column: name}
		}
	}
	if !g.canon.Populated() {
		return LoadResult{}, ErrNoEdges
	}

	deduped, dedupCount, err := g.sortDedup(ctx, table, keys)
	if err != nil {
		return LoadResult{}, err
	}
	result := LoadResult{Rows: table.NumRows(), Deduplicated: dedupCount}

	dedupedKeys, _ := deduped.Get(nodeColumn)
	ids, kept, err := g.canon.ResolveVertices(ctx, dedupedKeys)
	if err != nil {
		return result, err
	}
	result.Dropped = deduped.NumRows() - len(kept)
	if g.strict && result.Dropped > 0 {
		return result, &ErrUnresolvedRows{Dropped: result.Dropped}
	}

	// Replace the stored table wholesale; previous loads are not merged.
	g.labelFrame = frame{}
	g.labelDicts = make(map[string]*dictionary.Dictionary)
	g.nodeProps = frame{}

	if len(labelColumns) > 0 {
		labels, err := deduped.Project(labelColumns...)
		if err != nil {
			return result, err
		}
		var labelTable column.Table
		if err := labelTable.Set("nodes", dedupedKeys); err != nil {
			return result, err
		}
		for _, name := range labels.Names() {
			col, _ := labels.Get(name)
			if err := labelTable.Set(name, col); err != nil {
				return result, err
			}
		}
		if _, err := g.addNodeLabels(ctx, labelTable); err != nil {
			return result, err
		}
	}

	drop := append([]string{nodeColumn}, labelColumns...)
	props := deduped.Drop(drop...).Gather(kept)

	if err := g.dispatchPlain(ctx, engine.CmdAddNodeProperties, ids, props); err != nil {
		return result, err
	}

	g.nodeProps = frame{IDs: ids, Table: props}
	return result, nil
}

// LoadEdgeAttributes is the edge-side counterpart of LoadNodeAttributes:
// rows are sorted and deduplicated by the (src,dst) key pair, designated
// relationship columns are delegated to AddEdgeRelationships, pairs are
// resolved against the canonical edge set, and plain property columns are
// handed to the backend keyed by internal edge id.
//
// The graph must already be populated with edges; pairs that are not
// canonical edges are dropped (or fail the load in strict mode).
func (g *Graph) LoadEdgeAttributes(ctx context.Context, table column.Table, srcColumn, dstColumn string, relationshipColumns []string) (LoadResult, error) {
	start := time.Now()

	result, err := g.loadEdgeAttributes(ctx, table, srcColumn, dstColumn, relationshipColumns)
	err = translateError(err)
	g.metrics.RecordLoad(engine.CmdAddEdgeProperties, result.Rows, result.Dropped, time.Since(start), err)
	g.logger.LogLoad(ctx, engine.CmdAddEdgeProperties, result, err)
	return result, err
}

func (g *Graph) loadEdgeAttributes(ctx context.Context, table column.Table, srcColumn, dstColumn string, relationshipColumns []string) (LoadResult, error) {
	src, ok := table.Get(srcColumn)
	if !ok {
		return LoadResult{}, &ErrMissingKey{Column: srcColumn}
	}
	dst, ok := table.Get(dstColumn)
	if !ok {
		return LoadResult{}, &ErrMissingKey{Column: dstColumn}
	}
	for _, name := range relationshipColumns {
		if !table.Has(name) {
			return LoadResult{}, &ErrMissingKey{Column: name}
		}
	}
	if !g.canon.Populated() {
		return LoadResult{}, ErrNoEdges
	}

	deduped, dedupCount, err := g.sortDedup(ctx, table, src, dst)
	if err != nil {
		return LoadResult{}, err
	}
	result := LoadResult{Rows: table.NumRows(), Deduplicated: dedupCount}

	dedupedSrc, _ := deduped.Get(srcColumn)
	dedupedDst, _ := deduped.Get(dstColumn)
	edgeIDs, kept, err := g.canon.ResolveEdges(ctx, dedupedSrc, dedupedDst)
	if err != nil {
		return result, err
	}
	result.Dropped = deduped.NumRows() - len(kept)
	if g.strict && result.Dropped > 0 {
		return result, &ErrUnresolvedRows{Dropped: result.Dropped}
	}

	// Replace the stored table wholesale; previous loads are not merged.
	g.relFrame = frame{}
	g.relDicts = make(map[string]*dictionary.Dictionary)
	g.edgeProps = frame{}

	if len(relationshipColumns) > 0 {
		rels, err := deduped.Project(relationshipColumns...)
		if err != nil {
			return result, err
		}
		var relTable column.Table
		if err := relTable.Set("src", dedupedSrc); err != nil {
			return result, err
		}
		if err := relTable.Set("dst", dedupedDst); err != nil {
			return result, err
		}
		for _, name := range rels.Names() {
			col, _ := rels.Get(name)
			if err := relTable.Set(name, col); err != nil {
				return result, err
			}
		}
		if _, err := g.addEdgeRelationships(ctx, relTable); err != nil {
			return result, err
		}
	}

	drop := append([]string{srcColumn, dstColumn}, relationshipColumns...)
	props := deduped.Drop(drop...).Gather(kept)

	if err := g.dispatchPlain(ctx, engine.CmdAddEdgeProperties, edgeIDs, props); err != nil {
		return result, err
	}

	g.edgeProps = frame{IDs: edgeIDs, Table: props}
	return result, nil
}

// sortDedup sorts the table rows by the given key columns and keeps exactly
// one row per distinct key, the first under ascending sorted-key order.
func (g *Graph) sortDedup(ctx context.Context, table column.Table, keys ...column.Column) (column.Table, int, error) {
	perm, segments, err := g.compute.SortGroup(ctx, keys)
	if err != nil {
		return column.Table{}, 0, err
	}
	rows := make([]int, len(segments))
	for i, seg := range segments {
		rows[i] = perm[seg]
	}
	return table.Gather(rows), table.NumRows() - len(rows), nil
}

// dispatchPlain registers the index and property arrays with the backend
// and issues one plain-property write command. Loads with no property
// columns skip the backend write.
func (g *Graph) dispatchPlain(ctx context.Context, cmd string, ids []int64, props column.Table) error {
	names := props.Names()
	if len(names) == 0 {
		return nil
	}

	idxName, err := g.compute.Store(ctx, column.Ints(ids...))
	if err != nil {
		return err
	}

	arrayNames := make([]string, len(names))
	for i, name := range names {
		col, _ := props.Get(name)
		if arrayNames[i], err = g.compute.Store(ctx, col); err != nil {
			return err
		}
	}

	return g.compute.Dispatch(ctx, cmd, map[string]string{
		engine.ArgGraphName:      g.handle,
		engine.ArgInputIndices:   idxName,
		engine.ArgColumnNames:    strings.Join(names, engine.ListSeparator),
		engine.ArgPropertyArrays: strings.Join(arrayNames, engine.ListSeparator),
	})
}
