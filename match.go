package propgraph

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/propgraph/column"
	"github.com/hupe1980/propgraph/dictionary"
)

// FindPathsOfLengthOne returns the external (src,dst) pairs of every edge
// whose source and destination both satisfy the node predicates and whose
// own attributes satisfy the edge predicates.
//
// Predicate tables are multi-column equality constraints: a row of the
// attribute table matches when some predicate row agrees with it on every
// predicate column. Predicate values for dictionary-encoded columns may be
// given as original categorical values; they are translated through the
// column's dictionary. An empty predicate table matches everything. No
// ordering is guaranteed beyond the order produced by the predicate filter.
func (g *Graph) FindPathsOfLengthOne(ctx context.Context, nodePredicates, edgePredicates column.Table) (column.Column, column.Column, error) {
	start := time.Now()

	src, dst, err := g.findPathsOfLengthOne(ctx, nodePredicates, edgePredicates)
	err = translateError(err)
	g.metrics.RecordMatch(src.Len(), time.Since(start), err)
	g.logger.LogMatch(ctx, src.Len(), err)
	return src, dst, err
}

func (g *Graph) findPathsOfLengthOne(ctx context.Context, nodePredicates, edgePredicates column.Table) (column.Column, column.Column, error) {
	if err := ctx.Err(); err != nil {
		return column.Column{}, column.Column{}, err
	}
	if !g.canon.Populated() {
		return column.Column{}, column.Column{}, ErrNoEdges
	}

	var vertexMatch *roaring.Bitmap
	if nodePredicates.NumCols() > 0 {
		vertexMatch = matchFrames(nodePredicates, []frame{g.labelFrame, g.nodeProps}, g.labelDicts)
	}

	var edgeMatch *roaring.Bitmap
	if edgePredicates.NumCols() > 0 {
		edgeMatch = matchFrames(edgePredicates, []frame{g.relFrame, g.edgeProps}, g.relDicts)
	}

	edgeSrc, edgeDst := g.canon.EdgeSrc(), g.canon.EdgeDst()
	var srcIdx, dstIdx []int
	for id := range edgeSrc {
		if edgeMatch != nil && !edgeMatch.Contains(uint32(id)) {
			continue
		}
		s, d := edgeSrc[id], edgeDst[id]
		if vertexMatch != nil && (!vertexMatch.Contains(uint32(s)) || !vertexMatch.Contains(uint32(d))) {
			continue
		}
		srcIdx = append(srcIdx, int(s))
		dstIdx = append(dstIdx, int(d))
	}

	vertices := g.canon.Vertices()
	return vertices.Gather(srcIdx), vertices.Gather(dstIdx), nil
}

// matchFrames computes the multi-column equality intersection of the given
// predicate table against attribute frames, returning the matching internal
// ids. Each predicate row contributes the ids agreeing with it on every
// predicate column; rows are combined by union.
func matchFrames(pred column.Table, frames []frame, dicts map[string]*dictionary.Dictionary) *roaring.Bitmap {
	out := roaring.New()
	for j := 0; j < pred.NumRows(); j++ {
		var rowMatch *roaring.Bitmap
		for _, name := range pred.Names() {
			predCol, _ := pred.Get(name)
			colMatch := matchColumn(name, frames, dicts[name], predCol, j)
			if rowMatch == nil {
				rowMatch = colMatch
			} else {
				rowMatch.And(colMatch)
			}
			if rowMatch.IsEmpty() {
				break
			}
		}
		if rowMatch != nil {
			out.Or(rowMatch)
		}
	}
	return out
}

// matchColumn returns the internal ids whose value in the named attribute
// column equals the predicate value at row j. Predicate strings against a
// dictionary-encoded column are translated to codes first.
func matchColumn(name string, frames []frame, dict *dictionary.Dictionary, predCol column.Column, j int) *roaring.Bitmap {
	out := roaring.New()

	var col column.Column
	var ids []int64
	found := false
	for _, f := range frames {
		if f.Table.Has(name) {
			col, _ = f.Table.Get(name)
			ids = f.IDs
			found = true
			break
		}
	}
	if !found {
		return out
	}

	if dict != nil && !dict.IsPlaceholder() && predCol.StringValues() != nil {
		code, ok := dict.Code(predCol.StringValues()[j])
		if !ok {
			return out
		}
		codes := col.IntValues()
		for i, id := range ids {
			if codes[i] == code {
				out.Add(uint32(id))
			}
		}
		return out
	}

	for i, id := range ids {
		if col.EqualAt(i, predCol, j) {
			out.Add(uint32(id))
		}
	}
	return out
}
