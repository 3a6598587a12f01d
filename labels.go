package propgraph

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/propgraph/column"
	"github.com/hupe1980/propgraph/dictionary"
	"github.com/hupe1980/propgraph/engine"
)

// encoded holds the dictionary-encoding result for the non-key columns of
// one load: per column the (possibly re-coded) full-input-length values and
// the dictionary recorded for it.
type encoded struct {
	names []string
	cols  map[string]column.Column
	dicts map[string]*dictionary.Dictionary
}

// encodeCategorical dictionary-encodes every categorical column of t in a
// single backend request. Non-categorical columns keep their values and get
// the degenerate placeholder dictionary.
func (g *Graph) encodeCategorical(ctx context.Context, t column.Table) (encoded, error) {
	enc := encoded{
		names: t.Names(),
		cols:  make(map[string]column.Column, t.NumCols()),
		dicts: make(map[string]*dictionary.Dictionary, t.NumCols()),
	}

	var catNames []string
	var catCols []column.Column
	for _, name := range enc.names {
		col, _ := t.Get(name)
		if col.IsCategorical() {
			catNames = append(catNames, name)
			catCols = append(catCols, col)
			continue
		}
		enc.cols[name] = col
		enc.dicts[name] = dictionary.Placeholder()
	}

	if len(catCols) == 0 {
		return enc, nil
	}

	distincts, err := g.compute.DistinctValues(ctx, catCols)
	if err != nil {
		return encoded{}, err
	}
	for i, name := range catNames {
		dict, err := dictionary.New(distincts[i].Unique.StringValues())
		if err != nil {
			return encoded{}, err
		}
		enc.cols[name] = column.Ints(distincts[i].Codes...)
		enc.dicts[name] = dict
	}
	return enc, nil
}

// AddNodeLabels dictionary-encodes the label columns of a table keyed by a
// "nodes" column and writes the codes into the node attribute table, keyed
// by internal vertex id.
//
// Rows whose node does not exist are dropped (or fail the load in strict
// mode); duplicate nodes keep their first row under ascending internal-id
// order. The label dictionaries and label columns recorded by a previous
// call are replaced wholesale, but a label column name that is still
// present in the node attribute table fails with ErrNameCollision.
func (g *Graph) AddNodeLabels(ctx context.Context, table column.Table) (LoadResult, error) {
	start := time.Now()

	result, err := g.addNodeLabels(ctx, table)
	err = translateError(err)
	g.metrics.RecordLoad(engine.CmdAddNodeLabels, result.Rows, result.Dropped, time.Since(start), err)
	g.logger.LogLoad(ctx, engine.CmdAddNodeLabels, result, err)
	return result, err
}

func (g *Graph) addNodeLabels(ctx context.Context, table column.Table) (LoadResult, error) {
	nodes, ok := table.Get("nodes")
	if !ok {
		return LoadResult{}, &ErrMissingKey{Column: "nodes"}
	}
	if !g.canon.Populated() {
		return LoadResult{}, ErrNoEdges
	}

	labels := table.Drop("nodes")
	for _, name := range labels.Names() {
		if g.labelFrame.Table.Has(name) || g.nodeProps.Table.Has(name) {
			return LoadResult{}, &ErrNameCollision{Column: name}
		}
	}

	ids, kept, err := g.canon.ResolveVertices(ctx, nodes)
	if err != nil {
		return LoadResult{}, err
	}
	result := LoadResult{Rows: nodes.Len(), Dropped: nodes.Len() - len(kept)}
	if g.strict && result.Dropped > 0 {
		return result, &ErrUnresolvedRows{Dropped: result.Dropped}
	}

	// Deduplicate by internal id, first row under ascending id order wins.
	perm, segments, err := g.compute.SortGroup(ctx, []column.Column{column.Ints(ids...)})
	if err != nil {
		return result, err
	}
	result.Deduplicated = len(kept) - len(segments)

	dedupIDs := make([]int64, len(segments))
	rows := make([]int, len(segments))
	for i, seg := range segments {
		dedupIDs[i] = ids[perm[seg]]
		rows[i] = kept[perm[seg]]
	}

	// Dictionaries are built from the surviving rows only, so values that
	// appear solely on dropped rows never get a code.
	enc, err := g.encodeCategorical(ctx, labels.Gather(rows))
	if err != nil {
		return result, err
	}

	var codeTable column.Table
	for _, name := range enc.names {
		if err := codeTable.Set(name, enc.cols[name]); err != nil {
			return result, err
		}
	}

	if err := g.dispatchEncoded(ctx, engine.CmdAddNodeLabels, dedupIDs, codeTable, enc.dicts,
		engine.ArgLabelArrays, engine.ArgLabelMappers); err != nil {
		return result, err
	}

	g.labelDicts = enc.dicts
	g.labelFrame = frame{IDs: dedupIDs, Table: codeTable}
	return result, nil
}

// dispatchEncoded registers the index, code and mapper arrays with the
// backend and issues one encoded-column write command. Loads with no
// non-key columns skip the backend write.
func (g *Graph) dispatchEncoded(ctx context.Context, cmd string, ids []int64, codes column.Table, dicts map[string]*dictionary.Dictionary, arrayArg, mapperArg string) error {
	names := codes.Names()
	if len(names) == 0 {
		return nil
	}

	idxName, err := g.compute.Store(ctx, column.Ints(ids...))
	if err != nil {
		return err
	}

	arrayNames := make([]string, len(names))
	mapperNames := make([]string, len(names))
	for i, name := range names {
		col, _ := codes.Get(name)
		if arrayNames[i], err = g.compute.Store(ctx, col); err != nil {
			return err
		}
		mapperNames[i], err = g.compute.Store(ctx, column.Strings(dicts[name].Values()...))
		if err != nil {
			return err
		}
	}

	return g.compute.Dispatch(ctx, cmd, map[string]string{
		engine.ArgGraphName:    g.handle,
		engine.ArgInputIndices: idxName,
		engine.ArgColumnNames:  strings.Join(names, engine.ListSeparator),
		arrayArg:               strings.Join(arrayNames, engine.ListSeparator),
		mapperArg:              strings.Join(mapperNames, engine.ListSeparator),
	})
}
