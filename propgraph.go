package propgraph

import (
	"context"
	"time"

	"github.com/hupe1980/propgraph/codec"
	"github.com/hupe1980/propgraph/column"
	"github.com/hupe1980/propgraph/dictionary"
	"github.com/hupe1980/propgraph/engine"
	"github.com/hupe1980/propgraph/store"
)

// LoadResult reports the outcome of a load call.
type LoadResult struct {
	// Rows is the number of input rows.
	Rows int

	// Deduplicated is the number of rows discarded because another row
	// shared their key. The first row under ascending sorted-key order wins.
	Deduplicated int

	// Dropped is the number of rows discarded because their key did not
	// resolve against the canonical universe.
	Dropped int
}

// frame is an attribute table aligned to internal identifiers: row i of
// Table annotates internal id IDs[i].
type frame struct {
	IDs   []int64      `json:"ids,omitempty"`
	Table column.Table `json:"table"`
}

func (f frame) empty() bool { return len(f.IDs) == 0 }

// Graph is a property graph under construction: a canonical vertex/edge
// universe plus dictionary-encoded categorical columns and property tables
// aligned to it.
//
// A Graph is not safe for concurrent mutation; callers must serialize
// mutating operations on one instance themselves.
type Graph struct {
	compute     engine.Compute
	handle      string
	canon       *store.Canonical
	logger      *Logger
	metrics     MetricsCollector
	codec       codec.Codec
	compression Compression
	strict      bool
	multigraph  bool

	labelFrame frame
	nodeProps  frame
	relFrame   frame
	edgeProps  frame
	labelDicts map[string]*dictionary.Dictionary
	relDicts   map[string]*dictionary.Dictionary
}

// New creates an empty graph. Use the Builder for a fluent alternative.
func New(optFns ...Option) (*Graph, error) {
	opts := applyOptions(optFns)

	c := opts.codec
	if c == nil {
		c = codec.Default
	}

	compute := opts.compute
	if compute == nil {
		compute = engine.NewLocal()
	}

	return &Graph{
		compute:     compute,
		canon:       store.New(compute),
		logger:      opts.logger,
		metrics:     opts.metricsCollector,
		codec:       c,
		compression: opts.compression,
		strict:      opts.strict,
		labelDicts:  make(map[string]*dictionary.Dictionary),
		relDicts:    make(map[string]*dictionary.Dictionary),
	}, nil
}

// ensureHandle allocates the backend graph handle on first use.
func (g *Graph) ensureHandle(ctx context.Context) error {
	if g.handle != "" {
		return nil
	}
	handle, err := g.compute.CreateGraph(ctx)
	if err != nil {
		return err
	}
	g.handle = handle
	return nil
}

// Handle returns the opaque backend handle for this graph, or the empty
// string before the first backend interaction.
func (g *Graph) Handle() string { return g.handle }

// Strict reports whether unresolved rows fail loads instead of being
// dropped silently.
func (g *Graph) Strict() bool { return g.strict }

// AddEdges builds the canonical universe from external source and
// destination identifier columns: the vertex set is the sorted deduplicated
// union of both columns, the edge set the deduplicated internal (src,dst)
// pairs. Duplicate pairs always collapse; parallel edges are not supported.
//
// AddEdges must run before any label, relationship or attribute load.
// Calling it again rebuilds the universe and discards previously loaded
// attribute state, since internal identifiers are reassigned.
func (g *Graph) AddEdges(ctx context.Context, src, dst column.Column) (LoadResult, error) {
	start := time.Now()

	result, err := g.addEdges(ctx, src, dst)
	err = translateError(err)
	g.metrics.RecordAddEdges(g.canon.Order(), g.canon.Size(), time.Since(start), err)
	g.logger.LogAddEdges(ctx, g.canon.Order(), g.canon.Size(), result.Deduplicated, err)
	return result, err
}

func (g *Graph) addEdges(ctx context.Context, src, dst column.Column) (LoadResult, error) {
	if err := g.ensureHandle(ctx); err != nil {
		return LoadResult{}, err
	}

	collapsed, err := g.canon.AddEdges(ctx, src, dst)
	if err != nil {
		return LoadResult{}, err
	}

	// Internal ids changed; aligned attribute state is void.
	g.multigraph = false
	g.labelFrame = frame{}
	g.nodeProps = frame{}
	g.relFrame = frame{}
	g.edgeProps = frame{}
	g.labelDicts = make(map[string]*dictionary.Dictionary)
	g.relDicts = make(map[string]*dictionary.Dictionary)

	return LoadResult{Rows: src.Len(), Deduplicated: collapsed}, nil
}

// Order returns the number of vertices.
func (g *Graph) Order() int { return g.canon.Order() }

// Size returns the number of edges.
func (g *Graph) Size() int { return g.canon.Size() }

// Multigraph reports whether parallel edges are represented. It is always
// false: duplicate (src,dst) pairs collapse during construction.
func (g *Graph) Multigraph() bool { return g.multigraph }

// Nodes returns the external vertex identifiers in internal-id order.
func (g *Graph) Nodes() column.Column { return g.canon.Vertices() }

// Edges returns the external (src,dst) identifier pairs in internal
// edge-id order.
func (g *Graph) Edges() (column.Column, column.Column) {
	vertices := g.canon.Vertices()
	return vertices.Gather(toIntSlice(g.canon.EdgeSrc())),
		vertices.Gather(toIntSlice(g.canon.EdgeDst()))
}

// NodeLabels returns the "nodes" key column plus every label-code column of
// the current label load, or ErrNoLabels if none happened.
func (g *Graph) NodeLabels() (column.Table, error) {
	if g.labelFrame.empty() {
		return column.Table{}, ErrNoLabels
	}

	var out column.Table
	if err := out.Set("nodes", g.canon.Vertices().Gather(toIntSlice(g.labelFrame.IDs))); err != nil {
		return column.Table{}, err
	}
	for _, name := range g.labelFrame.Table.Names() {
		col, _ := g.labelFrame.Table.Get(name)
		if err := out.Set(name, col); err != nil {
			return column.Table{}, err
		}
	}
	return out, nil
}

// NodeAttributes returns the "nodes" key column plus the plain property
// columns of the current node attribute load. Label columns are available
// via NodeLabels.
func (g *Graph) NodeAttributes() (column.Table, error) {
	if g.nodeProps.empty() {
		return column.Table{}, nil
	}

	var out column.Table
	if err := out.Set("nodes", g.canon.Vertices().Gather(toIntSlice(g.nodeProps.IDs))); err != nil {
		return column.Table{}, err
	}
	for _, name := range g.nodeProps.Table.Names() {
		col, _ := g.nodeProps.Table.Get(name)
		if err := out.Set(name, col); err != nil {
			return column.Table{}, err
		}
	}
	return out, nil
}

// EdgeRelationships returns the "src" and "dst" key columns plus every
// relationship-code column of the current relationship load, or
// ErrNoRelationships if none happened.
func (g *Graph) EdgeRelationships() (column.Table, error) {
	if g.relFrame.empty() {
		return column.Table{}, ErrNoRelationships
	}
	return g.edgeKeyedTable(g.relFrame)
}

// EdgeAttributes returns the "src" and "dst" key columns plus the plain
// property columns of the current edge attribute load.
func (g *Graph) EdgeAttributes() (column.Table, error) {
	if g.edgeProps.empty() {
		return column.Table{}, nil
	}
	return g.edgeKeyedTable(g.edgeProps)
}

func (g *Graph) edgeKeyedTable(f frame) (column.Table, error) {
	vertices := g.canon.Vertices()
	edgeSrc, edgeDst := g.canon.EdgeSrc(), g.canon.EdgeDst()

	srcIdx := make([]int, len(f.IDs))
	dstIdx := make([]int, len(f.IDs))
	for i, id := range f.IDs {
		srcIdx[i] = int(edgeSrc[id])
		dstIdx[i] = int(edgeDst[id])
	}

	var out column.Table
	if err := out.Set("src", vertices.Gather(srcIdx)); err != nil {
		return column.Table{}, err
	}
	if err := out.Set("dst", vertices.Gather(dstIdx)); err != nil {
		return column.Table{}, err
	}
	for _, name := range f.Table.Names() {
		col, _ := f.Table.Get(name)
		if err := out.Set(name, col); err != nil {
			return column.Table{}, err
		}
	}
	return out, nil
}

// LabelDictionary returns the dictionary recorded for a label column.
func (g *Graph) LabelDictionary(name string) (*dictionary.Dictionary, bool) {
	d, ok := g.labelDicts[name]
	return d, ok
}

// RelationshipDictionary returns the dictionary recorded for a relationship
// column.
func (g *Graph) RelationshipDictionary(name string) (*dictionary.Dictionary, bool) {
	d, ok := g.relDicts[name]
	return d, ok
}

func toIntSlice(ids []int64) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
