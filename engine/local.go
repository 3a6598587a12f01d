package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/propgraph/column"
)

// LocalOptions contains options for the Local engine.
type LocalOptions struct {
	// Parallelism bounds the number of concurrent per-column workers used
	// inside a single DistinctValues request.
	Parallelism int

	// RateLimit throttles Dispatch calls. rate.Inf disables throttling.
	RateLimit rate.Limit

	// RateBurst is the burst size used with RateLimit.
	RateBurst int
}

// DefaultLocalOptions contains the default options for the Local engine.
var DefaultLocalOptions = LocalOptions{
	Parallelism: 4,
	RateLimit:   rate.Inf,
	RateBurst:   1,
}

// Stored is a write retained by the Local engine under a graph handle:
// a dense scatter of values keyed by internal indices.
type Stored struct {
	Indices []int64
	Values  column.Column
}

// graphData is the per-handle backend state.
type graphData struct {
	nodeArrays  map[string]Stored
	edgeArrays  map[string]Stored
	nodeMappers map[string]column.Column
	edgeMappers map[string]column.Column
}

func newGraphData() *graphData {
	return &graphData{
		nodeArrays:  make(map[string]Stored),
		edgeArrays:  make(map[string]Stored),
		nodeMappers: make(map[string]column.Column),
		edgeMappers: make(map[string]column.Column),
	}
}

// Local is an in-process Compute implementation. It keeps registered arrays
// in a symbol table and retains dispatched writes under opaque graph
// handles, mirroring what a remote columnar server would do.
type Local struct {
	mu      sync.Mutex
	opts    LocalOptions
	limiter *rate.Limiter
	symbols map[string]column.Column
	graphs  map[string]*graphData
	seq      uint64
	graphSeq uint64
}

// NewLocal creates a new Local engine.
func NewLocal(optFns ...func(o *LocalOptions)) *Local {
	opts := DefaultLocalOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}

	l := &Local{
		opts:    opts,
		symbols: make(map[string]column.Column),
		graphs:  make(map[string]*graphData),
	}
	if opts.RateLimit != rate.Inf {
		l.limiter = rate.NewLimiter(opts.RateLimit, opts.RateBurst)
	}
	return l
}

// CreateGraph implements Compute.
func (l *Local) CreateGraph(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.graphSeq++
	handle := fmt.Sprintf("graph_%d", l.graphSeq)
	l.graphs[handle] = newGraphData()
	return handle, nil
}

// SortGroup implements Compute.
func (l *Local) SortGroup(ctx context.Context, keys []column.Column) ([]int, []int, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(keys) == 0 {
		return nil, nil, fmt.Errorf("engine: SortGroup requires at least one key column")
	}

	n := keys[0].Len()
	for i, k := range keys[1:] {
		if k.Len() != n {
			return nil, nil, fmt.Errorf("engine: key column %d has %d rows, want %d", i+1, k.Len(), n)
		}
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ia, ib := perm[a], perm[b]
		for _, k := range keys {
			if c := k.Compare(ia, k, ib); c != 0 {
				return c < 0
			}
		}
		return false
	})

	segments := make([]int, 0, n)
	for i := range perm {
		if i == 0 {
			segments = append(segments, 0)
			continue
		}
		same := true
		for _, k := range keys {
			if !k.EqualAt(perm[i], k, perm[i-1]) {
				same = false
				break
			}
		}
		if !same {
			segments = append(segments, i)
		}
	}
	return perm, segments, nil
}

// Membership implements Compute.
func (l *Local) Membership(ctx context.Context, values, universe column.Column) (*roaring.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, universe.Len())
	for i := 0; i < universe.Len(); i++ {
		present[universe.Key(i)] = struct{}{}
	}

	mask := roaring.New()
	for i := 0; i < values.Len(); i++ {
		if _, ok := present[values.Key(i)]; ok {
			mask.Add(uint32(i))
		}
	}
	return mask, nil
}

// Lookup implements Compute.
func (l *Local) Lookup(ctx context.Context, values, universe column.Column) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	positions := make(map[string]int64, universe.Len())
	for i := 0; i < universe.Len(); i++ {
		key := universe.Key(i)
		if _, ok := positions[key]; !ok {
			positions[key] = int64(i)
		}
	}

	out := make([]int64, values.Len())
	for i := 0; i < values.Len(); i++ {
		pos, ok := positions[values.Key(i)]
		if !ok {
			pos = NotFound
		}
		out[i] = pos
	}
	return out, nil
}

// LookupPairs implements Compute.
func (l *Local) LookupPairs(ctx context.Context, src, dst, universeSrc, universeDst []int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(src) != len(dst) {
		return nil, fmt.Errorf("engine: pair columns have %d and %d rows", len(src), len(dst))
	}
	if len(universeSrc) != len(universeDst) {
		return nil, fmt.Errorf("engine: pair universe columns have %d and %d rows", len(universeSrc), len(universeDst))
	}

	type pair struct{ s, d int64 }
	positions := make(map[pair]int64, len(universeSrc))
	for i := range universeSrc {
		p := pair{universeSrc[i], universeDst[i]}
		if _, ok := positions[p]; !ok {
			positions[p] = int64(i)
		}
	}

	out := make([]int64, len(src))
	for i := range src {
		pos, ok := positions[pair{src[i], dst[i]}]
		if !ok {
			pos = NotFound
		}
		out[i] = pos
	}
	return out, nil
}

// DistinctValues implements Compute. Columns are processed by a bounded
// worker group within the single request.
func (l *Local) DistinctValues(ctx context.Context, cols []column.Column) ([]Distinct, error) {
	out := make([]Distinct, len(cols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Parallelism)
	for i, col := range cols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = distinctOne(col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func distinctOne(col column.Column) Distinct {
	first := make(map[string]int, col.Len())
	order := make([]int, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		key := col.Key(i)
		if _, ok := first[key]; ok {
			continue
		}
		first[key] = i
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return col.Compare(order[a], col, order[b]) < 0
	})

	codes := make(map[string]int64, len(order))
	for code, idx := range order {
		codes[col.Key(idx)] = int64(code)
	}

	broadcast := make([]int64, col.Len())
	for i := 0; i < col.Len(); i++ {
		broadcast[i] = codes[col.Key(i)]
	}
	return Distinct{Unique: col.Gather(order), Codes: broadcast}
}

// Store implements Compute.
func (l *Local) Store(ctx context.Context, values column.Column) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	name := fmt.Sprintf("array_%d", l.seq)
	l.symbols[name] = values
	return name, nil
}

// Symbol returns a registered array by name.
func (l *Local) Symbol(name string) (column.Column, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	col, ok := l.symbols[name]
	return col, ok
}

// Dispatch implements Compute.
func (l *Local) Dispatch(ctx context.Context, cmd string, args map[string]string) error {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.graphs[args[ArgGraphName]]
	if !ok {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, args[ArgGraphName])
	}

	indices, err := l.lookupIndices(args[ArgInputIndices])
	if err != nil {
		return err
	}
	names := splitList(args[ArgColumnNames])

	switch cmd {
	case CmdAddNodeLabels:
		return l.storeEncoded(g.nodeArrays, g.nodeMappers, indices, names, args[ArgLabelArrays], args[ArgLabelMappers])
	case CmdAddEdgeRelationships:
		return l.storeEncoded(g.edgeArrays, g.edgeMappers, indices, names, args[ArgRelationshipArrays], args[ArgRelationshipMappers])
	case CmdAddNodeProperties:
		return l.storePlain(g.nodeArrays, indices, names, args[ArgPropertyArrays])
	case CmdAddEdgeProperties:
		return l.storePlain(g.edgeArrays, indices, names, args[ArgPropertyArrays])
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

func (l *Local) lookupIndices(name string) ([]int64, error) {
	col, ok := l.symbols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSymbolNotFound, name)
	}
	if col.IntValues() == nil && col.Len() > 0 {
		return nil, fmt.Errorf("engine: symbol %q is not an index array", name)
	}
	return col.IntValues(), nil
}

func (l *Local) storeEncoded(arrays map[string]Stored, mappers map[string]column.Column, indices []int64, names []string, arrayNames, mapperNames string) error {
	arrayList := splitList(arrayNames)
	mapperList := splitList(mapperNames)
	if len(arrayList) != len(names) || len(mapperList) != len(names) {
		return fmt.Errorf("engine: %d columns but %d arrays and %d mappers", len(names), len(arrayList), len(mapperList))
	}

	for i, name := range names {
		values, ok := l.symbols[arrayList[i]]
		if !ok {
			return fmt.Errorf("%w: %q", ErrSymbolNotFound, arrayList[i])
		}
		mapper, ok := l.symbols[mapperList[i]]
		if !ok {
			return fmt.Errorf("%w: %q", ErrSymbolNotFound, mapperList[i])
		}
		if values.Len() != len(indices) {
			return fmt.Errorf("engine: column %q has %d rows, indices have %d", name, values.Len(), len(indices))
		}
		arrays[name] = Stored{Indices: indices, Values: values}
		mappers[name] = mapper
	}
	return nil
}

func (l *Local) storePlain(arrays map[string]Stored, indices []int64, names []string, arrayNames string) error {
	arrayList := splitList(arrayNames)
	if len(arrayList) != len(names) {
		return fmt.Errorf("engine: %d columns but %d arrays", len(names), len(arrayList))
	}

	for i, name := range names {
		values, ok := l.symbols[arrayList[i]]
		if !ok {
			return fmt.Errorf("%w: %q", ErrSymbolNotFound, arrayList[i])
		}
		if values.Len() != len(indices) {
			return fmt.Errorf("engine: column %q has %d rows, indices have %d", name, values.Len(), len(indices))
		}
		arrays[name] = Stored{Indices: indices, Values: values}
	}
	return nil
}

// NodeArray returns a node-side write retained under a graph handle.
func (l *Local) NodeArray(handle, name string) (Stored, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.graphs[handle]
	if !ok {
		return Stored{}, false
	}
	s, ok := g.nodeArrays[name]
	return s, ok
}

// EdgeArray returns an edge-side write retained under a graph handle.
func (l *Local) EdgeArray(handle, name string) (Stored, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.graphs[handle]
	if !ok {
		return Stored{}, false
	}
	s, ok := g.edgeArrays[name]
	return s, ok
}

// NodeMapper returns the dictionary array stored for a node label column.
func (l *Local) NodeMapper(handle, name string) (column.Column, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.graphs[handle]
	if !ok {
		return column.Column{}, false
	}
	m, ok := g.nodeMappers[name]
	return m, ok
}

// EdgeMapper returns the dictionary array stored for a relationship column.
func (l *Local) EdgeMapper(handle, name string) (column.Column, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.graphs[handle]
	if !ok {
		return column.Column{}, false
	}
	m, ok := g.edgeMappers[name]
	return m, ok
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ListSeparator)
}
