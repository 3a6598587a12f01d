// Package propgraph builds compact, consistently indexed property graphs on
// top of large columnar tables.
//
// Callers supply external identifiers and attribute columns; propgraph turns
// them into dense internal vertex and edge identifiers, dictionary-encoded
// categorical columns (vertex labels, edge relationships), and property
// tables aligned to the canonical internal order. Bulk columnar work (sort,
// group, set membership, exact lookup, code broadcast) is delegated to a
// pluggable compute backend; engine.Local is the in-process reference
// implementation.
//
// # Quick start
//
//	ctx := context.Background()
//	g, err := propgraph.NewBuilder().Build()
//	if err != nil {
//	    panic(err)
//	}
//
//	_, err = g.AddEdges(ctx,
//	    column.Strings("alice", "alice", "bob"),
//	    column.Strings("bob", "carol", "carol"))
//	if err != nil {
//	    panic(err)
//	}
//
//	labels := column.MustTable(
//	    "nodes", column.Strings("alice", "bob"),
//	    "type", column.Strings("Person", "Person"),
//	)
//	if _, err := g.AddNodeLabels(ctx, labels); err != nil {
//	    panic(err)
//	}
//
//	src, dst, err := g.FindPathsOfLengthOne(ctx,
//	    column.MustTable("type", column.Strings("Person")),
//	    column.Table{})
//
// # Loads and drops
//
// Rows whose key fails to resolve against the canonical universe are dropped
// silently by default; every load reports drop counts in its LoadResult, and
// strict mode (Builder.Strict) turns any drop into an error before backend
// writes are attempted.
//
// # Concurrency
//
// A Graph provides no locking: callers must serialize mutating operations on
// one instance themselves. The compute backend owns cancellation, timeouts
// and pacing.
package propgraph
