/*
Package nodeid allocates identifiers for workflow nodes and edges.

Node ids are decimal strings handed out by a monotonic Sequence, e.g. `1`,
`2`, `3`. Deleting a node never returns its id to the sequence. Edge ids
are derived from their endpoints, e.g. `e1-2`, with a numeric suffix when
the same pair is connected more than once, e.g. `e1-2-2`.

This package centralizes the id format so the graph store, the engine and
the persistence codecs agree on it.
*/
package nodeid
