package adaptercore

// Record is one row/document in the framework's logical shape: a map
// from logical field name to value. It is the unit every operation in
// this module reads or writes.
type Record = map[string]any

// SortField orders findMany results (spec.md §4.4).
type SortField struct {
	Field string
	Desc  bool
}

// JoinSpec requests a related model be attached to each result row
// (spec.md §4.5). The zero value (no Limit, no Select) requests every
// field of every related row with no per-parent cap — the "related:
// true" shorthand from the driver contract (§6.1); presence of a key in
// a join request map is what signals the join, not any field on this
// struct.
type JoinSpec struct {
	// Limit caps the number of related rows attached per parent. Only
	// meaningful for one-to-many relations.
	Limit int
	// Select forwards an inner field selection to the secondary query.
	Select []string
}
