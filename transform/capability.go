// Package transform implements the field transform pipeline (spec.md
// §4.2): one-way coercion of a record between the framework's logical
// shape and a driver's physical shape, driven by a capability record.
package transform

// Capabilities mirrors the subset of the driver contract (spec.md §6.1)
// that governs type coercion. It is a plain value type, not an
// interface, per the teacher's design note: "driver polymorphism is a
// fixed capability set; do not model as inheritance."
type Capabilities struct {
	SupportsBooleans   bool
	SupportsDates      bool
	SupportsJSON       bool
	SupportsJSONB      bool
	SupportsArrays     bool
	SupportsNumericIDs bool
	SupportsNumbers    bool
	// UseNumberID is true when the adapter's ID policy is useNumberId,
	// which drives reference-field coercion on both sides of the
	// pipeline (spec.md §4.2 step 4, §4.4).
	UseNumberID bool
}
