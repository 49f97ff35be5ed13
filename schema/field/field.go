// Package field provides fluent builders for defining the fields of a
// schema model, mirroring the ergonomics of a generated-ORM field DSL but
// producing a plain, runtime-composable descriptor instead of driving code
// generation.
//
// Field names follow storage conventions (the physical/column name); the
// logical name used in application code is the key the field is declared
// under in a Model's Fields map.
//
//	field.String("email"),
//	field.Bool("email_verified").Default(false),
//	field.JSON("metadata"),
package field

// Type enumerates the closed set of logical field types a model may
// declare (spec §3, FieldAttribute.type).
type Type uint8

const (
	TypeString Type = iota
	TypeNumber
	TypeBoolean
	TypeDate
	TypeJSON
	TypeStringSlice
	TypeNumberSlice
)

// String returns the type's canonical name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	case TypeJSON:
		return "json"
	case TypeStringSlice:
		return "string[]"
	case TypeNumberSlice:
		return "number[]"
	default:
		return "unknown"
	}
}

// Reference describes a foreign-key relationship from a field to another
// model's field (spec §3, FieldAttribute.references).
type Reference struct {
	Model    string // logical model name
	Field    string // logical field name on the referenced model; defaults to "id"
	OnDelete string // "cascade" (default), "set null", "restrict", "no action"
}

// Transform holds user-supplied input/output hooks for a field.
type Transform struct {
	Input  func(v any) any
	Output func(v any) any
}

// Descriptor is the immutable, composable description of one field. It is
// built via the fluent builder below and consumed by the schema registry
// when composing the final model.
type Descriptor struct {
	Type         Type
	FieldName    string // physical column name; defaults to the logical key
	required     bool
	unique       bool
	sortable     bool
	bigint       bool
	input        bool
	reference    *Reference
	defaultValue any
	defaultFunc  func() any
	onUpdate     func() any
	transform    Transform
}

// Required reports whether the field must be supplied by the caller on
// create (default true, see builder constructors).
func (d Descriptor) Required() bool { return d.required }

// Unique reports whether the field carries a uniqueness constraint.
func (d Descriptor) Unique() bool { return d.unique }

// Sortable hints a wider varchar width in SQL dialects for range queries.
func (d Descriptor) Sortable() bool { return d.sortable }

// BigInt reports whether a numeric field should use a 64-bit column.
func (d Descriptor) BigInt() bool { return d.bigint }

// Input reports whether the field accepts caller-supplied values on
// create/update. Server-managed fields (e.g. timestamps) set this false;
// the injected id field accepts input.
func (d Descriptor) Input() bool { return d.input }

// ReferenceTo returns the field's foreign-key target, or nil.
func (d Descriptor) ReferenceTo() *Reference { return d.reference }

// DefaultValue computes the field's default for a create call that did
// not supply a value. A literal default is returned as-is; a functional
// default is invoked. Returns (nil, false) when no default is declared.
func (d Descriptor) DefaultValue() (any, bool) {
	switch {
	case d.defaultFunc != nil:
		return d.defaultFunc(), true
	case d.defaultValue != nil:
		return d.defaultValue, true
	default:
		return nil, false
	}
}

// OnUpdateValue computes the field's onUpdate value for an update call
// that did not supply one. Returns (nil, false) when none is declared.
func (d Descriptor) OnUpdateValue() (any, bool) {
	if d.onUpdate == nil {
		return nil, false
	}
	return d.onUpdate(), true
}

// TransformHooks returns the user-declared input/output transform hooks.
func (d Descriptor) TransformHooks() Transform { return d.transform }

// Builder is the fluent construction type returned by the type
// constructors (String, Number, …). Each method returns the receiver to
// allow chaining.
type Builder struct {
	d Descriptor
}

func newBuilder(t Type) *Builder {
	return &Builder{d: Descriptor{Type: t, required: true, input: true}}
}

// String declares a string field.
func String(fieldName string) *Builder { b := newBuilder(TypeString); b.d.FieldName = fieldName; return b }

// Number declares a numeric field.
func Number(fieldName string) *Builder { b := newBuilder(TypeNumber); b.d.FieldName = fieldName; return b }

// Bool declares a boolean field.
func Bool(fieldName string) *Builder { b := newBuilder(TypeBoolean); b.d.FieldName = fieldName; return b }

// Date declares a timestamp field.
func Date(fieldName string) *Builder { b := newBuilder(TypeDate); b.d.FieldName = fieldName; return b }

// JSON declares a JSON-valued field.
func JSON(fieldName string) *Builder { b := newBuilder(TypeJSON); b.d.FieldName = fieldName; return b }

// StringSlice declares a string-array field.
func StringSlice(fieldName string) *Builder {
	b := newBuilder(TypeStringSlice)
	b.d.FieldName = fieldName
	return b
}

// NumberSlice declares a number-array field.
func NumberSlice(fieldName string) *Builder {
	b := newBuilder(TypeNumberSlice)
	b.d.FieldName = fieldName
	return b
}

// Optional marks the field as not required on create.
func (b *Builder) Optional() *Builder { b.d.required = false; return b }

// Unique adds a uniqueness constraint.
func (b *Builder) Unique() *Builder { b.d.unique = true; return b }

// Sortable hints that SQL dialects should size this column for ordering
// (wider varchar rather than a minimal one).
func (b *Builder) Sortable() *Builder { b.d.sortable = true; return b }

// BigInt requests a 64-bit column for a numeric field.
func (b *Builder) BigInt() *Builder { b.d.bigint = true; return b }

// Immutable marks the field as server-managed: it is never accepted from
// callers on create or update.
func (b *Builder) Immutable() *Builder { b.d.input = false; return b }

// Default declares a literal default value applied on create when the
// caller omits the field.
func (b *Builder) Default(v any) *Builder { b.d.defaultValue = v; return b }

// DefaultFunc declares a computed default invoked once per create.
func (b *Builder) DefaultFunc(fn func() any) *Builder { b.d.defaultFunc = fn; return b }

// OnUpdate declares a computed value applied on update when the caller
// omits the field (e.g. an updatedAt timestamp).
func (b *Builder) OnUpdate(fn func() any) *Builder { b.d.onUpdate = fn; return b }

// References declares a foreign key to another model's field (defaults
// to that model's id).
func (b *Builder) References(model string, opts ...func(*Reference)) *Builder {
	ref := &Reference{Model: model, Field: "id", OnDelete: "cascade"}
	for _, opt := range opts {
		opt(ref)
	}
	b.d.reference = ref
	return b
}

// OnDeleteRef sets the ON DELETE action for a References() call.
func OnDeleteRef(action string) func(*Reference) {
	return func(r *Reference) { r.OnDelete = action }
}

// RefField overrides the referenced field (default "id").
func RefField(name string) func(*Reference) {
	return func(r *Reference) { r.Field = name }
}

// TransformInput declares a user hook applied to the value before it is
// written through the driver.
func (b *Builder) TransformInput(fn func(v any) any) *Builder { b.d.transform.Input = fn; return b }

// TransformOutput declares a user hook applied to the value after it is
// read back from the driver, as the final step of output transformation.
func (b *Builder) TransformOutput(fn func(v any) any) *Builder { b.d.transform.Output = fn; return b }

// Descriptor finalizes the builder into an immutable Descriptor.
func (b *Builder) Descriptor() Descriptor { return b.d }
