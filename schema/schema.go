// Package schema implements the schema registry (spec.md §4.1): composing
// the base auth schema with plugin-contributed schemas and user overrides,
// and exposing bidirectional logical/physical name resolution.
package schema

import (
	"fmt"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/schema/field"
)

// Model is one entry of a Schema: a logical model (table/collection) and
// its fields (spec.md §3).
type Model struct {
	// ModelName is the physical table/collection name. Defaults to the
	// logical key it is registered under.
	ModelName string
	// Fields maps logical field name to its descriptor.
	Fields map[string]field.Descriptor
	// Order is a sort hint used by the migration planner so that a
	// referenced model is created before the models whose foreign keys
	// point at it.
	Order int
	// DisableMigrations excludes this model from migration planning.
	DisableMigrations bool
}

// Schema is the composed mapping from logical model name to Model.
type Schema map[string]Model

// idDescriptor is injected into every model. Its physical representation
// is decided by the adapter's ID policy, not by the schema itself; the
// descriptor here only marks the field as present and required. It
// accepts input, so the factory's generated id or a forceAllowId value
// passes through the input transform.
var idDescriptor = field.Descriptor{
	Type:      field.TypeString,
	FieldName: "id",
}

func init() {
	b := field.String("id")
	idDescriptor = b.Descriptor()
}

// withID returns a copy of fields with an "id" entry injected if absent.
func withID(fields map[string]field.Descriptor) map[string]field.Descriptor {
	if _, ok := fields["id"]; ok {
		return fields
	}
	out := make(map[string]field.Descriptor, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["id"] = idDescriptor
	return out
}

// ModelOptions carries user-supplied overrides for a single model: a
// renamed physical table, renamed/overridden fields, and additional
// fields merged in last (spec.md §4.1 composition rules).
type ModelOptions struct {
	// ModelName overrides the physical table/collection name.
	ModelName string
	// FieldNames overrides a logical field's physical column name,
	// keyed by logical field name.
	FieldNames map[string]string
	// AdditionalFields are merged into the model's Fields last, winning
	// over anything contributed by base or plugin schemas.
	AdditionalFields map[string]field.Descriptor
}

// Options configures schema composition.
type Options struct {
	// UsePlural pluralizes every model's physical name, including one
	// set by an explicit override, using English inflection rules.
	UsePlural bool
	// Models carries per-logical-model overrides, keyed by logical name.
	Models map[string]ModelOptions
}

// Compose merges the base schema with zero or more plugin-contributed
// schemas and applies user overrides, producing the final Schema used for
// the lifetime of the framework instance (spec.md §3, "constructed once
// at framework initialization").
//
// Composition order: base, then plugins in registration order (plugin
// fields shallow-merge into the matching model; a plugin may not override
// a base field that is required), then user overrides (model/field
// renames and additional fields, applied last so they always win).
func Compose(base Schema, plugins []Schema, opts Options) (Schema, error) {
	out := make(Schema, len(base))
	for name, m := range base {
		m.Fields = withID(cloneFields(m.Fields))
		out[name] = m
	}

	for _, plugin := range plugins {
		for name, pm := range plugin {
			bm, exists := out[name]
			if !exists {
				pm.Fields = withID(cloneFields(pm.Fields))
				out[name] = pm
				continue
			}
			merged := cloneFields(bm.Fields)
			for fname, fdesc := range pm.Fields {
				if existing, ok := merged[fname]; ok && existing.Required() && fname != "id" {
					return nil, fmt.Errorf("%w: plugin cannot override required base field %q.%q", core.ErrSchemaLookup, name, fname)
				}
				merged[fname] = fdesc
			}
			bm.Fields = merged
			if pm.ModelName != "" {
				bm.ModelName = pm.ModelName
			}
			out[name] = bm
		}
	}

	for name, mo := range opts.Models {
		m, ok := out[name]
		if !ok {
			return nil, fmt.Errorf("%w: override for unknown model %q", core.ErrSchemaLookup, name)
		}
		if mo.ModelName != "" {
			m.ModelName = mo.ModelName
		}
		fields := cloneFields(m.Fields)
		for logical, physical := range mo.FieldNames {
			fd, ok := fields[logical]
			if !ok {
				return nil, fmt.Errorf("%w: field-name override for unknown field %q.%q", core.ErrSchemaLookup, name, logical)
			}
			fd.FieldName = physical
			fields[logical] = fd
		}
		for logical, fd := range mo.AdditionalFields {
			fields[logical] = fd
		}
		m.Fields = fields
		out[name] = m
	}

	for name, m := range out {
		physical := m.ModelName
		if physical == "" {
			physical = name
		}
		if opts.UsePlural {
			physical = pluralize(physical)
		}
		m.ModelName = physical
		out[name] = m
	}

	if err := validateReferences(out); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneFields(in map[string]field.Descriptor) map[string]field.Descriptor {
	out := make(map[string]field.Descriptor, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// validateReferences enforces spec.md §3: "A references target must
// resolve to an existing model's id (or any field if explicitly given)
// after full plugin composition."
func validateReferences(s Schema) error {
	for model, m := range s {
		for fname, fd := range m.Fields {
			ref := fd.ReferenceTo()
			if ref == nil {
				continue
			}
			target, ok := s[ref.Model]
			if !ok {
				return fmt.Errorf("%w: %s.%s references unknown model %q", core.ErrSchemaLookup, model, fname, ref.Model)
			}
			if _, ok := target.Fields[ref.Field]; !ok {
				return fmt.Errorf("%w: %s.%s references unknown field %q.%q", core.ErrSchemaLookup, model, fname, ref.Model, ref.Field)
			}
		}
	}
	return nil
}
