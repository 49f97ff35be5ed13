package schema

import (
	"fmt"
	"strings"

	core "github.com/better-auth/adaptercore"
)

// Registry wraps a composed Schema and exposes the four pure resolution
// functions from spec.md §4.1.
type Registry struct {
	schema Schema
	// modelByPhysical indexes models by their physical name for O(1)
	// reverse lookup.
	modelByPhysical map[string]string
	// usePlural mirrors the Options.UsePlural the schema was composed
	// with; it gates GetDefaultModelName's plural/singular tie-break
	// (spec.md §4.1 "Tie-breaks": "When usePlural is enabled").
	usePlural bool
}

// NewRegistry builds a Registry over an already-composed Schema. opts
// should be the same Options the schema was composed with, so the
// registry's name-resolution tie-breaks agree with how physical names
// were derived.
func NewRegistry(s Schema, opts Options) *Registry {
	r := &Registry{schema: s, modelByPhysical: make(map[string]string, len(s)), usePlural: opts.UsePlural}
	for logical, m := range s {
		r.modelByPhysical[m.ModelName] = logical
	}
	return r
}

// Schema returns the composed schema backing this registry.
func (r *Registry) Schema() Schema { return r.schema }

// Model returns the Model for a logical name, or (_, false) if absent.
func (r *Registry) Model(logical string) (Model, bool) {
	m, ok := r.schema[logical]
	return m, ok
}

// GetDefaultModelName accepts a logical name, a physical modelName, or a
// pluralized form of either, and returns the logical key used to index
// the schema. Fails with ErrSchemaLookup when no match is found.
func (r *Registry) GetDefaultModelName(name string) (string, error) {
	// Plural/singular tie-break: if name ends in "s", try the singular
	// form first, then fall back to a literal second pass below. Only
	// applies when the schema was composed with UsePlural
	// (spec.md §4.1 "Tie-breaks": "When usePlural is enabled").
	if r.usePlural && strings.HasSuffix(name, "s") {
		singular := singularize(name)
		if _, ok := r.schema[singular]; ok {
			return singular, nil
		}
		if logical, ok := r.modelByPhysical[singular]; ok {
			return logical, nil
		}
	}
	if _, ok := r.schema[name]; ok {
		return name, nil
	}
	if logical, ok := r.modelByPhysical[name]; ok {
		return logical, nil
	}
	return "", &core.SchemaLookupError{Name: name}
}

// GetModelName returns the physical name the driver should see for a
// logical model.
func (r *Registry) GetModelName(logical string) (string, error) {
	m, ok := r.schema[logical]
	if !ok {
		return "", &core.SchemaLookupError{Name: logical}
	}
	return m.ModelName, nil
}

// GetDefaultFieldName accepts either a logical field key or a physical
// fieldName on the given (already-resolved logical) model and returns the
// logical key. "id"/"_id" are always normalized to "id".
func (r *Registry) GetDefaultFieldName(model, field string) (string, error) {
	if field == "id" || field == "_id" {
		return "id", nil
	}
	m, ok := r.schema[model]
	if !ok {
		return "", &core.SchemaLookupError{Name: model}
	}
	if _, ok := m.Fields[field]; ok {
		return field, nil
	}
	for logical, fd := range m.Fields {
		if fd.FieldName == field {
			return logical, nil
		}
	}
	return "", &core.SchemaLookupError{Model: model, Field: field, Name: field}
}

// GetFieldName returns the physical column name for a logical field on a
// logical model.
func (r *Registry) GetFieldName(model, field string) (string, error) {
	if field == "id" {
		return "id", nil
	}
	m, ok := r.schema[model]
	if !ok {
		return "", &core.SchemaLookupError{Name: model}
	}
	fd, ok := m.Fields[field]
	if !ok {
		return "", &core.SchemaLookupError{Model: model, Field: field, Name: field}
	}
	if fd.FieldName != "" {
		return fd.FieldName, nil
	}
	return field, nil
}

// MustModel panics if the logical model does not exist. Reserved for
// package-internal call sites that have already validated the name.
func (r *Registry) MustModel(logical string) Model {
	m, ok := r.schema[logical]
	if !ok {
		panic(fmt.Sprintf("adaptercore/schema: unknown model %q", logical))
	}
	return m
}
