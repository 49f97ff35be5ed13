// Package where implements the where-clause compiler (spec.md §4.3): it
// normalizes a caller-supplied predicate list into a canonical,
// physical-named form that adapters translate into their native query
// language.
package where

import (
	"fmt"

	"golang.org/x/text/cases"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/schema"
)

var fold = cases.Fold()

// Operator is the closed set of comparison operators a predicate may use.
type Operator string

const (
	EQ         Operator = "eq"
	NE         Operator = "ne"
	LT         Operator = "lt"
	LTE        Operator = "lte"
	GT         Operator = "gt"
	GTE        Operator = "gte"
	In         Operator = "in"
	NotIn      Operator = "not_in"
	Contains   Operator = "contains"
	StartsWith Operator = "starts_with"
	EndsWith   Operator = "ends_with"
)

// Connector joins a predicate to the rest of the list.
type Connector string

const (
	And Connector = "AND"
	Or  Connector = "OR"
)

// Predicate is a single caller-supplied condition, keyed by logical
// field name (spec.md §4.3 "Input").
type Predicate struct {
	Field           string
	Value           any
	Operator        Operator  // defaults to EQ when empty
	Connector       Connector // defaults to And when empty
	CaseInsensitive bool      // fold string comparisons (e.g. email lookups)
}

// Compiled is a normalized predicate with a physical field name and a
// value coerced for the target storage (spec.md §4.3 "Output" / §6.2).
type Compiled struct {
	Field           string
	Value           any
	Operator        Operator
	Connector       Connector
	CaseInsensitive bool
}

var validOperators = map[Operator]bool{
	EQ: true, NE: true, LT: true, LTE: true, GT: true, GTE: true,
	In: true, NotIn: true, Contains: true, StartsWith: true, EndsWith: true,
}

// Compile resolves every predicate's field to its physical name and
// coerces values, returning the compiled list in the same order it was
// given. model is the logical model name the predicates apply to;
// useNumberID indicates the adapter's ID policy is numeric, which drives
// id/reference value coercion.
func Compile(reg *schema.Registry, model string, preds []Predicate, useNumberID bool) ([]Compiled, error) {
	m, ok := reg.Model(model)
	if !ok {
		return nil, &core.SchemaLookupError{Name: model}
	}

	out := make([]Compiled, 0, len(preds))
	for _, p := range preds {
		op := p.Operator
		if op == "" {
			op = EQ
		}
		if !validOperators[op] {
			return nil, &core.InvalidArgumentError{Operator: string(op), Value: p.Value, Reason: "unknown operator"}
		}
		conn := p.Connector
		if conn == "" {
			conn = And
		}

		logical, err := reg.GetDefaultFieldName(model, p.Field)
		if err != nil {
			// p.Field may already be a logical name not present as a
			// physical alias; fall back to treating it as logical
			// directly if it exists on the model.
			if _, ok := m.Fields[p.Field]; ok {
				logical = p.Field
			} else {
				return nil, err
			}
		}
		physical, err := reg.GetFieldName(model, logical)
		if err != nil {
			return nil, err
		}

		value := p.Value
		if op == In || op == NotIn {
			arr, ok := asSlice(value)
			if !ok {
				return nil, &core.InvalidArgumentError{Operator: string(op), Value: value, Reason: "in/not_in requires an array value"}
			}
			value = arr
		}

		isIDField := logical == "id"
		var referencesNumericModel bool
		if fd, ok := m.Fields[logical]; ok {
			referencesNumericModel = fd.ReferenceTo() != nil
		}
		if useNumberID && (isIDField || referencesNumericModel) {
			coerced, err := coerceWhereValue(value)
			if err != nil {
				return nil, err
			}
			value = coerced
		}

		if p.CaseInsensitive {
			value = Fold(value)
		}

		out = append(out, Compiled{Field: physical, Value: value, Operator: op, Connector: conn, CaseInsensitive: p.CaseInsensitive})
	}
	return out, nil
}

// Fold case-folds string values (and the elements of string slices) using
// Unicode case folding. Compile applies it to predicate values when
// CaseInsensitive is set; adapters that can't push case-insensitivity
// down to the store (e.g. memadapter) call it again on the stored value
// before comparing.
func Fold(v any) any {
	switch val := v.(type) {
	case string:
		return fold.String(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = Fold(e)
		}
		return out
	default:
		return v
	}
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

func coerceWhereValue(v any) (any, error) {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			c, err := coerceWhereValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case string:
		var n int64
		if _, err := fmt.Sscanf(val, "%d", &n); err != nil {
			return nil, fmt.Errorf("%w: cannot coerce %q to numeric id", core.ErrInvalidArgument, val)
		}
		return n, nil
	default:
		return v, nil
	}
}
