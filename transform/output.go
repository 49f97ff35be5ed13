package transform

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/schema/field"
)

// Output applies the read-direction inverse of Input (spec.md §4.2) to
// one physical-keyed driver row, producing a logical-keyed record. When
// selectFields is non-empty, only those logical fields (plus any the
// caller explicitly asked for) are included; otherwise every known field
// present in the row is included.
func Output(m schema.Model, caps Capabilities, row map[string]any, selectFields []string) (map[string]any, error) {
	var want map[string]bool
	if len(selectFields) > 0 {
		want = make(map[string]bool, len(selectFields))
		for _, f := range selectFields {
			want[f] = true
		}
	}

	out := make(map[string]any, len(m.Fields))
	for logical, fd := range m.Fields {
		if want != nil && !want[logical] {
			continue
		}
		physical := fd.FieldName
		if physical == "" {
			physical = logical
		}
		raw, ok := row[physical]
		if !ok {
			continue
		}

		value, err := coerceOutput(logical, fd, caps, raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", logical, err)
		}

		if hooks := fd.TransformHooks(); hooks.Output != nil {
			value = hooks.Output(value)
		}
		out[logical] = value
	}
	return out, nil
}

func coerceOutput(logical string, fd field.Descriptor, caps Capabilities, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	// spec.md §4.2: "id column: always coerced to string regardless of
	// underlying type" — applies before any other type-specific rule.
	if logical == "id" {
		return stringifyID(raw), nil
	}

	switch fd.Type {
	case field.TypeBoolean:
		if !caps.SupportsBooleans {
			return boolFromStored(raw), nil
		}
		b, ok := raw.(bool)
		if !ok {
			return raw, nil
		}
		return b, nil

	case field.TypeDate:
		if !caps.SupportsDates {
			s, ok := raw.(string)
			if !ok {
				return raw, nil
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("parsing stored date %q: %w", s, err)
			}
			return t, nil
		}
		return raw, nil

	case field.TypeJSON:
		if !caps.SupportsJSON && !caps.SupportsJSONB {
			s, ok := raw.(string)
			if !ok {
				return raw, nil
			}
			var v any
			if err := json.Unmarshal([]byte(s), &v); err != nil {
				// spec.md §4.2: "treat parse failure as null".
				return nil, nil
			}
			return v, nil
		}
		return raw, nil

	case field.TypeStringSlice, field.TypeNumberSlice:
		if !caps.SupportsArrays {
			s, ok := raw.(string)
			if !ok {
				return raw, nil
			}
			var v any
			if err := json.Unmarshal([]byte(s), &v); err != nil {
				return nil, nil
			}
			return v, nil
		}
		return raw, nil

	case field.TypeNumber:
		if !caps.SupportsNumbers {
			if s, ok := raw.(string); ok {
				var f float64
				if _, err := fmt.Sscanf(s, "%g", &f); err == nil {
					return f, nil
				}
			}
		}
		return raw, nil

	default:
		return raw, nil
	}
}

func boolFromStored(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case int64:
		return v == 1
	case float64:
		return v == 1
	case string:
		return v == "1"
	default:
		return false
	}
}

func stringifyID(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
