package transform

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/schema/field"
)

// Action distinguishes a create from an update for the purpose of
// default-value and onUpdate application.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// InputOptions parameterizes Input beyond the raw caller payload.
type InputOptions struct {
	Action Action
	// Data is the caller-supplied payload, keyed by logical field name.
	Data map[string]any
	// ForceAllowID lets the caller supply its own id on create; absent
	// this, any "id" key in Data is dropped (spec.md §4.2 contracts).
	ForceAllowID bool
	// PresetID is injected as the id value when the caller did not
	// supply one, typically the adapter's generated id. Left nil when
	// the driver is expected to supply its own id (auto-increment).
	PresetID any
}

// Result is the outcome of Input: the physical-keyed payload ready for
// the driver, plus any non-fatal warnings (e.g. a dropped id).
type Result struct {
	Data     map[string]any
	Warnings []string
}

// Input applies the create/update transform pipeline described in
// spec.md §4.2 to one model, producing a physical-keyed payload.
func Input(m schema.Model, caps Capabilities, opts InputOptions) (Result, error) {
	res := Result{Data: make(map[string]any, len(m.Fields))}

	working := make(map[string]any, len(opts.Data))
	for k, v := range opts.Data {
		working[k] = v
	}

	if opts.Action == ActionCreate {
		if _, ok := working["id"]; ok && !opts.ForceAllowID {
			delete(working, "id")
			res.Warnings = append(res.Warnings, "id field dropped from create payload; pass ForceAllowID to override")
		}
		if opts.PresetID != nil {
			if _, ok := working["id"]; !ok {
				working["id"] = opts.PresetID
			}
		}
	}

	for logical, fd := range m.Fields {
		v, supplied := working[logical]
		if supplied && !fd.Input() {
			// Server-managed field: caller-supplied value is ignored,
			// but defaults/onUpdate below still apply.
			supplied = false
		}
		if !supplied {
			switch opts.Action {
			case ActionCreate:
				if dv, ok := fd.DefaultValue(); ok {
					v, supplied = dv, true
				}
			case ActionUpdate:
				if ov, ok := fd.OnUpdateValue(); ok {
					v, supplied = ov, true
				}
			}
		}
		if !supplied {
			continue
		}

		if hooks := fd.TransformHooks(); hooks.Input != nil && v != nil {
			v = hooks.Input(v)
		}

		coerced, err := coerceInput(fd, v, caps)
		if err != nil {
			return Result{}, fmt.Errorf("field %q: %w", logical, err)
		}

		key := fd.FieldName
		if key == "" {
			key = logical
		}
		res.Data[key] = coerced
	}

	return res, nil
}

// coerceInput applies the capability-driven type coercions of spec.md
// §4.2 step 4, in the order documented there.
func coerceInput(fd field.Descriptor, v any, caps Capabilities) (any, error) {
	if v == nil {
		return nil, nil
	}

	if ref := fd.ReferenceTo(); ref != nil && caps.UseNumberID {
		return coerceToNumeric(v)
	}

	switch fd.Type {
	case field.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return v, nil
		}
		if !caps.SupportsBooleans {
			n := 0
			if b {
				n = 1
			}
			if !caps.SupportsNumbers {
				return fmt.Sprintf("%d", n), nil
			}
			return n, nil
		}
		return b, nil

	case field.TypeDate:
		if !caps.SupportsDates {
			t, ok := asTime(v)
			if !ok {
				return v, nil
			}
			return t.UTC().Format(time.RFC3339Nano), nil
		}
		return v, nil

	case field.TypeJSON:
		if !caps.SupportsJSON && !caps.SupportsJSONB {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("serializing json field: %w", err)
			}
			return string(b), nil
		}
		return v, nil

	case field.TypeStringSlice, field.TypeNumberSlice:
		if !caps.SupportsArrays {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("serializing array field: %w", err)
			}
			return string(b), nil
		}
		return v, nil

	case field.TypeNumber:
		if !caps.SupportsNumbers {
			return fmt.Sprintf("%v", v), nil
		}
		return v, nil

	default:
		return v, nil
	}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	default:
		return time.Time{}, false
	}
}

func coerceToNumeric(v any) (any, error) {
	switch val := v.(type) {
	case string:
		var n int64
		if _, err := fmt.Sscanf(val, "%d", &n); err != nil {
			return nil, fmt.Errorf("cannot coerce %q to numeric id: %w", val, err)
		}
		return n, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			n, err := coerceToNumeric(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}
