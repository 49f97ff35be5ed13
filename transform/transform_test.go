package transform_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/schema/field"
	"github.com/better-auth/adaptercore/transform"
)

func userModel() schema.Model {
	return schema.Model{
		Fields: map[string]field.Descriptor{
			"id":            field.String("id").Descriptor(),
			"emailVerified": field.Bool("email_verified").Descriptor(),
			"createdAt":     field.Date("created_at").Descriptor(),
			"metadata":      field.JSON("metadata").Optional().Descriptor(),
			"roles":         field.StringSlice("roles").Optional().Descriptor(),
			"age":           field.Number("age").Optional().Descriptor(),
		},
	}
}

func fullCaps() transform.Capabilities {
	return transform.Capabilities{
		SupportsBooleans:   true,
		SupportsDates:      true,
		SupportsJSON:       true,
		SupportsArrays:     true,
		SupportsNumericIDs: true,
		SupportsNumbers:    true,
	}
}

// TestBooleanNoDriverSupport covers scenario 2 from spec.md §8: a
// no-boolean driver stores an integer, and the output round-trips back
// to a Go bool.
func TestBooleanNoDriverSupport(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()
	caps.SupportsBooleans = false

	in, err := transform.Input(m, caps, transform.InputOptions{
		Action: transform.ActionCreate,
		Data:   map[string]any{"emailVerified": true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, in.Data["email_verified"])

	out, err := transform.Output(m, caps, in.Data, nil)
	require.NoError(t, err)
	assert.Equal(t, true, out["emailVerified"])
}

func TestBooleanNoNumericSupportEither(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()
	caps.SupportsBooleans = false
	caps.SupportsNumbers = false

	in, err := transform.Input(m, caps, transform.InputOptions{
		Action: transform.ActionCreate,
		Data:   map[string]any{"emailVerified": false},
	})
	require.NoError(t, err)
	assert.Equal(t, "0", in.Data["email_verified"])
}

func TestDateRoundTripAsISOString(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()
	caps.SupportsDates = false

	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	in, err := transform.Input(m, caps, transform.InputOptions{
		Action: transform.ActionCreate,
		Data:   map[string]any{"createdAt": now},
	})
	require.NoError(t, err)
	stored, ok := in.Data["created_at"].(string)
	require.True(t, ok)

	out, err := transform.Output(m, caps, map[string]any{"created_at": stored}, nil)
	require.NoError(t, err)
	assert.True(t, now.Equal(out["createdAt"].(time.Time)))
}

func TestJSONRoundTripWhenUnsupported(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()
	caps.SupportsJSON = false

	payload := map[string]any{"plan": "pro"}
	in, err := transform.Input(m, caps, transform.InputOptions{
		Action: transform.ActionCreate,
		Data:   map[string]any{"metadata": payload},
	})
	require.NoError(t, err)
	assert.IsType(t, "", in.Data["metadata"])

	out, err := transform.Output(m, caps, in.Data, nil)
	require.NoError(t, err)
	assert.Equal(t, "pro", out["metadata"].(map[string]any)["plan"])
}

func TestJSONParseFailureBecomesNil(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()
	caps.SupportsJSON = false

	out, err := transform.Output(m, caps, map[string]any{"metadata": "{not json"}, nil)
	require.NoError(t, err)
	assert.Nil(t, out["metadata"])
}

// TestIDAlwaysString covers "id is always observed as a string at the API
// boundary regardless of useNumberId" from spec.md §8.
func TestIDAlwaysString(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()

	out, err := transform.Output(m, caps, map[string]any{"id": int64(42)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "42", out["id"])
}

func TestForceAllowIDAndDefaultDrop(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()

	dropped, err := transform.Input(m, caps, transform.InputOptions{
		Action: transform.ActionCreate,
		Data:   map[string]any{"id": "caller-supplied"},
	})
	require.NoError(t, err)
	assert.NotContains(t, dropped.Data, "id")
	assert.NotEmpty(t, dropped.Warnings)

	allowed, err := transform.Input(m, caps, transform.InputOptions{
		Action:       transform.ActionCreate,
		Data:         map[string]any{"id": "caller-supplied"},
		ForceAllowID: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "caller-supplied", allowed.Data["id"])
}

func TestPresetIDInjectedWhenAbsent(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()

	res, err := transform.Input(m, caps, transform.InputOptions{
		Action:   transform.ActionCreate,
		Data:     map[string]any{},
		PresetID: "generated-id",
	})
	require.NoError(t, err)
	assert.Equal(t, "generated-id", res.Data["id"])
}

func TestSelectFiltersOutputFields(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()

	out, err := transform.Output(m, caps, map[string]any{
		"id":             "1",
		"email_verified": true,
		"age":            30,
	}, []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "1"}, out)
}

func TestOptionalFieldNullPreserved(t *testing.T) {
	t.Parallel()

	m := userModel()
	caps := fullCaps()

	res, err := transform.Input(m, caps, transform.InputOptions{
		Action: transform.ActionCreate,
		Data:   map[string]any{"age": nil},
	})
	require.NoError(t, err)
	val, ok := res.Data["age"]
	assert.True(t, ok)
	assert.Nil(t, val)
}

func TestServerManagedFieldIgnoresCallerValue(t *testing.T) {
	t.Parallel()

	m := schema.Model{
		Fields: map[string]field.Descriptor{
			"updatedAt": field.Date("updated_at").
				Immutable().
				DefaultFunc(func() any { return time.Unix(0, 0) }).
				OnUpdate(func() any { return time.Unix(1, 0) }).
				Descriptor(),
		},
	}
	caps := fullCaps()

	res, err := transform.Input(m, caps, transform.InputOptions{
		Action: transform.ActionCreate,
		Data:   map[string]any{"updatedAt": time.Unix(99, 0)},
	})
	require.NoError(t, err)
	assert.True(t, time.Unix(0, 0).Equal(res.Data["updated_at"].(time.Time)))
}
