package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/schema/field"
)

func TestComposeInjectsID(t *testing.T) {
	t.Parallel()

	s, err := schema.Compose(schema.Base(), nil, schema.Options{})
	require.NoError(t, err)

	for name, m := range s {
		_, ok := m.Fields["id"]
		assert.Truef(t, ok, "model %q missing injected id field", name)
	}
}

func TestComposeModelAndFieldOverrides(t *testing.T) {
	t.Parallel()

	opts := schema.Options{
		Models: map[string]schema.ModelOptions{
			"user": {
				ModelName:  "app_users",
				FieldNames: map[string]string{"email": "email_address"},
			},
		},
	}
	s, err := schema.Compose(schema.Base(), nil, opts)
	require.NoError(t, err)

	reg := schema.NewRegistry(s, opts)

	physicalModel, err := reg.GetModelName("user")
	require.NoError(t, err)
	assert.Equal(t, "app_users", physicalModel)

	logical, err := reg.GetDefaultModelName("app_users")
	require.NoError(t, err)
	assert.Equal(t, "user", logical)

	physicalField, err := reg.GetFieldName("user", "email")
	require.NoError(t, err)
	assert.Equal(t, "email_address", physicalField)

	logicalField, err := reg.GetDefaultFieldName("user", "email_address")
	require.NoError(t, err)
	assert.Equal(t, "email", logicalField)
}

func TestRoundTripNameResolution(t *testing.T) {
	t.Parallel()

	opts := schema.Options{}
	s, err := schema.Compose(schema.Base(), nil, opts)
	require.NoError(t, err)
	reg := schema.NewRegistry(s, opts)

	for model, m := range s {
		physicalModel, err := reg.GetModelName(model)
		require.NoError(t, err)
		roundTrippedModel, err := reg.GetDefaultModelName(physicalModel)
		require.NoError(t, err)
		assert.Equal(t, model, roundTrippedModel)

		for fieldName := range m.Fields {
			physicalField, err := reg.GetFieldName(model, fieldName)
			require.NoError(t, err)
			roundTrippedField, err := reg.GetDefaultFieldName(model, physicalField)
			require.NoError(t, err)
			assert.Equal(t, fieldName, roundTrippedField)
		}
	}
}

func TestGetDefaultModelNameUnknownFails(t *testing.T) {
	t.Parallel()

	opts := schema.Options{}
	s, err := schema.Compose(schema.Base(), nil, opts)
	require.NoError(t, err)
	reg := schema.NewRegistry(s, opts)

	_, err = reg.GetDefaultModelName("widgets")
	assert.Error(t, err)
}

func TestUsePluralTieBreak(t *testing.T) {
	t.Parallel()

	opts := schema.Options{UsePlural: true}
	s, err := schema.Compose(schema.Base(), nil, opts)
	require.NoError(t, err)
	reg := schema.NewRegistry(s, opts)

	physical, err := reg.GetModelName("user")
	require.NoError(t, err)
	assert.Equal(t, "users", physical)

	logical, err := reg.GetDefaultModelName("users")
	require.NoError(t, err)
	assert.Equal(t, "user", logical)

	// The pluralized physical name of another model ("sessions" for
	// session) resolves as well.
	_, err = reg.GetDefaultModelName("sessions")
	require.NoError(t, err)
}

// TestUsePluralTieBreakDisabledByDefault covers spec.md §4.1
// "Tie-breaks": the plural/singular fallback only applies when the
// schema was composed with UsePlural. Without it, a name ending in "s"
// that isn't itself a model must fail rather than silently resolving
// to its singular form.
func TestUsePluralTieBreakDisabledByDefault(t *testing.T) {
	t.Parallel()

	opts := schema.Options{}
	s, err := schema.Compose(schema.Base(), nil, opts)
	require.NoError(t, err)
	reg := schema.NewRegistry(s, opts)

	_, err = reg.GetDefaultModelName("users")
	assert.Error(t, err)
}

func TestPluginCannotOverrideRequiredBaseField(t *testing.T) {
	t.Parallel()

	plugin := schema.Schema{
		"user": {
			Fields: map[string]field.Descriptor{
				"email": field.Number("email").Descriptor(), // conflicting, required
			},
		},
	}
	_, err := schema.Compose(schema.Base(), []schema.Schema{plugin}, schema.Options{})
	assert.Error(t, err)
}

func TestPluginOnlyModelAddedVerbatim(t *testing.T) {
	t.Parallel()

	plugin := schema.Schema{
		"twoFactor": {
			Fields: map[string]field.Descriptor{
				"secret": field.String("secret").Descriptor(),
				"userId": field.String("user_id").References("user").Descriptor(),
			},
		},
	}
	s, err := schema.Compose(schema.Base(), []schema.Schema{plugin}, schema.Options{})
	require.NoError(t, err)

	m, ok := s["twoFactor"]
	require.True(t, ok)
	assert.Contains(t, m.Fields, "secret")
	assert.Contains(t, m.Fields, "id")
}

func TestAdditionalFieldsWinLast(t *testing.T) {
	t.Parallel()

	plugin := schema.Schema{
		"user": {
			Fields: map[string]field.Descriptor{
				"role": field.String("role").Default("user").Descriptor(),
			},
		},
	}
	opts := schema.Options{
		Models: map[string]schema.ModelOptions{
			"user": {
				AdditionalFields: map[string]field.Descriptor{
					"role": field.String("role").Default("admin").Descriptor(),
				},
			},
		},
	}
	s, err := schema.Compose(schema.Base(), []schema.Schema{plugin}, opts)
	require.NoError(t, err)

	fd := s["user"].Fields["role"]
	dv, ok := fd.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, "admin", dv)
}

func TestUnresolvedReferenceFails(t *testing.T) {
	t.Parallel()

	plugin := schema.Schema{
		"apiKey": {
			Fields: map[string]field.Descriptor{
				"ownerId": field.String("owner_id").References("nonexistentModel").Descriptor(),
			},
		},
	}
	_, err := schema.Compose(schema.Base(), []schema.Schema{plugin}, schema.Options{})
	assert.Error(t, err)
}
