package where_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/where"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	opts := schema.Options{
		Models: map[string]schema.ModelOptions{
			"user": {FieldNames: map[string]string{"email": "email_address"}},
		},
	}
	s, err := schema.Compose(schema.Base(), nil, opts)
	require.NoError(t, err)
	return schema.NewRegistry(s, opts)
}

func TestCompileResolvesPhysicalFieldName(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	compiled, err := where.Compile(reg, "user", []where.Predicate{
		{Field: "email", Value: "a@b.com"},
	}, false)
	require.NoError(t, err)
	require.Len(t, compiled, 1)
	assert.Equal(t, "email_address", compiled[0].Field)
	assert.Equal(t, where.EQ, compiled[0].Operator)
	assert.Equal(t, where.And, compiled[0].Connector)
}

func TestCompileDefaultsOperatorAndConnector(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	compiled, err := where.Compile(reg, "user", []where.Predicate{{Field: "name", Value: "A"}}, false)
	require.NoError(t, err)
	assert.Equal(t, where.EQ, compiled[0].Operator)
	assert.Equal(t, where.And, compiled[0].Connector)
}

func TestCompileRejectsNonArrayForIn(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	_, err := where.Compile(reg, "user", []where.Predicate{
		{Field: "name", Value: "A", Operator: where.In},
	}, false)
	assert.Error(t, err)
}

func TestCompileAcceptsArrayForIn(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	compiled, err := where.Compile(reg, "user", []where.Predicate{
		{Field: "name", Value: []any{"A", "B"}, Operator: where.In},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "B"}, compiled[0].Value)
}

// TestStartsWithLiteralNotRegex covers spec.md §8 scenario 4: a
// starts_with value of ".*" must never be interpreted as a regex by the
// compiler — the compiler passes the literal value through unchanged,
// leaving escaping to the driver.
func TestStartsWithLiteralNotRegex(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	compiled, err := where.Compile(reg, "user", []where.Predicate{
		{Field: "name", Value: ".*", Operator: where.StartsWith},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, ".*", compiled[0].Value)
	assert.Equal(t, where.StartsWith, compiled[0].Operator)
}

func TestCompileNumericIDCoercion(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	compiled, err := where.Compile(reg, "user", []where.Predicate{
		{Field: "id", Value: "1"},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), compiled[0].Value)
}

func TestCompileUnknownFieldFails(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	_, err := where.Compile(reg, "user", []where.Predicate{{Field: "doesNotExist", Value: 1}}, false)
	assert.Error(t, err)
}

func TestCompileUnknownOperatorFails(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	_, err := where.Compile(reg, "user", []where.Predicate{
		{Field: "name", Value: "x", Operator: "regex"},
	}, false)
	assert.Error(t, err)
}

func TestCompileFoldsCaseInsensitiveValue(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	compiled, err := where.Compile(reg, "user", []where.Predicate{
		{Field: "email", Value: "Ada@Example.COM", CaseInsensitive: true},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", compiled[0].Value)
	assert.True(t, compiled[0].CaseInsensitive)
}

func TestFoldLeavesNonStringValuesUnchanged(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 5, where.Fold(5))
	assert.Equal(t, []any{"a", "b"}, where.Fold([]any{"A", "B"}))
}

func TestCompilePreservesAndOrGrouping(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	compiled, err := where.Compile(reg, "user", []where.Predicate{
		{Field: "name", Value: "A", Connector: where.And},
		{Field: "name", Value: "B", Connector: where.Or},
		{Field: "name", Value: "C", Connector: where.Or},
	}, false)
	require.NoError(t, err)

	var ands, ors int
	for _, c := range compiled {
		switch c.Connector {
		case where.And:
			ands++
		case where.Or:
			ors++
		}
	}
	assert.Equal(t, 1, ands)
	assert.Equal(t, 2, ors)
}
