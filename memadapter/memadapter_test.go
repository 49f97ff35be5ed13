package memadapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/better-auth/adaptercore/adapter"
	"github.com/better-auth/adaptercore/memadapter"
	"github.com/better-auth/adaptercore/where"
)

func TestCreateAssignsNumericIDWhenConfigured(t *testing.T) {
	d := memadapter.New(true)
	row, err := d.Create(context.Background(), adapter.CreateRequest{Model: "user", Data: adapter.Row{"name": "Ada"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), row["id"])

	row2, err := d.Create(context.Background(), adapter.CreateRequest{Model: "user", Data: adapter.Row{"name": "Grace"}})
	require.NoError(t, err)
	require.Equal(t, int64(2), row2["id"])
}

func TestCreateRequiresCallerSuppliedIDWhenNotNumeric(t *testing.T) {
	d := memadapter.New(false)
	_, err := d.Create(context.Background(), adapter.CreateRequest{Model: "user", Data: adapter.Row{"name": "Ada"}})
	require.Error(t, err)
}

func TestFindOneMatchesEQ(t *testing.T) {
	d := memadapter.New(false)
	_, err := d.Create(context.Background(), adapter.CreateRequest{Model: "user", Data: adapter.Row{"id": "u1", "email": "ada@example.com"}})
	require.NoError(t, err)

	row, found, err := d.FindOne(context.Background(), adapter.FindOneRequest{
		Model: "user",
		Where: []where.Compiled{{Field: "email", Value: "ada@example.com", Operator: where.EQ}},
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "u1", row["id"])
}

func TestFindManyGroupsByConnectorNotPosition(t *testing.T) {
	d := memadapter.New(false)
	ctx := context.Background()
	_, _ = d.Create(ctx, adapter.CreateRequest{Model: "session", Data: adapter.Row{"id": "s1", "userId": "u1", "revoked": false}})
	_, _ = d.Create(ctx, adapter.CreateRequest{Model: "session", Data: adapter.Row{"id": "s2", "userId": "u1", "revoked": true}})
	_, _ = d.Create(ctx, adapter.CreateRequest{Model: "session", Data: adapter.Row{"id": "s3", "userId": "u2", "revoked": false}})

	// AND-group: userId = u1, revoked = false. OR-group: userId = u2.
	// Grouping semantics: AND(and-group) AND OR(or-group), which is
	// vacuously false here since no row can satisfy both userId = u1
	// (from the AND-group) and userId = u2 (the only OR-group member).
	where1 := []where.Compiled{
		{Field: "userId", Value: "u1", Operator: where.EQ, Connector: where.And},
		{Field: "revoked", Value: false, Operator: where.EQ, Connector: where.And},
		{Field: "userId", Value: "u2", Operator: where.EQ, Connector: where.Or},
	}
	rows, err := d.FindMany(ctx, adapter.FindManyRequest{Model: "session", Where: where1})
	require.NoError(t, err)
	require.Empty(t, rows)

	// Reordering the same connectors must not change the result: the
	// grouping is by Connector, not by list position.
	where2 := []where.Compiled{
		{Field: "userId", Value: "u2", Operator: where.EQ, Connector: where.Or},
		{Field: "userId", Value: "u1", Operator: where.EQ, Connector: where.And},
		{Field: "revoked", Value: false, Operator: where.EQ, Connector: where.And},
	}
	rows2, err := d.FindMany(ctx, adapter.FindManyRequest{Model: "session", Where: where2})
	require.NoError(t, err)
	require.Empty(t, rows2)

	// AND-group alone (revoked = false) matches s1 and s3; adding the
	// OR-group member userId = u1 then restricts to rows also in u1.
	rows3, err := d.FindMany(ctx, adapter.FindManyRequest{
		Model: "session",
		Where: []where.Compiled{
			{Field: "revoked", Value: false, Operator: where.EQ, Connector: where.And},
			{Field: "userId", Value: "u1", Operator: where.EQ, Connector: where.Or},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows3, 1)
	require.Equal(t, "s1", rows3[0]["id"])
}

func TestFindManyRespectsLimitAndOffset(t *testing.T) {
	d := memadapter.New(false)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c", "d"} {
		_, _ = d.Create(ctx, adapter.CreateRequest{Model: "x", Data: adapter.Row{"id": id, "order": i}})
	}

	rows, err := d.FindMany(ctx, adapter.FindManyRequest{
		Model:  "x",
		Limit:  2,
		Offset: 1,
		SortBy: []adapter.SortField{{Field: "id"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "b", rows[0]["id"])
	require.Equal(t, "c", rows[1]["id"])
}

func TestUpdateNoMatchReturnsNotFound(t *testing.T) {
	d := memadapter.New(false)
	_, found, err := d.Update(context.Background(), adapter.UpdateRequest{
		Model: "user",
		Where: []where.Compiled{{Field: "id", Value: "missing", Operator: where.EQ}},
		Update: adapter.Row{"name": "x"},
	})
	require.NoError(t, err)
	require.False(t, found)
}

func TestDeleteManyReturnsCount(t *testing.T) {
	d := memadapter.New(false)
	ctx := context.Background()
	_, _ = d.Create(ctx, adapter.CreateRequest{Model: "session", Data: adapter.Row{"id": "s1", "userId": "u1"}})
	_, _ = d.Create(ctx, adapter.CreateRequest{Model: "session", Data: adapter.Row{"id": "s2", "userId": "u1"}})
	_, _ = d.Create(ctx, adapter.CreateRequest{Model: "session", Data: adapter.Row{"id": "s3", "userId": "u2"}})

	n, err := d.DeleteMany(ctx, adapter.DeleteRequest{
		Model: "session",
		Where: []where.Compiled{{Field: "userId", Value: "u1", Operator: where.EQ}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = d.Count(ctx, adapter.CountRequest{Model: "session"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestContainsStartsWithEndsWith(t *testing.T) {
	d := memadapter.New(false)
	ctx := context.Background()
	_, _ = d.Create(ctx, adapter.CreateRequest{Model: "user", Data: adapter.Row{"id": "u1", "email": "ada@example.com"}})

	cases := []where.Operator{where.Contains, where.StartsWith, where.EndsWith}
	values := []string{"example", "ada@", "example.com"}
	for i, op := range cases {
		rows, err := d.FindMany(ctx, adapter.FindManyRequest{
			Model: "user",
			Where: []where.Compiled{{Field: "email", Value: values[i], Operator: op}},
		})
		require.NoError(t, err)
		require.Lenf(t, rows, 1, "operator %s", op)
	}
}

func TestFindOneCaseInsensitiveMatch(t *testing.T) {
	d := memadapter.New(false)
	ctx := context.Background()
	_, err := d.Create(ctx, adapter.CreateRequest{Model: "user", Data: adapter.Row{"id": "u1", "email": "Ada@Example.com"}})
	require.NoError(t, err)

	row, found, err := d.FindOne(ctx, adapter.FindOneRequest{
		Model: "user",
		Where: []where.Compiled{{Field: "email", Value: where.Fold("ADA@example.COM"), Operator: where.EQ, CaseInsensitive: true}},
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "u1", row["id"])
}

func TestTransactionRunsAgainstSameStorage(t *testing.T) {
	d := memadapter.New(false)
	err := d.Transaction(context.Background(), func(tx adapter.Driver) error {
		_, err := tx.Create(context.Background(), adapter.CreateRequest{Model: "user", Data: adapter.Row{"id": "u1"}})
		return err
	})
	require.NoError(t, err)

	n, err := d.Count(context.Background(), adapter.CountRequest{Model: "user"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
