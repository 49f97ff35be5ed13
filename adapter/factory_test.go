package adapter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/adapter"
	"github.com/better-auth/adaptercore/hooks"
	"github.com/better-auth/adaptercore/memadapter"
	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/where"
)

func newTestFactory(t *testing.T, hookReg *hooks.Registry) (*adapter.Factory, *memadapter.Driver) {
	t.Helper()
	opts := schema.Options{}
	composed, err := schema.Compose(schema.Base(), nil, opts)
	require.NoError(t, err)
	reg := schema.NewRegistry(composed, opts)
	driver := memadapter.New(false)
	f, err := adapter.NewFactory(reg, driver, adapter.IDPolicy{Kind: adapter.IDPolicyDefault}, hookReg, adapter.WithTestMode())
	require.NoError(t, err)
	return f, driver
}

func TestFactoryCreateAssignsGeneratedID(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	out, err := f.Create(ctx, "user", core.Record{"name": "Ada", "email": "ada@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, out["id"])
	require.Equal(t, "Ada", out["name"])
	require.Equal(t, false, out["emailVerified"])
}

func TestFactoryCreateDropsCallerSuppliedID(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	out, err := f.Create(ctx, "user", core.Record{"id": "caller-supplied", "name": "Grace", "email": "grace@example.com"})
	require.NoError(t, err)
	require.NotEqual(t, "caller-supplied", out["id"])
}

func TestFactoryCreateForceAllowID(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	out, err := f.Create(ctx, "user", core.Record{"id": "mine", "name": "Hedy", "email": "hedy@example.com"}, adapter.WithForceAllowID())
	require.NoError(t, err)
	require.Equal(t, "mine", out["id"])
}

func TestFactoryFindOneRoundTrip(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	created, err := f.Create(ctx, "user", core.Record{"name": "Ada", "email": "ada@example.com"})
	require.NoError(t, err)

	found, ok, err := f.FindOne(ctx, "user", []where.Predicate{{Field: "email", Value: "ada@example.com"}})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, created["id"], found["id"])
}

func TestFactoryFindOneNotFound(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	_, ok, err := f.FindOne(ctx, "user", []where.Predicate{{Field: "email", Value: "nobody@example.com"}})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFactoryUpdateAppliesOnUpdateDefault(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	created, err := f.Create(ctx, "user", core.Record{"name": "Ada", "email": "ada@example.com"})
	require.NoError(t, err)

	out, ok, err := f.Update(ctx, "user", []where.Predicate{{Field: "id", Value: created["id"]}}, core.Record{"name": "Ada Lovelace"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Ada Lovelace", out["name"])
	require.NotNil(t, out["updatedAt"])
}

func TestFactoryDeleteThenFindOneReturnsNotFound(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	created, err := f.Create(ctx, "user", core.Record{"name": "Ada", "email": "ada@example.com"})
	require.NoError(t, err)

	require.NoError(t, f.Delete(ctx, "user", []where.Predicate{{Field: "id", Value: created["id"]}}))

	_, ok, err := f.FindOne(ctx, "user", []where.Predicate{{Field: "id", Value: created["id"]}})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFactoryFindManyDefaultLimit(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.Create(ctx, "user", core.Record{"name": "u", "email": "u" + string(rune('a'+i)) + "@example.com"})
		require.NoError(t, err)
	}

	out, err := f.FindMany(ctx, "user", nil)
	require.NoError(t, err)
	require.Len(t, out, 5)
}

func TestFactoryBeforeHookReplacesPayload(t *testing.T) {
	hookReg := hooks.NewRegistry()
	hookReg.Before("user", hooks.Create, func(ctx context.Context, model string, data map[string]any) (map[string]any, error) {
		data["name"] = "overridden"
		return data, nil
	})
	f, _ := newTestFactory(t, hookReg)
	ctx := context.Background()

	out, err := f.Create(ctx, "user", core.Record{"name": "original", "email": "x@example.com"})
	require.NoError(t, err)
	require.Equal(t, "overridden", out["name"])
}

func TestFactoryBeforeHookAbortWrapsSentinel(t *testing.T) {
	hookReg := hooks.NewRegistry()
	hookReg.Before("user", hooks.Create, func(ctx context.Context, model string, data map[string]any) (map[string]any, error) {
		return nil, core.ErrInvalidArgument
	})
	f, _ := newTestFactory(t, hookReg)
	ctx := context.Background()

	_, err := f.Create(ctx, "user", core.Record{"name": "x", "email": "x@example.com"})
	require.Error(t, err)
	require.ErrorIs(t, err, core.ErrHookAbort)
}

func TestFactoryJoinForwardOneToMany(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	user, err := f.Create(ctx, "user", core.Record{"name": "Ada", "email": "ada@example.com"})
	require.NoError(t, err)

	expires := time.Now().Add(24 * time.Hour)
	_, err = f.Create(ctx, "session", core.Record{"token": "tok-1", "expiresAt": expires, "userId": user["id"]})
	require.NoError(t, err)
	_, err = f.Create(ctx, "session", core.Record{"token": "tok-2", "expiresAt": expires, "userId": user["id"]})
	require.NoError(t, err)

	out, ok, err := f.FindOne(ctx, "user", []where.Predicate{{Field: "id", Value: user["id"]}},
		adapter.WithJoin("session", core.JoinSpec{}))
	require.NoError(t, err)
	require.True(t, ok)

	sessions, ok := out["session"].([]core.Record)
	require.True(t, ok)
	require.Len(t, sessions, 2)
}

func TestFactoryJoinMissingRelationProducesEmpty(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ctx := context.Background()

	user, err := f.Create(ctx, "user", core.Record{"name": "Grace", "email": "grace@example.com"})
	require.NoError(t, err)

	out, ok, err := f.FindOne(ctx, "user", []where.Predicate{{Field: "id", Value: user["id"]}},
		adapter.WithJoin("session", core.JoinSpec{}))
	require.NoError(t, err)
	require.True(t, ok)

	sessions, ok := out["session"].([]core.Record)
	require.True(t, ok)
	require.Len(t, sessions, 0)
}

func TestFactoryUseNumberIDCapabilityMismatch(t *testing.T) {
	opts := schema.Options{}
	composed, err := schema.Compose(schema.Base(), nil, opts)
	require.NoError(t, err)
	reg := schema.NewRegistry(composed, opts)
	driver := memadapter.New(false) // declares SupportsNumericIds: false

	_, err = adapter.NewFactory(reg, driver, adapter.IDPolicy{Kind: adapter.IDPolicyNumber}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, core.ErrCapabilityMismatch)
}
