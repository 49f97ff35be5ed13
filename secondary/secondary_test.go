package secondary_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/better-auth/adaptercore/secondary"
)

func TestMemorySetGetDelete(t *testing.T) {
	t.Parallel()

	m := secondary.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryExpiresByTTL(t *testing.T) {
	t.Parallel()

	m := secondary.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOptionalNilBackendIsNoOp(t *testing.T) {
	t.Parallel()

	opt := secondary.Wrap(nil)
	ctx := context.Background()

	assert.False(t, opt.Enabled())
	assert.NoError(t, opt.Set(ctx, "k", "v", time.Second))
	_, ok, err := opt.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, opt.Delete(ctx, "k"))
}
