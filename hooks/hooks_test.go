package hooks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/hooks"
)

func TestBeforeHooksRunInDeclarationOrder(t *testing.T) {
	t.Parallel()

	var order []string
	reg := hooks.NewRegistry()
	reg.Before("user", hooks.Create, func(_ context.Context, _ string, data map[string]any) (map[string]any, error) {
		order = append(order, "first")
		return nil, nil
	})
	reg.Before("user", hooks.Create, func(_ context.Context, _ string, data map[string]any) (map[string]any, error) {
		order = append(order, "second")
		return nil, nil
	})

	_, err := reg.RunBefore(context.Background(), "user", hooks.Create, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBeforeHookReplacesPayload(t *testing.T) {
	t.Parallel()

	reg := hooks.NewRegistry()
	reg.Before("user", hooks.Create, func(_ context.Context, _ string, data map[string]any) (map[string]any, error) {
		data["name"] = "replaced"
		return data, nil
	})

	out, err := reg.RunBefore(context.Background(), "user", hooks.Create, map[string]any{"name": "original"})
	require.NoError(t, err)
	assert.Equal(t, "replaced", out["name"])
}

func TestBeforeHookAbortWrapsError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("denied")
	reg := hooks.NewRegistry()
	reg.Before("user", hooks.Create, func(_ context.Context, _ string, _ map[string]any) (map[string]any, error) {
		return nil, sentinel
	})

	_, err := reg.RunBefore(context.Background(), "user", hooks.Create, map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrHookAbort)
	assert.ErrorIs(t, err, sentinel)
}

func TestAfterHooksAreObservational(t *testing.T) {
	t.Parallel()

	var seen map[string]any
	reg := hooks.NewRegistry()
	reg.After("user", hooks.Create, func(_ context.Context, _ string, result map[string]any) {
		seen = result
	})

	reg.RunAfter(context.Background(), "user", hooks.Create, map[string]any{"id": "1"})
	assert.Equal(t, map[string]any{"id": "1"}, seen)
}

func TestMergeAppendsPluginHooksAfterOptions(t *testing.T) {
	t.Parallel()

	var order []string
	optionHooks := hooks.NewRegistry()
	optionHooks.Before("user", hooks.Create, func(_ context.Context, _ string, data map[string]any) (map[string]any, error) {
		order = append(order, "option")
		return nil, nil
	})

	pluginHooks := hooks.NewRegistry()
	pluginHooks.Before("user", hooks.Create, func(_ context.Context, _ string, data map[string]any) (map[string]any, error) {
		order = append(order, "plugin")
		return nil, nil
	})

	optionHooks.Merge(pluginHooks)
	_, err := optionHooks.RunBefore(context.Background(), "user", hooks.Create, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, []string{"option", "plugin"}, order)
}
