package adapter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/better-auth/adaptercore/adapter"
)

func TestLoadOptionsYAMLParsesIDPolicyAndTestMode(t *testing.T) {
	t.Parallel()

	policy, opts, err := adapter.LoadOptionsYAML(strings.NewReader(`
idPolicy:
  kind: uuid
testMode: true
`))
	require.NoError(t, err)
	assert.Equal(t, adapter.IDPolicyUUID, policy.Kind)
	assert.Len(t, opts, 1)
}

func TestLoadOptionsYAMLDefaultsToDefaultPolicy(t *testing.T) {
	t.Parallel()

	policy, opts, err := adapter.LoadOptionsYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, adapter.IDPolicyDefault, policy.Kind)
	assert.Empty(t, opts)
}

func TestLoadOptionsYAMLRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	_, _, err := adapter.LoadOptionsYAML(strings.NewReader("idPolicy:\n  kind: bogus\n"))
	assert.Error(t, err)
}
