package adapter_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/adapter"
)

func TestIsUniqueConstraintErrorMatchesDriverStrings(t *testing.T) {
	t.Parallel()
	assert.True(t, adapter.IsUniqueConstraintError(fmt.Errorf("pq: duplicate key value violates unique constraint \"users_email_key\"")))
	assert.True(t, adapter.IsUniqueConstraintError(fmt.Errorf("Error 1062: Duplicate entry 'x' for key 'email'")))
	assert.True(t, adapter.IsUniqueConstraintError(fmt.Errorf("UNIQUE constraint failed: user.email")))
	assert.False(t, adapter.IsUniqueConstraintError(fmt.Errorf("connection refused")))
}

func TestIsForeignKeyConstraintErrorMatchesDriverStrings(t *testing.T) {
	t.Parallel()
	assert.True(t, adapter.IsForeignKeyConstraintError(fmt.Errorf("pq: insert or update on table \"session\" violates foreign key constraint")))
	assert.True(t, adapter.IsForeignKeyConstraintError(fmt.Errorf("FOREIGN KEY constraint failed")))
	assert.False(t, adapter.IsForeignKeyConstraintError(nil))
}

func TestIsConstraintErrorSurvivesDriverErrorWrapping(t *testing.T) {
	t.Parallel()
	wrapped := core.NewDriverError("create", "user", 1, fmt.Errorf("UNIQUE constraint failed: user.email"))
	assert.True(t, adapter.IsConstraintError(wrapped))
	assert.True(t, adapter.IsUniqueConstraintError(wrapped))
	assert.False(t, adapter.IsForeignKeyConstraintError(wrapped))
}
