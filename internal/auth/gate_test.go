package auth

import (
	"testing"

	"surya-backend/internal/config"
	"surya-backend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateWithPlainPassword(t *testing.T) {
	gate, err := NewGate(&config.Config{AdminUser: "admin", AdminPass: "s3cret"})
	require.NoError(t, err)

	assert.True(t, gate.Configured())
	assert.True(t, gate.Check("admin", "s3cret"))
	assert.False(t, gate.Check("admin", "wrong"))
	assert.False(t, gate.Check("Admin", "s3cret"))
	assert.False(t, gate.Check("", ""))
}

func TestGateWithPasswordHash(t *testing.T) {
	hash, err := utils.HashPassword("from-hash")
	require.NoError(t, err)

	gate, err := NewGate(&config.Config{AdminUser: "admin", AdminPass: "ignored", AdminPassHash: hash})
	require.NoError(t, err)

	assert.True(t, gate.Check("admin", "from-hash"))
	assert.False(t, gate.Check("admin", "ignored"))
}

func TestUnconfiguredGateRejectsEverything(t *testing.T) {
	gate, err := NewGate(&config.Config{})
	require.NoError(t, err)

	assert.False(t, gate.Configured())
	assert.False(t, gate.Check("", ""))
	assert.False(t, gate.Check("admin", "anything"))
}
