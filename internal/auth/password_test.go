package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)

	assert.True(t, h.Verify("password123", hashed))
	assert.False(t, h.Verify("wrong", hashed))
	assert.False(t, h.Verify("password123", ""))
}
