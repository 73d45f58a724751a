package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, h.Verify("s3cret", hash))
	assert.False(t, h.Verify("S3cret", hash))
	assert.False(t, h.Verify("", hash))
}

func TestBcryptHasherSaltsEachCall(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestBcryptHasherMalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	for _, bad := range []string{"", "plaintext", "$2a$04$short", strings.Repeat("x", 60)} {
		assert.False(t, h.Verify("anything", bad), bad)
	}
}

func TestBcryptHasherDefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(bcrypt.MinCost).cost)
}
