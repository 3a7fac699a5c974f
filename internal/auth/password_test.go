package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword", bcrypt.MinCost)

	require.NoError(t, err)
	assert.NotEqual(t, "testpassword", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short", bcrypt.MinCost)

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73), bcrypt.MinCost)

	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("testpassword", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword("testpassword", hash))
	assert.ErrorIs(t, CheckPassword("wrongpass", hash), ErrInvalidPassword)
}

func TestGenerateAPIToken(t *testing.T) {
	plaintext, hash, err := GenerateAPIToken()

	require.NoError(t, err)
	assert.Len(t, plaintext, 64) // 32 bytes hex encoded
	assert.Len(t, hash, 64)      // sha256 hex digest
	assert.NotEqual(t, plaintext, hash)
	assert.Equal(t, hash, HashToken(plaintext))
}

func TestGenerateAPIToken_Unique(t *testing.T) {
	first, _, err := GenerateAPIToken()
	require.NoError(t, err)

	second, _, err := GenerateAPIToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
