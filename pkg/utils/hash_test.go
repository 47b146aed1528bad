package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, ValidateHash(h))
	assert.True(t, CheckPassword("s3cret", h))
	assert.False(t, CheckPassword("S3cret", h))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestValidateHash(t *testing.T) {
	assert.Error(t, ValidateHash("plaintext"))
	assert.Error(t, ValidateHash(""))
}
