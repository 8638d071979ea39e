package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyCode(t *testing.T) {
	hash, err := HashCode("a1b2c3")
	require.NoError(t, err)
	assert.NotEqual(t, "a1b2c3", hash)

	assert.NoError(t, VerifyCode(hash, "a1b2c3"))
	assert.Error(t, VerifyCode(hash, "wrong"))
}
