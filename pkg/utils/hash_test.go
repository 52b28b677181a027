package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	require.True(t, CheckPassword("hunter22", hash))
	require.False(t, CheckPassword("wrong", hash))
}

func TestCheckPassword_GarbageHash(t *testing.T) {
	require.False(t, CheckPassword("hunter22", "not-a-bcrypt-hash"))
}
