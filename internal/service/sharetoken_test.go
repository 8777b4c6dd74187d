package service_test

import (
	"testing"

	"cosmonotes/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShareToken_LengthAndAlphabet(t *testing.T) {
	token, err := service.NewShareToken()
	require.NoError(t, err)

	assert.Len(t, token, service.ShareTokenLength)
	for _, c := range token {
		assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'),
			"token must stay within the hex alphabet, got %q", c)
	}
}

func TestNewShareToken_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		token, err := service.NewShareToken()
		require.NoError(t, err)

		_, dup := seen[token]
		require.False(t, dup, "duplicate token %q", token)
		seen[token] = struct{}{}
	}
}
