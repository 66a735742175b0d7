package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSolanaKeys(t *testing.T) {
	keys := GenerateSolanaKeys(t, 16)
	require.Len(t, keys, 16)

	seen := make(map[string]struct{})
	for _, key := range keys {
		assert.Len(t, key, 32)
		seen[string(key)] = struct{}{}
	}
	assert.Len(t, seen, 16)
}

func TestIsVerbose(t *testing.T) {
	assert.True(t, isVerbose([]string{"pkg.test", "-test.v"}))
	assert.True(t, isVerbose([]string{"pkg.test", "-test.run=TestX", "-test.v=true"}))
	assert.True(t, isVerbose([]string{"pkg.test", "-test.v=test2json"}))
	assert.False(t, isVerbose([]string{"pkg.test", "-test.v=false"}))
	assert.False(t, isVerbose([]string{"pkg.test", "-test.run=TestX"}))
}
