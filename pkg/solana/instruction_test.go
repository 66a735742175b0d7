package solana

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionSigners(t *testing.T) {
	keys := make([]ed25519.PublicKey, 4)
	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	ix := NewInstruction(
		keys[3],
		[]byte{1},
		NewAccountMeta(keys[0], true),
		NewReadonlyAccountMeta(keys[1], false),
		NewReadonlyAccountMeta(keys[2], true),
		NewAccountMeta(keys[0], true),
	)

	assert.True(t, ix.IsProgram(keys[3]))
	assert.False(t, ix.IsProgram(keys[0]))
	assert.Equal(t, []ed25519.PublicKey{keys[0], keys[2]}, ix.Signers())

	assert.True(t, ix.Accounts[0].IsWritable)
	assert.False(t, ix.Accounts[1].IsWritable)
}
