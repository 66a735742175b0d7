package token

import (
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	data, err := hex.DecodeString("118a08c9d4cc46c576282e0daf050bbdb04f03313e35e5db3f3def69fa1eeec42b15a9cd4bef2cd809e464570d2a6cbd9bcc64e32ea4ebbcf748757bbb3dd5bd000084e2506ce67c000000000000000000000000000000000000000000000000000000000000000000000000010000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)

	mint, err := base58.Decode("2BU1Xgyzqixhjaq9Pa5cNsaa1gSejLeNtDaDRv29qoZm")
	require.NoError(t, err)

	var a Account
	require.True(t, a.Unmarshal(data))
	assert.Equal(t, mint, []byte(a.Mint))
	assert.Equal(t, uint64(9e13*1e5), a.Amount)
	assert.Equal(t, AccountStateInitialized, a.State)
	assert.Empty(t, a.Delegate)
	assert.Empty(t, a.CloseAuthority)

	var rtt Account
	require.True(t, rtt.Unmarshal(a.Marshal()))
	assert.Equal(t, a, rtt)
}

func TestUnmarshal_Uninitialized(t *testing.T) {
	var a Account
	assert.False(t, a.Unmarshal(make([]byte, AccountSize)))
	assert.False(t, a.Unmarshal(make([]byte, AccountSize-1)))
}

func TestMint(t *testing.T) {
	keys := generateKeys(t, 1)

	expected := Mint{
		MintAuthority: keys[0],
		Supply:        1_000_000,
		Decimals:      6,
		IsInitialized: true,
	}

	data := expected.Marshal()
	require.Len(t, data, MintSize)
	assert.EqualValues(t, 1, data[0])
	assert.EqualValues(t, 6, data[44])

	var actual Mint
	require.True(t, actual.Unmarshal(data))
	assert.Equal(t, expected, actual)

	assert.False(t, actual.Unmarshal(make([]byte, MintSize)))
}
