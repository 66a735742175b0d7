package system

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
)

func TestCreateAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	command := make([]byte, 4)
	lamports := make([]byte, 8)
	binary.LittleEndian.PutUint64(lamports, 12345)
	size := make([]byte, 8)
	binary.LittleEndian.PutUint64(size, 67890)

	assert.Equal(t, command, instruction.Data[0:4])
	assert.Equal(t, lamports, instruction.Data[4:12])
	assert.Equal(t, size, instruction.Data[12:20])
	assert.Equal(t, []byte(keys[2]), instruction.Data[20:52])

	require.Len(t, instruction.Accounts, 2)
	for _, account := range instruction.Accounts {
		assert.True(t, account.IsSigner)
		assert.True(t, account.IsWritable)
	}

	decompiled, err := DecompileCreateAccount(instruction)
	require.NoError(t, err)
	assert.Equal(t, decompiled.Funder, keys[0])
	assert.Equal(t, decompiled.Address, keys[1])
	assert.Equal(t, decompiled.Owner, keys[2])
	assert.EqualValues(t, decompiled.Lamports, 12345)
	assert.EqualValues(t, decompiled.Size, 67890)
}

func TestDecompileNonCreate(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	instruction.Accounts = instruction.Accounts[:1]
	_, err := DecompileCreateAccount(instruction)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid number of accounts"), err)

	binary.LittleEndian.PutUint32(instruction.Data, commandTransfer)
	_, err = DecompileCreateAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Data = make([]byte, 3)
	_, err = DecompileCreateAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[3]
	_, err = DecompileCreateAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func TestTransfer(t *testing.T) {
	keys := generateKeys(t, 2)

	instruction := Transfer(keys[0], keys[1], 42)
	require.Len(t, instruction.Accounts, 2)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	decompiled, err := DecompileTransfer(instruction)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.From)
	assert.EqualValues(t, keys[1], decompiled.To)
	assert.EqualValues(t, 42, decompiled.Lamports)

	_, err = DecompileCreateAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func TestRent(t *testing.T) {
	assert.EqualValues(t, 890880, DefaultRent.MinimumBalance(0))
	assert.EqualValues(t, 2039280, DefaultRent.MinimumBalance(165))

	actual, err := RentFromAccount(RentSysVar, DefaultRent.Marshal())
	require.NoError(t, err)
	assert.Equal(t, DefaultRent, *actual)

	_, err = RentFromAccount(ClockSysVar, DefaultRent.Marshal())
	assert.Equal(t, ErrInvalidSysvarKey, err)

	_, err = RentFromAccount(RentSysVar, make([]byte, RentSize-1))
	assert.Equal(t, ErrInvalidSysvarData, err)
}

func TestClock(t *testing.T) {
	expected := Clock{
		Slot:                1000,
		EpochStartTimestamp: 1600000000,
		Epoch:               3,
		LeaderScheduleEpoch: 4,
		UnixTimestamp:       1700000000,
	}

	data := expected.Marshal()
	require.Len(t, data, ClockSize)
	assert.EqualValues(t, 1700000000, int64(binary.LittleEndian.Uint64(data[32:])))

	actual, err := ClockFromAccount(ClockSysVar, data)
	require.NoError(t, err)
	assert.Equal(t, expected, *actual)

	_, err = ClockFromAccount(RentSysVar, data)
	assert.Equal(t, ErrInvalidSysvarKey, err)
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
