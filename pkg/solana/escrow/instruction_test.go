package escrow

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hashlock-escrow/pkg/testutil"
)

func TestInstructionDataSizes(t *testing.T) {
	for _, tc := range []struct {
		args     InstructionArgs
		expected int
	}{
		{&InitInstructionArgs{}, 113},
		{&ClaimInstructionArgs{}, 33},
		{&RefundInstructionArgs{}, 1},
		{&InitConfigInstructionArgs{}, 35},
		{&SetConfigInstructionArgs{}, 35},
		{&WithdrawFeesInstructionArgs{}, 9},
	} {
		data := tc.args.Marshal()
		assert.Len(t, data, tc.expected, tc.args.Tag().String())
		assert.EqualValues(t, tc.args.Tag(), data[0])
	}
}

func TestDecodeInstruction_Init(t *testing.T) {
	args := &InitInstructionArgs{
		Recipient:   testutil.NewRandomKey(t),
		Refund:      testutil.NewRandomKey(t),
		RefundAfter: -42,
		Amount:      1_000_000,
	}
	args.PaymentHash[0] = 0xab
	args.PaymentHash[31] = 0xcd

	data := args.Marshal()
	assert.Equal(t, args.PaymentHash[:], data[1:33])
	assert.EqualValues(t, args.Recipient, data[33:65])
	assert.EqualValues(t, args.Refund, data[65:97])
	assert.EqualValues(t, uint64(0xffffffffffffffd6), binary.LittleEndian.Uint64(data[97:105]))
	assert.EqualValues(t, 1_000_000, binary.LittleEndian.Uint64(data[105:113]))

	decoded, err := DecodeInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, args, decoded)
}

func TestDecodeInstruction_Config(t *testing.T) {
	collector := testutil.NewRandomKey(t)

	decoded, err := DecodeInstruction((&SetConfigInstructionArgs{FeeCollector: collector, FeeBps: 2500}).Marshal())
	require.NoError(t, err)

	args, ok := decoded.(*SetConfigInstructionArgs)
	require.True(t, ok)
	assert.EqualValues(t, collector, args.FeeCollector)
	assert.EqualValues(t, 2500, args.FeeBps)

	decoded, err = DecodeInstruction((&InitConfigInstructionArgs{FeeCollector: collector, FeeBps: 1}).Marshal())
	require.NoError(t, err)
	_, ok = decoded.(*InitConfigInstructionArgs)
	assert.True(t, ok)
}

func TestDecodeInstruction_TrailingBytes(t *testing.T) {
	data := append((&WithdrawFeesInstructionArgs{Amount: 77}).Marshal(), 0xde, 0xad)

	decoded, err := DecodeInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, &WithdrawFeesInstructionArgs{Amount: 77}, decoded)

	decoded, err = DecodeInstruction([]byte{byte(InstructionTagRefund), 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, &RefundInstructionArgs{}, decoded)
}

func TestDecodeInstruction_Malformed(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		{},
		{6},
		{0xff},
		make([]byte, 112),
		(&ClaimInstructionArgs{}).Marshal()[:32],
		(&InitConfigInstructionArgs{}).Marshal()[:34],
		(&WithdrawFeesInstructionArgs{}).Marshal()[:8],
	} {
		_, err := DecodeInstruction(data)
		assert.True(t, errors.Is(err, ErrInvalidInstructionData), "data: %x", data)
	}
}

func TestUnmarshal_WrongTag(t *testing.T) {
	var args ClaimInstructionArgs
	err := args.Unmarshal((&InitInstructionArgs{}).Marshal())
	assert.True(t, errors.Is(err, ErrInvalidInstructionData))
}

func TestClaimPaymentHash(t *testing.T) {
	// sha256 of 32 zero bytes
	expected := [32]byte{
		0x66, 0x68, 0x7a, 0xad, 0xf8, 0x62, 0xbd, 0x77, 0x6c, 0x8f, 0xc1, 0x8b, 0x8e, 0x9f, 0x8e, 0x20,
		0x08, 0x97, 0x14, 0x85, 0x6e, 0xe2, 0x33, 0xb3, 0x90, 0x2a, 0x59, 0x1d, 0x0d, 0x5f, 0x29, 0x25,
	}
	assert.Equal(t, expected, (&ClaimInstructionArgs{}).PaymentHash())
}

func TestInstructionAccounts(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 7)
	accounts := &InitInstructionAccounts{
		Payer:      keys[0],
		PayerToken: keys[1],
		Escrow:     keys[2],
		Vault:      keys[3],
		Mint:       keys[4],
		Config:     keys[5],
		FeeVault:   keys[6],
	}
	ix := NewInitInstruction(accounts, &InitInstructionArgs{})

	assert.EqualValues(t, PROGRAM_ID, ix.Program)
	require.Len(t, ix.Accounts, 11)
	assert.EqualValues(t, accounts.Payer, ix.Accounts[0].PublicKey)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[0].IsWritable)
	assert.EqualValues(t, SPL_ASSOCIATED_TOKEN_PROGRAM_ID, ix.Accounts[7].PublicKey)
	assert.EqualValues(t, SYSVAR_RENT_PUBKEY, ix.Accounts[8].PublicKey)
	assert.EqualValues(t, accounts.Config, ix.Accounts[9].PublicKey)
	assert.False(t, ix.Accounts[9].IsWritable)
	assert.True(t, ix.Accounts[10].IsWritable)

	refund := NewRefundInstruction(&RefundInstructionAccounts{
		Refund:      testutil.NewRandomKey(t),
		Escrow:      testutil.NewRandomKey(t),
		Vault:       testutil.NewRandomKey(t),
		RefundToken: testutil.NewRandomKey(t),
	}, &RefundInstructionArgs{})
	require.Len(t, refund.Accounts, 6)
	assert.EqualValues(t, SYSVAR_CLOCK_PUBKEY, refund.Accounts[5].PublicKey)
	assert.Len(t, refund.Signers(), 1)
}
