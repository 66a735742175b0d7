package escrow

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
	"github.com/code-payments/hashlock-escrow/pkg/testutil"
)

func TestGetEscrowAddress(t *testing.T) {
	paymentHash := sha256.Sum256([]byte("preimage"))

	address, bump, err := GetEscrowAddress(&GetEscrowAddressArgs{PaymentHash: paymentHash})
	require.NoError(t, err)
	assert.False(t, solana.IsOnCurve(address))
	assert.True(t, solana.VerifyProgramAddress(PROGRAM_ID, address, bump, []byte("escrow"), paymentHash[:]))

	again, againBump, err := GetEscrowAddress(&GetEscrowAddressArgs{PaymentHash: paymentHash})
	require.NoError(t, err)
	assert.Equal(t, address, again)
	assert.Equal(t, bump, againBump)

	other, _, err := GetEscrowAddress(&GetEscrowAddressArgs{PaymentHash: sha256.Sum256([]byte("other"))})
	require.NoError(t, err)
	assert.NotEqual(t, address, other)
}

func TestGetConfigAddress(t *testing.T) {
	address, bump, err := GetConfigAddress()
	require.NoError(t, err)
	assert.True(t, solana.VerifyProgramAddress(PROGRAM_ID, address, bump, []byte("config")))

	// Derivations are scoped to the program
	otherProgram, _, err := getConfigAddress(testutil.NewRandomKey(t))
	require.NoError(t, err)
	assert.NotEqual(t, address, otherProgram)
}

func TestGetVaultAddresses(t *testing.T) {
	mint := testutil.NewRandomKey(t)
	escrow, _, err := GetEscrowAddress(&GetEscrowAddressArgs{PaymentHash: sha256.Sum256([]byte("preimage"))})
	require.NoError(t, err)

	vault, err := GetVaultAddress(&GetVaultAddressArgs{Escrow: escrow, Mint: mint})
	require.NoError(t, err)
	expected, err := token.GetAssociatedAccount(escrow, mint)
	require.NoError(t, err)
	assert.Equal(t, expected, vault)

	config, _, err := GetConfigAddress()
	require.NoError(t, err)
	feeVault, err := GetFeeVaultAddress(&GetFeeVaultAddressArgs{Mint: mint})
	require.NoError(t, err)
	expected, err = token.GetAssociatedAccount(config, mint)
	require.NoError(t, err)
	assert.Equal(t, expected, feeVault)
}
