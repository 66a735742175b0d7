package escrow

import (
	"crypto/ed25519"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

var (
	EscrowPrefix = []byte("escrow")
	ConfigPrefix = []byte("config")
)

type GetEscrowAddressArgs struct {
	PaymentHash [32]byte
}

func GetEscrowAddress(args *GetEscrowAddressArgs) (ed25519.PublicKey, uint8, error) {
	return getEscrowAddress(PROGRAM_ID, args.PaymentHash)
}

func getEscrowAddress(programID ed25519.PublicKey, paymentHash [32]byte) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		programID,
		EscrowPrefix,
		paymentHash[:],
	)
}

func GetConfigAddress() (ed25519.PublicKey, uint8, error) {
	return getConfigAddress(PROGRAM_ID)
}

func getConfigAddress(programID ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		programID,
		ConfigPrefix,
	)
}

type GetVaultAddressArgs struct {
	Escrow ed25519.PublicKey
	Mint   ed25519.PublicKey
}

// GetVaultAddress returns the associated token account holding an escrow's
// deposit.
func GetVaultAddress(args *GetVaultAddressArgs) (ed25519.PublicKey, error) {
	return token.GetAssociatedAccount(args.Escrow, args.Mint)
}

type GetFeeVaultAddressArgs struct {
	Mint ed25519.PublicKey
}

// GetFeeVaultAddress returns the associated token account of the config
// address collecting fees for the mint.
func GetFeeVaultAddress(args *GetFeeVaultAddressArgs) (ed25519.PublicKey, error) {
	config, _, err := GetConfigAddress()
	if err != nil {
		return nil, err
	}
	return token.GetAssociatedAccount(config, args.Mint)
}
