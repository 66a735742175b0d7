package escrow

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/binary"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

const (
	ClaimInstructionArgsSize = 32 // preimage
)

type ClaimInstructionArgs struct {
	Preimage [32]byte
}

type ClaimInstructionAccounts struct {
	Recipient      ed25519.PublicKey
	Escrow         ed25519.PublicKey
	Vault          ed25519.PublicKey
	RecipientToken ed25519.PublicKey
	FeeVault       ed25519.PublicKey
}

func (args *ClaimInstructionArgs) Tag() InstructionTag {
	return InstructionTagClaim
}

func (args *ClaimInstructionArgs) Marshal() []byte {
	data, offset := newInstructionData(InstructionTagClaim, ClaimInstructionArgsSize)
	binary.PutKey32(data[offset:], args.Preimage[:], &offset)
	return data
}

func (args *ClaimInstructionArgs) Unmarshal(data []byte) error {
	if err := checkInstructionData(data, InstructionTagClaim, ClaimInstructionArgsSize); err != nil {
		return err
	}

	offset := 1
	binary.GetBytes32(data[offset:], &args.Preimage, &offset)
	return nil
}

func NewClaimInstruction(
	accounts *ClaimInstructionAccounts,
	args *ClaimInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Recipient,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Escrow,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Vault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.RecipientToken,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.FeeVault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

// PaymentHash returns the hash lock the preimage unlocks.
func (args *ClaimInstructionArgs) PaymentHash() [32]byte {
	return sha256.Sum256(args.Preimage[:])
}

func (p *Program) processClaim(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, args *ClaimInstructionArgs, invoker runtime.Invoker) error {
	v := p.validator("processClaim")

	if err := v.accounts(accounts, 6); err != nil {
		return err
	}

	recipient := accounts[0]
	escrow := accounts[1]
	vault := accounts[2]
	recipientToken := accounts[3]
	feeVault := accounts[4]
	tokenProgram := accounts[5]

	if err := v.signer(recipient, "recipient"); err != nil {
		return err
	}
	if err := v.writable(escrow, vault, recipientToken, feeVault); err != nil {
		return err
	}
	if err := v.program(tokenProgram, SPL_TOKEN_PROGRAM_ID); err != nil {
		return err
	}

	state, err := v.escrow(programID, escrow)
	if err != nil {
		return err
	}
	if state.Status != StatusActive {
		return v.fail(ErrorNotActive, "escrow is not active")
	}
	if !keyEqual(state.Recipient, recipient.Key) {
		return v.fail(ErrorInvalidSigner, "recipient mismatch")
	}
	if !keyEqual(state.Vault, vault.Key) {
		return v.fail(ErrorInvalidVaultAta, "vault mismatch")
	}

	paymentHash := args.PaymentHash()
	if subtle.ConstantTimeCompare(paymentHash[:], state.PaymentHash[:]) != 1 {
		return v.fail(ErrorInvalidPreimage, "preimage does not match payment hash")
	}

	vaultState, err := v.tokenAccount(vault, "vault")
	if err != nil {
		return err
	}
	if !keyEqual(vaultState.Mint, state.Mint) {
		return v.fail(ErrorInvalidTokenAccount, "vault mint mismatch")
	}
	if _, err := v.tokenAccountFor(recipientToken, "recipient token account", recipient.Key, state.Mint); err != nil {
		return err
	}

	expectedEscrow, bump, err := getEscrowAddress(programID, state.PaymentHash)
	if err != nil || !keyEqual(expectedEscrow, escrow.Key) || bump != state.Bump {
		return v.fail(ErrorInvalidEscrowPda, "escrow address or bump mismatch")
	}
	if !keyEqual(vaultState.Owner, expectedEscrow) {
		return v.fail(ErrorInvalidTokenAccount, "vault authority mismatch")
	}

	if _, err := v.feeVault(programID, feeVault, state.Mint); err != nil {
		return err
	}

	netAmount, feeAmount := state.NetAmount, state.FeeAmount
	seeds := runtime.NewSignerSeeds(state.Bump, EscrowPrefix, state.PaymentHash[:])

	if err := invoker.Invoke(token.Transfer(vault.Key, recipientToken.Key, escrow.Key, netAmount), seeds); err != nil {
		return err
	}
	if feeAmount > 0 {
		if err := invoker.Invoke(token.Transfer(vault.Key, feeVault.Key, escrow.Key, feeAmount), seeds); err != nil {
			return err
		}
	}

	if err := state.transition(StatusClaimed); err != nil {
		return v.fail(ErrorNotActive, "escrow is not active")
	}
	copy(escrow.Data, state.Marshal())

	p.log.
		WithField("method", "processClaim").
		WithField("escrow", base58.Encode(escrow.Key)).
		WithField("net_amount", netAmount).
		WithField("fee_amount", feeAmount).
		Info("escrow claimed")

	return nil
}
