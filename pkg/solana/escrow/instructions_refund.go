package escrow

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

const (
	RefundInstructionArgsSize = 0
)

type RefundInstructionArgs struct {
}

type RefundInstructionAccounts struct {
	Refund      ed25519.PublicKey
	Escrow      ed25519.PublicKey
	Vault       ed25519.PublicKey
	RefundToken ed25519.PublicKey
}

func (args *RefundInstructionArgs) Tag() InstructionTag {
	return InstructionTagRefund
}

func (args *RefundInstructionArgs) Marshal() []byte {
	data, _ := newInstructionData(InstructionTagRefund, RefundInstructionArgsSize)
	return data
}

func (args *RefundInstructionArgs) Unmarshal(data []byte) error {
	return checkInstructionData(data, InstructionTagRefund, RefundInstructionArgsSize)
}

func NewRefundInstruction(
	accounts *RefundInstructionAccounts,
	args *RefundInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Refund,
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
				PublicKey:  accounts.RefundToken,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_CLOCK_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func (p *Program) processRefund(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, invoker runtime.Invoker) error {
	v := p.validator("processRefund")

	if err := v.accounts(accounts, 6); err != nil {
		return err
	}

	refund := accounts[0]
	escrow := accounts[1]
	vault := accounts[2]
	refundToken := accounts[3]
	tokenProgram := accounts[4]
	clockSysvar := accounts[5]

	if err := v.signer(refund, "refund authority"); err != nil {
		return err
	}
	if err := v.writable(escrow, vault, refundToken); err != nil {
		return err
	}
	if err := v.program(tokenProgram, SPL_TOKEN_PROGRAM_ID); err != nil {
		return err
	}
	if err := v.sysvar(clockSysvar, SYSVAR_CLOCK_PUBKEY); err != nil {
		return err
	}

	state, err := v.escrow(programID, escrow)
	if err != nil {
		return err
	}
	if state.Status != StatusActive {
		return v.fail(ErrorNotActive, "escrow is not active")
	}
	if !keyEqual(state.Refund, refund.Key) {
		return v.fail(ErrorInvalidSigner, "refund authority mismatch")
	}
	if !keyEqual(state.Vault, vault.Key) {
		return v.fail(ErrorInvalidVaultAta, "vault mismatch")
	}

	clock, err := v.clock(clockSysvar)
	if err != nil {
		return err
	}
	if clock.UnixTimestamp < state.RefundAfter {
		return v.fail(ErrorTooEarly, "refund deadline has not passed")
	}

	vaultState, err := v.tokenAccount(vault, "vault")
	if err != nil {
		return err
	}
	if !keyEqual(vaultState.Mint, state.Mint) {
		return v.fail(ErrorInvalidTokenAccount, "vault mint mismatch")
	}
	if _, err := v.tokenAccountFor(refundToken, "refund token account", refund.Key, state.Mint); err != nil {
		return err
	}

	expectedEscrow, bump, err := getEscrowAddress(programID, state.PaymentHash)
	if err != nil || !keyEqual(expectedEscrow, escrow.Key) || bump != state.Bump {
		return v.fail(ErrorInvalidEscrowPda, "escrow address or bump mismatch")
	}
	if !keyEqual(vaultState.Owner, expectedEscrow) {
		return v.fail(ErrorInvalidTokenAccount, "vault authority mismatch")
	}

	total, err := state.DepositedAmount()
	if err != nil {
		return v.fail(ErrorArithmeticOverflow, "deposited amount overflows")
	}

	err = invoker.Invoke(
		token.Transfer(vault.Key, refundToken.Key, escrow.Key, total),
		runtime.NewSignerSeeds(state.Bump, EscrowPrefix, state.PaymentHash[:]),
	)
	if err != nil {
		return err
	}

	if err := state.transition(StatusRefunded); err != nil {
		return v.fail(ErrorNotActive, "escrow is not active")
	}
	copy(escrow.Data, state.Marshal())

	p.log.
		WithField("method", "processRefund").
		WithField("escrow", base58.Encode(escrow.Key)).
		WithField("amount", total).
		Info("escrow refunded")

	return nil
}
