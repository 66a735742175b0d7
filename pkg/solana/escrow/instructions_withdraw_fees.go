package escrow

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/binary"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

const (
	WithdrawFeesInstructionArgsSize = 8 // amount
)

// WithdrawFeesInstructionArgs withdraws Amount from the fee vault. An Amount
// of zero withdraws the entire balance.
type WithdrawFeesInstructionArgs struct {
	Amount uint64
}

type WithdrawFeesInstructionAccounts struct {
	FeeCollector ed25519.PublicKey
	Config       ed25519.PublicKey
	FeeVault     ed25519.PublicKey
	Destination  ed25519.PublicKey
}

func (args *WithdrawFeesInstructionArgs) Tag() InstructionTag {
	return InstructionTagWithdrawFees
}

func (args *WithdrawFeesInstructionArgs) Marshal() []byte {
	data, offset := newInstructionData(InstructionTagWithdrawFees, WithdrawFeesInstructionArgsSize)
	binary.PutUint64(data[offset:], args.Amount, &offset)
	return data
}

func (args *WithdrawFeesInstructionArgs) Unmarshal(data []byte) error {
	if err := checkInstructionData(data, InstructionTagWithdrawFees, WithdrawFeesInstructionArgsSize); err != nil {
		return err
	}

	offset := 1
	binary.GetUint64(data[offset:], &args.Amount, &offset)
	return nil
}

func NewWithdrawFeesInstruction(
	accounts *WithdrawFeesInstructionAccounts,
	args *WithdrawFeesInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.FeeCollector,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Config,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.FeeVault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Destination,
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

func (p *Program) processWithdrawFees(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, args *WithdrawFeesInstructionArgs, invoker runtime.Invoker) error {
	v := p.validator("processWithdrawFees")

	if err := v.accounts(accounts, 5); err != nil {
		return err
	}

	feeCollector := accounts[0]
	config := accounts[1]
	feeVault := accounts[2]
	destination := accounts[3]
	tokenProgram := accounts[4]

	if err := v.signer(feeCollector, "fee collector"); err != nil {
		return err
	}
	if err := v.writable(feeVault, destination); err != nil {
		return err
	}
	if err := v.program(tokenProgram, SPL_TOKEN_PROGRAM_ID); err != nil {
		return err
	}

	state, err := v.config(programID, config)
	if err != nil {
		return err
	}
	if !keyEqual(state.Authority, feeCollector.Key) {
		return v.fail(ErrorInvalidSigner, "authority mismatch")
	}
	if !keyEqual(state.FeeCollector, feeCollector.Key) {
		return v.fail(ErrorInvalidSigner, "fee collector mismatch")
	}

	feeVaultState, err := v.tokenAccount(feeVault, "fee vault")
	if err != nil {
		return err
	}
	if !keyEqual(feeVaultState.Owner, config.Key) {
		return v.fail(ErrorInvalidTokenAccount, "fee vault owner mismatch")
	}
	expectedFeeVault, err := token.GetAssociatedAccount(config.Key, feeVaultState.Mint)
	if err != nil || !keyEqual(expectedFeeVault, feeVault.Key) {
		return v.fail(ErrorInvalidFeeVaultAta, "fee vault address mismatch")
	}

	if _, err := v.tokenAccountFor(destination, "destination token account", state.FeeCollector, feeVaultState.Mint); err != nil {
		return err
	}

	amount := args.Amount
	if amount == 0 {
		amount = feeVaultState.Amount
	}
	if amount > feeVaultState.Amount {
		return v.fail(ErrorWithdrawExceedsBalance, "withdraw amount exceeds fee vault balance")
	}
	if amount == 0 {
		return nil
	}

	err = invoker.Invoke(
		token.Transfer(feeVault.Key, destination.Key, config.Key, amount),
		runtime.NewSignerSeeds(state.Bump, ConfigPrefix),
	)
	if err != nil {
		return err
	}

	p.log.
		WithField("method", "processWithdrawFees").
		WithField("destination", base58.Encode(destination.Key)).
		WithField("amount", amount).
		Info("fees withdrawn")

	return nil
}
