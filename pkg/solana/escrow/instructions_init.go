package escrow

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/binary"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/system"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

const (
	InitInstructionArgsSize = (32 + // payment_hash
		32 + // recipient
		32 + // refund
		8 + // refund_after
		8) // amount
)

type InitInstructionArgs struct {
	PaymentHash [32]byte
	Recipient   ed25519.PublicKey
	Refund      ed25519.PublicKey
	RefundAfter int64
	Amount      uint64
}

type InitInstructionAccounts struct {
	Payer      ed25519.PublicKey
	PayerToken ed25519.PublicKey
	Escrow     ed25519.PublicKey
	Vault      ed25519.PublicKey
	Mint       ed25519.PublicKey
	Config     ed25519.PublicKey
	FeeVault   ed25519.PublicKey
}

func (args *InitInstructionArgs) Tag() InstructionTag {
	return InstructionTagInit
}

func (args *InitInstructionArgs) Marshal() []byte {
	data, offset := newInstructionData(InstructionTagInit, InitInstructionArgsSize)

	binary.PutKey32(data[offset:], args.PaymentHash[:], &offset)
	binary.PutKey32(data[offset:], args.Recipient, &offset)
	binary.PutKey32(data[offset:], args.Refund, &offset)
	binary.PutInt64(data[offset:], args.RefundAfter, &offset)
	binary.PutUint64(data[offset:], args.Amount, &offset)

	return data
}

func (args *InitInstructionArgs) Unmarshal(data []byte) error {
	if err := checkInstructionData(data, InstructionTagInit, InitInstructionArgsSize); err != nil {
		return err
	}

	offset := 1
	binary.GetBytes32(data[offset:], &args.PaymentHash, &offset)
	binary.GetKey32(data[offset:], &args.Recipient, &offset)
	binary.GetKey32(data[offset:], &args.Refund, &offset)
	binary.GetInt64(data[offset:], &args.RefundAfter, &offset)
	binary.GetUint64(data[offset:], &args.Amount, &offset)

	return nil
}

func NewInitInstruction(
	accounts *InitInstructionAccounts,
	args *InitInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.PayerToken,
				IsWritable: true,
				IsSigner:   false,
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
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_ASSOCIATED_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
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
		},
	}
}

func (p *Program) processInit(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, args *InitInstructionArgs, invoker runtime.Invoker) error {
	v := p.validator("processInit")

	if err := v.accounts(accounts, 11); err != nil {
		return err
	}

	payer := accounts[0]
	payerToken := accounts[1]
	escrow := accounts[2]
	vault := accounts[3]
	mint := accounts[4]
	systemProgram := accounts[5]
	tokenProgram := accounts[6]
	ataProgram := accounts[7]
	rentSysvar := accounts[8]
	config := accounts[9]
	feeVault := accounts[10]

	if err := v.signer(payer, "payer"); err != nil {
		return err
	}
	if err := v.writable(payer, payerToken, escrow, vault, feeVault); err != nil {
		return err
	}
	if err := v.program(systemProgram, SYSTEM_PROGRAM_ID); err != nil {
		return err
	}
	if err := v.program(tokenProgram, SPL_TOKEN_PROGRAM_ID); err != nil {
		return err
	}
	if err := v.program(ataProgram, SPL_ASSOCIATED_TOKEN_PROGRAM_ID); err != nil {
		return err
	}
	if err := v.sysvar(rentSysvar, SYSVAR_RENT_PUBKEY); err != nil {
		return err
	}

	expectedEscrow, bump, err := getEscrowAddress(programID, args.PaymentHash)
	if err != nil || !keyEqual(expectedEscrow, escrow.Key) {
		return v.fail(ErrorInvalidEscrowPda, "escrow address mismatch")
	}

	// Each payment hash can only ever be escrowed once, whatever the other
	// arguments are.
	if !escrow.DataIsEmpty() {
		return v.fail(ErrorAlreadyInitialized, "escrow already initialized")
	}

	configState, err := v.config(programID, config)
	if err != nil {
		return err
	}
	if configState.FeeBps > MaxFeeBps {
		return v.fail(ErrorFeeTooHigh, "configured fee exceeds maximum")
	}

	expectedVault, err := token.GetAssociatedAccount(escrow.Key, mint.Key)
	if err != nil || !keyEqual(expectedVault, vault.Key) {
		return v.fail(ErrorInvalidVaultAta, "vault address mismatch")
	}
	if !vault.DataIsEmpty() {
		if _, err := v.tokenAccountFor(vault, "vault", escrow.Key, mint.Key); err != nil {
			return err
		}
	}

	expectedFeeVault, err := token.GetAssociatedAccount(config.Key, mint.Key)
	if err != nil || !keyEqual(expectedFeeVault, feeVault.Key) {
		return v.fail(ErrorInvalidFeeVaultAta, "fee vault address mismatch")
	}
	if !feeVault.DataIsEmpty() {
		if _, err := v.tokenAccountFor(feeVault, "fee vault", config.Key, mint.Key); err != nil {
			return err
		}
	}

	payerTokenState, err := v.tokenAccountFor(payerToken, "payer token account", payer.Key, mint.Key)
	if err != nil {
		return err
	}

	fee, total, err := CalculateDeposit(args.Amount, configState.FeeBps)
	if err != nil {
		return v.fail(ErrorArithmeticOverflow, "deposit total overflows")
	}
	if payerTokenState.Amount < total {
		return v.fail(ErrorInsufficientFunds, "payer token balance below deposit total")
	}

	rent, err := v.rent(rentSysvar)
	if err != nil {
		return err
	}

	err = invoker.Invoke(
		system.CreateAccount(
			payer.Key,
			escrow.Key,
			programID,
			rent.MinimumBalance(EscrowAccountSize),
			EscrowAccountSize,
		),
		runtime.NewSignerSeeds(bump, EscrowPrefix, args.PaymentHash[:]),
	)
	if err != nil {
		return err
	}

	if vault.DataIsEmpty() {
		createVault, _, err := token.CreateAssociatedTokenAccount(payer.Key, escrow.Key, mint.Key)
		if err != nil {
			return err
		}
		if err := invoker.Invoke(createVault); err != nil {
			return err
		}
	}

	if feeVault.DataIsEmpty() {
		createFeeVault, _, err := token.CreateAssociatedTokenAccount(payer.Key, config.Key, mint.Key)
		if err != nil {
			return err
		}
		if err := invoker.Invoke(createFeeVault); err != nil {
			return err
		}
	}

	if err := invoker.Invoke(token.Transfer(payerToken.Key, vault.Key, payer.Key, total)); err != nil {
		return err
	}

	state := &EscrowAccount{
		Version:      EscrowAccountVersion,
		Status:       StatusActive,
		PaymentHash:  args.PaymentHash,
		Recipient:    args.Recipient,
		Refund:       args.Refund,
		RefundAfter:  args.RefundAfter,
		Mint:         mint.Key,
		NetAmount:    args.Amount,
		FeeAmount:    fee,
		FeeBps:       configState.FeeBps,
		FeeCollector: configState.FeeCollector,
		Vault:        vault.Key,
		Bump:         bump,
	}
	copy(escrow.Data, state.Marshal())

	p.log.
		WithField("method", "processInit").
		WithField("escrow", base58.Encode(escrow.Key)).
		WithField("payment_hash", hex.EncodeToString(args.PaymentHash[:])).
		WithField("net_amount", state.NetAmount).
		WithField("fee_amount", state.FeeAmount).
		Info("escrow initialized")

	return nil
}
