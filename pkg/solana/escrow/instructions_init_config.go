package escrow

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/binary"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/system"
)

const (
	InitConfigInstructionArgsSize = (32 + // fee_collector
		2) // fee_bps
)

type InitConfigInstructionArgs struct {
	FeeCollector ed25519.PublicKey
	FeeBps       uint16
}

type InitConfigInstructionAccounts struct {
	Authority ed25519.PublicKey
	Config    ed25519.PublicKey
}

func (args *InitConfigInstructionArgs) Tag() InstructionTag {
	return InstructionTagInitConfig
}

func (args *InitConfigInstructionArgs) Marshal() []byte {
	return marshalConfigArgs(InstructionTagInitConfig, args.FeeCollector, args.FeeBps)
}

func (args *InitConfigInstructionArgs) Unmarshal(data []byte) error {
	return unmarshalConfigArgs(data, InstructionTagInitConfig, &args.FeeCollector, &args.FeeBps)
}

func NewInitConfigInstruction(
	accounts *InitConfigInstructionAccounts,
	args *InitConfigInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Authority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Config,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func marshalConfigArgs(tag InstructionTag, feeCollector ed25519.PublicKey, feeBps uint16) []byte {
	data, offset := newInstructionData(tag, InitConfigInstructionArgsSize)
	binary.PutKey32(data[offset:], feeCollector, &offset)
	binary.PutUint16(data[offset:], feeBps, &offset)
	return data
}

func unmarshalConfigArgs(data []byte, tag InstructionTag, feeCollector *ed25519.PublicKey, feeBps *uint16) error {
	if err := checkInstructionData(data, tag, InitConfigInstructionArgsSize); err != nil {
		return err
	}

	offset := 1
	binary.GetKey32(data[offset:], feeCollector, &offset)
	binary.GetUint16(data[offset:], feeBps, &offset)
	return nil
}

func (p *Program) processInitConfig(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, args *InitConfigInstructionArgs, invoker runtime.Invoker) error {
	v := p.validator("processInitConfig")

	if err := v.accounts(accounts, 4); err != nil {
		return err
	}

	authority := accounts[0]
	config := accounts[1]
	systemProgram := accounts[2]
	rentSysvar := accounts[3]

	if err := v.signer(authority, "authority"); err != nil {
		return err
	}
	if err := v.writable(authority, config); err != nil {
		return err
	}
	if err := v.program(systemProgram, SYSTEM_PROGRAM_ID); err != nil {
		return err
	}
	if err := v.sysvar(rentSysvar, SYSVAR_RENT_PUBKEY); err != nil {
		return err
	}

	if args.FeeBps > MaxFeeBps {
		return v.fail(ErrorFeeTooHigh, "fee exceeds maximum")
	}
	// The authority and fee collector are always the same key.
	if !keyEqual(authority.Key, args.FeeCollector) {
		return v.fail(ErrorInvalidSigner, "authority must be the fee collector")
	}

	expected, bump, err := getConfigAddress(programID)
	if err != nil || !keyEqual(expected, config.Key) {
		return v.fail(ErrorInvalidConfigPda, "config address mismatch")
	}
	if !config.DataIsEmpty() {
		return v.fail(ErrorAlreadyInitialized, "config already initialized")
	}

	rent, err := v.rent(rentSysvar)
	if err != nil {
		return err
	}

	err = invoker.Invoke(
		system.CreateAccount(
			authority.Key,
			config.Key,
			programID,
			rent.MinimumBalance(ConfigAccountSize),
			ConfigAccountSize,
		),
		runtime.NewSignerSeeds(bump, ConfigPrefix),
	)
	if err != nil {
		return err
	}

	state := &ConfigAccount{
		Version:      ConfigAccountVersion,
		Authority:    authority.Key,
		FeeCollector: args.FeeCollector,
		FeeBps:       args.FeeBps,
		Bump:         bump,
	}
	copy(config.Data, state.Marshal())

	p.log.
		WithField("method", "processInitConfig").
		WithField("authority", base58.Encode(authority.Key)).
		WithField("fee_bps", args.FeeBps).
		Info("config initialized")

	return nil
}
