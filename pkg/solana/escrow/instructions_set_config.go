package escrow

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
)

const (
	SetConfigInstructionArgsSize = InitConfigInstructionArgsSize
)

type SetConfigInstructionArgs struct {
	FeeCollector ed25519.PublicKey
	FeeBps       uint16
}

type SetConfigInstructionAccounts struct {
	Authority ed25519.PublicKey
	Config    ed25519.PublicKey
}

func (args *SetConfigInstructionArgs) Tag() InstructionTag {
	return InstructionTagSetConfig
}

func (args *SetConfigInstructionArgs) Marshal() []byte {
	return marshalConfigArgs(InstructionTagSetConfig, args.FeeCollector, args.FeeBps)
}

func (args *SetConfigInstructionArgs) Unmarshal(data []byte) error {
	return unmarshalConfigArgs(data, InstructionTagSetConfig, &args.FeeCollector, &args.FeeBps)
}

func NewSetConfigInstruction(
	accounts *SetConfigInstructionAccounts,
	args *SetConfigInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Config,
				IsWritable: true,
				IsSigner:   false,
			},
		},
	}
}

func (p *Program) processSetConfig(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, args *SetConfigInstructionArgs) error {
	v := p.validator("processSetConfig")

	if err := v.accounts(accounts, 2); err != nil {
		return err
	}

	authority := accounts[0]
	config := accounts[1]

	if err := v.signer(authority, "authority"); err != nil {
		return err
	}
	if err := v.writable(config); err != nil {
		return err
	}

	if args.FeeBps > MaxFeeBps {
		return v.fail(ErrorFeeTooHigh, "fee exceeds maximum")
	}
	if !keyEqual(authority.Key, args.FeeCollector) {
		return v.fail(ErrorInvalidSigner, "authority must be the fee collector")
	}

	state, err := v.config(programID, config)
	if err != nil {
		return err
	}
	if !keyEqual(state.Authority, authority.Key) {
		return v.fail(ErrorInvalidSigner, "authority mismatch")
	}

	state.FeeCollector = args.FeeCollector
	state.FeeBps = args.FeeBps
	copy(config.Data, state.Marshal())

	p.log.
		WithField("method", "processSetConfig").
		WithField("fee_collector", base58.Encode(args.FeeCollector)).
		WithField("fee_bps", args.FeeBps).
		Info("config updated")

	return nil
}
