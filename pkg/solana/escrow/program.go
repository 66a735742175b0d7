// Package escrow implements the hash-locked, time-boxed token escrow program
// along with the client side instruction builders and account decoders.
package escrow

import (
	"crypto/ed25519"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/system"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("evYHPt33hCYHNm7iFHAHXmSkYrEoDnBSv69MHwLfYyK")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID               = ed25519.PublicKey(system.ProgramKey[:])
	SPL_TOKEN_PROGRAM_ID            = token.ProgramKey
	SPL_ASSOCIATED_TOKEN_PROGRAM_ID = token.AssociatedTokenAccountProgramKey

	SYSVAR_RENT_PUBKEY  = system.RentSysVar
	SYSVAR_CLOCK_PUBKEY = system.ClockSysVar
)

// MaxFeeBps is the ceiling on the protocol fee, in basis points.
const MaxFeeBps = 2500

const bpsDenominator = 10_000

// Program processes escrow instructions against the accounts supplied by the
// ledger. It holds no state of its own.
type Program struct {
	log *logrus.Entry
}

func NewProgram() *Program {
	return &Program{
		log: logrus.StandardLogger().WithField("type", "solana/escrow"),
	}
}

var _ runtime.Processor = (*Program)(nil)

// Process implements runtime.Processor.
func (p *Program) Process(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte, invoker runtime.Invoker) error {
	args, err := DecodeInstruction(data)
	if err != nil {
		return p.reject("Process", ErrorInvalidInstruction, "malformed instruction data")
	}

	switch args := args.(type) {
	case *InitInstructionArgs:
		return p.processInit(programID, accounts, args, invoker)
	case *ClaimInstructionArgs:
		return p.processClaim(programID, accounts, args, invoker)
	case *RefundInstructionArgs:
		return p.processRefund(programID, accounts, invoker)
	case *InitConfigInstructionArgs:
		return p.processInitConfig(programID, accounts, args, invoker)
	case *SetConfigInstructionArgs:
		return p.processSetConfig(programID, accounts, args)
	case *WithdrawFeesInstructionArgs:
		return p.processWithdrawFees(programID, accounts, args, invoker)
	default:
		return p.reject("Process", ErrorInvalidInstruction, "unhandled instruction")
	}
}

// reject logs the failed precondition and returns its error code.
func (p *Program) reject(method string, code ErrorCode, reason string) error {
	p.log.
		WithField("method", method).
		WithField("error", code.String()).
		Debug(reason)
	return code
}
