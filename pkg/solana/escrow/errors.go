package escrow

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
)

// ErrorCode is a custom program error returned by the escrow program. The
// numbering is stable across deployments.
type ErrorCode uint32

const (
	ErrorInvalidInstruction ErrorCode = iota + 1
	ErrorInvalidEscrowPda
	ErrorInvalidVaultAta
	ErrorInvalidTokenAccount
	ErrorInvalidSigner
	ErrorInvalidPreimage
	ErrorNotActive
	ErrorTooEarly
	ErrorInvalidConfigPda
	ErrorInvalidConfigState
	ErrorFeeTooHigh
	ErrorAlreadyInitialized
	ErrorInvalidFeeVaultAta
	ErrorInsufficientFunds
	ErrorWithdrawExceedsBalance
	ErrorArithmeticOverflow
	ErrorInvalidEscrowState
	ErrorNotEnoughAccountKeys
	ErrorAccountNotWritable
	ErrorInvalidSysvar
)

var errorCodeNames = map[ErrorCode]string{
	ErrorInvalidInstruction:     "InvalidInstruction",
	ErrorInvalidEscrowPda:       "InvalidEscrowPda",
	ErrorInvalidVaultAta:        "InvalidVaultAta",
	ErrorInvalidTokenAccount:    "InvalidTokenAccount",
	ErrorInvalidSigner:          "InvalidSigner",
	ErrorInvalidPreimage:        "InvalidPreimage",
	ErrorNotActive:              "NotActive",
	ErrorTooEarly:               "TooEarly",
	ErrorInvalidConfigPda:       "InvalidConfigPda",
	ErrorInvalidConfigState:     "InvalidConfigState",
	ErrorFeeTooHigh:             "FeeTooHigh",
	ErrorAlreadyInitialized:     "AlreadyInitialized",
	ErrorInvalidFeeVaultAta:     "InvalidFeeVaultAta",
	ErrorInsufficientFunds:      "InsufficientFunds",
	ErrorWithdrawExceedsBalance: "WithdrawExceedsBalance",
	ErrorArithmeticOverflow:     "ArithmeticOverflow",
	ErrorInvalidEscrowState:     "InvalidEscrowState",
	ErrorNotEnoughAccountKeys:   "NotEnoughAccountKeys",
	ErrorAccountNotWritable:     "AccountNotWritable",
	ErrorInvalidSysvar:          "InvalidSysvar",
}

func (e ErrorCode) String() string {
	name, ok := errorCodeNames[e]
	if !ok {
		return fmt.Sprintf("Unknown(%d)", uint32(e))
	}
	return name
}

func (e ErrorCode) Error() string {
	return fmt.Sprintf("escrow error %d: %s", uint32(e), e.String())
}

// CustomError returns the wire representation of the error code.
func (e ErrorCode) CustomError() solana.CustomError {
	return solana.CustomError(e)
}

// GetErrorCode extracts an escrow error code from a program or transaction
// error.
func GetErrorCode(err error) (ErrorCode, bool) {
	var code ErrorCode
	if errors.As(err, &code) {
		_, ok := errorCodeNames[code]
		return code, ok
	}

	var custom solana.CustomError
	if errors.As(err, &custom) {
		code = ErrorCode(custom)
		_, ok := errorCodeNames[code]
		return code, ok
	}

	return 0, false
}
