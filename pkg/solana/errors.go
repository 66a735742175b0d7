package solana

import (
	"fmt"
)

// InstructionErrorKey is the string keys returned in an instruction error.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData    InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID        InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount      InstructionErrorKey = "UninitializedAccount"
	InstructionErrorReadonlyDataModified      InstructionErrorKey = "ReadonlyDataModified"
	InstructionErrorNotEnoughAccountKeys      InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorUnsupportedProgramID      InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorInvalidSeeds              InstructionErrorKey = "InvalidSeeds"
	InstructionErrorPrivilegeEscalation       InstructionErrorKey = "PrivilegeEscalation"
	InstructionErrorMissingAccount            InstructionErrorKey = "MissingAccount"
	InstructionErrorExternalAccountDataMod    InstructionErrorKey = "ExternalAccountDataModified"
	InstructionErrorUnbalancedInstruction     InstructionErrorKey = "UnbalancedInstruction"
	InstructionErrorCallDepth                 InstructionErrorKey = "CallDepth"
)

// Error implements error, so runtimes can return the builtin keys directly.
func (k InstructionErrorKey) Error() string {
	return string(k)
}

// CustomError is the numerical error returned by a non-system program.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %x", int(c))
}

// InstructionError indicates an instruction returned an error in a transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (e InstructionError) Error() string {
	return fmt.Sprintf("error processing instruction %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying instruction error.
func (e InstructionError) Unwrap() error {
	return e.Err
}

// CustomError returns the custom program error, if one was returned.
func (e InstructionError) CustomError() *CustomError {
	switch err := e.Err.(type) {
	case CustomError:
		return &err
	case interface{ CustomError() CustomError }:
		ce := err.CustomError()
		return &ce
	default:
		return nil
	}
}
