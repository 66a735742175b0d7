package escrow

import (
	"fmt"

	"github.com/pkg/errors"
)

// InstructionTag is the leading byte of every escrow instruction.
type InstructionTag uint8

const (
	InstructionTagInit InstructionTag = iota
	InstructionTagClaim
	InstructionTagRefund
	InstructionTagInitConfig
	InstructionTagSetConfig
	InstructionTagWithdrawFees
)

func (t InstructionTag) String() string {
	switch t {
	case InstructionTagInit:
		return "init"
	case InstructionTagClaim:
		return "claim"
	case InstructionTagRefund:
		return "refund"
	case InstructionTagInitConfig:
		return "init_config"
	case InstructionTagSetConfig:
		return "set_config"
	case InstructionTagWithdrawFees:
		return "withdraw_fees"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// InstructionArgs is the decoded form of an escrow instruction's data.
type InstructionArgs interface {
	Tag() InstructionTag
	Marshal() []byte
	Unmarshal(data []byte) error
}

// DecodeInstruction parses instruction data into its typed arguments. Bytes
// past the fixed layout of the instruction are ignored.
func DecodeInstruction(data []byte) (InstructionArgs, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrInvalidInstructionData, "missing instruction tag")
	}

	var args InstructionArgs
	switch InstructionTag(data[0]) {
	case InstructionTagInit:
		args = &InitInstructionArgs{}
	case InstructionTagClaim:
		args = &ClaimInstructionArgs{}
	case InstructionTagRefund:
		args = &RefundInstructionArgs{}
	case InstructionTagInitConfig:
		args = &InitConfigInstructionArgs{}
	case InstructionTagSetConfig:
		args = &SetConfigInstructionArgs{}
	case InstructionTagWithdrawFees:
		args = &WithdrawFeesInstructionArgs{}
	default:
		return nil, errors.Wrapf(ErrInvalidInstructionData, "unknown instruction tag %d", data[0])
	}

	if err := args.Unmarshal(data); err != nil {
		return nil, err
	}
	return args, nil
}

func newInstructionData(tag InstructionTag, argsSize int) ([]byte, int) {
	data := make([]byte, 1+argsSize)
	data[0] = byte(tag)
	return data, 1
}

func checkInstructionData(data []byte, tag InstructionTag, argsSize int) error {
	if len(data) < 1+argsSize {
		return errors.Wrapf(ErrInvalidInstructionData, "%s instruction requires %d bytes, got %d", tag, 1+argsSize, len(data))
	}
	if InstructionTag(data[0]) != tag {
		return errors.Wrapf(ErrInvalidInstructionData, "expected %s instruction, got tag %d", tag, data[0])
	}
	return nil
}
