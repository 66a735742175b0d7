package main

import (
	"encoding/hex"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

func newDecodeCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode escrow instruction data and error codes",
	}

	instructionCmd := &cobra.Command{
		Use:   "instruction <hex data>",
		Short: "Decode hex encoded instruction data",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := parseHex("instruction data", args[0])
			if err != nil {
				return err
			}

			decoded, err := escrow_program.DecodeInstruction(data)
			if err != nil {
				return err
			}

			e.printf("instruction: %s\n", decoded.Tag())
			switch v := decoded.(type) {
			case *escrow_program.InitInstructionArgs:
				e.printf("payment_hash: %s\n", hex.EncodeToString(v.PaymentHash[:]))
				e.printf("recipient: %s\n", base58.Encode(v.Recipient))
				e.printf("refund: %s\n", base58.Encode(v.Refund))
				e.printf("refund_after: %d\n", v.RefundAfter)
				e.printf("amount: %d\n", v.Amount)
			case *escrow_program.ClaimInstructionArgs:
				paymentHash := v.PaymentHash()
				e.printf("preimage: %s\n", hex.EncodeToString(v.Preimage[:]))
				e.printf("payment_hash: %s\n", hex.EncodeToString(paymentHash[:]))
			case *escrow_program.RefundInstructionArgs:
			case *escrow_program.InitConfigInstructionArgs:
				e.printf("fee_collector: %s\n", base58.Encode(v.FeeCollector))
				e.printf("fee_bps: %d\n", v.FeeBps)
			case *escrow_program.SetConfigInstructionArgs:
				e.printf("fee_collector: %s\n", base58.Encode(v.FeeCollector))
				e.printf("fee_bps: %d\n", v.FeeBps)
			case *escrow_program.WithdrawFeesInstructionArgs:
				e.printf("amount: %d\n", v.Amount)
			}
			return nil
		},
	}

	errorCmd := &cobra.Command{
		Use:   "error <code>",
		Short: "Name a custom program error code",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			value, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return errors.Wrap(err, "invalid error code")
			}

			code, ok := escrow_program.GetErrorCode(escrow_program.ErrorCode(value))
			if !ok {
				return errors.Errorf("unknown error code %d", value)
			}

			e.printf("%d: %s\n", uint32(code), code.String())
			return nil
		},
	}

	cmd.AddCommand(instructionCmd, errorCmd)
	return cmd
}
