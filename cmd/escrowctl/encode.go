package main

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/spf13/cobra"

	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

func newEncodeCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode escrow instruction data as hex",
	}

	output := func(args escrow_program.InstructionArgs) error {
		e.printf("%s\n", hex.EncodeToString(args.Marshal()))
		return nil
	}

	var (
		paymentHash string
		recipient   string
		refund      string
		refundAfter int64
		amount      uint64
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Encode an init instruction",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			hash, err := parseBytes32("payment hash", paymentHash)
			if err != nil {
				return err
			}

			recipientKey, err := parseKey("recipient", recipient)
			if err != nil {
				return err
			}

			refundKey, err := parseKey("refund", refund)
			if err != nil {
				return err
			}

			return output(&escrow_program.InitInstructionArgs{
				PaymentHash: hash,
				Recipient:   recipientKey,
				Refund:      refundKey,
				RefundAfter: refundAfter,
				Amount:      amount,
			})
		},
	}
	initCmd.Flags().StringVar(&paymentHash, "payment-hash", "", "hex encoded sha256 of the preimage")
	initCmd.Flags().StringVar(&recipient, "recipient", "", "recipient authority")
	initCmd.Flags().StringVar(&refund, "refund", "", "refund authority")
	initCmd.Flags().Int64Var(&refundAfter, "refund-after", 0, "unix timestamp after which a refund is allowed")
	initCmd.Flags().Uint64Var(&amount, "amount", 0, "net amount released to the recipient, in quarks")
	for _, name := range []string{"payment-hash", "recipient", "refund", "refund-after", "amount"} {
		_ = initCmd.MarkFlagRequired(name)
	}

	var preimage string
	claimCmd := &cobra.Command{
		Use:   "claim",
		Short: "Encode a claim instruction",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			value, err := parseBytes32("preimage", preimage)
			if err != nil {
				return err
			}
			return output(&escrow_program.ClaimInstructionArgs{Preimage: value})
		},
	}
	claimCmd.Flags().StringVar(&preimage, "preimage", "", "hex encoded preimage")
	_ = claimCmd.MarkFlagRequired("preimage")

	refundCmd := &cobra.Command{
		Use:   "refund",
		Short: "Encode a refund instruction",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return output(&escrow_program.RefundInstructionArgs{})
		},
	}

	newConfigCommand := func(use, short string, build func(feeCollector ed25519.PublicKey, feeBps uint16) escrow_program.InstructionArgs) *cobra.Command {
		var (
			feeCollector string
			feeBps       uint16
		)
		configCmd := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				key, err := parseKey("fee collector", feeCollector)
				if err != nil {
					return err
				}
				return output(build(key, feeBps))
			},
		}
		configCmd.Flags().StringVar(&feeCollector, "fee-collector", "", "fee collector, which must also be the config authority")
		configCmd.Flags().Uint16Var(&feeBps, "fee-bps", 0, "fee in basis points")
		_ = configCmd.MarkFlagRequired("fee-collector")
		_ = configCmd.MarkFlagRequired("fee-bps")
		return configCmd
	}

	initConfigCmd := newConfigCommand("init-config", "Encode an init_config instruction", func(feeCollector ed25519.PublicKey, feeBps uint16) escrow_program.InstructionArgs {
		return &escrow_program.InitConfigInstructionArgs{FeeCollector: feeCollector, FeeBps: feeBps}
	})
	setConfigCmd := newConfigCommand("set-config", "Encode a set_config instruction", func(feeCollector ed25519.PublicKey, feeBps uint16) escrow_program.InstructionArgs {
		return &escrow_program.SetConfigInstructionArgs{FeeCollector: feeCollector, FeeBps: feeBps}
	})

	var withdrawAmount uint64
	withdrawFeesCmd := &cobra.Command{
		Use:   "withdraw-fees",
		Short: "Encode a withdraw_fees instruction",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return output(&escrow_program.WithdrawFeesInstructionArgs{Amount: withdrawAmount})
		},
	}
	withdrawFeesCmd.Flags().Uint64Var(&withdrawAmount, "amount", 0, "amount to withdraw, 0 for the whole balance")

	cmd.AddCommand(initCmd, claimCmd, refundCmd, initConfigCmd, setConfigCmd, withdrawFeesCmd)
	return cmd
}
