package main

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

func newDeriveCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive escrow program addresses",
	}

	var fromPreimage bool
	escrowCmd := &cobra.Command{
		Use:   "escrow <payment hash>",
		Short: "Derive the escrow address locked to a hex encoded payment hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			programID, err := e.config.programID()
			if err != nil {
				return err
			}

			var paymentHash [32]byte
			if fromPreimage {
				preimage, err := parseBytes32("preimage", args[0])
				if err != nil {
					return err
				}
				paymentHash = sha256.Sum256(preimage[:])
			} else {
				paymentHash, err = parseBytes32("payment hash", args[0])
				if err != nil {
					return err
				}
			}

			address, bump, err := deriveEscrowAddress(programID, paymentHash)
			if err != nil {
				return err
			}

			e.printf("address: %s\nbump: %d\n", base58.Encode(address), bump)
			return nil
		},
	}
	escrowCmd.Flags().BoolVar(&fromPreimage, "preimage", false, "treat the argument as the preimage rather than its hash")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Derive the program's config address",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			programID, err := e.config.programID()
			if err != nil {
				return err
			}

			address, bump, err := deriveConfigAddress(programID)
			if err != nil {
				return err
			}

			e.printf("address: %s\nbump: %d\n", base58.Encode(address), bump)
			return nil
		},
	}

	vaultCmd := &cobra.Command{
		Use:   "vault <escrow> <mint>",
		Short: "Derive the token vault holding an escrow's deposit",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			escrow, err := parseKey("escrow", args[0])
			if err != nil {
				return err
			}

			mint, err := parseKey("mint", args[1])
			if err != nil {
				return err
			}

			vault, err := escrow_program.GetVaultAddress(&escrow_program.GetVaultAddressArgs{
				Escrow: escrow,
				Mint:   mint,
			})
			if err != nil {
				return err
			}

			e.printf("address: %s\n", base58.Encode(vault))
			return nil
		},
	}

	feeVaultCmd := &cobra.Command{
		Use:   "fee-vault <mint>",
		Short: "Derive the token vault collecting fees for a mint",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			programID, err := e.config.programID()
			if err != nil {
				return err
			}

			mint, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}

			config, _, err := deriveConfigAddress(programID)
			if err != nil {
				return err
			}

			feeVault, err := token.GetAssociatedAccount(config, mint)
			if err != nil {
				return err
			}

			e.printf("address: %s\n", base58.Encode(feeVault))
			return nil
		},
	}

	cmd.AddCommand(escrowCmd, configCmd, vaultCmd, feeVaultCmd)
	return cmd
}

func deriveEscrowAddress(programID ed25519.PublicKey, paymentHash [32]byte) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(programID, escrow_program.EscrowPrefix, paymentHash[:])
}

func deriveConfigAddress(programID ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(programID, escrow_program.ConfigPrefix)
}
