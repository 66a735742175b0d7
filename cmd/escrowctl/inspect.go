package main

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

func newInspectCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Fetch and decode escrow program accounts",
	}

	escrowCmd := &cobra.Command{
		Use:   "escrow <address>",
		Short: "Show an escrow account and its vault balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseKey("escrow", args[0])
			if err != nil {
				return err
			}

			client, commitment, err := e.solanaClient()
			if err != nil {
				return err
			}

			data, err := e.getProgramAccount(cmd, client, commitment, address)
			if err != nil {
				return err
			}

			var state escrow_program.EscrowAccount
			if err := state.Unmarshal(data); err != nil {
				return errors.Wrap(err, "account is not an escrow")
			}

			paymentHash := state.PaymentHash
			e.printf("address: %s\n", base58.Encode(address))
			e.printf("version: %d\n", state.Version)
			e.printf("status: %s\n", state.Status)
			e.printf("payment_hash: %x\n", paymentHash[:])
			e.printf("recipient: %s\n", base58.Encode(state.Recipient))
			e.printf("refund: %s\n", base58.Encode(state.Refund))
			e.printf("refund_after: %d\n", state.RefundAfter)
			e.printf("mint: %s\n", base58.Encode(state.Mint))
			e.printf("net_amount: %d\n", state.NetAmount)
			e.printf("fee_amount: %d\n", state.FeeAmount)
			e.printf("fee_bps: %d\n", state.FeeBps)
			e.printf("fee_collector: %s\n", base58.Encode(state.FeeCollector))
			e.printf("vault: %s\n", base58.Encode(state.Vault))
			e.printf("bump: %d\n", state.Bump)

			balance, err := token.NewClient(client, state.Mint).GetBalance(cmd.Context(), state.Vault, commitment)
			switch err {
			case nil:
				e.printf("vault_balance: %d\n", balance)
			case token.ErrAccountNotFound:
				e.printf("vault_balance: closed\n")
			default:
				return errors.Wrap(err, "error getting vault")
			}
			return nil
		},
	}

	var mint string
	configCmd := &cobra.Command{
		Use:   "config [address]",
		Short: "Show the program's config account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var address ed25519.PublicKey
			if len(args) > 0 {
				key, err := parseKey("config", args[0])
				if err != nil {
					return err
				}
				address = key
			} else {
				programID, err := e.config.programID()
				if err != nil {
					return err
				}

				address, _, err = deriveConfigAddress(programID)
				if err != nil {
					return err
				}
			}

			client, commitment, err := e.solanaClient()
			if err != nil {
				return err
			}

			data, err := e.getProgramAccount(cmd, client, commitment, address)
			if err != nil {
				return err
			}

			var state escrow_program.ConfigAccount
			if err := state.Unmarshal(data); err != nil {
				return errors.Wrap(err, "account is not a config")
			}

			e.printf("address: %s\n", base58.Encode(address))
			e.printf("version: %d\n", state.Version)
			e.printf("authority: %s\n", base58.Encode(state.Authority))
			e.printf("fee_collector: %s\n", base58.Encode(state.FeeCollector))
			e.printf("fee_bps: %d\n", state.FeeBps)
			e.printf("bump: %d\n", state.Bump)

			if len(mint) == 0 {
				return nil
			}

			mintKey, err := parseKey("mint", mint)
			if err != nil {
				return err
			}

			feeVault, err := token.GetAssociatedAccount(address, mintKey)
			if err != nil {
				return errors.Wrap(err, "error deriving fee vault")
			}
			e.printf("fee_vault: %s\n", base58.Encode(feeVault))

			balance, err := token.NewClient(client, mintKey).GetBalance(cmd.Context(), feeVault, commitment)
			switch err {
			case nil:
				e.printf("fee_vault_balance: %d\n", balance)
			case token.ErrAccountNotFound:
				e.printf("fee_vault_balance: none\n")
			default:
				return errors.Wrap(err, "error getting fee vault")
			}
			return nil
		},
	}
	configCmd.Flags().StringVar(&mint, "mint", "", "also show the fee vault of this mint")

	cmd.AddCommand(escrowCmd, configCmd)
	return cmd
}

func (e *env) solanaClient() (solana.Client, solana.Commitment, error) {
	commitment, err := e.config.commitment()
	if err != nil {
		return nil, commitment, err
	}
	return e.newClient(e.config), commitment, nil
}

// getProgramAccount fetches the data of an account owned by the configured
// escrow program.
func (e *env) getProgramAccount(cmd *cobra.Command, client solana.Client, commitment solana.Commitment, address ed25519.PublicKey) ([]byte, error) {
	programID, err := e.config.programID()
	if err != nil {
		return nil, err
	}

	info, err := client.GetAccountInfo(cmd.Context(), address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, errors.Errorf("account %s not found", base58.Encode(address))
	} else if err != nil {
		return nil, errors.Wrap(err, "error getting account")
	}

	if !info.Owner.Equal(programID) {
		return nil, errors.Errorf("account %s is owned by %s, not the escrow program", base58.Encode(address), base58.Encode(info.Owner))
	}
	return info.Data, nil
}
