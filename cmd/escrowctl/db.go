package main

import (
	"encoding/hex"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/hashlock-escrow/pkg/data/escrow"
	"github.com/code-payments/hashlock-escrow/pkg/database/query"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

func newDBCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Query synced escrow records",
	}

	var paymentHash string
	getCmd := &cobra.Command{
		Use:   "get [escrow address]",
		Short: "Show a synced escrow by address or payment hash",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(paymentHash) > 0 {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := e.newStore(cmd.Context(), e.config, false)
			if err != nil {
				return errors.Wrap(err, "error opening escrow store")
			}
			defer closeStore()

			var record *escrow.Record
			if len(paymentHash) > 0 {
				hash, err := parseBytes32("payment hash", paymentHash)
				if err != nil {
					return err
				}
				record, err = store.GetByPaymentHash(cmd.Context(), hex.EncodeToString(hash[:]))
				if err != nil {
					return err
				}
			} else {
				address, err := parseKey("escrow", args[0])
				if err != nil {
					return err
				}
				record, err = store.GetByAddress(cmd.Context(), base58.Encode(address))
				if err != nil {
					return err
				}
			}

			printRecord(e, record)
			return nil
		},
	}
	getCmd.Flags().StringVar(&paymentHash, "payment-hash", "", "look the escrow up by its hex payment hash")

	var (
		cursor string
		order  string
		limit  uint64
	)
	listCmd := &cobra.Command{
		Use:   "list <active|claimed|refunded>",
		Short: "Page through synced escrows with a status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := escrow_program.ParseStatus(args[0])
			if err != nil {
				return err
			}

			direction, err := query.ToOrdering(order)
			if err != nil {
				return errors.Wrap(err, "invalid order")
			}

			start, err := query.CursorFromBase58(cursor)
			if err != nil {
				return err
			}

			store, closeStore, err := e.newStore(cmd.Context(), e.config, false)
			if err != nil {
				return errors.Wrap(err, "error opening escrow store")
			}
			defer closeStore()

			total, err := store.GetCountByStatus(cmd.Context(), status)
			if err != nil {
				return err
			}
			e.printf("total: %d\n", total)

			records, err := store.GetAllByStatus(cmd.Context(), status, start, limit, direction)
			if err == escrow.ErrEscrowNotFound {
				return nil
			} else if err != nil {
				return err
			}

			for _, record := range records {
				e.printf("%d %s %s %d\n", record.Id, record.Address, record.PaymentHash, record.NetAmount+record.FeeAmount)
			}

			if limit > 0 && uint64(len(records)) == limit {
				last := records[len(records)-1]
				e.printf("next: %s\n", query.ToCursor(last.Id).ToBase58())
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&cursor, "cursor", "", "base58 cursor printed by a previous page")
	listCmd.Flags().StringVar(&order, "order", "asc", "asc or desc")
	listCmd.Flags().Uint64Var(&limit, "limit", 50, "page size, 0 for everything")

	cmd.AddCommand(getCmd, listCmd)
	return cmd
}
