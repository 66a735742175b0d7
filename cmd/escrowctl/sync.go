package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/hashlock-escrow/pkg/data/escrow"
	escrow_sync "github.com/code-payments/hashlock-escrow/pkg/data/escrow/sync"
)

func newSyncCommand(e *env) *cobra.Command {
	var (
		all          bool
		createSchema bool
	)

	cmd := &cobra.Command{
		Use:   "sync [escrow address]",
		Short: "Sync on-chain escrow state into postgres",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			programID, err := e.config.programID()
			if err != nil {
				return err
			}

			client, commitment, err := e.solanaClient()
			if err != nil {
				return err
			}

			store, closeStore, err := e.newStore(cmd.Context(), e.config, createSchema)
			if err != nil {
				return errors.Wrap(err, "error opening escrow store")
			}
			defer closeStore()

			syncer := escrow_sync.New(client, store, escrow_sync.Config{
				ProgramID:  programID,
				Commitment: commitment,
				Workers:    e.config.SyncWorkers,
				Limiter:    e.limiter(),
			})

			if all {
				synced, err := syncer.SyncAll(cmd.Context())
				e.printf("synced: %d\n", synced)
				return err
			}

			address, err := parseKey("escrow", args[0])
			if err != nil {
				return err
			}

			record, err := syncer.Sync(cmd.Context(), address)
			if err != nil {
				return err
			}

			printRecord(e, record)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "sync every escrow account owned by the program")
	cmd.Flags().BoolVar(&createSchema, "create-schema", false, "create the escrow table if it doesn't exist")
	return cmd
}

func printRecord(e *env, record *escrow.Record) {
	e.printf("id: %d\n", record.Id)
	e.printf("address: %s\n", record.Address)
	e.printf("status: %s\n", record.Status)
	e.printf("payment_hash: %s\n", record.PaymentHash)
	e.printf("net_amount: %d\n", record.NetAmount)
	e.printf("fee_amount: %d\n", record.FeeAmount)
	e.printf("refund_after: %d\n", record.RefundAfter.Unix())
	e.printf("slot: %d\n", record.Slot)
}
