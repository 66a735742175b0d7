package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

const (
	schemaCreate = `
		CREATE TABLE IF NOT EXISTS escrow__program_escrow(
			id SERIAL NOT NULL PRIMARY KEY,

			address TEXT NOT NULL,
			bump INTEGER NOT NULL,

			payment_hash TEXT NOT NULL,

			recipient TEXT NOT NULL,
			refund TEXT NOT NULL,
			refund_after TIMESTAMP WITH TIME ZONE NOT NULL,

			mint TEXT NOT NULL,
			vault_address TEXT NOT NULL,

			net_amount NUMERIC(20, 0) NOT NULL,
			fee_amount NUMERIC(20, 0) NOT NULL,

			fee_bps INTEGER NOT NULL,
			fee_collector TEXT NOT NULL,

			status INTEGER NOT NULL,

			slot BIGINT NOT NULL,

			last_updated_at TIMESTAMP WITH TIME ZONE,

			CONSTRAINT escrow__program_escrow__uniq__address UNIQUE (address),
			CONSTRAINT escrow__program_escrow__uniq__payment_hash UNIQUE (payment_hash),
			CONSTRAINT escrow__program_escrow__uniq__vault_address UNIQUE (vault_address)
		);

		CREATE INDEX IF NOT EXISTS escrow__program_escrow__idx__status ON escrow__program_escrow (status, id);
	`

	schemaDrop = `
		DROP TABLE IF EXISTS escrow__program_escrow;
	`
)

// CreateSchema creates the escrow table and its indices if they don't
// already exist
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaCreate); err != nil {
		return errors.Wrap(err, "error creating escrow schema")
	}
	return nil
}

// DropSchema drops the escrow table
func DropSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaDrop); err != nil {
		return errors.Wrap(err, "error dropping escrow schema")
	}
	return nil
}
