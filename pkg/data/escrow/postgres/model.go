package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/hashlock-escrow/pkg/data/escrow"
	pgutil "github.com/code-payments/hashlock-escrow/pkg/database/postgres"
	q "github.com/code-payments/hashlock-escrow/pkg/database/query"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

const (
	tableName = "escrow__program_escrow"

	allColumns = `id, address, bump, payment_hash, recipient, refund, refund_after, mint, vault_address, net_amount, fee_amount, fee_bps, fee_collector, status, slot, last_updated_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address string `db:"address"`
	Bump    uint   `db:"bump"`

	PaymentHash string `db:"payment_hash"`

	Recipient   string    `db:"recipient"`
	Refund      string    `db:"refund"`
	RefundAfter time.Time `db:"refund_after"`

	Mint         string `db:"mint"`
	VaultAddress string `db:"vault_address"`

	// Amounts are stored as NUMERIC(20) to cover the full uint64 range
	NetAmount uint64 `db:"net_amount"`
	FeeAmount uint64 `db:"fee_amount"`

	FeeBps       uint   `db:"fee_bps"`
	FeeCollector string `db:"fee_collector"`

	Status uint `db:"status"`

	Slot uint64 `db:"slot"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *escrow.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Address: obj.Address,
		Bump:    uint(obj.Bump),

		PaymentHash: obj.PaymentHash,

		Recipient:   obj.Recipient,
		Refund:      obj.Refund,
		RefundAfter: obj.RefundAfter,

		Mint:         obj.Mint,
		VaultAddress: obj.VaultAddress,

		NetAmount: obj.NetAmount,
		FeeAmount: obj.FeeAmount,

		FeeBps:       uint(obj.FeeBps),
		FeeCollector: obj.FeeCollector,

		Status: uint(obj.Status),

		Slot: obj.Slot,

		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *escrow.Record {
	return &escrow.Record{
		Id: uint64(obj.Id.Int64),

		Address: obj.Address,
		Bump:    uint8(obj.Bump),

		PaymentHash: obj.PaymentHash,

		Recipient:   obj.Recipient,
		Refund:      obj.Refund,
		RefundAfter: obj.RefundAfter.UTC(),

		Mint:         obj.Mint,
		VaultAddress: obj.VaultAddress,

		NetAmount: obj.NetAmount,
		FeeAmount: obj.FeeAmount,

		FeeBps:       uint16(obj.FeeBps),
		FeeCollector: obj.FeeCollector,

		Status: escrow_program.Status(obj.Status),

		Slot: obj.Slot,

		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbSave(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(address, bump, payment_hash, recipient, refund, refund_after, mint, vault_address, net_amount, fee_amount, fee_bps, fee_collector, status, slot, last_updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)

			ON CONFLICT (address)
			DO UPDATE
				SET net_amount = $9, fee_amount = $10, status = $13, slot = $14, last_updated_at = $15
				WHERE ` + tableName + `.address = $1 AND ` + tableName + `.payment_hash = $3 AND ` + tableName + `.slot < $14

			RETURNING
				` + allColumns

		m.LastUpdatedAt = time.Now()

		err := tx.QueryRowxContext(
			ctx,
			query,

			m.Address,
			m.Bump,

			m.PaymentHash,

			m.Recipient,
			m.Refund,
			m.RefundAfter.UTC(),

			m.Mint,
			m.VaultAddress,

			m.NetAmount,
			m.FeeAmount,

			m.FeeBps,
			m.FeeCollector,

			m.Status,

			m.Slot,

			m.LastUpdatedAt.UTC(),
		).StructScan(m)

		if err != nil {
			err = pgutil.CheckNoRows(err, escrow.ErrStaleEscrowState)
			return pgutil.CheckUniqueViolation(err, escrow.ErrDuplicateEscrow)
		}
		return nil
	})
}

func dbGetByAddress(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT
		` + allColumns + `
		FROM ` + tableName + `
		WHERE address = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, escrow.ErrEscrowNotFound)
	}
	return res, nil
}

func dbGetByPaymentHash(ctx context.Context, db *sqlx.DB, paymentHash string) (*model, error) {
	res := &model{}

	query := `SELECT
		` + allColumns + `
		FROM ` + tableName + `
		WHERE payment_hash = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, paymentHash)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, escrow.ErrEscrowNotFound)
	}
	return res, nil
}

func dbGetAllByStatus(ctx context.Context, db *sqlx.DB, status escrow_program.Status, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*model, error) {
	res := []*model{}

	query := `SELECT
		` + allColumns + `
		FROM ` + tableName + `
		WHERE (status = $1)
	`

	opts := []interface{}{uint(status)}
	query, opts = q.PaginateQuery(query, opts, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, escrow.ErrEscrowNotFound)
	}

	if len(res) == 0 {
		return nil, escrow.ErrEscrowNotFound
	}
	return res, nil
}

func dbGetCountByStatus(ctx context.Context, db *sqlx.DB, status escrow_program.Status) (uint64, error) {
	var res uint64

	query := `SELECT COUNT(*) FROM ` + tableName + ` WHERE status = $1`
	err := db.GetContext(ctx, &res, query, uint(status))
	if err != nil {
		return 0, err
	}

	return res, nil
}
