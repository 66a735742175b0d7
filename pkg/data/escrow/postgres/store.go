package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/hashlock-escrow/pkg/data/escrow"
	pgutil "github.com/code-payments/hashlock-escrow/pkg/database/postgres"
	"github.com/code-payments/hashlock-escrow/pkg/database/query"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed escrow.Store
func New(db *sql.DB) escrow.Store {
	return &store{
		db: sqlx.NewDb(db, pgutil.DriverName),
	}
}

// Save implements escrow.Store.Save
func (s *store) Save(ctx context.Context, record *escrow.Record) error {
	model, err := toModel(record)
	if err != nil {
		return err
	}

	if err := model.dbSave(ctx, s.db); err != nil {
		return err
	}

	res := fromModel(model)
	res.CopyTo(record)

	return nil
}

// GetByAddress implements escrow.Store.GetByAddress
func (s *store) GetByAddress(ctx context.Context, address string) (*escrow.Record, error) {
	model, err := dbGetByAddress(ctx, s.db, address)
	if err != nil {
		return nil, err
	}

	return fromModel(model), nil
}

// GetByPaymentHash implements escrow.Store.GetByPaymentHash
func (s *store) GetByPaymentHash(ctx context.Context, paymentHash string) (*escrow.Record, error) {
	model, err := dbGetByPaymentHash(ctx, s.db, paymentHash)
	if err != nil {
		return nil, err
	}

	return fromModel(model), nil
}

// GetAllByStatus implements escrow.Store.GetAllByStatus
func (s *store) GetAllByStatus(ctx context.Context, status escrow_program.Status, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*escrow.Record, error) {
	res, err := dbGetAllByStatus(ctx, s.db, status, cursor, limit, direction)
	if err != nil {
		return nil, err
	}

	escrows := make([]*escrow.Record, len(res))
	for i, model := range res {
		escrows[i] = fromModel(model)
	}
	return escrows, nil
}

// GetCountByStatus implements escrow.Store.GetCountByStatus
func (s *store) GetCountByStatus(ctx context.Context, status escrow_program.Status) (uint64, error) {
	return dbGetCountByStatus(ctx, s.db, status)
}
