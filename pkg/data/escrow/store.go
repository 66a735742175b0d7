package escrow

import (
	"context"

	"github.com/code-payments/hashlock-escrow/pkg/database/query"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

type Store interface {
	// Save saves an escrow account's state. Saving a record observed at or
	// before the stored slot returns ErrStaleEscrowState.
	Save(ctx context.Context, record *Record) error

	// GetByAddress gets an escrow account's state by its address
	GetByAddress(ctx context.Context, address string) (*Record, error)

	// GetByPaymentHash gets an escrow account's state by the hex encoded
	// payment hash it's locked to
	GetByPaymentHash(ctx context.Context, paymentHash string) (*Record, error)

	// GetAllByStatus gets all escrow accounts in the provided status
	GetAllByStatus(ctx context.Context, status escrow_program.Status, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)

	// GetCountByStatus gets the count of records in the provided status
	GetCountByStatus(ctx context.Context, status escrow_program.Status) (uint64, error)
}
