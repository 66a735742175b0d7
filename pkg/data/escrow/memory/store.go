package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/hashlock-escrow/pkg/data/escrow"
	"github.com/code-payments/hashlock-escrow/pkg/database/query"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

type store struct {
	mu      sync.Mutex
	records []*escrow.Record
	last    uint64
}

type ById []*escrow.Record

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

// New returns a new in memory escrow.Store
func New() escrow.Store {
	return &store{}
}

// Save implements escrow.Store.Save
func (s *store) Save(_ context.Context, data *escrow.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++
	if item := s.find(data); item != nil {
		// Only the mutable fields of an existing escrow can change, and only
		// with a newer observation
		if data.Slot <= item.Slot || data.PaymentHash != item.PaymentHash {
			return escrow.ErrStaleEscrowState
		}

		item.Status = data.Status
		item.NetAmount = data.NetAmount
		item.FeeAmount = data.FeeAmount

		item.Slot = data.Slot

		item.LastUpdatedAt = time.Now()

		item.CopyTo(data)
	} else {
		for _, other := range s.records {
			if other.PaymentHash == data.PaymentHash || other.VaultAddress == data.VaultAddress {
				return escrow.ErrDuplicateEscrow
			}
		}

		if data.Id == 0 {
			data.Id = s.last
		}
		data.LastUpdatedAt = time.Now()
		c := data.Clone()
		s.records = append(s.records, c)
	}

	return nil
}

// GetByAddress implements escrow.Store.GetByAddress
func (s *store) GetByAddress(_ context.Context, address string) (*escrow.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findByAddress(address); item != nil {
		return item.Clone(), nil
	}
	return nil, escrow.ErrEscrowNotFound
}

// GetByPaymentHash implements escrow.Store.GetByPaymentHash
func (s *store) GetByPaymentHash(_ context.Context, paymentHash string) (*escrow.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findByPaymentHash(paymentHash); item != nil {
		return item.Clone(), nil
	}
	return nil, escrow.ErrEscrowNotFound
}

// GetAllByStatus implements escrow.Store.GetAllByStatus
func (s *store) GetAllByStatus(_ context.Context, status escrow_program.Status, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*escrow.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items := s.findByStatus(status); len(items) > 0 {
		res := s.filter(items, cursor, limit, direction)

		if len(res) == 0 {
			return nil, escrow.ErrEscrowNotFound
		}

		return res, nil
	}

	return nil, escrow.ErrEscrowNotFound
}

// GetCountByStatus implements escrow.Store.GetCountByStatus
func (s *store) GetCountByStatus(_ context.Context, status escrow_program.Status) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.findByStatus(status)
	return uint64(len(items)), nil
}

func (s *store) find(data *escrow.Record) *escrow.Record {
	for _, item := range s.records {
		if item.Id == data.Id {
			return item
		}
		if data.Address == item.Address {
			return item
		}
	}
	return nil
}

func (s *store) findByAddress(address string) *escrow.Record {
	for _, item := range s.records {
		if address == item.Address {
			return item
		}
	}
	return nil
}

func (s *store) findByPaymentHash(paymentHash string) *escrow.Record {
	for _, item := range s.records {
		if paymentHash == item.PaymentHash {
			return item
		}
	}
	return nil
}

func (s *store) findByStatus(status escrow_program.Status) []*escrow.Record {
	res := make([]*escrow.Record, 0)
	for _, item := range s.records {
		if item.Status == status {
			res = append(res, item.Clone())
		}
	}
	return res
}

func (s *store) filter(items []*escrow.Record, cursor query.Cursor, limit uint64, direction query.Ordering) []*escrow.Record {
	var start uint64

	if direction == query.Descending {
		start = s.last + 1
	}
	if len(cursor) > 0 {
		start = cursor.ToUint64()
	}

	var res []*escrow.Record
	for _, item := range items {
		if item.Id > start && direction == query.Ascending {
			res = append(res, item)
		}
		if item.Id < start && direction == query.Descending {
			res = append(res, item)
		}
	}

	if direction == query.Descending {
		sort.Sort(sort.Reverse(ById(res)))
	}

	if limit > 0 && len(res) >= int(limit) {
		return res[:limit]
	}

	return res
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.last = 0
}
