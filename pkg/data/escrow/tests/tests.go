package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hashlock-escrow/pkg/data/escrow"
	"github.com/code-payments/hashlock-escrow/pkg/database/query"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

func RunTests(t *testing.T, s escrow.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s escrow.Store){
		testHappyPath,
		testInvalidRecord,
		testDuplicateEscrow,
		testLargeAmounts,
		testGetAllByStatus,
		testGetCountByStatus,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s escrow.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		start := time.Now()

		ctx := context.Background()

		expected := newTestRecord(0, escrow_program.StatusActive)
		expected.Slot = 123456
		cloned := expected.Clone()

		// Validate the record initially doesn't exist

		_, err := s.GetByAddress(ctx, expected.Address)
		assert.Equal(t, escrow.ErrEscrowNotFound, err)

		_, err = s.GetByPaymentHash(ctx, expected.PaymentHash)
		assert.Equal(t, escrow.ErrEscrowNotFound, err)

		// Save the record

		require.NoError(t, s.Save(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.True(t, expected.LastUpdatedAt.After(start))

		// Ensure we can fetch the same record by all supported indices

		actual, err := s.GetByAddress(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, cloned, actual)

		actual, err = s.GetByPaymentHash(ctx, expected.PaymentHash)
		require.NoError(t, err)
		assertEquivalentRecords(t, cloned, actual)

		initialSlot := expected.Slot

		// Update the record's state to claimed

		previousLastUpdatedTs := expected.LastUpdatedAt

		expected.Status = escrow_program.StatusClaimed
		expected.NetAmount = 0
		expected.FeeAmount = 0

		// Try to save the record with old blockchain data, which should fail

		expected.Slot = initialSlot - 1
		time.Sleep(time.Millisecond)
		err = s.Save(ctx, expected)
		assert.Equal(t, escrow.ErrStaleEscrowState, err)
		assert.Equal(t, previousLastUpdatedTs, expected.LastUpdatedAt)

		// Saving at the same slot is also stale

		expected.Slot = initialSlot
		err = s.Save(ctx, expected)
		assert.Equal(t, escrow.ErrStaleEscrowState, err)

		// Save the record with new blockchain data

		expected.Slot = initialSlot + 1
		cloned = expected.Clone()
		time.Sleep(time.Millisecond)
		require.NoError(t, s.Save(ctx, expected))
		assert.True(t, expected.LastUpdatedAt.After(previousLastUpdatedTs))

		// Ensure we can fetch the updated record by all supported indices

		actual, err = s.GetByAddress(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, cloned, actual)

		actual, err = s.GetByPaymentHash(ctx, expected.PaymentHash)
		require.NoError(t, err)
		assertEquivalentRecords(t, cloned, actual)
	})
}

func testInvalidRecord(t *testing.T, s escrow.Store) {
	t.Run("testInvalidRecord", func(t *testing.T) {
		ctx := context.Background()

		for _, mutate := range []func(r *escrow.Record){
			func(r *escrow.Record) { r.Address = "" },
			func(r *escrow.Record) { r.PaymentHash = "not-hex" },
			func(r *escrow.Record) { r.PaymentHash = "abcd" },
			func(r *escrow.Record) { r.Recipient = "" },
			func(r *escrow.Record) { r.Mint = "" },
			func(r *escrow.Record) { r.FeeBps = escrow_program.MaxFeeBps + 1 },
			func(r *escrow.Record) { r.Status = escrow_program.Status(100) },
			func(r *escrow.Record) { r.Status = escrow_program.StatusRefunded },
			func(r *escrow.Record) { r.Slot = 0 },
		} {
			record := newTestRecord(0, escrow_program.StatusActive)
			mutate(record)
			assert.Error(t, s.Save(ctx, record))
		}

		_, err := s.GetByAddress(ctx, newTestRecord(0, escrow_program.StatusActive).Address)
		assert.Equal(t, escrow.ErrEscrowNotFound, err)
	})
}

func testDuplicateEscrow(t *testing.T, s escrow.Store) {
	t.Run("testDuplicateEscrow", func(t *testing.T) {
		ctx := context.Background()

		original := newTestRecord(0, escrow_program.StatusActive)
		require.NoError(t, s.Save(ctx, original))

		samePaymentHash := newTestRecord(1, escrow_program.StatusActive)
		samePaymentHash.PaymentHash = original.PaymentHash
		assert.Equal(t, escrow.ErrDuplicateEscrow, s.Save(ctx, samePaymentHash))

		sameVault := newTestRecord(2, escrow_program.StatusActive)
		sameVault.VaultAddress = original.VaultAddress
		assert.Equal(t, escrow.ErrDuplicateEscrow, s.Save(ctx, sameVault))

		differentPaymentHash := newTestRecord(0, escrow_program.StatusClaimed)
		differentPaymentHash.PaymentHash = newTestRecord(3, escrow_program.StatusActive).PaymentHash
		differentPaymentHash.Slot = original.Slot + 10
		assert.Equal(t, escrow.ErrStaleEscrowState, s.Save(ctx, differentPaymentHash))

		count, err := s.GetCountByStatus(ctx, escrow_program.StatusActive)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		actual, err := s.GetByAddress(ctx, original.Address)
		require.NoError(t, err)
		assert.Equal(t, escrow_program.StatusActive, actual.Status)
	})
}

func testLargeAmounts(t *testing.T, s escrow.Store) {
	t.Run("testLargeAmounts", func(t *testing.T) {
		ctx := context.Background()

		expected := newTestRecord(0, escrow_program.StatusActive)
		expected.NetAmount = 1<<64 - 1
		expected.FeeAmount = 1<<63 + 1
		require.NoError(t, s.Save(ctx, expected))

		actual, err := s.GetByAddress(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, expected, actual)
	})
}

func testGetAllByStatus(t *testing.T, s escrow.Store) {
	t.Run("testGetAllByStatus", func(t *testing.T) {
		ctx := context.Background()

		var expected []*escrow.Record
		for i := 0; i < 100; i++ {
			record := newTestRecord(i, escrow_program.StatusActive)
			require.NoError(t, s.Save(ctx, record))

			expected = append(expected, record.Clone())
		}

		_, err := s.GetAllByStatus(ctx, escrow_program.StatusClaimed, query.EmptyCursor, 10, query.Ascending)
		assert.Equal(t, escrow.ErrEscrowNotFound, err)

		var cursor query.Cursor
		var actual []*escrow.Record
		for {
			records, err := s.GetAllByStatus(ctx, escrow_program.StatusActive, cursor, 10, query.Ascending)
			if err == escrow.ErrEscrowNotFound {
				break
			}
			require.NoError(t, err)
			assert.Len(t, records, 10)

			actual = append(actual, records...)
			cursor = query.ToCursor(records[len(records)-1].Id)
		}

		require.Len(t, actual, 100)
		for i, record := range expected {
			assertEquivalentRecords(t, record, actual[i])
		}

		cursor = query.EmptyCursor
		actual = nil
		for {
			records, err := s.GetAllByStatus(ctx, escrow_program.StatusActive, cursor, 10, query.Descending)
			if err == escrow.ErrEscrowNotFound {
				break
			}
			require.NoError(t, err)
			assert.Len(t, records, 10)

			actual = append(actual, records...)
			cursor = query.ToCursor(records[len(records)-1].Id)
		}

		require.Len(t, actual, 100)
		for i, record := range expected {
			assertEquivalentRecords(t, record, actual[len(actual)-i-1])
		}
	})
}

func testGetCountByStatus(t *testing.T, s escrow.Store) {
	t.Run("testGetCountByStatus", func(t *testing.T) {
		ctx := context.Background()

		var offset int
		for _, status := range []escrow_program.Status{
			escrow_program.StatusActive,
			escrow_program.StatusClaimed,
			escrow_program.StatusRefunded,
		} {
			count, err := s.GetCountByStatus(ctx, status)
			require.NoError(t, err)
			assert.EqualValues(t, 0, count)

			for i := 0; i < int(status)+1; i++ {
				require.NoError(t, s.Save(ctx, newTestRecord(offset, status)))
				offset++
			}

			count, err = s.GetCountByStatus(ctx, status)
			require.NoError(t, err)
			assert.EqualValues(t, int(status)+1, count)
		}
	})
}

func newTestRecord(i int, status escrow_program.Status) *escrow.Record {
	record := &escrow.Record{
		Address: fmt.Sprintf("escrow%d", i),
		Bump:    254,

		PaymentHash: fmt.Sprintf("%064x", i),

		Recipient:   fmt.Sprintf("recipient%d", i),
		Refund:      fmt.Sprintf("refund%d", i),
		RefundAfter: time.Unix(1_700_000_000+int64(i), 0).UTC(),

		Mint:         "mint",
		VaultAddress: fmt.Sprintf("vault%d", i),

		NetAmount: 9_900,
		FeeAmount: 100,

		FeeBps:       100,
		FeeCollector: "fee_collector",

		Status: status,

		Slot: uint64(i + 1),
	}

	if status.IsTerminal() {
		record.NetAmount = 0
		record.FeeAmount = 0
	}

	return record
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *escrow.Record) {
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Bump, obj2.Bump)

	assert.Equal(t, obj1.PaymentHash, obj2.PaymentHash)

	assert.Equal(t, obj1.Recipient, obj2.Recipient)
	assert.Equal(t, obj1.Refund, obj2.Refund)
	assert.True(t, obj1.RefundAfter.Equal(obj2.RefundAfter))

	assert.Equal(t, obj1.Mint, obj2.Mint)
	assert.Equal(t, obj1.VaultAddress, obj2.VaultAddress)

	assert.Equal(t, obj1.NetAmount, obj2.NetAmount)
	assert.Equal(t, obj1.FeeAmount, obj2.FeeAmount)

	assert.Equal(t, obj1.FeeBps, obj2.FeeBps)
	assert.Equal(t, obj1.FeeCollector, obj2.FeeCollector)

	assert.Equal(t, obj1.Status, obj2.Status)

	assert.Equal(t, obj1.Slot, obj2.Slot)
}
