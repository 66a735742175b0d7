package escrow

import (
	"crypto/ed25519"
	"encoding/hex"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

var (
	ErrEscrowNotFound          = errors.New("no records could be found")
	ErrInvalidEscrow           = errors.New("invalid escrow")
	ErrDuplicateEscrow         = errors.New("escrow with the same payment hash or vault already exists")
	ErrStaleEscrowState        = errors.New("escrow state is stale")
	ErrInvalidStatusTransition = errors.New("invalid escrow status transition")
)

// Record is the indexed state of an escrow account as last observed on the
// blockchain.
type Record struct {
	Id uint64

	Address string
	Bump    uint8

	PaymentHash string

	Recipient   string
	Refund      string
	RefundAfter time.Time

	Mint         string
	VaultAddress string

	NetAmount uint64
	FeeAmount uint64

	FeeBps       uint16
	FeeCollector string

	Status escrow_program.Status

	Slot uint64

	LastUpdatedAt time.Time
}

// NewRecordFromProgramAccount creates a record for an escrow account observed
// at the provided slot.
func NewRecordFromProgramAccount(address ed25519.PublicKey, data *escrow_program.EscrowAccount, slot uint64) (*Record, error) {
	r := &Record{
		Address:     base58.Encode(address),
		Bump:        data.Bump,
		PaymentHash: hex.EncodeToString(data.PaymentHash[:]),
	}
	if err := r.UpdateFromProgramAccount(data, slot); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Record) UpdateFromProgramAccount(data *escrow_program.EscrowAccount, slot uint64) error {
	// Avoid updates looking backwards in blockchain history
	if slot <= r.Slot {
		return ErrStaleEscrowState
	}

	if data.Version != escrow_program.EscrowAccountVersion {
		return errors.Errorf("escrow data version must be %d", escrow_program.EscrowAccountVersion)
	}

	// The payment hash keys the escrow address, so it never changes for a
	// given record.
	paymentHash := hex.EncodeToString(data.PaymentHash[:])
	if len(r.PaymentHash) > 0 && r.PaymentHash != paymentHash {
		return errors.Wrap(ErrInvalidEscrow, "payment hash mismatch")
	}

	// Status only ever moves forward out of Active
	if r.Slot > 0 && r.Status != data.Status && !r.Status.CanTransitionTo(data.Status) {
		return errors.Wrapf(ErrInvalidStatusTransition, "%s to %s", r.Status, data.Status)
	}

	r.PaymentHash = paymentHash
	r.Bump = data.Bump

	r.Recipient = base58.Encode(data.Recipient)
	r.Refund = base58.Encode(data.Refund)
	r.RefundAfter = time.Unix(data.RefundAfter, 0).UTC()

	r.Mint = base58.Encode(data.Mint)
	r.VaultAddress = base58.Encode(data.Vault)

	r.NetAmount = data.NetAmount
	r.FeeAmount = data.FeeAmount

	r.FeeBps = data.FeeBps
	r.FeeCollector = base58.Encode(data.FeeCollector)

	r.Status = data.Status

	r.Slot = slot

	return nil
}

// IsRefundable reports whether the refund deadline has passed at the
// provided time for an active escrow.
func (r *Record) IsRefundable(at time.Time) bool {
	return r.Status == escrow_program.StatusActive && !at.Before(r.RefundAfter)
}

func (r *Record) Clone() *Record {
	cloned := &Record{}
	r.CopyTo(cloned)
	return cloned
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.Bump = r.Bump

	dst.PaymentHash = r.PaymentHash

	dst.Recipient = r.Recipient
	dst.Refund = r.Refund
	dst.RefundAfter = r.RefundAfter

	dst.Mint = r.Mint
	dst.VaultAddress = r.VaultAddress

	dst.NetAmount = r.NetAmount
	dst.FeeAmount = r.FeeAmount

	dst.FeeBps = r.FeeBps
	dst.FeeCollector = r.FeeCollector

	dst.Status = r.Status

	dst.Slot = r.Slot

	dst.LastUpdatedAt = r.LastUpdatedAt
}

func (r *Record) Validate() error {
	if r == nil {
		return errors.New("record is nil")
	}

	if len(r.Address) == 0 {
		return errors.New("escrow address is required")
	}

	paymentHash, err := hex.DecodeString(r.PaymentHash)
	if err != nil || len(paymentHash) != 32 {
		return errors.New("payment hash must be 32 hex encoded bytes")
	}

	if len(r.Recipient) == 0 {
		return errors.New("recipient is required")
	}

	if len(r.Refund) == 0 {
		return errors.New("refund address is required")
	}

	if len(r.Mint) == 0 {
		return errors.New("mint is required")
	}

	if len(r.VaultAddress) == 0 {
		return errors.New("vault address is required")
	}

	if len(r.FeeCollector) == 0 {
		return errors.New("fee collector is required")
	}

	if r.FeeBps > escrow_program.MaxFeeBps {
		return errors.Errorf("fee bps cannot exceed %d", escrow_program.MaxFeeBps)
	}

	if !r.Status.IsValid() {
		return errors.New("invalid escrow status")
	}

	if r.Status.IsTerminal() && (r.NetAmount != 0 || r.FeeAmount != 0) {
		return errors.New("terminal escrows cannot hold funds")
	}

	if r.Slot == 0 {
		return errors.New("slot is required")
	}

	return nil
}
