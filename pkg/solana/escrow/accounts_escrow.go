package escrow

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hashlock-escrow/pkg/solana/binary"
)

const (
	EscrowAccountVersion = 2

	EscrowAccountSize = (1 + // version
		1 + // status
		32 + // payment_hash
		32 + // recipient
		32 + // refund
		8 + // refund_after
		32 + // mint
		8 + // net_amount
		8 + // fee_amount
		2 + // fee_bps
		32 + // fee_collector
		32 + // vault
		1) // bump
)

type EscrowAccount struct {
	Version      uint8
	Status       Status
	PaymentHash  [32]byte
	Recipient    ed25519.PublicKey
	Refund       ed25519.PublicKey
	RefundAfter  int64
	Mint         ed25519.PublicKey
	NetAmount    uint64
	FeeAmount    uint64
	FeeBps       uint16
	FeeCollector ed25519.PublicKey
	Vault        ed25519.PublicKey
	Bump         uint8
}

func (obj *EscrowAccount) Marshal() []byte {
	data := make([]byte, EscrowAccountSize)

	var offset int
	binary.PutUint8(data[offset:], obj.Version, &offset)
	binary.PutUint8(data[offset:], uint8(obj.Status), &offset)
	binary.PutKey32(data[offset:], obj.PaymentHash[:], &offset)
	binary.PutKey32(data[offset:], obj.Recipient, &offset)
	binary.PutKey32(data[offset:], obj.Refund, &offset)
	binary.PutInt64(data[offset:], obj.RefundAfter, &offset)
	binary.PutKey32(data[offset:], obj.Mint, &offset)
	binary.PutUint64(data[offset:], obj.NetAmount, &offset)
	binary.PutUint64(data[offset:], obj.FeeAmount, &offset)
	binary.PutUint16(data[offset:], obj.FeeBps, &offset)
	binary.PutKey32(data[offset:], obj.FeeCollector, &offset)
	binary.PutKey32(data[offset:], obj.Vault, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data
}

// Unmarshal decodes an escrow account of any version. Callers that operate
// on the escrow must check Version themselves.
func (obj *EscrowAccount) Unmarshal(data []byte) error {
	if len(data) != EscrowAccountSize {
		return ErrInvalidAccountData
	}

	var offset int
	var status uint8
	binary.GetUint8(data[offset:], &obj.Version, &offset)
	binary.GetUint8(data[offset:], &status, &offset)
	binary.GetBytes32(data[offset:], &obj.PaymentHash, &offset)
	binary.GetKey32(data[offset:], &obj.Recipient, &offset)
	binary.GetKey32(data[offset:], &obj.Refund, &offset)
	binary.GetInt64(data[offset:], &obj.RefundAfter, &offset)
	binary.GetKey32(data[offset:], &obj.Mint, &offset)
	binary.GetUint64(data[offset:], &obj.NetAmount, &offset)
	binary.GetUint64(data[offset:], &obj.FeeAmount, &offset)
	binary.GetUint16(data[offset:], &obj.FeeBps, &offset)
	binary.GetKey32(data[offset:], &obj.FeeCollector, &offset)
	binary.GetKey32(data[offset:], &obj.Vault, &offset)
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	obj.Status = Status(status)
	if !obj.Status.IsValid() {
		return ErrInvalidAccountData
	}

	return nil
}

// DepositedAmount is the amount held by the vault on behalf of the escrow.
func (obj *EscrowAccount) DepositedAmount() (uint64, error) {
	return checkedAdd(obj.NetAmount, obj.FeeAmount)
}

// transition moves the escrow into a terminal state and clears the
// outstanding amounts.
func (obj *EscrowAccount) transition(next Status) error {
	if !obj.Status.CanTransitionTo(next) {
		return ErrorNotActive
	}

	obj.Status = next
	obj.NetAmount = 0
	obj.FeeAmount = 0
	return nil
}

func (obj *EscrowAccount) String() string {
	return fmt.Sprintf(
		"EscrowAccount{version=%d,status=%s,payment_hash=%s,recipient=%s,refund=%s,refund_after=%d,mint=%s,net_amount=%d,fee_amount=%d,fee_bps=%d,fee_collector=%s,vault=%s,bump=%d}",
		obj.Version,
		obj.Status,
		hex.EncodeToString(obj.PaymentHash[:]),
		base58.Encode(obj.Recipient),
		base58.Encode(obj.Refund),
		obj.RefundAfter,
		base58.Encode(obj.Mint),
		obj.NetAmount,
		obj.FeeAmount,
		obj.FeeBps,
		base58.Encode(obj.FeeCollector),
		base58.Encode(obj.Vault),
		obj.Bump,
	)
}
