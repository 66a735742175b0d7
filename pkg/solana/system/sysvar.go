package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/hashlock-escrow/pkg/solana/binary"
)

// RentSysVar points to the system variable "Rent"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar ed25519.PublicKey

// ClockSysVar points to the system variable "Clock"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/clock.rs#L10
var ClockSysVar ed25519.PublicKey

var (
	ErrInvalidSysvarKey  = errors.New("invalid sysvar key")
	ErrInvalidSysvarData = errors.New("invalid sysvar data")
)

func init() {
	var err error

	RentSysVar, err = base58.Decode("SysvarRent111111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	ClockSysVar, err = base58.Decode("SysvarC1ock11111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
}

const (
	RentSize  = 8 + 8 + 1
	ClockSize = 5 * 8

	// Bytes charged for account metadata on top of the data length.
	//
	// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs#L50
	AccountStorageOverhead = 128
)

// Rent configuration, as stored in the rent sysvar.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

// DefaultRent is the rent configuration of every public cluster.
var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2.0,
	BurnPercent:         50,
}

// MinimumBalance returns the lamports required for an account holding
// dataLen bytes to be rent exempt.
func (r Rent) MinimumBalance(dataLen uint64) uint64 {
	bytes := AccountStorageOverhead + dataLen
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

func (r Rent) Marshal() []byte {
	b := make([]byte, RentSize)

	var offset int
	binary.PutUint64(b[offset:], r.LamportsPerByteYear, &offset)
	binary.PutUint64(b[offset:], float64bits(r.ExemptionThreshold), &offset)
	binary.PutUint8(b[offset:], r.BurnPercent, &offset)

	return b
}

func (r *Rent) Unmarshal(b []byte) error {
	if len(b) != RentSize {
		return ErrInvalidSysvarData
	}

	var offset int
	var threshold uint64
	binary.GetUint64(b[offset:], &r.LamportsPerByteYear, &offset)
	binary.GetUint64(b[offset:], &threshold, &offset)
	binary.GetUint8(b[offset:], &r.BurnPercent, &offset)
	r.ExemptionThreshold = float64frombits(threshold)

	return nil
}

// RentFromAccount decodes the rent sysvar after checking the account address.
func RentFromAccount(key ed25519.PublicKey, data []byte) (*Rent, error) {
	if !keyEqual(key, RentSysVar) {
		return nil, ErrInvalidSysvarKey
	}

	var r Rent
	if err := r.Unmarshal(data); err != nil {
		return nil, err
	}
	return &r, nil
}

// Clock is the network clock, as stored in the clock sysvar.
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

func (c Clock) Marshal() []byte {
	b := make([]byte, ClockSize)

	var offset int
	binary.PutUint64(b[offset:], c.Slot, &offset)
	binary.PutInt64(b[offset:], c.EpochStartTimestamp, &offset)
	binary.PutUint64(b[offset:], c.Epoch, &offset)
	binary.PutUint64(b[offset:], c.LeaderScheduleEpoch, &offset)
	binary.PutInt64(b[offset:], c.UnixTimestamp, &offset)

	return b
}

func (c *Clock) Unmarshal(b []byte) error {
	if len(b) != ClockSize {
		return ErrInvalidSysvarData
	}

	var offset int
	binary.GetUint64(b[offset:], &c.Slot, &offset)
	binary.GetInt64(b[offset:], &c.EpochStartTimestamp, &offset)
	binary.GetUint64(b[offset:], &c.Epoch, &offset)
	binary.GetUint64(b[offset:], &c.LeaderScheduleEpoch, &offset)
	binary.GetInt64(b[offset:], &c.UnixTimestamp, &offset)

	return nil
}

// ClockFromAccount decodes the clock sysvar after checking the account address.
func ClockFromAccount(key ed25519.PublicKey, data []byte) (*Clock, error) {
	if !keyEqual(key, ClockSysVar) {
		return nil, ErrInvalidSysvarKey
	}

	var c Clock
	if err := c.Unmarshal(data); err != nil {
		return nil, err
	}
	return &c, nil
}
