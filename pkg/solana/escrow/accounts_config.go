package escrow

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hashlock-escrow/pkg/solana/binary"
)

const (
	ConfigAccountVersion = 1

	ConfigAccountSize = (1 + // version
		32 + // authority
		32 + // fee_collector
		2 + // fee_bps
		1) // bump
)

type ConfigAccount struct {
	Version      uint8
	Authority    ed25519.PublicKey
	FeeCollector ed25519.PublicKey
	FeeBps       uint16
	Bump         uint8
}

func (obj *ConfigAccount) Marshal() []byte {
	data := make([]byte, ConfigAccountSize)

	var offset int
	binary.PutUint8(data[offset:], obj.Version, &offset)
	binary.PutKey32(data[offset:], obj.Authority, &offset)
	binary.PutKey32(data[offset:], obj.FeeCollector, &offset)
	binary.PutUint16(data[offset:], obj.FeeBps, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data
}

func (obj *ConfigAccount) Unmarshal(data []byte) error {
	if len(data) != ConfigAccountSize {
		return ErrInvalidAccountData
	}

	var offset int
	binary.GetUint8(data[offset:], &obj.Version, &offset)
	binary.GetKey32(data[offset:], &obj.Authority, &offset)
	binary.GetKey32(data[offset:], &obj.FeeCollector, &offset)
	binary.GetUint16(data[offset:], &obj.FeeBps, &offset)
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	return nil
}

func (obj *ConfigAccount) String() string {
	return fmt.Sprintf(
		"ConfigAccount{version=%d,authority=%s,fee_collector=%s,fee_bps=%d,bump=%d}",
		obj.Version,
		base58.Encode(obj.Authority),
		base58.Encode(obj.FeeCollector),
		obj.FeeBps,
		obj.Bump,
	)
}
