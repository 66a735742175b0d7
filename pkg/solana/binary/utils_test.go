package binary

import (
	"crypto/ed25519"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWidthRoundTrip(t *testing.T) {
	key, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	buf := make([]byte, 32+8+8+2+1)

	var offset int
	PutKey32(buf[offset:], key, &offset)
	PutInt64(buf[offset:], math.MinInt64+1, &offset)
	PutUint64(buf[offset:], math.MaxUint64, &offset)
	PutUint16(buf[offset:], 2500, &offset)
	PutUint8(buf[offset:], 254, &offset)
	assert.Equal(t, len(buf), offset)

	// 2500 = 0x09c4, little endian
	assert.Equal(t, []byte{0xc4, 0x09}, buf[48:50])

	var actualKey ed25519.PublicKey
	var actualI64 int64
	var actualU64 uint64
	var actualU16 uint16
	var actualU8 uint8

	offset = 0
	GetKey32(buf[offset:], &actualKey, &offset)
	GetInt64(buf[offset:], &actualI64, &offset)
	GetUint64(buf[offset:], &actualU64, &offset)
	GetUint16(buf[offset:], &actualU16, &offset)
	GetUint8(buf[offset:], &actualU8, &offset)
	assert.Equal(t, len(buf), offset)

	assert.EqualValues(t, key, actualKey)
	assert.EqualValues(t, math.MinInt64+1, actualI64)
	assert.EqualValues(t, uint64(math.MaxUint64), actualU64)
	assert.EqualValues(t, 2500, actualU16)
	assert.EqualValues(t, 254, actualU8)
}

func TestOptionalValues(t *testing.T) {
	buf := make([]byte, 4+8)

	var offset int
	PutOptionalUint64(buf, nil, &offset, 4)
	assert.Equal(t, 12, offset)

	var missing *uint64
	offset = 0
	GetOptionalUint64(buf, &missing, &offset, 4)
	assert.Nil(t, missing)

	value := uint64(42)
	offset = 0
	PutOptionalUint64(buf, &value, &offset, 4)

	var present *uint64
	offset = 0
	GetOptionalUint64(buf, &present, &offset, 4)
	require.NotNil(t, present)
	assert.EqualValues(t, 42, *present)
}
