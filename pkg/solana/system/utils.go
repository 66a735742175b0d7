package system

import (
	"bytes"
	"crypto/ed25519"
	"math"
)

func keyEqual(a, b ed25519.PublicKey) bool {
	return bytes.Equal(a, b)
}

func float64bits(v float64) uint64 {
	return math.Float64bits(v)
}

func float64frombits(v uint64) float64 {
	return math.Float64frombits(v)
}
