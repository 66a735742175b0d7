package token

import (
	"bytes"
	"crypto/ed25519"
)

func keyEqual(a, b ed25519.PublicKey) bool {
	return bytes.Equal(a, b)
}
