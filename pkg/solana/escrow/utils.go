package escrow

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

func keyEqual(a, b ed25519.PublicKey) bool {
	return a.Equal(b)
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
