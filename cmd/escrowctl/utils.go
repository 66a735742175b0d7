package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

func parseKey(name, value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid %s: expected %d bytes, got %d", name, ed25519.PublicKeySize, len(decoded))
	}
	return decoded, nil
}

func parseBytes32(name, value string) ([32]byte, error) {
	var res [32]byte

	decoded, err := hex.DecodeString(strings.TrimPrefix(value, "0x"))
	if err != nil {
		return res, errors.Wrapf(err, "invalid %s", name)
	}
	if len(decoded) != len(res) {
		return res, errors.Errorf("invalid %s: expected %d bytes, got %d", name, len(res), len(decoded))
	}

	copy(res[:], decoded)
	return res, nil
}

func parseHex(name, value string) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimPrefix(value, "0x"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	return decoded, nil
}
