package ledger

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPrivateKey = errors.New("invalid wallet private key")

// ParsePrivateKey decodes a hex wallet key. Both a 32 byte seed and a 64 byte
// seed||public secret key are accepted; for the latter the public half must match.
func ParsePrivateKey(encoded string) (ed25519.PrivateKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(encoded), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		key := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(key[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
			return nil, fmt.Errorf("%w: public key does not match seed", ErrInvalidPrivateKey)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: expected %d or %d bytes, got %d",
			ErrInvalidPrivateKey, ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}
