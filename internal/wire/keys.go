package wire

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/google/uuid"
)

// ErrInvalidKey is returned for a hotspot key that is not a Helium binary
// public key.
var ErrInvalidKey = errors.New("invalid public key")

// Binary public keys start with one byte: network in the high nibble, key
// type in the low nibble.
const (
	networkMainnet = 0x00
	networkTestnet = 0x10

	keyTypeEccCompact = 0x00
	keyTypeEd25519    = 0x01
	keyTypeSecp256k1  = 0x03
)

// keySizes is the full binary length, type byte included, per key type.
var keySizes = map[byte]int{
	keyTypeEccCompact: 33,
	keyTypeEd25519:    33,
	keyTypeSecp256k1:  34,
}

// checkKey validates the type byte and length of a binary public key.
func checkKey(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	network, keyType := key[0]&0xf0, key[0]&0x0f
	if network != networkMainnet && network != networkTestnet {
		return fmt.Errorf("%w: network 0x%02x", ErrInvalidKey, network)
	}
	size, ok := keySizes[keyType]
	if !ok {
		return fmt.Errorf("%w: key type %d", ErrInvalidKey, keyType)
	}
	if len(key) != size {
		return fmt.Errorf("%w: %d bytes, want %d", ErrInvalidKey, len(key), size)
	}
	return nil
}

// KeyText renders a binary public key the way Helium tooling prints it:
// base58check with a zero version byte.
func KeyText(key []byte) string {
	return base58.CheckEncode(key, 0)
}

// checkCoverageObject accepts an absent coverage object or a 16-byte UUID.
func checkCoverageObject(b []byte) error {
	if len(b) == 0 || len(b) == 16 {
		return nil
	}
	return fmt.Errorf("coverage object: %d bytes, want 16", len(b))
}

// CoverageObjectID returns the coverage object as a UUID. An absent object is
// uuid.Nil. Unmarshal has already rejected every other length.
func (r *RadioRewardV2) CoverageObjectID() uuid.UUID {
	id, err := uuid.FromBytes(r.CoverageObject)
	if err != nil {
		return uuid.Nil
	}
	return id
}
