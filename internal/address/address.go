// Package address validates owner addresses as base58-encoded ed25519 public keys.
package address

import (
	"filippo.io/edwards25519"
	"github.com/cockroachdb/errors"
	"github.com/mr-tron/base58"
)

// KeySize is the decoded length of an owner address.
const KeySize = 32

// ErrInvalidAddress marks every validation failure.
var ErrInvalidAddress = errors.New("invalid owner address")

// Validate checks that addr decodes from base58 to a 32-byte point on the ed25519 curve.
func Validate(addr string) error {
	if addr == "" {
		return errors.Wrap(ErrInvalidAddress, "empty")
	}

	decoded, err := base58.Decode(addr)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "decode %q", addr), ErrInvalidAddress)
	}
	if len(decoded) != KeySize {
		return errors.Wrapf(ErrInvalidAddress, "%q decodes to %d bytes, want %d", addr, len(decoded), KeySize)
	}
	if !isOnCurve(decoded) {
		return errors.Wrapf(ErrInvalidAddress, "%q is not an ed25519 public key", addr)
	}
	return nil
}

// Encode returns the base58 form of a raw 32-byte key.
func Encode(key []byte) string {
	return base58.Encode(key)
}

func isOnCurve(point []byte) bool {
	if len(point) != KeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
