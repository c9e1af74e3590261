// Package intake consumes wallet addresses from a queue and validates them
// before analysis.
package intake

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidateAddress checks that an address is a well-formed wallet public key:
// base58, 32 bytes, and a point on the ed25519 curve (program-derived
// addresses are off-curve and cannot sign transactions).
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("empty address")
	}

	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("decode address %q: %w", address, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("address %q: expected 32 bytes, got %d", address, len(raw))
	}
	if !isOnCurve(raw) {
		return fmt.Errorf("address %q is not on the ed25519 curve", address)
	}
	return nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
