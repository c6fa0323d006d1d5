// Package receipt implements the purchase receipt record and the
// deterministic derivation of its storage address.
//
// A receipt address is a pure function of (buyer, correlation tag): the
// SHA-256 of a fixed domain tag, the buyer identity, the tag bytes, a
// one-byte bump and the program identity. The bump is searched from 255
// downward until the digest is not a valid ed25519 point encoding, which
// places the address outside the space of user-held keys. Nobody can hold a
// signing key for such an address, so only the ledger program can ever
// allocate storage there.
package receipt

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"

	"packpay/internal/model"
)

const (
	// MaxTagLen bounds the correlation tag so the persisted record stays
	// fixed-size.
	MaxTagLen = 32

	derivationDomain = "purchase"
)

var derivationMarker = []byte("ProgramDerivedAddress")

var (
	ErrSeedTooLong  = errors.New("correlation tag must be <= 32 bytes")
	ErrBumpNotFound = errors.New("no off-curve bump for derivation inputs")
)

// DeriveAddress computes the receipt address and bump for (buyer, tag).
// The same pair always yields the same address and bump.
func DeriveAddress(buyer model.Key, tag string) (model.Key, uint8, error) {
	if len(tag) > MaxTagLen {
		return model.Key{}, 0, ErrSeedTooLong
	}
	for bump := 255; bump >= 0; bump-- {
		cand := candidate(buyer, tag, uint8(bump))
		if offCurve(cand) {
			return cand, uint8(bump), nil
		}
	}
	return model.Key{}, 0, ErrBumpNotFound
}

// VerifyAddress reports whether addr is the derived address for
// (buyer, tag) at the recorded bump, without re-running the search.
func VerifyAddress(addr model.Key, buyer model.Key, tag string, bump uint8) bool {
	if len(tag) > MaxTagLen {
		return false
	}
	cand := candidate(buyer, tag, bump)
	return cand == addr && offCurve(cand)
}

func candidate(buyer model.Key, tag string, bump uint8) model.Key {
	h := sha256.New()
	h.Write([]byte(derivationDomain))
	h.Write(buyer[:])
	h.Write([]byte(tag))
	h.Write([]byte{bump})
	h.Write(model.ProgramID[:])
	h.Write(derivationMarker)

	var addr model.Key
	h.Sum(addr[:0])
	return addr
}

// offCurve reports whether b is not a valid ed25519 point encoding. Roughly
// half of all digests decode as points, so the bump search terminates almost
// immediately in practice.
func offCurve(k model.Key) bool {
	_, err := new(edwards25519.Point).SetBytes(k[:])
	return err != nil
}
