package model

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key is a 32-byte ledger identity: an account address, an account owner,
// or a token mint. Rendered as lowercase hex on the wire.
type Key [32]byte

// Canonical identities. These are compile-time constants of the deployment:
// requests are validated against them, never the other way around.
var (
	// CanonicalMint is the only token type this ledger accepts payments in.
	CanonicalMint = MustKey("4ef3a8b1c6d92f05e7a1b3c8d40f6e2a9b5c1d7e3f80a2b4c6d8e0f1a3b5c7d9")

	// TreasuryOwner is the identity that must own the destination holding account.
	TreasuryOwner = MustKey("b27d4c9e1f5a380b6c2d8e4f0a19b3c5d7e9f1a2b4c6d8e0f2a4b6c8d0e2f4a6")

	// ProgramID domain-separates receipt address derivation from every other
	// deriver in the ledger.
	ProgramID = MustKey("913fd6a2c45e08b7f1d3a5c7e92b4d6f8a0c2e4f6b8d0a1c3e5f7a9b1d3f5c70")
)

// ParseKey decodes a 64-character hex string into a Key.
func ParseKey(s string) (Key, error) {
	var k Key
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid key %q: %w", s, err)
	}
	if len(b) != len(k) {
		return Key{}, fmt.Errorf("invalid key %q: want %d bytes, got %d", s, len(k), len(b))
	}
	copy(k[:], b)
	return k, nil
}

// MustKey is ParseKey for package-level constants; panics on bad input.
func MustKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

func (k Key) Bytes() []byte {
	return k[:]
}

func (k Key) IsZero() bool {
	return k == Key{}
}

func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Key) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
