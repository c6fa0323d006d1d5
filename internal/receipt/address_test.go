package receipt

import (
	"errors"
	"strings"
	"testing"

	"packpay/internal/model"
)

func testBuyer(b byte) model.Key {
	var k model.Key
	for i := range k {
		k[i] = b
	}
	return k
}

func TestDeriveAddress_Deterministic(t *testing.T) {
	buyer := testBuyer(0xAB)

	addr1, bump1, err := DeriveAddress(buyer, "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr2, bump2, err := DeriveAddress(buyer, "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if addr1 != addr2 {
		t.Errorf("same inputs produced different addresses: %s vs %s", addr1, addr2)
	}
	if bump1 != bump2 {
		t.Errorf("same inputs produced different bumps: %d vs %d", bump1, bump2)
	}
}

func TestDeriveAddress_DistinctInputs(t *testing.T) {
	buyer := testBuyer(0x01)
	other := testBuyer(0x02)

	a1, _, err := DeriveAddress(buyer, "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, _, err := DeriveAddress(buyer, "order-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a3, _, err := DeriveAddress(other, "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a1 == a2 {
		t.Error("different tags derived the same address")
	}
	if a1 == a3 {
		t.Error("different buyers derived the same address")
	}
}

func TestDeriveAddress_TagTooLong(t *testing.T) {
	buyer := testBuyer(0x01)
	tag := strings.Repeat("x", MaxTagLen+1)

	_, _, err := DeriveAddress(buyer, tag)
	if !errors.Is(err, ErrSeedTooLong) {
		t.Errorf("want ErrSeedTooLong, got %v", err)
	}
}

func TestDeriveAddress_MaxLenTagAllowed(t *testing.T) {
	buyer := testBuyer(0x01)
	tag := strings.Repeat("x", MaxTagLen)

	if _, _, err := DeriveAddress(buyer, tag); err != nil {
		t.Errorf("tag of exactly %d bytes should derive: %v", MaxTagLen, err)
	}
}

func TestVerifyAddress(t *testing.T) {
	buyer := testBuyer(0xC3)

	addr, bump, err := DeriveAddress(buyer, "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !VerifyAddress(addr, buyer, "order-1", bump) {
		t.Error("derived address failed verification against its own inputs")
	}
	if VerifyAddress(addr, buyer, "order-2", bump) {
		t.Error("verification passed with the wrong tag")
	}
	if VerifyAddress(addr, testBuyer(0xC4), "order-1", bump) {
		t.Error("verification passed with the wrong buyer")
	}
	if VerifyAddress(addr, buyer, strings.Repeat("x", MaxTagLen+1), bump) {
		t.Error("verification passed with an oversized tag")
	}
}

func TestDerivedAddressIsOffCurve(t *testing.T) {
	// The derived address must never be a valid user key encoding, or a key
	// holder could front-run the allocation.
	for _, tag := range []string{"order-1", "order-2", "a", ""} {
		addr, _, err := DeriveAddress(testBuyer(0x7F), tag)
		if err != nil {
			t.Fatalf("tag %q: unexpected error: %v", tag, err)
		}
		if !offCurve(addr) {
			t.Errorf("tag %q: derived address %s decodes as an ed25519 point", tag, addr)
		}
	}
}
