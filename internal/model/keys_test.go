package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseKeyRoundtrip(t *testing.T) {
	hex := strings.Repeat("ab", 32)

	k, err := ParseKey(hex)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if k.String() != hex {
		t.Errorf("roundtrip mismatch: %s", k)
	}
}

func TestParseKeyRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "zz", strings.Repeat("ab", 31), strings.Repeat("ab", 33)} {
		if _, err := ParseKey(s); err == nil {
			t.Errorf("ParseKey(%q) succeeded", s)
		}
	}
}

func TestKeyJSON(t *testing.T) {
	k := MustKey(strings.Repeat("cd", 32))

	data, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Key
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != k {
		t.Errorf("roundtrip mismatch: %s vs %s", got, k)
	}

	var bad Key
	if err := json.Unmarshal([]byte(`"short"`), &bad); err == nil {
		t.Error("unmarshal accepted a short key")
	}
}
