package auth

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestSealOpenToken_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "typical token", token: "adp_live_4f6a2b8c9d"},
		{name: "empty token", token: ""},
		{name: "long token", token: strings.Repeat("x", 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := sealToken(tt.token)
			if err != nil {
				t.Fatalf("sealToken: %v", err)
			}
			if strings.Contains(sealed, tt.token) && tt.token != "" {
				t.Error("sealed blob contains plaintext token")
			}

			got, err := openToken(sealed)
			if err != nil {
				t.Fatalf("openToken: %v", err)
			}
			if got != tt.token {
				t.Errorf("round trip mismatch: got %q, want %q", got, tt.token)
			}
		})
	}
}

func TestSealToken_UniqueBlobs(t *testing.T) {
	a, err := sealToken("same-token")
	if err != nil {
		t.Fatalf("sealToken: %v", err)
	}
	b, err := sealToken("same-token")
	if err != nil {
		t.Fatalf("sealToken: %v", err)
	}
	if a == b {
		t.Error("two seals of the same token produced identical blobs")
	}
}

func TestOpenToken_Tampered(t *testing.T) {
	sealed, err := sealToken("secret")
	if err != nil {
		t.Fatalf("sealToken: %v", err)
	}

	blob, _ := base64.StdEncoding.DecodeString(sealed)
	blob[len(blob)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(blob)

	if _, err := openToken(tampered); err == nil {
		t.Error("openToken accepted a tampered blob")
	}
}

func TestOpenToken_Garbage(t *testing.T) {
	if _, err := openToken("not base64!!"); err == nil {
		t.Error("openToken accepted invalid base64")
	}
	if _, err := openToken(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("openToken accepted a truncated blob")
	}
}
