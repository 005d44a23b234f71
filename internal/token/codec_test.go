package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdefEXTRA-BYTES-ARE-TRUNCATED"

func testCodec(t *testing.T, encrypted bool) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, encrypted)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return c
}

func TestNewCodec_RejectsShortSecret(t *testing.T) {
	if _, err := NewCodec("short", true); err == nil {
		t.Error("NewCodec should reject a secret shorter than the key size")
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		encrypted bool
		purpose   domain.TokenPurpose
	}{
		{"signed verify", false, domain.PurposeVerify},
		{"signed reset", false, domain.PurposePasswordReset},
		{"encrypted verify", true, domain.PurposeVerify},
		{"encrypted reset", true, domain.PurposePasswordReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCodec(t, tt.encrypted)
			id := uuid.New()
			userID := uuid.New()
			now := time.Now().Truncate(time.Second)

			raw, err := c.Encode(id, userID, tt.purpose, now, now.Add(domain.TokenTTL))
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			claims, err := c.Decode(raw)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if claims.Purpose != tt.purpose {
				t.Errorf("Purpose = %q, want %q", claims.Purpose, tt.purpose)
			}
			owner, err := claims.Owner()
			if err != nil {
				t.Fatalf("Owner failed: %v", err)
			}
			if owner != userID {
				t.Errorf("Owner = %v, want %v", owner, userID)
			}
			if !claims.ExpiresAt.Time.Equal(now.Add(domain.TokenTTL)) {
				t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt.Time, now.Add(domain.TokenTTL))
			}
		})
	}
}

func TestCodec_WireFormPrefixes(t *testing.T) {
	id, userID := uuid.New(), uuid.New()
	now := time.Now()

	signed, err := testCodec(t, false).Encode(id, userID, domain.PurposeVerify, now, now.Add(domain.TokenTTL))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(signed, jwsPrefix) {
		t.Errorf("signed form should start with %q, got %q", jwsPrefix, signed[:8])
	}

	sealed, err := testCodec(t, true).Encode(id, userID, domain.PurposeVerify, now, now.Add(domain.TokenTTL))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(sealed, encPrefix) {
		t.Errorf("encrypted form should start with %q, got %q", encPrefix, sealed[:8])
	}
}

func TestCodec_DecodeAcceptsBothForms(t *testing.T) {
	// A decoder built for encrypted tokens still accepts the bare signed
	// form: call sites probe the prefix instead of carrying a mode flag.
	signer := testCodec(t, false)
	id, userID := uuid.New(), uuid.New()
	now := time.Now()

	signed, err := signer.Encode(id, userID, domain.PurposeVerify, now, now.Add(domain.TokenTTL))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if _, err := testCodec(t, true).Decode(signed); err != nil {
		t.Errorf("Decode of bare signed form failed: %v", err)
	}
}

func TestCodec_DecodeExpiredPayload(t *testing.T) {
	// Decode hands expiry enforcement to the store; an expired payload
	// with a valid signature still parses.
	c := testCodec(t, true)
	id, userID := uuid.New(), uuid.New()
	past := time.Now().Add(-2 * domain.TokenTTL)

	raw, err := c.Encode(id, userID, domain.PurposeVerify, past, past.Add(domain.TokenTTL))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	claims, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !claims.ExpiresAt.Time.Before(time.Now()) {
		t.Error("expected an expired payload")
	}
}

func TestCodec_DecodeFailures(t *testing.T) {
	c := testCodec(t, true)
	id, userID := uuid.New(), uuid.New()
	now := time.Now()

	valid, err := c.Encode(id, userID, domain.PurposeVerify, now, now.Add(domain.TokenTTL))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	other, err := NewCodec("ffffffffffffffffffffffffffffffff", true)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	tamper := func(s string) string {
		b := []byte(s)
		i := len(b) / 2
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		return string(b)
	}

	tests := []struct {
		name  string
		codec *Codec
		raw   string
	}{
		{"tampered ciphertext", c, tamper(valid)},
		{"wrong key", other, valid},
		{"garbage", c, "not-a-token"},
		{"empty", c, ""},
		{"bare prefix with junk", c, "eyJjunkjunkjunk"},
		{"enc prefix with junk", c, "enc.%%%not-base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.codec.Decode(tt.raw); !errors.Is(err, domain.ErrInvalidToken) {
				t.Errorf("Decode = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestCodec_SignedFormTamperFails(t *testing.T) {
	c := testCodec(t, false)
	id, userID := uuid.New(), uuid.New()
	now := time.Now()

	raw, err := c.Encode(id, userID, domain.PurposeVerify, now, now.Add(domain.TokenTTL))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Flip one character of the signature segment.
	b := []byte(raw)
	i := len(b) - 2
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}

	if _, err := c.Decode(string(b)); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("Decode = %v, want ErrInvalidToken", err)
	}
}
