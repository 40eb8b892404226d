package service

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/templui/securedocs/internal/model"
)

const tokenSecret = "test-link-secret"

var tokenEpoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func codecAt(t *time.Time) *TokenCodec {
	return NewTokenCodec(tokenSecret).WithClock(func() time.Time { return *t })
}

func TestTokenRoundTrip(t *testing.T) {
	now := tokenEpoch
	codec := codecAt(&now)

	tests := []struct {
		name   string
		doc    string
		action model.Action
		index  int
	}{
		{"view", "doc-1", model.ActionView, 0},
		{"download first file", "doc-1", model.ActionDownload, 0},
		{"download later file", "doc-2", model.ActionDownload, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Encode(tt.doc, tt.action, tt.index, time.Hour)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			link, err := codec.Decode(token)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if link.DocumentID != tt.doc || link.Action != tt.action || link.FileIndex != tt.index {
				t.Errorf("Decode() = %+v, want %s/%s/%d", link, tt.doc, tt.action, tt.index)
			}
			if !link.IssuedAt.Equal(now) || !link.ExpiresAt.Equal(now.Add(time.Hour)) {
				t.Errorf("Decode() window = %v..%v", link.IssuedAt, link.ExpiresAt)
			}
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	now := tokenEpoch
	codec := codecAt(&now)

	token, err := codec.Encode("doc-1", model.ActionView, 0, time.Hour)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	now = tokenEpoch.Add(time.Hour - time.Second)
	if _, err := codec.Decode(token); err != nil {
		t.Errorf("Decode() just before expiry error = %v", err)
	}

	now = tokenEpoch.Add(time.Hour)
	if _, err := codec.Decode(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Decode() at expiry error = %v, want ErrTokenExpired", err)
	}

	now = tokenEpoch.Add(-time.Second)
	if _, err := codec.Decode(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Decode() before issue error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenZeroTTL(t *testing.T) {
	now := tokenEpoch
	codec := codecAt(&now)

	token, err := codec.Encode("doc-1", model.ActionDownload, 0, 0)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if _, err := codec.Decode(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Decode() immediately error = %v, want ErrTokenExpired", err)
	}

	now = now.Add(time.Second)
	if _, err := codec.Decode(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Decode() one second later error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenTampering(t *testing.T) {
	now := tokenEpoch
	codec := codecAt(&now)

	token, err := codec.Encode("doc-1", model.ActionDownload, 1, time.Hour)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	t.Run("any bit flip", func(t *testing.T) {
		for i := range len(token) {
			for bit := range 8 {
				b := []byte(token)
				b[i] ^= 1 << bit
				tampered := string(b)

				_, err := codec.Decode(tampered)
				if !errors.Is(err, ErrTokenSignatureInvalid) {
					t.Fatalf("Decode() with byte %d bit %d flipped (%q -> %q) error = %v, want ErrTokenSignatureInvalid",
						i, bit, token[i], b[i], err)
				}
			}
		}
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewTokenCodec("another-secret").WithClock(func() time.Time { return now })
		if _, err := other.Decode(token); !errors.Is(err, ErrTokenSignatureInvalid) {
			t.Errorf("Decode() error = %v, want ErrTokenSignatureInvalid", err)
		}
	})

	t.Run("unverifiable structure", func(t *testing.T) {
		for _, raw := range []string{"nodot", ".sig", token + ".", "%zz", strings.Replace(token, ".", "", 1)} {
			if _, err := codec.Decode(raw); !errors.Is(err, ErrTokenSignatureInvalid) {
				t.Errorf("Decode(%q) error = %v, want ErrTokenSignatureInvalid", raw, err)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		for _, raw := range []string{"", "  "} {
			if _, err := codec.Decode(raw); !errors.Is(err, ErrTokenMalformed) {
				t.Errorf("Decode(%q) error = %v, want ErrTokenMalformed", raw, err)
			}
		}
	})

	t.Run("signed garbage payload", func(t *testing.T) {
		encoded := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":""}`))
		sig, err := jwt.SigningMethodHS256.Sign(encoded, []byte(tokenSecret))
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		raw := encoded + "." + base64.RawURLEncoding.EncodeToString(sig)
		if _, err := codec.Decode(raw); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Decode() error = %v, want ErrTokenMalformed", err)
		}
	})

	t.Run("percent encoded", func(t *testing.T) {
		escaped := strings.Replace(token, ".", "%2E", 1)
		if _, err := codec.Decode(escaped); err != nil {
			t.Errorf("Decode() escaped token error = %v", err)
		}
	})
}

func TestTokenErrorHelpers(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrTokenMalformed, "malformed"},
		{ErrTokenExpired, "expired"},
		{ErrTokenSignatureInvalid, "signature_invalid"},
	}
	for _, tt := range tests {
		if !IsTokenError(tt.err) {
			t.Errorf("IsTokenError(%v) = false", tt.err)
		}
		if got := TokenDiagnosis(tt.err); got != tt.want {
			t.Errorf("TokenDiagnosis(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if IsTokenError(ErrResourceNotFound) {
		t.Error("IsTokenError(ErrResourceNotFound) = true")
	}
}

func TestSecureURLs(t *testing.T) {
	if got := ViewURL("https://docs.example.com/", "abc.def"); got != "https://docs.example.com/secure/view?token=abc.def" {
		t.Errorf("ViewURL() = %q", got)
	}
	if got := DownloadURL("https://docs.example.com", "abc.def"); got != "https://docs.example.com/secure/download?token=abc.def" {
		t.Errorf("DownloadURL() = %q", got)
	}
}
