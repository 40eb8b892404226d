package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  error
	}{
		{"plain", "editor@example.com", nil},
		{"empty", "", ErrEmailRequired},
		{"too long", strings.Repeat("a", 250) + "@x.io", ErrEmailTooLong},
		{"no at", "editor.example.com", ErrEmailFormat},
		{"display name", "Ed <editor@example.com>", ErrEmailFormat},
		{"angle brackets", "<editor@example.com>", ErrEmailFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateEmail(tt.email); !errors.Is(err, tt.want) {
				t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, err, tt.want)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"ok", "correct horse battery", nil},
		{"multibyte counts runes", "äöüäöüßßéèêë", nil},
		{"short", "short", ErrPasswordShort},
		{"over bcrypt limit", strings.Repeat("ab", 37), ErrPasswordLong},
		{"single repeated char", strings.Repeat("z", 16), ErrPasswordWeak},
		{"common word", "MyPassword-2024", ErrPasswordWeak},
		{"contains email", "xx-editor-xx-yy", ErrPasswordMailPart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, "editor@example.com")
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.want)
			}
		})
	}
}

func TestParseLinkTTL(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"90m", 90 * time.Minute, false},
		{"720h", MaxLinkTTL, false},
		{"721h", 0, true},
		{"0s", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLinkTTL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLinkTTL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLinkTTL(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
