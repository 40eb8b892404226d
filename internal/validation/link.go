package validation

import (
	"errors"
	"time"
)

// MaxLinkTTL bounds how long a minted secure link may stay valid.
const MaxLinkTTL = 30 * 24 * time.Hour

var ErrLinkTTL = errors.New("ttl must be a positive duration up to 720h")

// ParseLinkTTL parses a requested link lifetime. An empty value returns
// zero, which callers treat as "use the configured default".
func ParseLinkTTL(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, ErrLinkTTL
	}
	return ttl, CheckLinkTTL(ttl)
}

func CheckLinkTTL(ttl time.Duration) error {
	if ttl <= 0 || ttl > MaxLinkTTL {
		return ErrLinkTTL
	}
	return nil
}
