package model

import (
	"fmt"
	"time"
)

type Action string

const (
	ActionView     Action = "view"
	ActionDownload Action = "download"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionView, ActionDownload:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// SecureLink is the decoded content of a signed capability token.
// It is never persisted.
type SecureLink struct {
	DocumentID string
	Action     Action
	FileIndex  int
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

func (l *SecureLink) IsExpired(now time.Time) bool {
	return now.Before(l.IssuedAt) || !now.Before(l.ExpiresAt)
}
