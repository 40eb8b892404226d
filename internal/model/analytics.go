package model

import (
	"time"
)

const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// AccessEvent is one append-only record of an access attempt.
type AccessEvent struct {
	ID         string    `db:"id"`
	DocumentID string    `db:"document_id"`
	UserID     *string   `db:"user_id"` // Nil for guests
	Action     Action    `db:"action"`
	Outcome    string    `db:"outcome"`
	Reason     string    `db:"reason"`
	IPAddress  string    `db:"ip_address"`
	UserAgent  string    `db:"user_agent"`
	CreatedAt  time.Time `db:"created_at"`
}

// DocumentCounters are denormalized and may drift from the event log.
type DocumentCounters struct {
	DocumentID string    `db:"document_id"`
	Views      int64     `db:"views"`
	Downloads  int64     `db:"downloads"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type AccessSummary struct {
	DocumentID string
	Counters   DocumentCounters
	Allowed    map[Action]int64
	Denied     map[Action]int64
	UniqueIPs  int64
	LastAccess *time.Time
}

type EventFilter struct {
	DocumentID string
	Action     Action
	Outcome    string
	Since      time.Time
	Limit      uint64
}
