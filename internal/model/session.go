package model

import "time"

// SessionGrant permits tokenless follow-up views of one document.
type SessionGrant struct {
	DocumentID string        `json:"document_id"`
	GrantedAt  time.Time     `json:"granted_at"`
	TTL        time.Duration `json:"ttl"`
}

func (g SessionGrant) ValidAt(now time.Time) bool {
	return now.Sub(g.GrantedAt) < g.TTL
}
