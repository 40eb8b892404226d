package service

import (
	"context"
	"fmt"
	"time"

	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/session"
)

// GrantStore records successful secure views on the visitor's session so
// the document permalink can be revisited without a token for a while.
// Grants never authorize downloads.
type GrantStore struct {
	ttl time.Duration
	now func() time.Time
}

func NewGrantStore(ttl time.Duration) *GrantStore {
	return &GrantStore{ttl: ttl, now: time.Now}
}

func (g *GrantStore) TTL() time.Duration {
	return g.ttl
}

// Record stores a fresh grant and drops stale ones before saving.
func (g *GrantStore) Record(ctx context.Context, sess *session.Session, documentID string) error {
	if sess == nil {
		return fmt.Errorf("record grant: no session")
	}

	now := g.now()
	sess.PruneGrants(now)
	sess.SetGrant(model.SessionGrant{
		DocumentID: documentID,
		GrantedAt:  now,
		TTL:        g.ttl,
	})

	err := sess.Save(ctx)
	if err != nil {
		return fmt.Errorf("record grant: %w", err)
	}
	return nil
}

func (g *GrantStore) Check(sess *session.Session, documentID string) bool {
	if sess == nil {
		return false
	}
	grant, ok := sess.Grant(documentID)
	if !ok {
		return false
	}
	return grant.ValidAt(g.now())
}
