// Package session keeps small per-visitor state (access grants, unlocked
// document passwords) behind an opaque cookie.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/templui/securedocs/internal/model"
)

var ErrNotFound = errors.New("session not found")

const idLen = 32

// Data is the persisted part of a session.
type Data struct {
	Grants   map[string]model.SessionGrant `json:"grants,omitempty"`
	Unlocked map[string]time.Time          `json:"unlocked,omitempty"`
}

type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
}

// Session is one visitor's state for the duration of a request.
// Mutations are local until Save.
type Session struct {
	ID    string
	data  *Data
	store Store
	ttl   time.Duration
	isNew bool
}

// New starts an empty session that saves into store.
func New(id string, store Store, ttl time.Duration) *Session {
	return newSession(id, nil, store, ttl)
}

func newSession(id string, data *Data, store Store, ttl time.Duration) *Session {
	if data == nil {
		data = &Data{}
	}
	if data.Grants == nil {
		data.Grants = map[string]model.SessionGrant{}
	}
	if data.Unlocked == nil {
		data.Unlocked = map[string]time.Time{}
	}
	return &Session{ID: id, data: data, store: store, ttl: ttl}
}

func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) Grant(documentID string) (model.SessionGrant, bool) {
	g, ok := s.data.Grants[documentID]
	return g, ok
}

func (s *Session) SetGrant(g model.SessionGrant) {
	s.data.Grants[g.DocumentID] = g
}

// PruneGrants drops grants that are no longer valid at now.
func (s *Session) PruneGrants(now time.Time) {
	for id, g := range s.data.Grants {
		if !g.ValidAt(now) {
			delete(s.data.Grants, id)
		}
	}
}

func (s *Session) PasswordUnlocked(documentID string) bool {
	_, ok := s.data.Unlocked[documentID]
	return ok
}

func (s *Session) UnlockPassword(documentID string, at time.Time) {
	s.data.Unlocked[documentID] = at
}

func (s *Session) Save(ctx context.Context) error {
	err := s.store.Save(ctx, s.ID, s.data, s.ttl)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.isNew = false
	return nil
}

func newID() (string, error) {
	b := make([]byte, idLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func validID(id string) bool {
	return len(id) == base64.RawURLEncoding.EncodedLen(idLen)
}
