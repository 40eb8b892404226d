package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/templui/securedocs/internal/model"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	t.Run("missing session", func(t *testing.T) {
		_, err := store.Load(ctx, "nope")
		if err != ErrNotFound {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("save and load returns copy", func(t *testing.T) {
		data := &Data{Grants: map[string]model.SessionGrant{
			"doc-1": {DocumentID: "doc-1", GrantedAt: now, TTL: time.Hour},
		}}
		err := store.Save(ctx, "s1", data, time.Minute)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load(ctx, "s1")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if _, ok := got.Grants["doc-1"]; !ok {
			t.Fatal("grant missing after load")
		}

		delete(got.Grants, "doc-1")
		again, _ := store.Load(ctx, "s1")
		if _, ok := again.Grants["doc-1"]; !ok {
			t.Error("mutating a loaded session leaked into the store")
		}
	})

	t.Run("expired session is gone", func(t *testing.T) {
		err := store.Save(ctx, "s2", &Data{}, time.Minute)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		now = now.Add(time.Minute)
		_, err = store.Load(ctx, "s2")
		if err != ErrNotFound {
			t.Errorf("Load() error = %v, want ErrNotFound after ttl", err)
		}
	})

	t.Run("cleanup", func(t *testing.T) {
		_ = store.Save(ctx, "s3", &Data{}, time.Second)
		now = now.Add(2 * time.Second)
		if removed := store.Cleanup(); removed == 0 {
			t.Error("Cleanup() removed nothing")
		}
	})
}

func TestSessionGrants(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newSession("id", nil, NewMemoryStore(), time.Hour)

	s.SetGrant(model.SessionGrant{DocumentID: "fresh", GrantedAt: now, TTL: time.Hour})
	s.SetGrant(model.SessionGrant{DocumentID: "stale", GrantedAt: now.Add(-2 * time.Hour), TTL: time.Hour})
	s.PruneGrants(now)

	if _, ok := s.Grant("fresh"); !ok {
		t.Error("fresh grant pruned")
	}
	if _, ok := s.Grant("stale"); ok {
		t.Error("stale grant survived pruning")
	}

	if s.PasswordUnlocked("doc") {
		t.Error("document unlocked before UnlockPassword")
	}
	s.UnlockPassword("doc", now)
	if !s.PasswordUnlocked("doc") {
		t.Error("document not unlocked after UnlockPassword")
	}
}

func TestManagerLoad(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, time.Hour, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s, err := m.Load(rec, req)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !s.IsNew() {
		t.Error("first load should start a new session")
	}
	s.UnlockPassword("doc", time.Now())
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v, want one HttpOnly session cookie", cookies)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	again, err := m.Load(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again.ID != s.ID || again.IsNew() {
		t.Errorf("session not resumed: id %q new=%v", again.ID, again.IsNew())
	}
	if !again.PasswordUnlocked("doc") {
		t.Error("unlocked document lost between requests")
	}

	t.Run("forged cookie starts fresh", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "short"})
		s, err := m.Load(httptest.NewRecorder(), req)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !s.IsNew() || s.ID == "short" {
			t.Errorf("forged cookie accepted: %q", s.ID)
		}
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	store := NewRedisStore(RedisConfig{Addr: addr})
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	id, err := newID()
	if err != nil {
		t.Fatalf("newID() error = %v", err)
	}

	_, err = store.Load(ctx, id)
	if err != ErrNotFound {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}

	data := &Data{Unlocked: map[string]time.Time{"doc": time.Now().UTC()}}
	if err := store.Save(ctx, id, data, time.Minute); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := got.Unlocked["doc"]; !ok {
		t.Error("unlocked document lost in redis round trip")
	}
}
