package service

import (
	"context"
	"testing"
	"time"
)

func TestGrantStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	grants := NewGrantStore(time.Hour)
	grants.now = func() time.Time { return now }

	sess := newTestSession()

	if grants.Check(sess, "doc-1") {
		t.Fatal("Check() true before any grant")
	}
	if grants.Check(nil, "doc-1") {
		t.Fatal("Check() true without a session")
	}

	err := grants.Record(ctx, sess, "doc-1")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	now = now.Add(59 * time.Minute)
	if !grants.Check(sess, "doc-1") {
		t.Error("Check() false within ttl")
	}
	if grants.Check(sess, "doc-2") {
		t.Error("grant for doc-1 authorized doc-2")
	}

	now = now.Add(time.Minute)
	if grants.Check(sess, "doc-1") {
		t.Error("Check() true once ttl elapsed")
	}

	err = grants.Record(ctx, sess, "doc-2")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if _, ok := sess.Grant("doc-1"); ok {
		t.Error("stale grant not pruned on save")
	}

	if err := grants.Record(ctx, nil, "doc-1"); err == nil {
		t.Error("Record() without session should fail")
	}
}
