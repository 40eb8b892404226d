package repository

import (
	"testing"
	"time"

	"github.com/templui/securedocs/internal/db/dbtest"
	"github.com/templui/securedocs/internal/model"
)

func TestAnalyticsRepositoryCounters(t *testing.T) {
	repo := NewAnalyticsRepository(dbtest.New(t))

	c, err := repo.Counters("doc-1")
	if err != nil {
		t.Fatalf("Counters() unexpected error: %v", err)
	}
	if c.Views != 0 || c.Downloads != 0 {
		t.Errorf("Counters() = %+v, want zero for unknown document", c)
	}

	for i := 0; i < 3; i++ {
		if err := repo.IncrementCounter("doc-1", model.ActionView); err != nil {
			t.Fatalf("IncrementCounter(view) unexpected error: %v", err)
		}
	}
	if err := repo.IncrementCounter("doc-1", model.ActionDownload); err != nil {
		t.Fatalf("IncrementCounter(download) unexpected error: %v", err)
	}

	c, err = repo.Counters("doc-1")
	if err != nil {
		t.Fatalf("Counters() unexpected error: %v", err)
	}
	if c.Views != 3 || c.Downloads != 1 {
		t.Errorf("Counters() = views %d downloads %d, want 3 and 1", c.Views, c.Downloads)
	}

	if err := repo.IncrementCounter("doc-1", model.Action("share")); err == nil {
		t.Error("IncrementCounter(share) expected error, got nil")
	}
}

func TestAnalyticsRepositorySummaryAndEvents(t *testing.T) {
	repo := NewAnalyticsRepository(dbtest.New(t))
	userID := "user-1"

	events := []*model.AccessEvent{
		{DocumentID: "doc-1", Action: model.ActionView, Outcome: model.OutcomeAllowed, IPAddress: "10.0.0.1", UserID: &userID},
		{DocumentID: "doc-1", Action: model.ActionView, Outcome: model.OutcomeAllowed, IPAddress: "10.0.0.2"},
		{DocumentID: "doc-1", Action: model.ActionDownload, Outcome: model.OutcomeDenied, Reason: "password", IPAddress: "10.0.0.2"},
		{DocumentID: "doc-2", Action: model.ActionView, Outcome: model.OutcomeAllowed, IPAddress: "10.0.0.9"},
	}
	for _, e := range events {
		if err := repo.CreateEvent(e); err != nil {
			t.Fatalf("CreateEvent() unexpected error: %v", err)
		}
	}

	summary, err := repo.Summary("doc-1", time.Time{})
	if err != nil {
		t.Fatalf("Summary() unexpected error: %v", err)
	}
	if summary.Allowed[model.ActionView] != 2 {
		t.Errorf("Summary() allowed views = %d, want 2", summary.Allowed[model.ActionView])
	}
	if summary.Denied[model.ActionDownload] != 1 {
		t.Errorf("Summary() denied downloads = %d, want 1", summary.Denied[model.ActionDownload])
	}
	if summary.UniqueIPs != 2 {
		t.Errorf("Summary() unique IPs = %d, want 2", summary.UniqueIPs)
	}
	if summary.LastAccess == nil {
		t.Error("Summary() last access = nil, want a timestamp")
	}

	denied, err := repo.Events(model.EventFilter{DocumentID: "doc-1", Outcome: model.OutcomeDenied})
	if err != nil {
		t.Fatalf("Events() unexpected error: %v", err)
	}
	if len(denied) != 1 || denied[0].Reason != "password" || denied[0].UserID != nil {
		t.Errorf("Events(denied) = %+v", denied)
	}

	limited, err := repo.Events(model.EventFilter{Action: model.ActionView, Limit: 2})
	if err != nil {
		t.Fatalf("Events() unexpected error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Events(limit 2) = %d events, want 2", len(limited))
	}

	empty, err := repo.Summary("doc-3", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summary() unexpected error: %v", err)
	}
	if empty.LastAccess != nil || empty.UniqueIPs != 0 {
		t.Errorf("Summary(unknown) = %+v, want empty", empty)
	}
}
