package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/templui/securedocs/internal/db"
	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/repository"
)

func TestRecordConcurrentWriters(t *testing.T) {
	// Same DSN shape as the default config minus busy_timeout, which Init adds.
	path := filepath.Join(t.TempDir(), "events.db")
	database, err := db.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	svc := NewAnalyticsService(repository.NewAnalyticsRepository(database))

	const writers = 50
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Record(context.Background(), &model.AccessEvent{
				DocumentID: "doc-busy",
				Action:     model.ActionDownload,
				Outcome:    model.OutcomeAllowed,
				IPAddress:  "203.0.113.9",
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Record() error = %v", err)
		}
	}

	events, err := svc.Events(model.EventFilter{DocumentID: "doc-busy", Limit: 100})
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != writers {
		t.Errorf("stored %d events, want %d", len(events), writers)
	}

	counters, err := svc.Counters("doc-busy")
	if err != nil {
		t.Fatalf("Counters() error = %v", err)
	}
	if counters.Downloads < 1 || counters.Downloads > writers {
		t.Errorf("Downloads = %d, want between 1 and %d", counters.Downloads, writers)
	}
}
