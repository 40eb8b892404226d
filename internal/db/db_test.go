package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	database, err := Open("sqlite", path)
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	defer database.Close()

	version, err := Version(database.DB, "sqlite")
	if err != nil {
		t.Fatalf("Version() unexpected error: %v", err)
	}
	if version < 1 {
		t.Errorf("Version() = %d, want >= 1", version)
	}

	for _, table := range []string{"users", "documents", "document_files", "document_assignments", "access_events", "document_counters"} {
		var n int
		err := database.Get(&n, `SELECT COUNT(*) FROM `+table)
		if err != nil {
			t.Errorf("table %s not queryable: %v", table, err)
		}
	}

	if err := Healthy(context.Background(), database); err != nil {
		t.Errorf("Healthy() unexpected error: %v", err)
	}
}

func TestGetDialect(t *testing.T) {
	tests := map[string]string{
		"sqlite": "sqlite3",
		"pgx":    "postgres",
		"mysql":  "mysql",
	}
	for driver, want := range tests {
		if got := getDialect(driver); got != want {
			t.Errorf("getDialect(%q) = %q, want %q", driver, got, want)
		}
	}
}

func TestWithBusyTimeout(t *testing.T) {
	tests := []struct {
		name       string
		connection string
		want       string
	}{
		{"bare path", "data/app.db", "data/app.db?_pragma=busy_timeout(5000)"},
		{"existing pragmas", "data/app.db?_pragma=foreign_keys(1)", "data/app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"explicit timeout kept", "data/app.db?_pragma=busy_timeout(100)", "data/app.db?_pragma=busy_timeout(100)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withBusyTimeout(tt.connection); got != tt.want {
				t.Errorf("withBusyTimeout(%q) = %q, want %q", tt.connection, got, tt.want)
			}
		})
	}
}
