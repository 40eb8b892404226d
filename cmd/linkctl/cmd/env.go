package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/securedocs/internal/config"
	"github.com/templui/securedocs/internal/db"
)

// openDB loads the server configuration and opens its database.
// Schema migrations run as part of opening. The caller must close the db.
func openDB() (*config.Config, *sqlx.DB, error) {
	cfg := config.Load()

	database, err := db.Open(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return cfg, database, nil
}
