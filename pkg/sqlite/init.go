// Package sqlite registers the sqlite3 driver variant used by Ragway.
package sqlite

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

const DriverName = "sqlite3_ragway"

// Every connection runs with WAL journaling and a busy timeout so the HTTP
// API and the telegram bot can share one database file.
var connectPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, pragma := range connectPragmas {
				if _, err := conn.Exec(pragma, nil); err != nil {
					return err
				}
			}
			return nil
		},
	})
}
