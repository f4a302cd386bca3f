// Package postgres opens the database/sql handle the repositories run on.
// The pgx stdlib driver must be registered by the importer.
package postgres

import (
	"database/sql"
	"fmt"
	"log"
)

type ConnectionInfo struct {
	Host     string
	Port     int
	Username string
	DBName   string
	SSLMode  string
	Password string
}

// NewPostgresConnection opens and pings a connection built from info.
func NewPostgresConnection(info ConnectionInfo) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s password=%s",
		info.Host,
		info.Port,
		info.Username,
		info.DBName,
		info.SSLMode,
		info.Password,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// sql.Open is lazy; ping now so a bad DSN fails at startup.
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// Close shuts the pool down. Only called during shutdown, so a failure
// here is fatal.
func Close(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Fatalf("closing postgres pool: %s", err)
	}
}
