// Package store provides read-only access to the HDB dataset in Postgres.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store executes generated queries against a bounded, read-only
// connection pool. A connection is acquired per query and released on
// every exit path; nothing holds a connection across orchestration turns.
type Store struct {
	db           *sqlx.DB
	maxRows      int
	queryTimeout time.Duration
}

// New connects to Postgres. The DSN is forced read-only at the session
// level so that even a statement slipping past the static SQL gate cannot
// mutate data.
func New(dsn string, maxRows int, queryTimeout time.Duration) (*Store, error) {
	db, err := sqlx.Connect("postgres", forceReadOnly(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db, maxRows: maxRows, queryTimeout: queryTimeout}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies connectivity, for the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SelectRows runs one verified SELECT and returns up to maxRows rows as
// ordered column->value maps. The query runs under its own timeout,
// independent of the session turn cap.
func (s *Store) SelectRows(ctx context.Context, query string) ([]map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	out := make([]map[string]interface{}, 0)
	for rows.Next() {
		if len(out) >= s.maxRows {
			break
		}
		row := map[string]interface{}{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for k, v := range row {
			// lib/pq hands text columns back as []byte
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return out, nil
}

func forceReadOnly(dsn string) string {
	if strings.Contains(dsn, "default_transaction_read_only") {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "options=-c%20default_transaction_read_only%3Don"
	}
	return dsn + " options='-c default_transaction_read_only=on'"
}
