// Package catalog is an optional provenance sink that readers and
// writers of system/portable files report to after a successful open
// or close (§4.8/§4.9's external-interfaces story, supplemented beyond
// spec.md: the original PSPP has no such audit trail, but a production
// deployment that runs many batch conversions wants one). Grounded on
// the teacher's db/connection.go ConnectionManager: a Config struct
// with pool/retry knobs, a pooled *sql.DB, and a connect-with-retry
// loop — collapsed here to a single store rather than a named-
// connection registry, since one process talks to one catalog.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Config configures the catalog's database connection. Driver is
// either "mysql" (github.com/go-sql-driver/mysql) or "postgres"
// (github.com/lib/pq), matching the two SQL drivers in go.mod.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	ConnectTimeout  time.Duration
}

func (c *Config) setDefaults() {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 30 * time.Second
	}
}

// Store records file-conversion provenance events to a SQL catalog.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the catalog database, retrying per Config, and
// ensures the catalog schema exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg.setDefaults()

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	var pingErr error
	for attempt := 1; attempt <= cfg.RetryAttempts; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		pingErr = db.PingContext(pctx)
		cancel()
		if pingErr == nil {
			break
		}
		if attempt < cfg.RetryAttempts {
			time.Sleep(cfg.RetryDelay)
		}
	}
	if pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: ping after %d attempts: %w", cfg.RetryAttempts, pingErr)
	}

	st := &Store{db: db, driver: cfg.Driver}
	if err := st.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// Kind distinguishes which codec produced a provenance event.
type Kind string

const (
	KindSystemFile   Kind = "sav"
	KindPortableFile Kind = "por"
	KindDataList     Kind = "datalist"
)

// RecordOpen inserts a row noting that path was opened for kind, with
// the dictionary's variable count at open time.
func (s *Store) RecordOpen(ctx context.Context, kind Kind, path string, varCount int) (int64, error) {
	insert := `INSERT INTO pspp_catalog_events (kind, path, var_count, opened_at) VALUES (?, ?, ?, ?)`
	if s.driver == "postgres" {
		// lib/pq doesn't populate sql.Result.LastInsertId; RETURNING id
		// is the idiomatic substitute.
		var id int64
		err := s.db.QueryRowContext(ctx, s.rebind(insert)+" RETURNING id",
			string(kind), path, varCount, time.Now().UTC()).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("catalog: record open: %w", err)
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx, insert, string(kind), path, varCount, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("catalog: record open: %w", err)
	}
	return res.LastInsertId()
}

// RecordClose updates the event row for id with the final case count
// and, if non-nil, the error the conversion ended with.
func (s *Store) RecordClose(ctx context.Context, id int64, caseCount int, closeErr error) error {
	msg := ""
	if closeErr != nil {
		msg = closeErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE pspp_catalog_events SET case_count = ?, closed_at = ?, error = ? WHERE id = ?`),
		caseCount, time.Now().UTC(), msg, id)
	if err != nil {
		return fmt.Errorf("catalog: record close: %w", err)
	}
	return nil
}

// rebind rewrites "?" placeholders into Postgres's "$1, $2, ..." style
// when the store is driven by lib/pq; go-sql-driver/mysql accepts "?"
// natively.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b []byte
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b = append(b, '$')
			b = append(b, []byte(fmt.Sprintf("%d", n))...)
			continue
		}
		b = append(b, query[i])
	}
	return string(b)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
