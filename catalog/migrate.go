package catalog

import (
	"context"
	"fmt"
)

// ensureSchema idempotently creates the two catalog tables (events and
// schema snapshots), the way teacher's migration.MigrationManager.Apply
// skips migrations already recorded as applied — here CREATE TABLE IF
// NOT EXISTS plays the same role without a migrations ledger.
func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.createTableDDL()); err != nil {
		return fmt.Errorf("catalog: ensure schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.createSchemaTableDDL()); err != nil {
		return fmt.Errorf("catalog: ensure schema: %w", err)
	}
	return nil
}

// createTableDDL returns driver-appropriate DDL for the catalog
// table: MySQL needs AUTO_INCREMENT, Postgres needs SERIAL.
func (s *Store) createTableDDL() string {
	switch s.driver {
	case "postgres":
		return `CREATE TABLE IF NOT EXISTS pspp_catalog_events (
			id SERIAL PRIMARY KEY,
			kind VARCHAR(32) NOT NULL,
			path TEXT NOT NULL,
			var_count INTEGER NOT NULL,
			case_count INTEGER NOT NULL DEFAULT 0,
			opened_at TIMESTAMP NOT NULL,
			closed_at TIMESTAMP,
			error TEXT
		)`
	default: // mysql
		return `CREATE TABLE IF NOT EXISTS pspp_catalog_events (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			kind VARCHAR(32) NOT NULL,
			path TEXT NOT NULL,
			var_count INT NOT NULL,
			case_count INT NOT NULL DEFAULT 0,
			opened_at DATETIME NOT NULL,
			closed_at DATETIME,
			error TEXT
		)`
	}
}

// createSchemaTableDDL returns driver-appropriate DDL for the
// one-row-per-path dictionary-snapshot table that backs
// Store.LastSchema/SaveSchema (Dictionary.Diff's catalog-writer caller).
func (s *Store) createSchemaTableDDL() string {
	switch s.driver {
	case "postgres":
		return `CREATE TABLE IF NOT EXISTS pspp_catalog_schemas (
			path TEXT PRIMARY KEY,
			schema_json TEXT NOT NULL
		)`
	default: // mysql
		return `CREATE TABLE IF NOT EXISTS pspp_catalog_schemas (
			path VARCHAR(767) PRIMARY KEY,
			schema_json TEXT NOT NULL
		)`
	}
}
