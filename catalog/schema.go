package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/format"
)

// VarSnapshot is the structural slice of a Variable that schema.Diff
// cares about (width, formats, label), serialized alongside a path so a
// caller can compare a rewritten file's dictionary (via LastSchema)
// against the last one seen for the same logical file.
type VarSnapshot struct {
	Name       string `json:"name"`
	Width      int    `json:"width"`
	PrintType  int    `json:"print_type"`
	PrintWidth int    `json:"print_width"`
	PrintDec   int    `json:"print_dec"`
	WriteType  int    `json:"write_type"`
	WriteWidth int    `json:"write_width"`
	WriteDec   int    `json:"write_dec"`
	Label      string `json:"label"`
}

// SnapshotDictionary captures the structural shape of d's variables,
// in order, for later round-tripping through DictionaryFromSnapshot.
func SnapshotDictionary(d *pspp.Dictionary) []VarSnapshot {
	vars := d.Vars()
	snap := make([]VarSnapshot, len(vars))
	for i, v := range vars {
		snap[i] = VarSnapshot{
			Name:       v.Name(),
			Width:      v.Width,
			PrintType:  int(v.PrintFormat.Type),
			PrintWidth: v.PrintFormat.Width,
			PrintDec:   v.PrintFormat.Decimals,
			WriteType:  int(v.WriteFormat.Type),
			WriteWidth: v.WriteFormat.Width,
			WriteDec:   v.WriteFormat.Decimals,
			Label:      v.Label,
		}
	}
	return snap
}

// DictionaryFromSnapshot rebuilds a throwaway Dictionary from a stored
// snapshot, good enough for schema.Diff — it carries no value labels,
// missing values, or case data, only the structural fields snapshotted.
func DictionaryFromSnapshot(snap []VarSnapshot) *pspp.Dictionary {
	d := pspp.NewDictionary()
	for _, s := range snap {
		v, err := d.AddVar(s.Name, s.Width)
		if err != nil {
			continue // duplicate name in a corrupted snapshot; skip rather than fail the diff
		}
		v.PrintFormat.Type = format.Type(s.PrintType)
		v.PrintFormat.Width = s.PrintWidth
		v.PrintFormat.Decimals = s.PrintDec
		v.WriteFormat.Type = format.Type(s.WriteType)
		v.WriteFormat.Width = s.WriteWidth
		v.WriteFormat.Decimals = s.WriteDec
		v.Label = s.Label
	}
	return d
}

// LastSchema returns the most recently saved variable snapshot for
// path, if any.
func (s *Store) LastSchema(ctx context.Context, path string) ([]VarSnapshot, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT schema_json FROM pspp_catalog_schemas WHERE path = ?`), path).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog: last schema: %w", err)
	}
	var snap []VarSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, fmt.Errorf("catalog: last schema: decode: %w", err)
	}
	return snap, true, nil
}

// SaveSchema upserts path's current variable snapshot, so the next
// LastSchema lookup for the same logical file returns it. Delete-
// then-insert rather than an ON CONFLICT/ON DUPLICATE KEY clause,
// since rebind only rewrites "?" into "$n" placeholders and can't
// also splice in dialect-specific upsert syntax.
func (s *Store) SaveSchema(ctx context.Context, path string, snap []VarSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("catalog: save schema: encode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM pspp_catalog_schemas WHERE path = ?`), path); err != nil {
		return fmt.Errorf("catalog: save schema: delete: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO pspp_catalog_schemas (path, schema_json) VALUES (?, ?)`), path, string(raw))
	if err != nil {
		return fmt.Errorf("catalog: save schema: insert: %w", err)
	}
	return nil
}
