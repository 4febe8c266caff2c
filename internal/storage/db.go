package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"orgtree/internal"
)

const (
	metaProcessedAt   = "processedAt"
	metaTotalTeams    = "totalTeams"
	metaTotalMentions = "totalMentions"
	metaRawDataSize   = "rawDataSize"
	metaTraceID       = "traceId"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS teams (
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  parent TEXT,
  level INTEGER NOT NULL,
  mentionCount INTEGER NOT NULL,
  category TEXT NOT NULL,
  childrenJson TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_teams_position ON teams(position);
CREATE INDEX IF NOT EXISTS idx_teams_category ON teams(category);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceSnapshot stores doc as the only snapshot, dropping whatever was
// stored before.
func (d *DB) ReplaceSnapshot(doc internal.Document, traceID string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM teams`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO teams (id, position, name, parent, level, mentionCount, category, childrenJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range doc.Teams {
		childrenJSON, _ := json.Marshal(t.Children)
		var parent *string
		if t.Parent != "" {
			parent = &t.Parent
		}
		if _, err := stmt.Exec(t.ID, i, t.Name, parent, t.Level, t.MentionCount, string(t.Category), string(childrenJSON)); err != nil {
			return fmt.Errorf("insert team %s: %w", t.ID, err)
		}
	}

	meta := map[string]string{
		metaProcessedAt:   doc.Metadata.ProcessedAt,
		metaTotalTeams:    strconv.Itoa(doc.Metadata.TotalTeams),
		metaTotalMentions: strconv.Itoa(doc.Metadata.TotalMentions),
		metaRawDataSize:   strconv.Itoa(doc.Metadata.RawDataSize),
		metaTraceID:       traceID,
	}
	for k, v := range meta {
		if err := setMetadata(tx, k, v); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSnapshot rebuilds the stored document, or returns nil when nothing has
// been stored yet.
func (d *DB) LoadSnapshot() (*internal.Document, error) {
	processedAt, err := d.GetMetadata(metaProcessedAt)
	if err != nil {
		return nil, err
	}
	if processedAt == nil {
		return nil, nil
	}

	teams, err := d.TopTeams(0, "")
	if err != nil {
		return nil, err
	}

	meta := internal.Metadata{ProcessedAt: *processedAt}
	for key, dst := range map[string]*int{
		metaTotalTeams:    &meta.TotalTeams,
		metaTotalMentions: &meta.TotalMentions,
		metaRawDataSize:   &meta.RawDataSize,
	} {
		value, err := d.GetMetadata(key)
		if err != nil {
			return nil, err
		}
		if value != nil {
			*dst, _ = strconv.Atoi(*value)
		}
	}

	doc := internal.NewDocument(teams, meta)
	return &doc, nil
}

// TopTeams lists stored teams in document order. A limit of zero or less
// means no limit; an empty category means every category.
func (d *DB) TopTeams(limit int, category internal.Category) ([]internal.TeamRecord, error) {
	query := `
SELECT id, name, parent, level, mentionCount, category, childrenJson
FROM teams`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY position ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.TeamRecord{}
	for rows.Next() {
		var t internal.TeamRecord
		var parent sql.NullString
		var category, childrenJSON string
		if err := rows.Scan(&t.ID, &t.Name, &parent, &t.Level, &t.MentionCount, &category, &childrenJSON); err != nil {
			return nil, err
		}
		t.Parent = parent.String
		t.Category = internal.ParseCategory(category)
		t.Children = []string{}
		_ = json.Unmarshal([]byte(childrenJSON), &t.Children)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	return setMetadata(d.conn, key, value)
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setMetadata(db execer, key, value string) error {
	_, err := db.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}
