package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/folio/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS viewed (
	profile   TEXT    NOT NULL,
	kind      TEXT    NOT NULL,
	item_id   INTEGER NOT NULL,
	viewed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (profile, kind, item_id)
);

CREATE TABLE IF NOT EXISTS flags (
	profile TEXT    NOT NULL,
	name    TEXT    NOT NULL,
	value   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (profile, name)
);
`

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	conn *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ledger: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledger: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledger: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Viewed implements Store.
func (s *SQLite) Viewed(ctx context.Context, profile string, kind models.Kind) ([]int, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT item_id FROM viewed WHERE profile = ? AND kind = ? ORDER BY rowid`,
		profile, string(kind))
	if err != nil {
		return nil, fmt.Errorf("ledger: viewed: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// AddViewed implements Store.
func (s *SQLite) AddViewed(ctx context.Context, profile string, kind models.Kind, id int) (bool, error) {
	res, err := s.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO viewed (profile, kind, item_id) VALUES (?, ?, ?)`,
		profile, string(kind), id)
	if err != nil {
		return false, fmt.Errorf("ledger: add viewed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ledger: add viewed: %w", err)
	}
	return n == 1, nil
}

// Flag implements Store.
func (s *SQLite) Flag(ctx context.Context, profile string, f Flag) (bool, error) {
	var v bool
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM flags WHERE profile = ? AND name = ?`, profile, string(f)).Scan(&v)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: flag: %w", err)
	}
	return v, nil
}

// SetFlag implements Store.
func (s *SQLite) SetFlag(ctx context.Context, profile string, f Flag, v bool) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO flags (profile, name, value) VALUES (?, ?, ?)
		ON CONFLICT(profile, name) DO UPDATE SET value = excluded.value
	`, profile, string(f), v)
	if err != nil {
		return fmt.Errorf("ledger: set flag: %w", err)
	}
	return nil
}

// Reset implements Store.
func (s *SQLite) Reset(ctx context.Context, profile string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM viewed WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("ledger: reset viewed: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flags WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("ledger: reset flags: %w", err)
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
