// Package sqlite implements the persistence ports on a local SQLite
// database. Documents keep their whole-document read/overwrite semantics:
// each save replaces the relevant rows inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"easyaccounting/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) LoadTaxonomy(ctx context.Context, kind core.Kind) ([]core.Category, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("load taxonomy: invalid kind %q", kind)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, keywords FROM taxonomy WHERE namespace = ? ORDER BY position`, kind.String())
	if err != nil {
		return nil, fmt.Errorf("query taxonomy: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var label, keywords string
		if err := rows.Scan(&label, &keywords); err != nil {
			return nil, fmt.Errorf("scan taxonomy row: %w", err)
		}
		var kws []string
		if err := json.Unmarshal([]byte(keywords), &kws); err != nil {
			return nil, fmt.Errorf("decode keywords for %q: %w", label, err)
		}
		cats = append(cats, core.Category{Label: label, Keywords: kws})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate taxonomy rows: %w", err)
	}
	return cats, nil
}

func (s *Store) SaveTaxonomy(ctx context.Context, kind core.Kind, cats []core.Category) error {
	if !kind.IsValid() {
		return fmt.Errorf("save taxonomy: invalid kind %q", kind)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM taxonomy WHERE namespace = ?`, kind.String()); err != nil {
			return fmt.Errorf("clear taxonomy: %w", err)
		}
		for i, c := range cats {
			kws, err := json.Marshal(c.Keywords)
			if err != nil {
				return fmt.Errorf("encode keywords for %q: %w", c.Label, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO taxonomy (namespace, position, label, keywords) VALUES (?, ?, ?, ?)`,
				kind.String(), i, c.Label, string(kws)); err != nil {
				return fmt.Errorf("insert category %q: %w", c.Label, err)
			}
		}
		return nil
	})
}

func (s *Store) LoadRecords(ctx context.Context) ([]core.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		var e core.Entry
		if err := json.Unmarshal([]byte(doc), &e); err != nil {
			return nil, fmt.Errorf("decode record document: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}
	return entries, nil
}

func (s *Store) SaveRecords(ctx context.Context, entries []core.Entry) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
		for i, e := range entries {
			doc, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("encode record document: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (position, document) VALUES (?, ?)`, i, string(doc)); err != nil {
				return fmt.Errorf("insert record %s: %w", e.ID(), err)
			}
		}
		return nil
	})
}

func (s *Store) LoadSessions(ctx context.Context) (map[string]core.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, username, created_at FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := map[string]core.Session{}
	for rows.Next() {
		var token string
		var sess core.Session
		if err := rows.Scan(&token, &sess.Username, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions[token] = sess
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return sessions, nil
}

func (s *Store) SaveSessions(ctx context.Context, sessions map[string]core.Session) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return fmt.Errorf("clear sessions: %w", err)
		}
		for token, sess := range sessions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sessions (token, username, created_at) VALUES (?, ?, ?)`,
				token, sess.Username, sess.CreatedAt); err != nil {
				return fmt.Errorf("insert session: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) LoadCredentials(ctx context.Context) (core.Credentials, error) {
	var creds core.Credentials
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password FROM credentials WHERE id = 1`).
		Scan(&creds.Username, &creds.Password)
	if err == sql.ErrNoRows {
		return core.Credentials{}, fmt.Errorf("load credentials: no credentials stored")
	}
	if err != nil {
		return core.Credentials{}, fmt.Errorf("query credentials: %w", err)
	}
	return creds, nil
}

func (s *Store) SaveCredentials(ctx context.Context, creds core.Credentials) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (id, username, password) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET username = excluded.username, password = excluded.password`,
		creds.Username, creds.Password)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
