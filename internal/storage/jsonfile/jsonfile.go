// Package jsonfile persists every document as a flat JSON file under one
// data directory, matching the documents the desktop app ships with:
// expense_classification.json, income_classification.json,
// uploaded_files.json, sessions.json and user_information.json.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"easyaccounting/internal/core"
)

const (
	expenseFile  = "expense_classification.json"
	incomeFile   = "income_classification.json"
	recordsFile  = "uploaded_files.json"
	sessionsFile = "sessions.json"
	usersFile    = "user_information.json"
)

// Store reads and overwrites whole JSON documents. A single mutex serialises
// read-modify-write cycles across callers; writes go through a temp file and
// rename so a crash never leaves a half-written document.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// expenseCategory and incomeCategory mirror the persisted taxonomy documents.
// Field names are fixed by the document format; list order is significant.
type expenseCategory struct {
	Classification string   `json:"classification"`
	Keywords       []string `json:"expenses_attributed"`
}

type incomeCategory struct {
	Classification string   `json:"classification"`
	Keywords       []string `json:"income_attributed"`
}

func (s *Store) LoadTaxonomy(_ context.Context, kind core.Kind) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case core.KindExpense:
		var doc []expenseCategory
		if err := s.readDoc(expenseFile, &doc); err != nil {
			return nil, err
		}
		cats := make([]core.Category, len(doc))
		for i, c := range doc {
			cats[i] = core.Category{Label: c.Classification, Keywords: c.Keywords}
		}
		return cats, nil
	case core.KindIncome:
		var doc []incomeCategory
		if err := s.readDoc(incomeFile, &doc); err != nil {
			return nil, err
		}
		cats := make([]core.Category, len(doc))
		for i, c := range doc {
			cats[i] = core.Category{Label: c.Classification, Keywords: c.Keywords}
		}
		return cats, nil
	default:
		return nil, fmt.Errorf("load taxonomy: invalid kind %q", kind)
	}
}

func (s *Store) SaveTaxonomy(_ context.Context, kind core.Kind, cats []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case core.KindExpense:
		doc := make([]expenseCategory, len(cats))
		for i, c := range cats {
			doc[i] = expenseCategory{Classification: c.Label, Keywords: nonNil(c.Keywords)}
		}
		return s.writeDoc(expenseFile, doc)
	case core.KindIncome:
		doc := make([]incomeCategory, len(cats))
		for i, c := range cats {
			doc[i] = incomeCategory{Classification: c.Label, Keywords: nonNil(c.Keywords)}
		}
		return s.writeDoc(incomeFile, doc)
	default:
		return fmt.Errorf("save taxonomy: invalid kind %q", kind)
	}
}

func (s *Store) LoadRecords(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []core.Entry
	if err := s.readDocOptional(recordsFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) SaveRecords(_ context.Context, entries []core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entries == nil {
		entries = []core.Entry{}
	}
	return s.writeDoc(recordsFile, entries)
}

func (s *Store) LoadSessions(_ context.Context) (map[string]core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := map[string]core.Session{}
	if err := s.readDocOptional(sessionsFile, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) SaveSessions(_ context.Context, sessions map[string]core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessions == nil {
		sessions = map[string]core.Session{}
	}
	return s.writeDoc(sessionsFile, sessions)
}

func (s *Store) LoadCredentials(_ context.Context) (core.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The credential document is historically a single-element list; accept
	// a bare object too.
	raw, err := os.ReadFile(filepath.Join(s.dir, usersFile))
	if err != nil {
		return core.Credentials{}, fmt.Errorf("read %s: %w", usersFile, err)
	}
	var list []core.Credentials
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return core.Credentials{}, nil
		}
		return list[0], nil
	}
	var creds core.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return core.Credentials{}, fmt.Errorf("decode %s: %w", usersFile, err)
	}
	return creds, nil
}

func (s *Store) SaveCredentials(_ context.Context, creds core.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(usersFile, []core.Credentials{creds})
}

// readDoc decodes a required document; a missing file is an error.
func (s *Store) readDoc(name string, v any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// readDocOptional decodes a document, leaving v untouched when the file does
// not exist yet.
func (s *Store) readDocOptional(name string, v any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeDoc(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
