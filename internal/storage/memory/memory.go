package memory

import (
	"context"
	"fmt"
	"sync"

	"easyaccounting/internal/core"
)

// Store keeps every document in memory. It backs tests and throwaway runs;
// nothing survives the process.
type Store struct {
	mu        sync.Mutex
	taxonomy  map[core.Kind][]core.Category
	records   []core.Entry
	sessions  map[string]core.Session
	creds     core.Credentials
	withCreds bool
}

// New returns an empty store with both taxonomy namespaces initialised.
func New() *Store {
	return &Store{
		taxonomy: map[core.Kind][]core.Category{
			core.KindExpense: {},
			core.KindIncome:  {},
		},
		sessions: map[string]core.Session{},
	}
}

// Seed replaces a taxonomy namespace, for test setup.
func (s *Store) Seed(kind core.Kind, cats []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxonomy[kind] = cloneCategories(cats)
}

// SeedCredentials installs the shared credential set.
func (s *Store) SeedCredentials(creds core.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.withCreds = true
}

func (s *Store) LoadTaxonomy(_ context.Context, kind core.Kind) ([]core.Category, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("load taxonomy: invalid kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCategories(s.taxonomy[kind]), nil
}

func (s *Store) SaveTaxonomy(_ context.Context, kind core.Kind, cats []core.Category) error {
	if !kind.IsValid() {
		return fmt.Errorf("save taxonomy: invalid kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxonomy[kind] = cloneCategories(cats)
	return nil
}

func (s *Store) LoadRecords(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Entry(nil), s.records...), nil
}

func (s *Store) SaveRecords(_ context.Context, entries []core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]core.Entry(nil), entries...)
	return nil
}

func (s *Store) LoadSessions(_ context.Context) (map[string]core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]core.Session, len(s.sessions))
	for k, v := range s.sessions {
		out[k] = v
	}
	return out, nil
}

func (s *Store) SaveSessions(_ context.Context, sessions map[string]core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]core.Session, len(sessions))
	for k, v := range sessions {
		s.sessions[k] = v
	}
	return nil
}

func (s *Store) LoadCredentials(_ context.Context) (core.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.withCreds {
		return core.Credentials{}, fmt.Errorf("load credentials: no credentials seeded")
	}
	return s.creds, nil
}

func (s *Store) SaveCredentials(_ context.Context, creds core.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.withCreds = true
	return nil
}

func cloneCategories(in []core.Category) []core.Category {
	out := make([]core.Category, len(in))
	for i, c := range in {
		out[i] = core.Category{
			Label:    c.Label,
			Keywords: append([]string(nil), c.Keywords...),
		}
	}
	return out
}
