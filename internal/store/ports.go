package store

import (
	"context"

	"easyaccounting/internal/core"
)

// Ports for outbound persistence adapters. Every contract is a whole-document
// read or overwrite; implementations serialise read-modify-write internally.
type (
	TaxonomyStore interface {
		LoadTaxonomy(ctx context.Context, kind core.Kind) ([]core.Category, error)
		SaveTaxonomy(ctx context.Context, kind core.Kind, cats []core.Category) error
	}

	// RecordStore persists the ordered list of uploaded batches and folders.
	RecordStore interface {
		LoadRecords(ctx context.Context) ([]core.Entry, error)
		SaveRecords(ctx context.Context, entries []core.Entry) error
	}

	// SessionStore persists the token to session mapping.
	SessionStore interface {
		LoadSessions(ctx context.Context) (map[string]core.Session, error)
		SaveSessions(ctx context.Context, sessions map[string]core.Session) error
	}

	// UserStore persists the single shared credential set.
	UserStore interface {
		LoadCredentials(ctx context.Context) (core.Credentials, error)
		SaveCredentials(ctx context.Context, creds core.Credentials) error
	}
)

// Backend bundles every persistence concern a running server needs.
type Backend interface {
	TaxonomyStore
	RecordStore
	SessionStore
	UserStore
}
