/*
store.go - Persistence port for per-user documents

PURPOSE:
  Defines the interface between the application layer and storage. The
  billing core never touches storage; the ledger service loads a consistent
  document, computes a replacement, and saves it back whole.

KEY INTERFACES:
  DocumentStore: Load/Save a JSON document keyed by user identity
  UserLister:    Enumerate stored users (for background jobs)

REPLACEMENT SEMANTICS:
  Save replaces the whole document. There is no partial update, so an
  observer never sees a half-applied mutation (e.g. a deleted client whose
  work entries still exist).

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite, one row per user
  - store/memory/memory.go: In-memory for tests and the CLI

SEE ALSO:
  - billing/ledger.go: Load -> apply -> Save
*/
package generic

import "context"

// UserID identifies the owner of a document.
type UserID string

// DocumentStore persists one JSON document per user.
type DocumentStore interface {
	// Load returns the stored document, or (nil, nil) when the user has none.
	Load(ctx context.Context, userID UserID) ([]byte, error)

	// Save replaces the user's document.
	Save(ctx context.Context, userID UserID, document []byte) error
}

// UserLister enumerates users that have a stored document.
type UserLister interface {
	ListUsers(ctx context.Context) ([]UserID, error)
}
