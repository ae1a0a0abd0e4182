// Package store persists the set of dogs seen across scrape cycles.
package store

import "shelterwatch/internal/model"

// Store defines the persistence contract for the seen-set.
// The CSV, SQLite and PostgreSQL implementations all satisfy this
// interface with the same semantics: Load returns an empty set when no
// prior state exists and an error when state exists but cannot be read;
// Persist makes the full union durable and is safe to re-run, so a
// crash between persisting and notifying never re-marks a dog as new.
type Store interface {
	// Load reads the previously persisted seen-set.
	Load() (model.SeenSet, error)

	// Persist makes seen durable. added lists the dogs first discovered
	// this cycle; every id in added is already present in seen.
	Persist(seen model.SeenSet, added []model.Dog) error

	// BackendType returns the backend name ("CSV", "SQLite" or "PostgreSQL").
	BackendType() string

	Close() error
}
