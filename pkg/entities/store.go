// Package entities provides the draft entity repository: durable storage of
// skill and solution documents, id generation, and the locking service that
// serializes concurrent edits of the same document.
package entities

import (
	"context"

	"github.com/craftlab/skillforge/pkg/types/entity"
)

// Store is the persistence contract for draft entities. Save is update-only:
// an id that was never created is reported as ErrNotFound rather than being
// silently created.
type Store interface {
	// Create persists a brand-new entity.
	Create(ctx context.Context, e *entity.Entity) error

	// Load retrieves the document for id; ErrNotFound if absent.
	Load(ctx context.Context, id string) (*entity.Entity, error)

	// Save overwrites the persisted document for e.ID; ErrNotFound if the
	// id was never created.
	Save(ctx context.Context, e *entity.Entity) error

	// List returns lightweight projections for every stored entity, ordered
	// by creation time, without materializing full documents where the
	// backend allows it.
	List(ctx context.Context) ([]entity.Summary, error)

	// Remove deletes the document if present; removing an absent id is a
	// no-op, not an error.
	Remove(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Config holds construction-time configuration for the repository. The
// storage root is injected here and never read ambiently during an
// operation.
type Config struct {
	// StoreType selects the backend: "json" (default) or "sqlite".
	StoreType string `mapstructure:"store_type"`

	// BasePath is the root location for stored documents (a directory for
	// the JSON store, the database file's directory for SQLite).
	BasePath string `mapstructure:"base_path"`
}
