package storage

import (
	"errors"

	"github.com/platinummonkey/dnetmap/pkg/mapping"
)

var (
	// ErrNotFound means no document is stored for a protocol file
	ErrNotFound = errors.New("mapping document not found")
	// ErrEmptyDocument is returned when saving a document with neither
	// responses nor custom triggers
	ErrEmptyDocument = errors.New("mapping document is empty")
)

// DocumentReader loads stored documents by protocol file relative path
type DocumentReader interface {
	Load(rel string) (*mapping.Document, error)
	Exists(rel string) bool
}

// DocumentWriter persists documents by protocol file relative path
type DocumentWriter interface {
	Save(rel string, doc *mapping.Document) error
	Delete(rel string) error
}

// Store is the full document store
type Store interface {
	DocumentReader
	DocumentWriter
	// List returns the relative paths of stored documents, sorted
	List() ([]string, error)
}

// Config for the filesystem store
type Config struct {
	// Root is the directory documents are written under
	Root string
	// Format is "json" or "yaml"
	Format string
	// LegacyLabels writes kind and count labels understood by older tools
	LegacyLabels bool
}

// DefaultConfig returns the default store configuration
func DefaultConfig() Config {
	return Config{
		Root:         "clientconfig",
		Format:       "json",
		LegacyLabels: true,
	}
}
