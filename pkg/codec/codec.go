package codec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/dnetmap/pkg/mapping"
)

// Codec marshals mapping documents in one format
type Codec interface {
	// Name identifies the format, e.g. "json"
	Name() string
	// Extension is the canonical file extension including the dot
	Extension() string
	Marshal(doc *mapping.Document) ([]byte, error)
	Unmarshal(data []byte) (*mapping.Document, error)
}

// Options tunes encoding
type Options struct {
	// LegacyLabels writes type and count using the labels of older tools
	LegacyLabels bool
}

// DecodeError reports a document that could not be read back
type DecodeError struct {
	Path  string // file, when known
	Field string // location inside the document, when known
	Err   error
}

func (e *DecodeError) Error() string {
	loc := e.Path
	if e.Field != "" {
		if loc != "" {
			loc += ": "
		}
		loc += e.Field
	}
	if loc == "" {
		return fmt.Sprintf("failed to decode mapping document: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode mapping document %s: %v", loc, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a document that could not be marshalled or written
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to encode mapping document: %v", e.Err)
	}
	return fmt.Sprintf("failed to encode mapping document %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// ForPath picks YAML for .yaml and .yml files and JSON for everything else
func ForPath(path string, opts Options) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAML(opts)
	default:
		return NewJSON(opts)
	}
}

// ReadFile decodes the document at path. A missing file yields an error
// wrapping fs.ErrNotExist; anything unreadable as a document yields
// *DecodeError.
func ReadFile(c Codec, path string) (*mapping.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := c.Unmarshal(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
			return nil, de
		}
		return nil, &DecodeError{Path: path, Err: err}
	}
	return doc, nil
}

// WriteFile encodes doc and replaces path with it. Parent directories are
// created as needed.
func WriteFile(c Codec, path string, doc *mapping.Document) error {
	data, err := c.Marshal(doc)
	if err != nil {
		var ee *EncodeError
		if errors.As(err, &ee) {
			ee.Path = path
			return ee
		}
		return &EncodeError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &EncodeError{Path: path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &EncodeError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &EncodeError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}
