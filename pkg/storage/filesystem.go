package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/dnetmap/pkg/codec"
	"github.com/platinummonkey/dnetmap/pkg/mapping"
)

// FileSystemStore keeps one document per protocol file under a root
// directory, mirroring the protocol tree: login/account.dnet is stored as
// login/account.json.
type FileSystemStore struct {
	root  string
	codec codec.Codec
	opts  codec.Options
	log   *logrus.Logger
}

var _ Store = (*FileSystemStore)(nil)

// NewFileSystemStore creates a store. The root directory is created on the
// first save.
func NewFileSystemStore(cfg Config, log *logrus.Logger) (*FileSystemStore, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if log == nil {
		log = logrus.New()
	}
	opts := codec.Options{LegacyLabels: cfg.LegacyLabels}
	var c codec.Codec
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		c = codec.NewJSON(opts)
	case "yaml", "yml":
		c = codec.NewYAML(opts)
	default:
		return nil, fmt.Errorf("unsupported storage format %q", cfg.Format)
	}
	return &FileSystemStore{root: cfg.Root, codec: c, opts: opts, log: log}, nil
}

// Root returns the storage root
func (s *FileSystemStore) Root() string {
	return s.root
}

// PathFor maps a protocol file relative path to its document path
func (s *FileSystemStore) PathFor(rel string) string {
	rel = filepath.ToSlash(rel)
	stem := strings.TrimSuffix(rel, path.Ext(rel))
	return filepath.Join(s.root, filepath.FromSlash(stem)+s.codec.Extension())
}

// Exists reports whether a document is stored for rel
func (s *FileSystemStore) Exists(rel string) bool {
	info, err := os.Stat(s.PathFor(rel))
	return err == nil && !info.IsDir()
}

// Load reads the document for rel. It returns ErrNotFound when none is
// stored and *codec.DecodeError when the stored file is malformed.
func (s *FileSystemStore) Load(rel string) (*mapping.Document, error) {
	p := s.PathFor(rel)
	doc, err := codec.ReadFile(s.codec, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if err != nil {
		return nil, err
	}
	if doc.HasRawLabels() {
		s.log.WithField("path", p).Warn("Mapping document has unrecognized type or count labels, keeping them as stored")
	}
	s.log.WithField("path", p).Debug("Loaded mapping document")
	return doc, nil
}

// Save writes doc for rel, replacing any previous version. Empty documents
// are refused with ErrEmptyDocument and nothing is written.
func (s *FileSystemStore) Save(rel string, doc *mapping.Document) error {
	if doc == nil || doc.IsEmpty() {
		return fmt.Errorf("%w: %s", ErrEmptyDocument, rel)
	}
	p := s.PathFor(rel)
	if err := codec.WriteFile(s.codec, p, doc); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"path":      p,
		"responses": doc.Stats().Responses,
	}).Debug("Saved mapping document")
	return nil
}

// Delete removes the document for rel. Deleting a missing document returns
// ErrNotFound.
func (s *FileSystemStore) Delete(rel string) error {
	err := os.Remove(s.PathFor(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if err != nil {
		return fmt.Errorf("failed to delete document for %s: %w", rel, err)
	}
	return nil
}

// List returns the stored document paths relative to the root, without
// extension, in slash form and sorted
func (s *FileSystemStore) List() ([]string, error) {
	var out []string
	ext := s.codec.Extension()
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ext) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		out = append(out, strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

// Export writes doc to an arbitrary path. The format follows the path's
// extension; the legacy label setting of the store applies.
func (s *FileSystemStore) Export(doc *mapping.Document, path string) error {
	return codec.WriteFile(codec.ForPath(path, s.opts), path, doc)
}

// Import reads a document from an arbitrary path
func (s *FileSystemStore) Import(path string) (*mapping.Document, error) {
	doc, err := codec.ReadFile(codec.ForPath(path, s.opts), path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return doc, err
}
