package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/dnetmap/pkg/dnet"
	"github.com/platinummonkey/dnetmap/pkg/observability"
)

// DefaultExtensions are the protocol definition file extensions scanned by default
var DefaultExtensions = []string{".dnet", ".proto-def"}

// DefaultCacheSize is the default number of parsed files kept between scans
const DefaultCacheSize = 1024

// Options configures a Builder
type Options struct {
	// Extensions lists file extensions to parse, including the dot
	Extensions []string
	// Dialects limits the parser grammars; zero enables all
	Dialects dnet.Dialect
	// CacheSize bounds the parse cache; negative disables it, zero uses the default
	CacheSize int

	Logger  *logrus.Logger
	Metrics *observability.Metrics
}

// Builder scans directories into Registry snapshots
type Builder struct {
	parser     *dnet.Parser
	extensions []string
	cache      *lru.Cache[cacheKey, *dnet.File]
	log        *logrus.Logger
	metrics    *observability.Metrics
}

// cacheKey identifies one version of one file as seen from one root
type cacheKey struct {
	root    string
	path    string
	size    int64
	modTime int64
}

// NewBuilder creates a builder
func NewBuilder(opts Options) (*Builder, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("no protocol file extensions configured")
	}

	b := &Builder{
		parser:     dnet.NewParser(opts.Dialects),
		extensions: normalized,
		log:        log,
		metrics:    opts.Metrics,
	}

	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New[cacheKey, *dnet.File](size)
		if err != nil {
			return nil, fmt.Errorf("failed to create parse cache: %w", err)
		}
		b.cache = cache
	}

	return b, nil
}

// Extensions returns the normalized extensions the builder parses
func (b *Builder) Extensions() []string {
	return append([]string(nil), b.extensions...)
}

// Matches reports whether path has a configured extension
func (b *Builder) Matches(path string) bool {
	return matchesExtension(path, b.extensions)
}

func matchesExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan walks root recursively and returns a new snapshot. A missing root
// yields an empty registry; a root that is not a directory is an error.
func (b *Builder) Scan(root string) (*Registry, error) {
	start := time.Now()

	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		b.log.WithField("root", root).Debug("protocol directory does not exist")
		return Empty(root), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat protocol directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("protocol root %s is not a directory", root)
	}

	var files []*dnet.File
	skipped := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			b.log.WithError(err).WithField("path", path).Warn("failed to read protocol path")
			skipped++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !b.Matches(path) {
			return nil
		}

		file, err := b.parse(root, path, d)
		if err != nil {
			b.log.WithError(err).WithField("path", path).Warn("failed to parse protocol file")
			skipped++
			return nil
		}
		files = append(files, file)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan protocol directory: %w", walkErr)
	}

	reg := New(root, files)

	client, server := reg.MessageCounts()
	b.metrics.ObserveScan(time.Since(start), len(files), skipped)
	b.metrics.SetRegistrySize(reg.Len(), client, server)
	b.log.WithFields(logrus.Fields{
		"root":       root,
		"files":      reg.Len(),
		"skipped":    skipped,
		"generation": reg.Generation().String(),
	}).Debug("protocol directory scanned")

	return reg, nil
}

// parse returns a copy of the cached record when the file is unchanged since
// the last scan; snapshots never share records
func (b *Builder) parse(root, path string, d fs.DirEntry) (*dnet.File, error) {
	if b.cache == nil {
		return b.parser.ParseFile(path, root)
	}

	info, err := d.Info()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dnet.ErrParseUnavailable, err)
	}
	key := cacheKey{
		root:    root,
		path:    path,
		size:    info.Size(),
		modTime: info.ModTime().UnixNano(),
	}

	if file, ok := b.cache.Get(key); ok {
		b.metrics.RecordCacheLookup(true)
		return file.Clone(), nil
	}
	b.metrics.RecordCacheLookup(false)

	file, err := b.parser.ParseFile(path, root)
	if err != nil {
		return nil, err
	}
	b.cache.Add(key, file.Clone())
	return file, nil
}

// PurgeCache drops every cached parse result
func (b *Builder) PurgeCache() {
	if b.cache != nil {
		b.cache.Purge()
	}
}

// CachedFiles returns the number of cached parse results
func (b *Builder) CachedFiles() int {
	if b.cache == nil {
		return 0
	}
	return b.cache.Len()
}
