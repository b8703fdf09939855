package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/dnetmap/pkg/codec"
	"github.com/platinummonkey/dnetmap/pkg/dnet"
	"github.com/platinummonkey/dnetmap/pkg/mapping"
	"github.com/platinummonkey/dnetmap/pkg/observability"
	"github.com/platinummonkey/dnetmap/pkg/registry"
	"github.com/platinummonkey/dnetmap/pkg/storage"
	"github.com/platinummonkey/dnetmap/pkg/validation"
)

// ErrUnknownFile is returned for a relative path not present in the current
// registry snapshot
var ErrUnknownFile = errors.New("protocol file not in registry")

// DefaultDebounce is how long Watch waits for a burst of changes to settle
const DefaultDebounce = 200 * time.Millisecond

// WarningsError refuses a save because validation produced warnings
type WarningsError struct {
	RelativePath string
	Warnings     []validation.Warning
}

func (e *WarningsError) Error() string {
	return fmt.Sprintf("%s has %d validation warning(s): %s",
		e.RelativePath, len(e.Warnings), strings.Join(validation.Strings(e.Warnings), "; "))
}

// Options configures a Workspace
type Options struct {
	// ProtoRoot is the protocol definition tree
	ProtoRoot string
	// Registry configures scanning; Logger and Metrics are filled in from
	// the workspace when unset
	Registry registry.Options
	// Storage configures where documents are kept
	Storage storage.Config
	// Validation selects optional checks; nil runs the defaults
	Validation *validation.Config
	// Debounce is the settle time used by Watch; zero uses DefaultDebounce
	Debounce time.Duration

	Logger  *logrus.Logger
	Metrics *observability.Metrics
}

// Workspace ties a protocol tree to its stored documents
type Workspace struct {
	protoRoot string
	builder   *registry.Builder
	store     *storage.FileSystemStore
	validator *validation.Validator
	debounce  time.Duration
	current   atomic.Pointer[registry.Registry]
	log       *logrus.Logger
	metrics   *observability.Metrics
}

// New creates a workspace with an empty registry; call Scan to populate it
func New(opts Options) (*Workspace, error) {
	if strings.TrimSpace(opts.ProtoRoot) == "" {
		return nil, fmt.Errorf("protocol root is required")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}
	regOpts := opts.Registry
	if regOpts.Logger == nil {
		regOpts.Logger = log
	}
	if regOpts.Metrics == nil {
		regOpts.Metrics = opts.Metrics
	}
	builder, err := registry.NewBuilder(regOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry builder: %w", err)
	}
	store, err := storage.NewFileSystemStore(opts.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ws := &Workspace{
		protoRoot: opts.ProtoRoot,
		builder:   builder,
		store:     store,
		validator: validation.NewValidator(opts.Validation),
		debounce:  debounce,
		log:       log,
		metrics:   opts.Metrics,
	}
	ws.current.Store(registry.Empty(opts.ProtoRoot))
	return ws, nil
}

// ProtoRoot returns the protocol tree root
func (w *Workspace) ProtoRoot() string {
	return w.protoRoot
}

// Store returns the document store
func (w *Workspace) Store() *storage.FileSystemStore {
	return w.store
}

// Scan rebuilds the registry from disk and makes it current. On error the
// previous snapshot stays current.
func (w *Workspace) Scan() (*registry.Registry, error) {
	reg, err := w.builder.Scan(w.protoRoot)
	if err != nil {
		return nil, err
	}
	prev := w.current.Swap(reg)
	w.log.WithFields(logrus.Fields{
		"files":      reg.Len(),
		"generation": reg.Generation(),
		"previous":   prev.Generation(),
	}).Info("Registry updated")
	return reg, nil
}

// Registry returns the current snapshot
func (w *Workspace) Registry() *registry.Registry {
	return w.current.Load()
}

// File returns a protocol file from the current snapshot
func (w *Workspace) File(rel string) (*dnet.File, error) {
	f, ok := w.Registry().File(rel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, rel)
	}
	return f, nil
}

// Load returns the stored document for rel; see storage.FileSystemStore.Load
func (w *Workspace) Load(rel string) (*mapping.Document, error) {
	doc, err := w.store.Load(rel)
	if !errors.Is(err, storage.ErrNotFound) {
		w.metrics.RecordDocument("load", err)
	}
	return doc, err
}

// LoadOrEmpty returns the stored document for rel, or a freshly seeded one
// when nothing usable is stored. Malformed documents are logged and replaced.
func (w *Workspace) LoadOrEmpty(rel string) (*mapping.Document, error) {
	file, err := w.File(rel)
	if err != nil {
		return nil, err
	}
	doc, err := w.Load(rel)
	if err == nil {
		return doc, nil
	}
	var de *codec.DecodeError
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case errors.As(err, &de):
		w.log.WithError(err).WithField("file", rel).Warn("Stored document is unreadable, starting from an empty one")
	default:
		return nil, err
	}
	return w.CreateEmpty(file), nil
}

// CreateEmpty seeds a document with one empty mapping per client message
func (w *Workspace) CreateEmpty(file *dnet.File) *mapping.Document {
	return mapping.NewDocumentFor(file)
}

// Validate checks doc, owned by file, against the current snapshot
func (w *Workspace) Validate(doc *mapping.Document, file *dnet.File) []validation.Warning {
	warnings := w.validator.Validate(doc, file, w.Registry())
	for _, warning := range warnings {
		w.metrics.RecordWarning(string(warning.Kind))
	}
	return warnings
}

// ValidateAll validates every stored document of the current snapshot
func (w *Workspace) ValidateAll() []validation.FileWarning {
	warnings := w.validator.ValidateAll(w.store, w.Registry())
	for _, warning := range warnings {
		w.metrics.RecordWarning(string(warning.Kind))
	}
	return warnings
}

// Save validates doc and stores it for rel. With warnings and without force
// nothing is written and a *WarningsError is returned. The warnings are
// returned in every case.
func (w *Workspace) Save(rel string, doc *mapping.Document, force bool) ([]validation.Warning, error) {
	file, err := w.File(rel)
	if err != nil {
		return nil, err
	}
	warnings := w.Validate(doc, file)
	if len(warnings) > 0 && !force {
		return warnings, &WarningsError{RelativePath: rel, Warnings: warnings}
	}
	err = w.store.Save(rel, doc)
	w.metrics.RecordDocument("save", err)
	if err != nil {
		return warnings, err
	}
	w.log.WithFields(logrus.Fields{
		"file":     rel,
		"warnings": len(warnings),
		"forced":   force && len(warnings) > 0,
	}).Info("Saved mapping document")
	return warnings, nil
}

// Delete removes the stored document for rel
func (w *Workspace) Delete(rel string) error {
	err := w.store.Delete(rel)
	w.metrics.RecordDocument("delete", err)
	return err
}

// Export writes doc to an arbitrary path
func (w *Workspace) Export(doc *mapping.Document, path string) error {
	err := w.store.Export(doc, path)
	w.metrics.RecordDocument("export", err)
	return err
}

// Import reads a document from an arbitrary path
func (w *Workspace) Import(path string) (*mapping.Document, error) {
	doc, err := w.store.Import(path)
	w.metrics.RecordDocument("import", err)
	return doc, err
}

// notify runs a watch callback; a panicking callback does not stop watching
func (w *Workspace) notify(onScan func(*registry.Registry), reg *registry.Registry) {
	defer observability.RecoverPanic(w.log, "watch callback")
	onScan(reg)
}

// Watch rescans whenever protocol files change and calls onScan with each new
// snapshot until ctx ends. Bursts of changes within the debounce window
// cause a single rescan.
func (w *Workspace) Watch(ctx context.Context, onScan func(*registry.Registry)) error {
	watcher, err := registry.NewWatcher(w.protoRoot, w.builder.Extensions(), w.log)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.protoRoot, err)
	}
	defer watcher.Close()

	for {
		change, err := watcher.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.debounce):
		}
		changes := append([]registry.Change{change}, watcher.Drain()...)
		w.log.WithField("changes", len(changes)).Debug("Rescanning after changes")

		reg, err := w.Scan()
		if err != nil {
			w.log.WithError(err).Error("Rescan failed")
			continue
		}
		if onScan != nil {
			w.notify(onScan, reg)
		}
	}
}
