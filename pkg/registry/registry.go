package registry

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/dnetmap/pkg/dnet"
)

// Registry is an immutable snapshot of parsed protocol files. Files are
// shared with callers and must be treated as read-only; a Builder never reuses
// a record across snapshots.
type Registry struct {
	root       string
	generation uuid.UUID
	builtAt    time.Time

	files       []*dnet.File
	byPath      map[string]*dnet.File
	clientIndex map[string][]*dnet.File
	serverIndex map[string][]*dnet.File
}

// New builds a snapshot from files. The slice is copied and sorted by
// relative path; files sharing a relative path keep the first occurrence.
func New(root string, files []*dnet.File) *Registry {
	sorted := make([]*dnet.File, 0, len(files))
	for _, f := range files {
		if f != nil {
			sorted = append(sorted, f)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelativePath < sorted[j].RelativePath
	})

	r := &Registry{
		root:        root,
		generation:  uuid.New(),
		builtAt:     time.Now(),
		files:       make([]*dnet.File, 0, len(sorted)),
		byPath:      make(map[string]*dnet.File, len(sorted)),
		clientIndex: make(map[string][]*dnet.File),
		serverIndex: make(map[string][]*dnet.File),
	}

	for _, f := range sorted {
		if _, dup := r.byPath[f.RelativePath]; dup {
			continue
		}
		r.files = append(r.files, f)
		r.byPath[f.RelativePath] = f
		indexMessages(r.clientIndex, f, f.ClientMessages)
		indexMessages(r.serverIndex, f, f.ServerMessages)
	}

	return r
}

// Empty returns a registry with no files
func Empty(root string) *Registry {
	return New(root, nil)
}

func indexMessages(index map[string][]*dnet.File, f *dnet.File, msgs []*dnet.Message) {
	for _, m := range msgs {
		owners := index[m.Name]
		if n := len(owners); n > 0 && owners[n-1] == f {
			continue
		}
		index[m.Name] = append(owners, f)
	}
}

// Root returns the scanned root directory
func (r *Registry) Root() string {
	return r.root
}

// Generation identifies this snapshot
func (r *Registry) Generation() uuid.UUID {
	return r.generation
}

// BuiltAt returns when the snapshot was built
func (r *Registry) BuiltAt() time.Time {
	return r.builtAt
}

// Len returns the number of files
func (r *Registry) Len() int {
	return len(r.files)
}

// Files returns the files sorted by relative path
func (r *Registry) Files() []*dnet.File {
	out := make([]*dnet.File, len(r.files))
	copy(out, r.files)
	return out
}

// File returns the file with the given relative path
func (r *Registry) File(relativePath string) (*dnet.File, bool) {
	f, ok := r.byPath[relativePath]
	return f, ok
}

// Filter returns files whose relative path contains query, case-insensitively
func (r *Registry) Filter(query string) []*dnet.File {
	if query == "" {
		return r.Files()
	}
	q := strings.ToLower(query)
	var out []*dnet.File
	for _, f := range r.files {
		if strings.Contains(strings.ToLower(f.RelativePath), q) {
			out = append(out, f)
		}
	}
	return out
}

// HasServerMessage reports whether any file defines the S2C message
func (r *Registry) HasServerMessage(name string) bool {
	return len(r.serverIndex[name]) > 0
}

// HasClientMessage reports whether any file defines the C2S message
func (r *Registry) HasClientMessage(name string) bool {
	return len(r.clientIndex[name]) > 0
}

// ServerMessageOwners returns every file defining the S2C message, in path order
func (r *Registry) ServerMessageOwners(name string) []*dnet.File {
	return append([]*dnet.File(nil), r.serverIndex[name]...)
}

// ClientMessageOwners returns every file defining the C2S message, in path order
func (r *Registry) ClientMessageOwners(name string) []*dnet.File {
	return append([]*dnet.File(nil), r.clientIndex[name]...)
}

// LookupServerMessage resolves an S2C name to its first definition by path order
func (r *Registry) LookupServerMessage(name string) (*dnet.File, *dnet.Message, bool) {
	return lookup(r.serverIndex, name, (*dnet.File).ServerMessage)
}

// LookupClientMessage resolves a C2S name to its first definition by path order
func (r *Registry) LookupClientMessage(name string) (*dnet.File, *dnet.Message, bool) {
	return lookup(r.clientIndex, name, (*dnet.File).ClientMessage)
}

func lookup(index map[string][]*dnet.File, name string, find func(*dnet.File, string) (*dnet.Message, bool)) (*dnet.File, *dnet.Message, bool) {
	owners := index[name]
	if len(owners) == 0 {
		return nil, nil, false
	}
	msg, _ := find(owners[0], name)
	return owners[0], msg, true
}

// ServerMessageNames returns the sorted set of S2C names across all files
func (r *Registry) ServerMessageNames() []string {
	return sortedKeys(r.serverIndex)
}

// ClientMessageNames returns the sorted set of C2S names across all files
func (r *Registry) ClientMessageNames() []string {
	return sortedKeys(r.clientIndex)
}

// MessageCounts returns the total number of C2S and S2C definitions
func (r *Registry) MessageCounts() (client, server int) {
	for _, f := range r.files {
		client += len(f.ClientMessages)
		server += len(f.ServerMessages)
	}
	return client, server
}

func sortedKeys(m map[string][]*dnet.File) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
