// Package storage persists mapping documents next to the protocol tree they
// describe.
//
// # Overview
//
// Each protocol file has at most one document. The document path mirrors the
// protocol file's relative path under the storage root with the extension
// replaced:
//
//	proto/login/account.dnet  ->  clientconfig/login/account.json
//
// The store is split into focused interfaces:
//
//   - DocumentReader: Load, Exists
//   - DocumentWriter: Save, Delete
//   - Store: both, plus List
//
// # Errors
//
// Load returns ErrNotFound when nothing is stored (callers treat that as an
// empty result) and *codec.DecodeError when the stored file is malformed.
// Save refuses documents with neither responses nor custom triggers with
// ErrEmptyDocument and leaves the disk untouched. Write failures are
// *codec.EncodeError; the previous file survives them because writes go
// through a temporary file and rename.
//
// # Usage Example
//
//	store, err := storage.NewFileSystemStore(storage.Config{Root: "clientconfig"}, log)
//	if err != nil {
//		return err
//	}
//	doc, err := store.Load("login/account.dnet")
//	if errors.Is(err, storage.ErrNotFound) {
//		doc = mapping.NewDocumentFor(file)
//	}
//
// Export and Import use the same codec against a caller-chosen path; a .yaml
// or .yml path selects YAML.
package storage
