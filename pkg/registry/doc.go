// Package registry builds immutable snapshots of every protocol definition
// file under a root directory.
//
// # Overview
//
// A Builder walks the root recursively, parses each file with a configured
// extension, and returns a Registry sorted by relative path. Files that cannot
// be read are logged and omitted; a missing root yields an empty registry.
//
// Snapshots are never mutated. Rescanning produces a new Registry that the
// caller swaps in; readers holding the old snapshot keep a consistent view.
//
// # Name Resolution
//
// Message names are only unique within their own file. The registry indexes
// names at construction time and resolves duplicates to the first match in
// sorted relative path order. ServerMessageOwners returns every match.
//
// # Usage Example
//
//	builder, err := registry.NewBuilder(registry.Options{Logger: log})
//	if err != nil {
//		return err
//	}
//	reg, err := builder.Scan("/srv/proto")
//	if err != nil {
//		return err
//	}
//	if !reg.HasServerMessage("S2CUpdateHero") {
//		fmt.Println("unknown response")
//	}
//
// # Watching
//
// Watcher reports changes to protocol files so interactive callers know when
// to rescan. It never rebuilds on its own.
//
// # Related Packages
//
//   - pkg/dnet: Parses individual files
//   - pkg/validation: Consumes registries for referential checks
package registry
