// Package workspace is the entry point used by front ends: it owns the
// current registry snapshot, the document store and the validator.
//
// A typical session:
//
//	ws, err := workspace.New(workspace.Options{ProtoRoot: "proto", Storage: storage.Config{Root: "clientconfig"}})
//	if err != nil {
//		return err
//	}
//	if _, err := ws.Scan(); err != nil {
//		return err
//	}
//	doc, err := ws.LoadOrEmpty("login/account.dnet")
//	...
//	warnings, err := ws.Save("login/account.dnet", doc, false)
//	var werr *workspace.WarningsError
//	if errors.As(err, &werr) {
//		// show werr.Warnings, then retry with force
//	}
//
// Scan replaces the snapshot in one step; readers holding an older
// *registry.Registry keep a consistent view.
package workspace
