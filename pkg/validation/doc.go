// Package validation cross-checks mapping documents against the protocol
// registry.
//
// # Checks
//
// Two checks always run and never stop at the first problem:
//   - every mapped client message must be declared by the document's own
//     protocol file
//   - every configured response must name a server message declared by some
//     file in the registry
//
// Config enables two optional checks: groups that no response references and
// numbering that breaks the dense 1..N sequence (possible only in documents
// edited by hand).
//
// # Usage Example
//
//	warnings := validation.Validate(doc, file, reg)
//	for _, w := range warnings {
//		fmt.Println(w)
//	}
//
// Warnings are advisory. Callers decide whether to persist a document that
// has them; see workspace.Workspace.Save.
package validation
