// Package mapping models response mapping documents: for each client message
// (C2S) of a protocol file, which server messages (S2C) may follow it.
//
// # Overview
//
// A Document belongs to exactly one protocol file and holds one Mapping per
// configured client message. A Mapping is an ordered list of Response entries
// plus the OrderGroups those entries reference.
//
// # Ordering
//
// Ordered responses carry a dense 1..N sequence matching their storage
// position; unordered responses always carry 0. Every structural mutation
// (Append, Insert, Remove, MoveUp, MoveDown, SetOrdered) renumbers the whole
// mapping. Group membership never changes numbering: entries sharing a group
// have indeterminate order among themselves but stay ordered relative to
// everything outside the group.
//
//	m := doc.EnsureMapping("ReqLogin", "login request")
//	m.Append(mapping.NewResponse("RspLogin"))
//	m.Append(mapping.NewResponse("RspHeroList"))
//	m.Append(mapping.NewResponse("RspBagList"))
//	m.AssignGroup(1, "A")
//	m.AssignGroup(2, "A")
//	// RspLogin first, then RspHeroList and RspBagList in either order
//
// Groups are created implicitly and are not pruned when their last member
// leaves; PruneGroups removes them explicitly.
//
// # Related Packages
//
//   - pkg/codec: Persists documents as JSON or YAML
//   - pkg/validation: Checks documents against a protocol registry
package mapping
