// Package dnet parses protocol definition files (.dnet / .proto-def) into
// structured records.
//
// # Overview
//
// A protocol definition file lists the messages a client sends to the server
// (C2S) and the messages the server sends back (S2C), each with an ordered
// list of fields. Two historical dialects exist and may be mixed within one
// directory tree:
//
// Legacy dialect:
//
//	C2SMODULE：hero
//	S2CMODULE：hero
//	DESC：英雄
//	C2S.
//	1.C2SUpdateHeroName.更新英雄名称
//	iHeroID.4b.英雄ID
//	S2C.
//	1.S2CUpdateHero.英雄信息
//
// Current dialect:
//
//	VERSION:1
//	DESC:login
//	CMODULE:ModA
//	SMODULE:ModB
//	# comments and blank lines are skipped
//	C2GS:
//	1:ReqLogin:login request
//		name,string,username
//		forlist items
//				id,int,item id
//
// # Tolerance
//
// Parsing is best-effort: lines that no rule recognizes are ignored, fields
// that appear before any message are dropped, and nested forlist members are
// skipped. The only failure is an unreadable input path.
//
// # Usage Example
//
//	file, err := dnet.ParseFile("/proto/hero/hero.dnet", "/proto")
//	if err != nil {
//		return err
//	}
//	for _, msg := range file.ClientMessages {
//		fmt.Println(msg.Name, len(msg.Fields))
//	}
//
// # Related Packages
//
//   - pkg/registry: Scans directories and indexes parsed files
//   - pkg/validation: Cross-checks response mappings against parsed files
package dnet
