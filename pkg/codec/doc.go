// Package codec converts mapping documents to and from their persisted form.
//
// # Overview
//
// Documents are stored as a keyed tree, JSON by default and YAML on request:
//
//	{
//	  "dnet_file": "login.dnet",
//	  "description": "login flow",
//	  "c2s_mappings": {
//	    "ReqLogin": {
//	      "description": "login request",
//	      "order_groups": [{"name": "A", "description": "any order"}],
//	      "responses": [
//	        {"protocol": "RspLogin", "order": 1, "type": "unconditional",
//	         "condition": "", "count": "once", "order_group": "",
//	         "ordered": true, "cmodule": "login"}
//	      ]
//	    }
//	  },
//	  "s2c_triggers": {
//	    "RspKick": {"custom_triggers": [{"name": "gm kick", "type": "conditional",
//	      "condition": "", "count": "once", "ordered": true}]}
//	  }
//	}
//
// s2c_triggers is written only when at least one trigger exists.
//
// # Compatibility
//
// Decoding is permissive. Missing type, count and ordered default to
// unconditional, once and true. Older documents stored order_group as an
// integer; 1 decodes to "A", 2 to "B", and 0 to no group. Kind and count
// labels written by older tools are accepted, and Options.LegacyLabels writes
// them back for consumers that still expect them. A label that is neither
// is kept verbatim in Response.RawKind or RawRepetition and written back
// unchanged, so one odd entry never makes a document unreadable. All of these
// rules live in compat.go.
//
// # Errors
//
// Malformed input yields *DecodeError; failed marshalling or writing yields
// *EncodeError. WriteFile replaces the target through a temporary file so a
// failed write leaves the previous document untouched.
package codec
