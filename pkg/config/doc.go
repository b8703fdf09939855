// Package config provides application configuration from defaults, a YAML
// or TOML file and environment variables.
//
// # Overview
//
// Settings are resolved in three layers, later layers winning:
//
//  1. built-in defaults (DefaultConfig)
//  2. a file: DNETMAP_CONFIG_FILE, or the first of FileNames found in the
//     working directory. Files ending in .toml are read as TOML, anything
//     else as YAML; both use the same keys.
//  3. environment variables
//
// # Configuration Structure
//
// Paths and storage:
//
//	DNETMAP_PROTO_DIR="proto"
//	DNETMAP_CONFIG_DIR="clientconfig"
//	DNETMAP_FORMAT="json"          # json, yaml
//	DNETMAP_LEGACY_LABELS="true"   # false writes unconditional/once tokens
//
// Scanning:
//
//	DNETMAP_EXTENSIONS=".dnet,.proto-def"
//	DNETMAP_DIALECTS="all"         # legacy, current, all
//	DNETMAP_CACHE_SIZE="1024"      # negative disables the parse cache
//
// Validation and watch mode:
//
//	DNETMAP_REPORT_UNUSED_GROUPS="false"
//	DNETMAP_CHECK_SEQUENCE="false"
//	DNETMAP_WATCH_DEBOUNCE="200ms"
//
// Observability:
//
//	DNETMAP_LOG_LEVEL="info"       # debug, info, warn, error
//	DNETMAP_LOG_FORMAT="text"      # text, json
//	DNETMAP_METRICS_FILE=""        # Prometheus text dump written after each command
//
// The same settings in YAML:
//
//	proto_dir: proto
//	storage:
//	  dir: clientconfig
//	  format: json
//	registry:
//	  extensions: [.dnet, .proto-def]
//	  dialects: all
//	watch:
//	  debounce: 500ms
//	observability:
//	  log_level: debug
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	ws, err := workspace.New(cfg.WorkspaceOptions(cfg.NewLogger(), nil))
package config
