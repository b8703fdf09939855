package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/dnetmap/pkg/dnet"
	"github.com/platinummonkey/dnetmap/pkg/observability"
	"github.com/platinummonkey/dnetmap/pkg/registry"
	"github.com/platinummonkey/dnetmap/pkg/storage"
	"github.com/platinummonkey/dnetmap/pkg/validation"
	"github.com/platinummonkey/dnetmap/pkg/workspace"
)

// FileNames are the configuration files looked for in the working directory
var FileNames = []string{"dnetmap.yaml", "dnetmap.yml", "dnetmap.toml", ".dnetmap.yaml", ".dnetmap.yml", ".dnetmap.toml"}

// Config holds all application configuration
type Config struct {
	// ProtoDir is the protocol definition tree
	ProtoDir string `yaml:"proto_dir" toml:"proto_dir"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage" toml:"storage"`

	// Registry configuration
	Registry RegistryConfig `yaml:"registry" toml:"registry"`

	// Validation configuration
	Validation ValidationConfig `yaml:"validation" toml:"validation"`

	// Watch configuration
	Watch WatchConfig `yaml:"watch" toml:"watch"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability" toml:"observability"`
}

// StorageConfig holds document storage settings
type StorageConfig struct {
	Dir          string `yaml:"dir" toml:"dir"`
	Format       string `yaml:"format" toml:"format"`
	LegacyLabels bool   `yaml:"legacy_labels" toml:"legacy_labels"`
}

// RegistryConfig holds scan settings
type RegistryConfig struct {
	Extensions []string `yaml:"extensions" toml:"extensions"`
	Dialects   string   `yaml:"dialects" toml:"dialects"`
	CacheSize  int      `yaml:"cache_size" toml:"cache_size"`
}

// ValidationConfig enables optional checks
type ValidationConfig struct {
	ReportUnusedGroups bool `yaml:"report_unused_groups" toml:"report_unused_groups"`
	CheckSequence      bool `yaml:"check_sequence" toml:"check_sequence"`
}

// WatchConfig holds watch mode settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`
	// MetricsFile, when set, receives a Prometheus text dump after each command
	MetricsFile string `yaml:"metrics_file" toml:"metrics_file"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		ProtoDir: "proto",
		Storage: StorageConfig{
			Dir:          "clientconfig",
			Format:       "json",
			LegacyLabels: true,
		},
		Registry: RegistryConfig{
			Extensions: append([]string(nil), registry.DefaultExtensions...),
			Dialects:   "all",
			CacheSize:  registry.DefaultCacheSize,
		},
		Watch: WatchConfig{
			Debounce: workspace.DefaultDebounce,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: string(observability.FormatText),
		},
	}
}

// LoadConfig loads configuration from defaults, the configuration file and
// the environment, in that order of precedence
func LoadConfig() (*Config, error) {
	return Load(getEnv("DNETMAP_CONFIG_FILE", ""), ".")
}

// Load applies an explicit file, or the first of FileNames found in dir, over
// the defaults, then environment overrides. An explicit file must exist.
func Load(file, dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := file
	if path == "" {
		path = findFile(dir)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findFile(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// mergeFile overlays the YAML or TOML file at path; keys absent from the file
// keep their current values
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("configuration file %s does not exist", path)
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse configuration file %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ProtoDir = getEnv("DNETMAP_PROTO_DIR", c.ProtoDir)
	c.Storage.Dir = getEnv("DNETMAP_CONFIG_DIR", c.Storage.Dir)
	c.Storage.Format = getEnv("DNETMAP_FORMAT", c.Storage.Format)
	c.Storage.LegacyLabels = getEnvBool("DNETMAP_LEGACY_LABELS", c.Storage.LegacyLabels)

	if exts := getEnv("DNETMAP_EXTENSIONS", ""); exts != "" {
		c.Registry.Extensions = splitList(exts)
	}
	c.Registry.Dialects = getEnv("DNETMAP_DIALECTS", c.Registry.Dialects)
	c.Registry.CacheSize = getEnvInt("DNETMAP_CACHE_SIZE", c.Registry.CacheSize)

	c.Validation.ReportUnusedGroups = getEnvBool("DNETMAP_REPORT_UNUSED_GROUPS", c.Validation.ReportUnusedGroups)
	c.Validation.CheckSequence = getEnvBool("DNETMAP_CHECK_SEQUENCE", c.Validation.CheckSequence)

	c.Watch.Debounce = getEnvDuration("DNETMAP_WATCH_DEBOUNCE", c.Watch.Debounce)

	c.Observability.LogLevel = getEnv("DNETMAP_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.LogFormat = getEnv("DNETMAP_LOG_FORMAT", c.Observability.LogFormat)
	c.Observability.MetricsFile = getEnv("DNETMAP_METRICS_FILE", c.Observability.MetricsFile)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProtoDir) == "" {
		return fmt.Errorf("proto directory is required")
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		return fmt.Errorf("config directory is required")
	}
	switch strings.ToLower(c.Storage.Format) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("invalid storage format: %s (must be json or yaml)", c.Storage.Format)
	}

	if len(c.Registry.Extensions) == 0 {
		return fmt.Errorf("at least one protocol file extension is required")
	}
	for _, ext := range c.Registry.Extensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			return fmt.Errorf("invalid protocol file extension %q", ext)
		}
	}
	if _, ok := dnet.ParseDialect(c.Registry.Dialects); !ok {
		return fmt.Errorf("invalid dialects: %s (must be legacy, current or all)", c.Registry.Dialects)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}

	switch observability.LogFormat(strings.ToLower(c.Observability.LogFormat)) {
	case observability.FormatText, observability.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}
	return nil
}

// Dialect returns the configured parser dialects
func (c *Config) Dialect() dnet.Dialect {
	d, ok := dnet.ParseDialect(c.Registry.Dialects)
	if !ok {
		return dnet.DialectAll
	}
	return d
}

// NewLogger builds the process logger writing to stderr
func (c *Config) NewLogger() *logrus.Logger {
	return observability.NewLogger(
		observability.ParseLogLevel(c.Observability.LogLevel),
		observability.LogFormat(strings.ToLower(c.Observability.LogFormat)),
		nil,
	)
}

// WorkspaceOptions translates the configuration for workspace.New
func (c *Config) WorkspaceOptions(log *logrus.Logger, metrics *observability.Metrics) workspace.Options {
	return workspace.Options{
		ProtoRoot: c.ProtoDir,
		Registry: registry.Options{
			Extensions: c.Registry.Extensions,
			Dialects:   c.Dialect(),
			CacheSize:  c.Registry.CacheSize,
		},
		Storage: storage.Config{
			Root:         c.Storage.Dir,
			Format:       c.Storage.Format,
			LegacyLabels: c.Storage.LegacyLabels,
		},
		Validation: &validation.Config{
			ReportUnusedGroups: c.Validation.ReportUnusedGroups,
			CheckSequence:      c.Validation.CheckSequence,
		},
		Debounce: c.Watch.Debounce,
		Logger:   log,
		Metrics:  metrics,
	}
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
