package config

import "github.com/nibzard/taskflow/internal/taskdir"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
}

// Theme names.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ID schemes.
const (
	IDSchemeCounter = "counter"
	IDSchemeClock   = "clock"
)

// Default values.
const (
	DefaultDataDir     = "~/" + taskdir.Dir
	DefaultLogDir      = "~/" + taskdir.Dir + "/" + taskdir.LogsDir
	DefaultBackend     = "file"
	DefaultStorageKey  = "todos"
	DefaultTheme       = ThemeLight
	DefaultFilter      = "all"
	DefaultNarrowWidth = 80
	DefaultIDScheme    = IDSchemeCounter
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config holds the full configuration for taskflow.
type Config struct {
	// Storage
	DataDir    string `toml:"data_dir"`
	Backend    string `toml:"backend"`
	StorageKey string `toml:"storage_key"`
	IDScheme   string `toml:"id_scheme"`

	// Presentation
	Theme         string `toml:"theme"`
	DefaultFilter string `toml:"default_filter"`
	NarrowWidth   int    `toml:"narrow_width"`

	// Logging
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Computed
	ProjectRoot string   `toml:"-"`
	ConfigFiles []string `toml:"-"` // files that were loaded, lowest priority first
	UnknownKeys []string `toml:"-"` // keys in config files that match no field
}
