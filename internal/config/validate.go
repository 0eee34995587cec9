package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nibzard/taskflow/internal/logging"
	"github.com/nibzard/taskflow/internal/storage"
	"github.com/nibzard/taskflow/internal/todo"
)

// Validate reports every invalid value in cfg.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(storage.Backends, strings.ToLower(c.Backend)) {
		errs = append(errs, fmt.Errorf("backend: %q must be one of: %s", c.Backend, strings.Join(storage.Backends, ", ")))
	}
	if err := storage.ValidateKey(c.StorageKey); err != nil {
		errs = append(errs, fmt.Errorf("storage_key: %w", err))
	}
	if strings.ToLower(c.Backend) == storage.BackendFile && strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir: required for the file backend"))
	}
	switch strings.ToLower(c.IDScheme) {
	case IDSchemeCounter, IDSchemeClock:
	default:
		errs = append(errs, fmt.Errorf("id_scheme: %q must be one of: counter, clock", c.IDScheme))
	}
	switch strings.ToLower(c.Theme) {
	case ThemeLight, ThemeDark:
	default:
		errs = append(errs, fmt.Errorf("theme: %q must be one of: light, dark", c.Theme))
	}
	if _, err := todo.ParseFilterMode(c.DefaultFilter); err != nil {
		errs = append(errs, fmt.Errorf("default_filter: %w", err))
	}
	if c.NarrowWidth < 0 {
		errs = append(errs, fmt.Errorf("narrow_width: %d must not be negative", c.NarrowWidth))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := logging.ParseFormatter(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("log_format: %w", err))
	}

	return errors.Join(errs...)
}

// LogOptions returns the logger options described by the log_* fields.
func (c *Config) LogOptions() (logging.Options, error) {
	return logging.OptionsFromConfig(c.LogLevel, c.LogFormat, c.LogTimestamps, c.LogCaller)
}

// Filter returns the parsed default filter.
func (c *Config) Filter() todo.FilterMode {
	mode, err := todo.ParseFilterMode(c.DefaultFilter)
	if err != nil {
		return todo.FilterAll
	}
	return mode
}

// IDGenerator returns a fresh id generator for the configured scheme.
func (c *Config) IDGenerator() todo.IDGenerator {
	if strings.ToLower(c.IDScheme) == IDSchemeClock {
		return todo.NewClock(nil)
	}
	return todo.NewCounter(0)
}

// DarkTheme reports whether the dark theme is configured.
func (c *Config) DarkTheme() bool {
	return strings.ToLower(c.Theme) == ThemeDark
}
