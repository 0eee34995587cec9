package config

import (
	"fmt"
	"os"
)

// loadFromEnv overrides config from TASKFLOW_* environment variables.
// If sources is non-nil, it records SourceEnv for every value set.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	for _, f := range fields(cfg) {
		v, ok := os.LookupEnv(f.env)
		if !ok || v == "" {
			continue
		}
		if err := f.value.Set(v); err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
		if sources != nil {
			sources[f.key] = SourceEnv
		}
	}
	return nil
}
