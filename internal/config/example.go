package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskflow configuration file
# Values can be overridden by TASKFLOW_* environment variables or CLI flags

# Directory holding the task data (supports ~ and $VAR expansion)
data_dir = "~/.taskflow"

# Storage backend: "file" keeps <data_dir>/<storage_key>.json, "memory" keeps nothing
backend = "file"

# Key the task list is stored under
storage_key = "todos"

# Task ids: "counter" (1, 2, 3, ...) or "clock" (millisecond timestamps)
id_scheme = "counter"

# Color theme: light or dark
theme = "light"

# Filter shown at startup: all, active or completed
default_filter = "all"

# Terminal width at or below which the compact layout is used
narrow_width = 80

# Logging
log_dir = "~/.taskflow/logs"
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
