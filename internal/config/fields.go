package config

import (
	"fmt"
	"strconv"
	"strings"
)

// field binds one Config value to its TOML key, environment variable and flag.
// The TOML key doubles as the source-tracking name.
type field struct {
	key   string
	env   string
	flag  string
	usage string
	value fieldValue
}

// fieldValue is a flag.Value bound to a Config field.
type fieldValue interface {
	String() string
	Set(string) error
}

type stringValue struct{ p *string }

func (v stringValue) String() string {
	if v.p == nil {
		return ""
	}
	return *v.p
}

func (v stringValue) Set(s string) error {
	*v.p = s
	return nil
}

type intValue struct{ p *int }

func (v intValue) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.Itoa(*v.p)
}

func (v intValue) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*v.p = n
	return nil
}

type boolValue struct{ p *bool }

func (v boolValue) String() string {
	if v.p == nil {
		return "false"
	}
	return strconv.FormatBool(*v.p)
}

func (v boolValue) Set(s string) error {
	*v.p = boolFromString(s)
	return nil
}

// IsBoolFlag lets "-log-caller" be used without a value.
func (v boolValue) IsBoolFlag() bool { return true }

// fields returns the bindings for every configurable value of cfg.
func fields(cfg *Config) []field {
	return []field{
		{key: "data_dir", env: "TASKFLOW_DATA_DIR", flag: "data-dir", usage: "Directory holding the task data", value: stringValue{&cfg.DataDir}},
		{key: "backend", env: "TASKFLOW_BACKEND", flag: "backend", usage: "Storage backend (file, memory)", value: stringValue{&cfg.Backend}},
		{key: "storage_key", env: "TASKFLOW_KEY", flag: "key", usage: "Storage key the task list is kept under", value: stringValue{&cfg.StorageKey}},
		{key: "id_scheme", env: "TASKFLOW_ID_SCHEME", flag: "id-scheme", usage: "Task id scheme (counter, clock)", value: stringValue{&cfg.IDScheme}},
		{key: "theme", env: "TASKFLOW_THEME", flag: "theme", usage: "Color theme (light, dark)", value: stringValue{&cfg.Theme}},
		{key: "default_filter", env: "TASKFLOW_FILTER", flag: "filter", usage: "Initial filter (all, active, completed)", value: stringValue{&cfg.DefaultFilter}},
		{key: "narrow_width", env: "TASKFLOW_NARROW_WIDTH", flag: "narrow-width", usage: "Terminal width at or below which the compact layout is used", value: intValue{&cfg.NarrowWidth}},
		{key: "log_dir", env: "TASKFLOW_LOG_DIR", flag: "log-dir", usage: "Session log directory", value: stringValue{&cfg.LogDir}},
		{key: "log_level", env: "TASKFLOW_LOG_LEVEL", flag: "log-level", usage: "Log level (debug, info, warn, error)", value: stringValue{&cfg.LogLevel}},
		{key: "log_format", env: "TASKFLOW_LOG_FORMAT", flag: "log-format", usage: "Log format (text, json, logfmt)", value: stringValue{&cfg.LogFormat}},
		{key: "log_timestamps", env: "TASKFLOW_LOG_TIMESTAMPS", flag: "log-timestamps", usage: "Show timestamps in logs", value: boolValue{&cfg.LogTimestamps}},
		{key: "log_caller", env: "TASKFLOW_LOG_CALLER", flag: "log-caller", usage: "Show caller location in logs", value: boolValue{&cfg.LogCaller}},
	}
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	var keys []string
	for _, f := range fields(&Config{}) {
		keys = append(keys, f.key)
	}
	return keys
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
