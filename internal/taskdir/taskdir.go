// Package taskdir provides constants and helpers for the .taskflow directory layout.
package taskdir

import "path/filepath"

const (
	// Dir is the name of the taskflow state directory.
	Dir = ".taskflow"

	// ConfigFile is the config file name, both inside Dir and in a project root.
	ConfigFile = "taskflow.toml"

	// HiddenConfigFile is the alternative project config file name.
	HiddenConfigFile = ".taskflow.toml"

	// LogsDir is the name of the session log directory inside Dir.
	LogsDir = "logs"
)

// DirPath returns the path of the state directory under root.
func DirPath(root string) string {
	if root == "" || root == "." {
		return Dir
	}
	return filepath.Join(root, Dir)
}

// ConfigPath returns the path of the config file inside the state directory under root.
func ConfigPath(root string) string {
	return filepath.Join(DirPath(root), ConfigFile)
}

// ProjectConfigFiles lists the project config file names in lookup order.
func ProjectConfigFiles() []string {
	return []string{ConfigFile, HiddenConfigFile}
}
