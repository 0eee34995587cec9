package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/nibzard/taskflow/internal/logging"
	"github.com/nibzard/taskflow/internal/storage"
	"github.com/nibzard/taskflow/internal/todo"
)

// doctorCommand checks config, storage and logs and reports each result.
func (a *app) doctorCommand(args []string) error {
	flags := flag.NewFlagSet("taskflow doctor", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	verbose := flags.Bool("v", false, "Verbose output")
	reset := flags.Bool("reset", false, "Remove stored tasks that fail validation")
	if err := flags.Parse(args); err != nil {
		return err
	}

	out := a.stdout
	cfg := a.cfg
	allOK := true

	fmt.Fprintln(out, "TaskFlow Doctor")
	fmt.Fprintln(out, "===============")
	fmt.Fprintln(out)

	// Config
	fmt.Fprintln(out, "Configuration:")
	if len(cfg.ConfigFiles) == 0 {
		fmt.Fprintln(out, "  ✅ No config file (using defaults)")
	}
	for _, path := range cfg.ConfigFiles {
		fmt.Fprintf(out, "  ✅ Loaded %s\n", path)
	}
	for _, key := range cfg.UnknownKeys {
		fmt.Fprintf(out, "  ⚠️  Unknown key: %s\n", key)
	}
	configErr := cfg.Validate()
	if configErr != nil {
		for _, line := range strings.Split(configErr.Error(), "\n") {
			fmt.Fprintf(out, "  ❌ %s\n", line)
		}
		allOK = false
	} else {
		fmt.Fprintln(out, "  ✅ Valid")
	}
	if *verbose {
		if path := a.sources.GetConfigFile(); path != "" {
			fmt.Fprintf(out, "  Effective file: %s\n", path)
		}
		keys := make([]string, 0, len(a.sources.Sources))
		for key := range a.sources.Sources {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			fmt.Fprintf(out, "  %s: %s\n", key, a.sources.Sources[key])
		}
	}
	fmt.Fprintln(out)

	// Storage
	if configErr == nil {
		if !a.checkStorage(*verbose, *reset) {
			allOK = false
		}
		fmt.Fprintln(out)
	}

	// Log directory
	fmt.Fprintf(out, "Log directory: %s\n", cfg.LogDir)
	if info, err := os.Stat(cfg.LogDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(out, "  ⚠️  Not found (will be created by the TUI)")
		} else {
			fmt.Fprintf(out, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if !info.IsDir() {
		fmt.Fprintln(out, "  ❌ Error: path is not a directory")
		allOK = false
	} else {
		sessions, err := logging.FindSessions(cfg.LogDir)
		if err != nil {
			fmt.Fprintf(out, "  ❌ Error: %v\n", err)
			allOK = false
		} else {
			fmt.Fprintf(out, "  ✅ OK (%d sessions)\n", len(sessions))
		}
	}
	fmt.Fprintln(out)

	if allOK {
		fmt.Fprintln(out, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(out, "⚠️  Some checks failed. TaskFlow may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkStorage reports on the data directory and the stored blob. With
// reset set, a blob that fails validation is removed.
func (a *app) checkStorage(verbose, reset bool) bool {
	out := a.stdout
	cfg := a.cfg
	ok := true

	if strings.ToLower(cfg.Backend) == storage.BackendFile {
		fmt.Fprintf(out, "Data directory: %s\n", cfg.DataDir)
		switch info, err := os.Stat(cfg.DataDir); {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Fprintln(out, "  ⚠️  Not found (will be created on first change)")
		case err != nil:
			fmt.Fprintf(out, "  ❌ Error: %v\n", err)
			ok = false
		case !info.IsDir():
			fmt.Fprintln(out, "  ❌ Error: path is not a directory")
			ok = false
		default:
			if err := checkWritable(cfg.DataDir); err != nil {
				fmt.Fprintf(out, "  ❌ Not writable: %v\n", err)
				ok = false
			} else {
				fmt.Fprintln(out, "  ✅ Writable")
			}
		}
	} else {
		fmt.Fprintf(out, "Storage: %s backend (tasks are not kept between runs)\n", cfg.Backend)
	}

	kv, err := storage.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		fmt.Fprintf(out, "  ❌ Open: %v\n", err)
		return false
	}
	data, found, err := kv.Get(cfg.StorageKey)
	switch {
	case err != nil:
		fmt.Fprintf(out, "  ❌ Read %q: %v\n", cfg.StorageKey, err)
		return false
	case !found:
		fmt.Fprintf(out, "  ⚠️  No tasks stored under %q yet\n", cfg.StorageKey)
		return ok
	}

	if file, isFile := kv.(*storage.File); isFile && verbose {
		if keys, err := file.Keys(); err == nil && len(keys) > 1 {
			fmt.Fprintf(out, "  Task lists in data directory: %s\n", strings.Join(keys, ", "))
		}
	}

	tasks, err := todo.UnmarshalTasks(data)
	if err != nil {
		if !reset {
			fmt.Fprintf(out, "  ❌ Stored tasks are invalid and will be discarded: %v\n", err)
			fmt.Fprintln(out, "     Run 'taskflow doctor -reset' to remove them now.")
			return false
		}
		if err := kv.Delete(cfg.StorageKey); err != nil {
			fmt.Fprintf(out, "  ❌ Remove invalid tasks under %q: %v\n", cfg.StorageKey, err)
			return false
		}
		fmt.Fprintf(out, "  ✅ Removed invalid tasks under %q\n", cfg.StorageKey)
		return ok
	}
	st := todo.ComputeStats(tasks)
	fmt.Fprintf(out, "  ✅ Stored tasks valid (%d total, %d active, %d completed)\n", st.Total, st.Active, st.Completed)
	if verbose {
		printTaskList(out, tasks)
	}
	return ok
}

// checkWritable creates and removes a temporary file in dir.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	closeErr := f.Close()
	removeErr := os.Remove(name)
	return errors.Join(closeErr, removeErr)
}
