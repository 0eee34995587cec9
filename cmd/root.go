// Package cmd implements the CLI command structure for taskflow.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskflow/internal/config"
	"github.com/nibzard/taskflow/internal/logging"
	"github.com/nibzard/taskflow/internal/storage"
	"github.com/nibzard/taskflow/internal/taskdir"
	"github.com/nibzard/taskflow/internal/todo"
	"github.com/nibzard/taskflow/internal/ui"
	"github.com/nibzard/taskflow/internal/utils"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskflow CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// app carries what every subcommand needs.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskflow", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	// No args means the TUI
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	case "schema":
		_, err := stdout.Write(todo.TasksSchema())
		return err
	}

	a := &app{cfg: cfg, sources: cws, stdout: stdout, stderr: stderr}
	if subcommand == "init" {
		return a.initCommand(remainingArgs)
	}
	if subcommand == "doctor" {
		a.logger = log.New(io.Discard)
		return a.doctorCommand(remainingArgs)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	opts, err := cfg.LogOptions()
	if err != nil {
		return err
	}
	a.logger = logging.New(stderr, opts)

	switch subcommand {
	case "add":
		return a.addCommand(remainingArgs)
	case "toggle", "done":
		return a.toggleCommand(remainingArgs)
	case "rm", "delete":
		return a.rmCommand(remainingArgs)
	case "ls", "list":
		return a.lsCommand(remainingArgs)
	case "stats":
		return a.statsCommand(remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "tail":
		return a.tailCommand(ctx, remainingArgs)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore opens the configured backend and loads the collection.
func (a *app) openStore(logger *log.Logger) (*todo.Store, error) {
	kv, err := storage.Open(a.cfg.Backend, a.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	store := todo.Open(kv,
		todo.WithKey(a.cfg.StorageKey),
		todo.WithIDGenerator(a.cfg.IDGenerator()),
		todo.WithLogger(logger),
	)
	return store, nil
}

// withStore opens the store, logs every change at debug level and runs fn.
func (a *app) withStore(fn func(*todo.Store) error) error {
	store, err := a.openStore(a.logger)
	if err != nil {
		return err
	}
	cancel := store.Subscribe(func(c todo.Change) {
		if c.Err == nil {
			a.logger.Debug("task changed", "op", c.Op, "id", c.Task.ID, "completed", c.Task.Completed)
		}
	})
	defer cancel()
	return fn(store)
}

// addCommand adds one task from the remaining arguments.
func (a *app) addCommand(args []string) error {
	fs := flag.NewFlagSet("taskflow add", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")

	return a.withStore(func(store *todo.Store) error {
		task, created, err := store.Add(text)
		if !created && err != nil {
			return err
		}
		if !created {
			fmt.Fprintln(a.stdout, "nothing to add")
			return nil
		}
		fmt.Fprintf(a.stdout, "added %d\n", task.ID)
		return err
	})
}

// toggleCommand flips the completion state of each given task.
func (a *app) toggleCommand(args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	return a.withStore(func(store *todo.Store) error {
		var errs []error
		for _, id := range ids {
			found, err := store.Toggle(id)
			if !found {
				errs = append(errs, fmt.Errorf("task %d not found", id))
				continue
			}
			task, _ := store.Get(id)
			if task.Completed {
				fmt.Fprintf(a.stdout, "completed %d\n", id)
			} else {
				fmt.Fprintf(a.stdout, "reopened %d\n", id)
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// rmCommand deletes each given task.
func (a *app) rmCommand(args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	return a.withStore(func(store *todo.Store) error {
		var errs []error
		for _, id := range ids {
			removed, err := store.Delete(id)
			if !removed {
				errs = append(errs, fmt.Errorf("task %d not found", id))
				continue
			}
			fmt.Fprintf(a.stdout, "deleted %d\n", id)
			if err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// parseIDs accepts ids as separate arguments or comma-separated lists.
func parseIDs(args []string) ([]todo.ID, error) {
	var ids []todo.ID
	for _, arg := range args {
		for _, part := range utils.SplitAndTrim(arg, ",") {
			id, err := todo.ParseID(part)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("missing task id")
	}
	return ids, nil
}

// lsCommand lists the tasks matching a filter in insertion order.
func (a *app) lsCommand(args []string) error {
	fs := flag.NewFlagSet("taskflow ls", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	filter := fs.String("filter", a.cfg.DefaultFilter, "Filter (all|active|completed)")
	asJSON := fs.Bool("json", false, "Print the tasks as a JSON array")
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		*filter = remaining[0]
	}
	mode, err := todo.ParseFilterMode(*filter)
	if err != nil {
		return err
	}

	return a.withStore(func(store *todo.Store) error {
		tasks := slices.Collect(store.View(mode))
		if *asJSON {
			data, err := todo.MarshalTasks(tasks)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, string(data))
			return nil
		}
		printTaskList(a.stdout, tasks)
		return nil
	})
}

// printTaskList prints one line per task.
func printTaskList(w io.Writer, tasks []todo.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "%4d  [%s] %s\n", t.ID, mark, t.Text)
	}
}

// statsCommand prints the collection summary.
func (a *app) statsCommand(args []string) error {
	fs := flag.NewFlagSet("taskflow stats", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	asJSON := fs.Bool("json", false, "Print the stats as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.withStore(func(store *todo.Store) error {
		st := store.Stats()
		if *asJSON {
			data, err := json.Marshal(st)
			if err != nil {
				return fmt.Errorf("marshal stats: %w", err)
			}
			fmt.Fprintln(a.stdout, string(data))
			return nil
		}
		fmt.Fprintf(a.stdout, "Total: %d  Active: %d  Completed: %d  Progress: %d%%\n",
			st.Total, st.Active, st.Completed, st.CompletionRate)
		return nil
	})
}

// tuiCommand launches the terminal UI. Logs go to a session file so they
// do not draw over the alternate screen.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskflow tui", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	logger := log.New(io.Discard)
	session, err := logging.NewSessionLog(a.cfg.LogDir)
	if err != nil {
		a.logger.Warn("session log disabled", "err", err)
	} else {
		defer session.Close()
		opts, err := a.cfg.LogOptions()
		if err != nil {
			opts = logging.DefaultOptions()
		}
		logger = session.Logger(opts)
		logger.Info("session started", "version", Version, "backend", a.cfg.Backend, "key", a.cfg.StorageKey)
	}

	store, err := a.openStore(logger)
	if err != nil {
		return err
	}

	err = ui.RunTUI(ctx, store, ui.Options{
		Filter:      a.cfg.Filter(),
		Dark:        a.cfg.DarkTheme(),
		NarrowWidth: a.cfg.NarrowWidth,
		Logger:      logger,
	})
	logger.Info("session ended", "tasks", store.Len())
	if errors.Is(err, ui.ErrNoTTY) {
		return fmt.Errorf("%w; use ls, add, toggle or rm instead", err)
	}
	return err
}

// initCommand writes an example project config file.
func (a *app) initCommand(args []string) error {
	fs := flag.NewFlagSet("taskflow init", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := filepath.Join(a.cfg.ProjectRoot, taskdir.ConfigFile)
	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(a.stdout, "%s already exists, skipping (use -force to overwrite)\n", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(a.stdout, "wrote %s\n", path)
	return nil
}

// tailCommand tails the latest session log.
func (a *app) tailCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskflow tail", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logPath, err := logging.FindLatestLog(a.cfg.LogDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(a.stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(a.stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(a.stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(a.stdout)
	return logging.TailLog(ctx, a.stdout, logPath, *n, *follow)
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "taskflow version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "TaskFlow - Organize your life with style")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskflow [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui              Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  add <text>       Add a task")
	fmt.Fprintln(w, "  toggle <id...>   Toggle tasks between active and completed (alias: done)")
	fmt.Fprintln(w, "  rm <id...>       Delete tasks (alias: delete)")
	fmt.Fprintln(w, "  ls [filter]      List tasks: all, active or completed (alias: list)")
	fmt.Fprintln(w, "  stats            Show task counts and progress")
	fmt.Fprintln(w, "  doctor           Check config, storage and logs")
	fmt.Fprintln(w, "  init             Write an example taskflow.toml to the current directory")
	fmt.Fprintln(w, "  schema           Print the JSON Schema of the stored task list")
	fmt.Fprintln(w, "  tail             Tail the latest session log")
	fmt.Fprintln(w, "  version          Show version information")
	fmt.Fprintln(w, "  help             Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ids may be given as separate arguments or comma-separated (rm 1,2,3).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -filter string")
	fmt.Fprintln(w, "        Filter (all|active|completed)")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Print the tasks as a JSON array")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stats Options (use with 'stats' command):")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Print the stats as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options (use with 'tail' command):")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
