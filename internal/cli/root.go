// Package cli wires the todo command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todosync/internal/api"
	"github.com/idilsaglam/todosync/internal/auth"
	"github.com/idilsaglam/todosync/internal/cache"
	"github.com/idilsaglam/todosync/internal/config"
	"github.com/idilsaglam/todosync/internal/logging"
	"github.com/idilsaglam/todosync/internal/store"
	"github.com/idilsaglam/todosync/internal/syncer"
	"github.com/idilsaglam/todosync/internal/ui"
)

// Exit codes: 0 ok, 1 error, 2 usage.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// annotation marking commands that own the terminal, so logs stay off it.
const ownsTerminal = "owns-terminal"

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error { return usageError{fmt.Errorf(format, a...)} }

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	apiURL     string
	limit      int
	theme      string
	verbose    bool
	noColor    bool
}

// app is what a subcommand gets once config and logging are ready.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	store    *store.Store
	svc      *syncer.Service
	closeLog func() error
}

func (a *app) Close() {
	if a == nil {
		return
	}
	a.store.Close()
	_ = a.closeLog()
}

// Run executes the command tree with args and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ui.Out, ui.Err = stdout, stderr

	root, cleanup := newRootCmd(stderr)
	defer cleanup()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	ui.Fail(err.Error())

	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintln(stderr, ui.Current().Muted.Render("Hint: run `todo --help` for usage"))
		return exitUsage
	}
	return exitError
}

func newRootCmd(stderr io.Writer) (*cobra.Command, func()) {
	var (
		flags rootFlags
		a     *app
	)

	root := &cobra.Command{
		Use:   "todo",
		Short: "A terminal client for a remote todo list",
		Long: `todo lists, creates, updates, completes and deletes todos held by a
remote REST API, keeping a local copy in sync for the interactive view.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usagef("no subcommand given")
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/todo/config.toml)")
	pf.StringVar(&flags.apiURL, "api-url", "", "base URL of the todo API")
	pf.IntVar(&flags.limit, "limit", -1, "number of todos to fetch (0 = all)")
	pf.StringVar(&flags.theme, "theme", "", "color theme: classic, neon or mono")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colors (same as --theme mono)")

	// setup builds the app on first use, so commands that never touch the
	// API (help, auth, serve) do not need a valid config.
	setup := func(cmd *cobra.Command) (*app, error) {
		if a != nil {
			return a, nil
		}
		cfg, err := loadConfig(flags)
		if err != nil {
			return nil, err
		}
		logOut := stderr
		if cmd.Annotations[ownsTerminal] == "true" {
			logOut = io.Discard
		}
		a, err = newApp(cfg, logOut)
		return a, err
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		theme := flags.theme
		if flags.noColor {
			theme = "mono"
		}
		if theme != "" {
			ui.SetTheme(theme)
		}
		return nil
	}

	root.AddCommand(
		newListCmd(setup),
		newAddCmd(setup),
		newDoneCmd(setup),
		newEditCmd(setup),
		newRemoveCmd(setup),
		newTUICmd(setup),
		newServeCmd(stderr),
		newAuthCmd(),
		newConfigCmd(func() (*config.Config, error) { return loadConfig(flags) }),
	)
	return root, func() { a.Close() }
}

type setupFunc func(cmd *cobra.Command) (*app, error)

func loadConfig(flags rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	if flags.limit >= 0 {
		cfg.Limit = flags.limit
	}
	if flags.theme != "" {
		cfg.Theme = flags.theme
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, usageError{err}
	}
	if flags.theme == "" && !flags.noColor {
		ui.SetTheme(cfg.Theme)
	}
	return cfg, nil
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	logger, closeLog, err := logging.New(logOut, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Prefix: "todo",
	})
	if err != nil {
		return nil, err
	}

	token, err := auth.Token()
	if err != nil {
		logger.Warn("ignoring stored token", "err", err)
	}
	client, err := api.New(cfg.APIURL, api.Options{
		Logger:  logger.WithPrefix("api"),
		Token:   token,
		Timeout: cfg.Timeout.Duration,
	})
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	c, err := cache.New(cfg.CacheSize, cfg.StaleTime.Duration)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	st := store.New()
	svc := syncer.New(client, c, st, syncer.Options{
		Limit:        cfg.Limit,
		OwnerID:      cfg.OwnerID,
		ReconcileIDs: cfg.ReconcileIDs,
		Logger:       logger.WithPrefix("sync"),
	})
	logger.Debug("client ready", "api_url", cfg.APIURL, "config", cfg.Path)
	return &app{cfg: cfg, logger: logger, store: st, svc: svc, closeLog: closeLog}, nil
}
