package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kantan/internal/account"
	"github.com/roach88/kantan/internal/config"
	"github.com/roach88/kantan/internal/store"
)

// session is the per-command state shared by every store-backed command.
type session struct {
	Config    config.Config
	Store     *store.Store
	Accounts  *account.Service
	Formatter *OutputFormatter
}

// accountOptions lets tests swap the account service configuration
// (cheap bcrypt cost, predictable keys).
var accountOptions []account.Option

// openSession configures logging, loads config and opens the database.
// Callers must defer s.Close().
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	setupLogging(opts.Verbose, cmd.ErrOrStderr())

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	conf, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		conf.DB.File = opts.Database
	}

	slog.Info("opening database", "path", conf.DB.File)
	st, err := store.Open(conf.DB.File, store.WithPageLimits(conf.Query.DefaultLimit, conf.Query.MaxLimit))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	slog.Info("database ready")

	return &session{
		Config:    conf,
		Store:     st,
		Accounts:  account.New(st, accountOptions...),
		Formatter: formatter,
	}, nil
}

// Close closes the database, logging any error.
func (s *session) Close() {
	if err := s.Store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// setupLogging configures the default slog logger. Logs go to w so they
// never mix with command output.
func setupLogging(verbose bool, w io.Writer) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// actingUser resolves the --user flag, defaulting to the configured admin.
func (s *session) actingUser(cmd *cobra.Command, username string) (store.User, error) {
	if username == "" {
		username = s.Config.Admin.Username
	}
	if username == "" {
		return store.User{}, s.Formatter.Fail("no acting user", NewExitError(ExitCommandError, "--user is required"))
	}
	u, err := s.Store.GetUserByUsername(cmd.Context(), username)
	if err != nil {
		return store.User{}, s.Formatter.Fail("unknown acting user", err)
	}
	return u, nil
}
