package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// InitResult is the JSON payload of the init command.
type InitResult struct {
	Database     string `json:"database"`
	AdminCreated bool   `json:"admin_created"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and the first admin user",
		Long: `Create the database (if needed), apply the schema and make sure an admin
user exists.

When no admin exists yet, one is created from [admin] in the config file or
from the ADMIN_USERNAME and ADMIN_PASSWORD environment variables.

Examples:
  ADMIN_USERNAME=root ADMIN_PASSWORD=secret kantan init --db ./kantan.db
  kantan init --config ./kantan.toml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	created, err := s.Accounts.EnsureAdmin(cmd.Context(), s.Config.Admin)
	if err != nil {
		return s.Formatter.Fail("failed to initialize admin user", err)
	}
	if created {
		slog.Info("admin user created", "username", s.Config.Admin.Username)
	}

	text := fmt.Sprintf("Database ready: %s", s.Config.DB.File)
	if created {
		text += fmt.Sprintf("\nCreated admin user %q", s.Config.Admin.Username)
	}
	return s.Formatter.Success(InitResult{Database: s.Config.DB.File, AdminCreated: created}, text)
}
