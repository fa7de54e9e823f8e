package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kantan/internal/account"
	"github.com/roach88/kantan/internal/store"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users, their languages and credentials",
	}

	cmd.AddCommand(newUserCreateCommand(rootOpts))
	cmd.AddCommand(newUserListCommand(rootOpts))
	cmd.AddCommand(newUserLanguagesCommand(rootOpts))
	cmd.AddCommand(newUserRotateKeyCommand(rootOpts))
	cmd.AddCommand(newUserPasswordCommand(rootOpts))
	cmd.AddCommand(newUserLoginCommand(rootOpts))

	return cmd
}

func newUserCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		password  string
		role      string
		languages []string
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user",
		Long: `Create a user with a password, a role and the languages they translate.
The new user's API key is printed.

Examples:
  kantan user create alice --password s3cret --lang fr,de-DE
  kantan user create root --password s3cret --role admin`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.Accounts.CreateUser(cmd.Context(), account.NewAccount{
				Username:      args[0],
				Password:      password,
				Role:          store.Role(role),
				LanguageCodes: languages,
			})
			if err != nil {
				return s.Formatter.Fail("failed to create user", err)
			}
			slog.Info("user created", "username", u.Username, "role", u.Role)

			return s.Formatter.Success(u, formatUser(u))
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (required)")
	_ = cmd.MarkFlagRequired("password")
	cmd.Flags().StringVar(&role, "role", string(store.RoleTranslator), "admin|translator")
	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "language codes, comma separated")

	return cmd
}

func newUserListCommand(rootOpts *RootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List users",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			users, err := s.Store.ListUsers(cmd.Context(), store.Role(role))
			if err != nil {
				return s.Formatter.Fail("failed to list users", err)
			}

			lines := make([]string, len(users))
			for i, u := range users {
				lines[i] = fmt.Sprintf("%s (%s): %s", u.Username, u.Role, languageList(u.LanguageCodes))
			}
			text := strings.Join(lines, "\n")
			if len(users) == 0 {
				text = "No users."
			}
			return s.Formatter.Success(users, text)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "only users with this role")

	return cmd
}

func newUserLanguagesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "languages <username> [lang...]",
		Short: "Replace the languages a user translates",
		Long: `Replace the language list of a user. With no languages the list is cleared.

Example:
  kantan user languages alice fr de-DE`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.Accounts.SetLanguages(cmd.Context(), args[0], args[1:])
			if err != nil {
				return s.Formatter.Fail("failed to update languages", err)
			}
			slog.Info("user languages updated", "username", u.Username, "languages", u.LanguageCodes)

			return s.Formatter.Success(u, formatUser(u))
		},
	}
}

func newUserRotateKeyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rotate-key <username>",
		Short:         "Issue a new API key, invalidating the old one",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.Accounts.RotateAPIKey(cmd.Context(), args[0])
			if err != nil {
				return s.Formatter.Fail("failed to rotate api key", err)
			}
			slog.Info("api key rotated", "username", u.Username)

			return s.Formatter.Success(u, formatUser(u))
		},
	}
}

func newUserPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:           "password <username>",
		Short:         "Change a user's password",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.Accounts.ChangePassword(cmd.Context(), args[0], password)
			if err != nil {
				return s.Formatter.Fail("failed to change password", err)
			}
			slog.Info("password changed", "username", u.Username)

			return s.Formatter.Success(map[string]string{"username": u.Username}, fmt.Sprintf("Password changed for %s", u.Username))
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "new password (required)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newUserLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Check a password and print the user's API key",
		Long: `Check a username and password and print the user's API key, for use by
tools that authenticate with keys.

Example:
  kantan user login alice --password s3cret`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.Accounts.ValidateLogin(cmd.Context(), args[0], password)
			if err != nil {
				return s.Formatter.Fail("login failed", err)
			}

			return s.Formatter.Success(map[string]string{"username": u.Username, "api_key": u.APIKey}, u.APIKey)
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (required)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func formatUser(u store.User) string {
	return fmt.Sprintf("%s (%s)\n  languages: %s\n  api key:   %s", u.Username, u.Role, languageList(u.LanguageCodes), u.APIKey)
}

func languageList(codes []string) string {
	if len(codes) == 0 {
		return "none"
	}
	return strings.Join(codes, ", ")
}
