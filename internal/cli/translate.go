package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/kantan/internal/locale"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	User string
}

// TranslateResult is the JSON payload of the translate command.
type TranslateResult struct {
	StringID int64  `json:"string_id"`
	Language string `json:"language"`
	Value    string `json:"value"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <string-id> <lang> <value>",
		Short: "Set the translation of a string",
		Long: `Set the translation of a source string in one language.

A new or different value is stamped with the current time and recorded in
the string history; setting the current value again changes nothing.

Examples:
  kantan translate 42 fr "Salut" --user alice`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "acting username (defaults to the configured admin)")

	return cmd
}

func runTranslate(opts *TranslateOptions, args []string, cmd *cobra.Command) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid string id", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	lang, err := locale.CanonicalTranslation(args[1])
	if err != nil {
		return s.Formatter.Fail("invalid language", err)
	}

	user, err := s.actingUser(cmd, opts.User)
	if err != nil {
		return err
	}

	if err := s.Store.UpsertTranslation(cmd.Context(), id, lang, args[2], user.ID); err != nil {
		return s.Formatter.Fail("failed to save translation", err)
	}
	slog.Info("translation saved", "string_id", id, "language", lang, "user", user.Username)

	return s.Formatter.Success(
		TranslateResult{StringID: id, Language: lang, Value: args[2]},
		fmt.Sprintf("Saved %s translation of string %d", lang, id),
	)
}
