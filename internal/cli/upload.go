package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kantan/internal/sourcefile"
)

// UploadOptions holds flags for the upload command.
type UploadOptions struct {
	*RootOptions
	User string
}

// UploadResult is the JSON payload of the upload command.
type UploadResult struct {
	Document string `json:"document"`
	Strings  int    `json:"strings"`
}

// NewUploadCommand creates the upload command.
func NewUploadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UploadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "upload <document> <source-file>",
		Short: "Replace a document's source strings from a file",
		Long: `Replace the complete, ordered string set of a document from a JSON or YAML
source file. The document is created if it does not exist.

Keys missing from the file are soft-deleted; keys that come back are
restored with their history. Every new or changed value is recorded in the
string history as a change by --user.

Source file format:
  {
    "greeting": "Hi",
    "farewell": {"string": "Bye", "Comment": "shown on logout"}
  }

Examples:
  kantan upload app ./strings/en.json --user admin
  kantan upload web ./web.yaml --user admin --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "acting username (defaults to the configured admin)")

	return cmd
}

func runUpload(opts *UploadOptions, document, path string, cmd *cobra.Command) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open source file", err)
	}
	defer f.Close()

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := sourcefile.Decode(f)
	if err != nil {
		return s.Formatter.Fail("failed to read source file", err)
	}
	s.Formatter.VerboseLog("Decoded %d strings from %s", len(entries), path)

	user, err := s.actingUser(cmd, opts.User)
	if err != nil {
		return err
	}

	if err := s.Store.ReplaceSourceStrings(cmd.Context(), user.ID, document, entries); err != nil {
		return s.Formatter.Fail("failed to upload strings", err)
	}
	slog.Info("source strings replaced", "document", document, "strings", len(entries), "user", user.Username)

	return s.Formatter.Success(
		UploadResult{Document: document, Strings: len(entries)},
		fmt.Sprintf("Uploaded %d strings to %s", len(entries), document),
	)
}
