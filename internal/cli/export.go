package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kantan/internal/locale"
	"github.com/roach88/kantan/internal/sourcefile"
	"github.com/roach88/kantan/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Language string
	Output   string
	Encoding string
}

// ExportResult is the JSON payload of the export command when writing a file.
type ExportResult struct {
	Document string `json:"document"`
	Language string `json:"language"`
	Strings  int    `json:"strings"`
	Output   string `json:"output"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <document>",
		Short: "Write a document's strings in one language",
		Long: `Write the strings of a document as a key to value object, in upload order.

With --lang source (the default) the source values are written. With a
language code only strings translated into that language are written; stale
translations are included.

Without --output the file content goes to stdout.

Examples:
  kantan export app
  kantan export app --lang de-DE --output ./strings/de.json
  kantan export app --lang fr --encoding yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Language, "lang", "l", store.SourceLanguage, "language code, or source")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "", "json|yaml (default from the output extension, else json)")

	return cmd
}

func runExport(opts *ExportOptions, document string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	lang, err := locale.Canonical(opts.Language)
	if err != nil {
		return s.Formatter.Fail("invalid --lang", err)
	}

	enc := sourcefile.Encoding(opts.Encoding)
	if enc == "" {
		enc = sourcefile.EncodingForPath(opts.Output)
	}

	strs, err := s.Store.GetDocumentStrings(cmd.Context(), document, lang)
	if err != nil {
		return s.Formatter.Fail("failed to read document", err)
	}

	if opts.Output == "" {
		return writeExport(cmd.OutOrStdout(), strs, enc)
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	if err := writeExport(f, strs, enc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output file", err)
	}
	slog.Info("document exported", "document", document, "language", lang, "strings", len(strs), "output", opts.Output)

	return s.Formatter.Success(
		ExportResult{Document: document, Language: lang, Strings: len(strs), Output: opts.Output},
		fmt.Sprintf("Exported %d %s strings of %s to %s", len(strs), lang, document, opts.Output),
	)
}

func writeExport(w io.Writer, strs []store.DocumentString, enc sourcefile.Encoding) error {
	if err := sourcefile.Encode(w, strs, enc); err != nil {
		return WrapExitError(ExitCommandError, "failed to encode strings", err)
	}
	return nil
}
