package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kantan/internal/store"
)

// DocumentSummary is one document as listed by `documents list`, with the
// language codes assigned to any user.
type DocumentSummary struct {
	Name          string   `json:"name"`
	LanguageCodes []string `json:"language_codes"`
}

// NewDocumentsCommand creates the documents command group.
func NewDocumentsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List, rename and delete documents",
	}

	cmd.AddCommand(newDocumentsListCommand(rootOpts))
	cmd.AddCommand(newDocumentsMoveCommand(rootOpts))
	cmd.AddCommand(newDocumentsDeleteCommand(rootOpts))

	return cmd
}

func newDocumentsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List documents",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			docs, err := s.Store.ListDocuments(cmd.Context())
			if err != nil {
				return s.Formatter.Fail("failed to list documents", err)
			}
			codes, err := s.Store.ListLanguageCodes(cmd.Context())
			if err != nil {
				return s.Formatter.Fail("failed to list language codes", err)
			}

			return s.Formatter.Success(summarizeDocuments(docs, codes), formatDocuments(docs, codes))
		},
	}
}

func newDocumentsMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Rename a document",
		Long: `Rename a document. Strings, translations and history are kept; history
shows the new name.

Example:
  kantan documents move app mobile-app`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Store.MoveDocument(cmd.Context(), args[0], args[1]); err != nil {
				return s.Formatter.Fail("failed to move document", err)
			}
			slog.Info("document moved", "from", args[0], "to", args[1])

			return s.Formatter.Success(
				map[string]string{"from": args[0], "to": args[1]},
				fmt.Sprintf("Moved %s to %s", args[0], args[1]),
			)
		},
	}
}

func newDocumentsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a document and everything recorded for it",
		Long: `Delete a document with its strings, translations and history. This cannot
be undone; uploading the same name later starts a new document.

Example:
  kantan documents delete old-app`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Store.DeleteDocument(cmd.Context(), args[0]); err != nil {
				return s.Formatter.Fail("failed to delete document", err)
			}
			slog.Info("document deleted", "name", args[0])

			return s.Formatter.Success(map[string]string{"deleted": args[0]}, fmt.Sprintf("Deleted %s", args[0]))
		},
	}
}

func summarizeDocuments(docs []store.Document, codes []string) []DocumentSummary {
	out := make([]DocumentSummary, len(docs))
	for i, d := range docs {
		out[i] = DocumentSummary{Name: d.Name, LanguageCodes: codes}
	}
	return out
}

func formatDocuments(docs []store.Document, codes []string) string {
	if len(docs) == 0 {
		return "No documents."
	}

	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.Name)
		b.WriteByte('\n')
	}
	if len(codes) > 0 {
		fmt.Fprintf(&b, "Languages: %s", strings.Join(codes, ", "))
	} else {
		b.WriteString("Languages: none")
	}
	return b.String()
}
