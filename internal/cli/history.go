package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/kantan/internal/locale"
	"github.com/roach88/kantan/internal/store"
)

// historyTimeLayout formats event dates in text output.
const historyTimeLayout = "2006-01-02 15:04:05"

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	StringID int64
	Language string
	Limit    int
	Offset   int64
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the string change history",
		Long: `Show recorded source and translation changes, newest first.

A --lang filter also shows source changes, so a translation's history reads
alongside the source values it was made from. Pass the last event id of a
page as --offset to get the next one.

Examples:
  kantan history
  kantan history --string 42 --lang de-DE
  kantan history --limit 20 --offset 1337 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.StringID, "string", 0, "only events of this source string id")
	cmd.Flags().StringVarP(&opts.Language, "lang", "l", "", "only events in this language (plus source events)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (default from config)")
	cmd.Flags().Int64Var(&opts.Offset, "offset", 0, "return events with id below this")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	lang := ""
	if opts.Language != "" {
		if lang, err = locale.Canonical(opts.Language); err != nil {
			return s.Formatter.Fail("invalid --lang", err)
		}
	}

	events, err := s.Store.GetHistory(cmd.Context(), store.HistoryQuery{
		SourceStringID:  opts.StringID,
		LanguageCode:    lang,
		HistoryIDOffset: opts.Offset,
		Limit:           opts.Limit,
	})
	if err != nil {
		return s.Formatter.Fail("failed to read history", err)
	}

	return s.Formatter.Success(events, formatHistory(events))
}

func formatHistory(events []store.HistoryEvent) string {
	if len(events) == 0 {
		return "No history found."
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tUSER\tDOCUMENT\tSTRING\tLANG\tEVENT\tVALUE")
	for _, ev := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			ev.ID, ev.EventDate.Format(historyTimeLayout), ev.Username, ev.DocumentName,
			ev.SourceStringID, ev.LanguageCode, ev.EventType, ev.Value)
	}
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}
