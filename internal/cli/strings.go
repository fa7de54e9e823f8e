package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/kantan/internal/locale"
	"github.com/roach88/kantan/internal/store"
)

// StringsOptions holds flags for the strings command.
type StringsOptions struct {
	*RootOptions
	Language   string
	Needing    bool
	Translated bool
	Limit      int
	Offset     int64
}

// StringsResult is the JSON payload of the strings command.
type StringsResult struct {
	Language string         `json:"language"`
	Strings  []store.String `json:"strings"`
	// NextOffset is the --offset for the next page, 0 when this page is short.
	NextOffset int64 `json:"next_offset,omitempty"`
}

// NewStringsCommand creates the strings command.
func NewStringsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StringsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "strings",
		Short: "List strings needing translation, or translated strings",
		Long: `List active source strings for one language, newest first.

--needing lists strings with no translation, or whose translation is older
than the current source value. --translated lists strings whose translation
is up to date, showing the translated value.

Results are paged by string id: pass the last id of a page as --offset to
get the next one.

Examples:
  kantan strings --lang fr --needing
  kantan strings --lang fr --translated --limit 20 --offset 4711`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrings(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Language, "lang", "l", "", "language code (required)")
	_ = cmd.MarkFlagRequired("lang")
	cmd.Flags().BoolVar(&opts.Needing, "needing", false, "strings needing translation")
	cmd.Flags().BoolVar(&opts.Translated, "translated", false, "strings with an up-to-date translation")
	cmd.MarkFlagsMutuallyExclusive("needing", "translated")
	cmd.MarkFlagsOneRequired("needing", "translated")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (default from config)")
	cmd.Flags().Int64Var(&opts.Offset, "offset", 0, "return strings with id below this")

	return cmd
}

func runStrings(opts *StringsOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	lang, err := locale.CanonicalTranslation(opts.Language)
	if err != nil {
		return s.Formatter.Fail("invalid --lang", err)
	}

	page := store.PageOptions{Limit: opts.Limit, IDOffset: opts.Offset}
	var strs []store.String
	if opts.Needing {
		strs, err = s.Store.GetStringsNeedingTranslation(cmd.Context(), lang, page)
	} else {
		strs, err = s.Store.GetTranslatedStrings(cmd.Context(), lang, page)
	}
	if err != nil {
		return s.Formatter.Fail("failed to list strings", err)
	}

	result := StringsResult{Language: lang, Strings: strs}
	if n := len(strs); n > 0 && n >= s.Store.PageLimit(opts.Limit) {
		result.NextOffset = strs[n-1].ID
	}
	return s.Formatter.Success(result, formatStrings(strs))
}

func formatStrings(strs []store.String) string {
	if len(strs) == 0 {
		return "No strings found."
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKEY\tVALUE")
	for _, str := range strs {
		fmt.Fprintf(w, "%d\t%s\t%s\n", str.ID, str.Key, str.Value)
	}
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}
