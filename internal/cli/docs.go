package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bddkit/internal/docs"
	"github.com/roach88/bddkit/internal/scenario"
)

// Error codes for structured CLI output.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeStoreFailed  = "E002" // Doc store could not be opened or queried
	ErrCodeInvalidFlag  = "E003" // Invalid flag value
	ErrCodeJournalRead  = "E004" // Journal file missing or malformed
	ErrCodeNotFound     = "E005" // Doc not found
	ErrCodeNoJournalArg = "E006" // No journal file given or configured
)

// DocsOptions holds flags for the docs subcommands.
type DocsOptions struct {
	*RootOptions
	Status  string // list filter: passed | failed
	Feature string // list filter
}

// NewDocsCommand creates the docs command group.
func NewDocsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Browse published scenario docs",
		Long: `Browse the scenario docs held in the SQLite doc store.

Examples:
  bddkit docs import ./docs.jsonl
  bddkit docs list --status failed
  bddkit docs show 0192f0c4-6d1e-7c3a-9a51-3c1b2f0d8e77
  bddkit docs summary --format json`,
	}

	cmd.AddCommand(newDocsListCommand(opts))
	cmd.AddCommand(newDocsShowCommand(opts))
	cmd.AddCommand(newDocsSummaryCommand(opts))
	cmd.AddCommand(newDocsImportCommand(opts))

	return cmd
}

func newDocsListCommand(opts *DocsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List scenario docs in publication order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "only docs with this status (passed|failed)")
	cmd.Flags().StringVar(&opts.Feature, "feature", "", "only docs of this feature")

	return cmd
}

func newDocsShowCommand(opts *DocsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one scenario doc",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsShow(opts, args[0], cmd)
		},
	}
}

func newDocsSummaryCommand(opts *DocsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count scenario docs per status",
		Long: `Count scenario docs per status.

Exit codes:
  0 - No failed scenario docs
  1 - One or more failed scenario docs
  2 - Command error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsSummary(opts, cmd)
		},
	}
}

func newDocsImportCommand(opts *DocsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [journal-file]",
		Short: "Import a doc journal into the store",
		Long: `Import the records of a doc journal into the store.

Records already present (same ID) are skipped, so importing the same
journal twice is harmless. Without an argument the journal named in the
config file is used.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.Journal
			if len(args) == 1 {
				path = args[0]
			}
			return runDocsImport(opts, path, cmd)
		},
	}
}

// DocList is the result of "docs list".
type DocList struct {
	Docs  []docs.Record `json:"docs" yaml:"docs"`
	Count int           `json:"count" yaml:"count"`
}

// RenderText implements TextRenderer.
func (l DocList) RenderText(w io.Writer) error {
	if l.Count == 0 {
		_, err := fmt.Fprintln(w, "No scenario docs found.")
		return err
	}
	for _, rec := range l.Docs {
		if _, err := fmt.Fprintf(w, "%-6s  %s  %s\n", rec.Status, rec.ID, qualifiedTitle(rec.Scenario)); err != nil {
			return err
		}
	}
	return nil
}

// DocDetail is the result of "docs show".
type DocDetail struct {
	docs.Record `yaml:",inline"`
}

// RenderText implements TextRenderer.
func (d DocDetail) RenderText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:       %s\n", d.ID)
	fmt.Fprintf(&b, "Status:   %s\n", d.Status)
	if d.Scenario.Feature != "" {
		fmt.Fprintf(&b, "Feature:  %s\n", d.Scenario.Feature)
	}
	fmt.Fprintf(&b, "Scenario: %s\n", d.Scenario.Title)
	for _, st := range d.Scenario.Steps {
		fmt.Fprintf(&b, "  %s\n", st)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// SummaryResult is the result of "docs summary".
type SummaryResult struct {
	docs.Summary `yaml:",inline"`
}

// RenderText implements TextRenderer.
func (s SummaryResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Passed: %d\nFailed: %d\nTotal:  %d\n", s.Passed, s.Failed, s.Total)
	return err
}

// ImportResult is the result of "docs import".
type ImportResult struct {
	Journal  string `json:"journal" yaml:"journal"`
	Read     int    `json:"read" yaml:"read"`
	Imported int    `json:"imported" yaml:"imported"`
	Skipped  int    `json:"skipped" yaml:"skipped"`
}

// RenderText implements TextRenderer.
func (r ImportResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Imported %d of %d record(s) from %s (%d already present)\n",
		r.Imported, r.Read, r.Journal, r.Skipped)
	return err
}

func runDocsList(opts *DocsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	filter := docs.Filter{Feature: opts.Feature}
	if opts.Status != "" {
		status, err := docs.ParseStatus(opts.Status)
		if err != nil {
			return outputDocsError(formatter, ErrCodeInvalidFlag, err.Error(), nil)
		}
		filter.Status = &status
	}

	st, err := opts.openStore()
	if err != nil {
		return outputDocsError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}
	defer st.Close()

	records, err := st.List(cmd.Context(), filter)
	if err != nil {
		return outputDocsError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}
	opts.logger().Debug("listed docs", "count", len(records), "feature", opts.Feature, "status", opts.Status)

	return formatter.Success(DocList{Docs: records, Count: len(records)})
}

func runDocsShow(opts *DocsOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return outputDocsError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}
	defer st.Close()

	rec, err := st.Get(cmd.Context(), id)
	if errors.Is(err, docs.ErrNotFound) {
		return outputDocsError(formatter, ErrCodeNotFound, err.Error(), map[string]string{"id": id})
	}
	if err != nil {
		return outputDocsError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}

	return formatter.Success(DocDetail{Record: rec})
}

func runDocsSummary(opts *DocsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return outputDocsError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}
	defer st.Close()

	sum, err := st.Summary(cmd.Context())
	if err != nil {
		return outputDocsError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}

	if err := formatter.Success(SummaryResult{Summary: sum}); err != nil {
		return err
	}
	if sum.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario doc(s) failed", sum.Failed, sum.Total))
	}
	return nil
}

func runDocsImport(opts *DocsOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.logger()

	if path == "" {
		return outputDocsError(formatter, ErrCodeNoJournalArg,
			"no journal file given and none configured", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return outputDocsError(formatter, ErrCodeJournalRead, fmt.Sprintf("failed to open journal: %v", err), nil)
	}
	defer f.Close()

	records, err := docs.ReadJournal(f)
	if err != nil {
		return outputDocsError(formatter, ErrCodeJournalRead, err.Error(), map[string]string{"journal": path})
	}

	st, err := opts.openStore()
	if err != nil {
		return outputDocsError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}
	defer st.Close()

	result := ImportResult{Journal: path, Read: len(records)}
	for _, rec := range records {
		inserted, err := st.Import(cmd.Context(), rec)
		if err != nil {
			return outputDocsError(formatter, ErrCodeStoreFailed,
				fmt.Sprintf("failed to import %s: %v", rec.ID, err), nil)
		}
		if inserted {
			result.Imported++
			log.Debug("imported doc", "id", rec.ID, "scenario", rec.Scenario.Title)
		} else {
			result.Skipped++
			formatter.VerboseLog("skipped %s: already present", rec.ID)
		}
	}
	log.Info("journal imported", "journal", path, "imported", result.Imported, "skipped", result.Skipped)

	return formatter.Success(result)
}

// openStore opens the doc store named by --db or the config.
func (o *DocsOptions) openStore() (*docs.Store, error) {
	st, err := docs.OpenStore(o.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open doc store %s: %w", o.Database, err)
	}
	return st, nil
}

// outputDocsError reports an error in the configured format and returns the
// matching exit error.
func outputDocsError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func qualifiedTitle(sc scenario.Scenario) string {
	if sc.Feature == "" {
		return sc.Title
	}
	return sc.Feature + " / " + sc.Title
}
