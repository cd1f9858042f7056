package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/hivscreen/internal/application/exploration"
	"github.com/turtacn/hivscreen/internal/domain/screening"
	"github.com/turtacn/hivscreen/pkg/errors"
	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

// session is a loaded dataset together with the service that loaded it.
type session struct {
	cli   *CLIContext
	svc   exploration.Service
	table *screening.Table
	path  string
}

// openDataset loads the file named by args, or dataset.path from config when
// no argument is given.
func openDataset(cmd *cobra.Command, args []string) (*session, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	path := cliCtx.Config.Dataset.Path
	if len(args) > 0 {
		path = args[0]
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.InvalidParam("dataset path is required").
			WithDetail("pass a file argument or set dataset.path")
	}

	svc, err := cliCtx.Service(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	table, err := svc.Load(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	return &session{cli: cliCtx, svc: svc, table: table, path: path}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// head
// ─────────────────────────────────────────────────────────────────────────────

var headRows int

// NewHeadCmd creates the head command.
func NewHeadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "head [file]",
		Short: "Preview the first rows of a dataset",
		Long: `Load a dataset and print its first rows with every column.

Examples:
  hivscreen head HIV_train.csv
  hivscreen head HIV.csv --schema hiv -n 10 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHead,
	}
	cmd.Flags().IntVarP(&headRows, "rows", "n", 5, "number of rows to show")
	return cmd
}

func runHead(cmd *cobra.Command, args []string) error {
	if headRows < 0 {
		return errors.NewValidationError("rows", "must be >= 0")
	}
	s, err := openDataset(cmd, args)
	if err != nil {
		return err
	}

	records := s.svc.Preview(s.table, headRows)
	res := &headResult{
		Dataset: s.path,
		Total:   s.table.Len(),
		Columns: s.table.Columns(),
		Records: records,
	}
	for _, rec := range records {
		res.rows = append(res.rows, s.table.Row(rec.Row-1))
	}
	return PrintResult(cmd, res)
}

type headResult struct {
	Dataset string             `json:"dataset"`
	Total   int                `json:"total_records"`
	Columns []string           `json:"columns"`
	Records []screening.Record `json:"records"`

	rows [][]string
}

func (r *headResult) TableHeaders() []string { return append([]string{""}, r.Columns...) }

func (r *headResult) TableRows() [][]string {
	out := make([][]string, len(r.rows))
	for i, row := range r.rows {
		out[i] = append([]string{strconv.Itoa(i)}, row...)
	}
	return out
}

func (r *headResult) String() string {
	return FormatTable(r.TableHeaders(), r.TableRows()) +
		fmt.Sprintf("\n[%d of %d rows x %d columns]\n", len(r.rows), r.Total, len(r.Columns))
}

// ─────────────────────────────────────────────────────────────────────────────
// count
// ─────────────────────────────────────────────────────────────────────────────

var (
	countColumn string
	countValue  string
)

// NewCountCmd creates the count command.
func NewCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count [file]",
		Short: "Count records whose column equals a value",
		Long: `Count the records in which --column equals --value.  Numeric spellings
compare numerically, so --value 1 also matches cells written as 1.0.

Examples:
  hivscreen count HIV_train.csv --column Label --value 1
  hivscreen count HIV_train.csv --column "Experimental activity" --value CM`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCount,
	}
	cmd.Flags().StringVar(&countColumn, "column", "", "column to test (default: the schema label column)")
	cmd.Flags().StringVar(&countValue, "value", "", "value to match")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func runCount(cmd *cobra.Command, args []string) error {
	s, err := openDataset(cmd, args)
	if err != nil {
		return err
	}
	column := countColumn
	if column == "" {
		column = s.table.Schema().Label
	}

	n, err := s.svc.Count(cmd.Context(), s.table, column, countValue)
	if err != nil {
		return err
	}
	return PrintResult(cmd, &countResult{Column: column, Value: countValue, Count: n, Total: s.table.Len()})
}

type countResult struct {
	Column string `json:"column"`
	Value  string `json:"value"`
	Count  int    `json:"count"`
	Total  int    `json:"total_records"`
}

func (r *countResult) TableHeaders() []string { return []string{"Column", "Value", "Count", "Total"} }

func (r *countResult) TableRows() [][]string {
	return [][]string{{r.Column, r.Value, strconv.Itoa(r.Count), strconv.Itoa(r.Total)}}
}

func (r *countResult) String() string {
	return fmt.Sprintf("%s == %s: %d of %d\n", r.Column, r.Value, r.Count, r.Total)
}

// ─────────────────────────────────────────────────────────────────────────────
// counts
// ─────────────────────────────────────────────────────────────────────────────

var countsColumn string

// NewCountsCmd creates the counts command.
func NewCountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts [file]",
		Short: "Show each distinct value of a column with its count",
		Long: `Print the value counts of a column, most frequent first.

Examples:
  hivscreen counts HIV_train.csv
  hivscreen counts HIV_train.csv --column "Experimental activity" -o table`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCounts,
	}
	cmd.Flags().StringVar(&countsColumn, "column", "", "column to tally (default: the schema label column)")
	return cmd
}

func runCounts(cmd *cobra.Command, args []string) error {
	s, err := openDataset(cmd, args)
	if err != nil {
		return err
	}
	column := countsColumn
	if column == "" {
		column = s.table.Schema().Label
	}

	counts, err := s.svc.ValueCounts(cmd.Context(), s.table, column)
	if err != nil {
		return err
	}
	return PrintResult(cmd, &countsResult{Column: column, Total: s.table.Len(), Counts: counts})
}

type countsResult struct {
	Column string                 `json:"column"`
	Total  int                    `json:"total_records"`
	Counts []stypes.CategoryCount `json:"counts"`
}

func (r *countsResult) TableHeaders() []string { return []string{r.Column, "Count", "Share"} }

func (r *countsResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Counts))
	for _, c := range r.Counts {
		rows = append(rows, []string{c.Value, strconv.Itoa(c.Count), percent(c.Count, r.Total)})
	}
	return rows
}

func (r *countsResult) String() string { return FormatTable(r.TableHeaders(), r.TableRows()) }

// ─────────────────────────────────────────────────────────────────────────────
// summary
// ─────────────────────────────────────────────────────────────────────────────

// NewSummaryCmd creates the summary command.
func NewSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [file]",
		Short: "Report the class balance of a dataset",
		Long: `Report record totals, the active/inactive split, the imbalance ratio and
the experimental activity histogram.  Rows whose label disagrees with their
collapsed activity are counted.  With cache.enabled the summary is stored in
Redis keyed by file content.

Examples:
  hivscreen summary HIV_train.csv
  hivscreen summary HIV.csv --schema hiv -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSummary,
	}
}

func runSummary(cmd *cobra.Command, args []string) error {
	s, err := openDataset(cmd, args)
	if err != nil {
		return err
	}
	summary, err := s.svc.Summary(cmd.Context(), s.path, s.table)
	if err != nil {
		return err
	}
	return PrintResult(cmd, &summaryResult{Summary: summary})
}

type summaryResult struct {
	stypes.Summary
}

func (r *summaryResult) TableHeaders() []string { return []string{"Field", "Value"} }

func (r *summaryResult) TableRows() [][]string {
	activity := make([]string, len(r.ActivityCounts))
	for i, c := range r.ActivityCounts {
		activity[i] = c.Value + "=" + strconv.Itoa(c.Count)
	}
	imbalance := "n/a"
	if r.ImbalanceRatio > 0 {
		imbalance = strconv.FormatFloat(r.ImbalanceRatio, 'f', 2, 64) + " : 1"
	}
	return [][]string{
		{"Dataset", r.Dataset},
		{"Columns", strings.Join(r.Columns, ", ")},
		{"Records", strconv.Itoa(r.Records)},
		{"Active (1)", fmt.Sprintf("%d (%s)", r.Actives, percent(r.Actives, r.Records))},
		{"Inactive (0)", fmt.Sprintf("%d (%s)", r.Inactives, percent(r.Inactives, r.Records))},
		{"Imbalance", imbalance},
		{"Activity", strings.Join(activity, " ")},
		{"Label mismatches", strconv.Itoa(r.LabelMismatches)},
	}
}

func (r *summaryResult) String() string {
	var sb strings.Builder
	for _, row := range r.TableRows() {
		sb.WriteString(padRight(row[0], 18))
		sb.WriteString(row[1])
		sb.WriteString("\n")
	}
	return sb.String()
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return strconv.FormatFloat(float64(n)*100/float64(total), 'f', 1, 64) + "%"
}

//Personal.AI order the ending
