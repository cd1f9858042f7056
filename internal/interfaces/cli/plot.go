package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/hivscreen/internal/application/exploration"
	"github.com/turtacn/hivscreen/internal/config"
	"github.com/turtacn/hivscreen/internal/domain/screening"
	"github.com/turtacn/hivscreen/internal/infrastructure/chart"
	"github.com/turtacn/hivscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hivscreen/internal/infrastructure/watch"
	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

var (
	plotColumn   string
	plotOutput   string
	plotFormat   string
	plotTerminal bool
	plotUpload   bool
	plotWatch    bool
)

// NewPlotCmd creates the plot command.
func NewPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [file]",
		Short: "Draw the count plot of a column",
		Long: `Draw one bar per distinct value of a column, each as tall as the number of
records holding that value.  The chart is written as PNG or SVG, or drawn in
the terminal with --terminal.

With --upload the image is published to the configured object store.  With
--watch the chart is redrawn every time the dataset file changes, until the
command is interrupted.

Examples:
  hivscreen plot HIV_train.csv
  hivscreen plot HIV_train.csv --out balance.svg
  hivscreen plot HIV_train.csv --terminal
  hivscreen plot HIV.csv --schema hiv --column HIV_active --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPlot,
	}

	cmd.Flags().StringVar(&plotColumn, "column", "", "column to plot (default: plot.column, then the schema label column)")
	cmd.Flags().StringVar(&plotOutput, "out", "", "image path (default: plot.output)")
	cmd.Flags().StringVar(&plotFormat, "format", "", "image format: png or svg (default: from --out extension)")
	cmd.Flags().BoolVar(&plotTerminal, "terminal", false, "draw the chart in the terminal instead of writing an image")
	cmd.Flags().BoolVar(&plotUpload, "upload", false, "upload the image to object storage")
	cmd.Flags().BoolVar(&plotWatch, "watch", false, "redraw whenever the dataset changes")
	return cmd
}

func runPlot(cmd *cobra.Command, args []string) error {
	s, err := openDataset(cmd, args)
	if err != nil {
		return err
	}

	column, opts := plotTarget(s.cli.Config, s.table)
	if err := s.plotOnce(cmd.Context(), cmd, column, opts); err != nil {
		return err
	}
	if !plotWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var current atomic.Pointer[config.Config]
	current.Store(s.cli.Config)
	if s.cli.ConfigPath != "" {
		logger := s.cli.Logger.Named("config")
		err := config.Watch(s.cli.ConfigPath, func(cfg *config.Config) {
			current.Store(cfg)
			logger.Info("configuration reloaded, plot settings apply on the next redraw",
				logging.String("path", s.cli.ConfigPath))
		}, func(err error) {
			logger.Warn("ignoring invalid configuration change", logging.Err(err))
		})
		if err != nil {
			logger.Warn("configuration will not be reloaded", logging.Err(err))
		}
	}

	w := watch.NewFileWatcher(s.path, 0, s.cli.Logger.Named("watch"))
	return w.Run(ctx, func(ctx context.Context) error {
		table, err := s.svc.Load(ctx, s.path)
		if err != nil {
			return err
		}
		s.table = table
		column, opts := plotTarget(current.Load(), table)
		return s.plotOnce(ctx, cmd, column, opts)
	})
}

// plotTarget resolves the column, output and style for one render.  Flags
// win over cfg; a configured column the table lacks falls back to the label
// column.
func plotTarget(cfg *config.Config, table *screening.Table) (string, exploration.PlotOptions) {
	opts := exploration.PlotOptions{
		Output:   firstNonEmpty(plotOutput, cfg.Plot.Output),
		Format:   firstNonEmpty(plotFormat, cfg.Plot.Format),
		Terminal: plotTerminal,
		Upload:   plotUpload,
	}
	if plotOutput == "" && opts.Format != "" {
		// Keep the configured name but follow the requested format.
		opts.Output = strings.TrimSuffix(opts.Output, filepath.Ext(opts.Output)) + "." + strings.ToLower(opts.Format)
	}

	column := plotColumn
	if column == "" {
		column = cfg.Plot.Column
		if !table.HasColumn(column) {
			column = table.Schema().Label
		}
	}
	opts.Style = chart.Style{
		Title:         cfg.Plot.Title,
		XLabel:        cfg.Plot.XLabelFor(column, table.Schema().Label),
		YLabel:        cfg.Plot.YLabel,
		Width:         cfg.Plot.Width,
		Height:        cfg.Plot.Height,
		TerminalWidth: cfg.Plot.TerminalWidth,
	}
	return column, opts
}

// plotOnce renders the current table and prints the result.  A terminal
// chart is the output itself.
func (s *session) plotOnce(ctx context.Context, cmd *cobra.Command, column string, opts exploration.PlotOptions) error {
	res, err := s.svc.Plot(ctx, s.table, column, opts)
	if err != nil {
		return err
	}
	if opts.Terminal {
		return nil
	}
	if res.ObjectKey != "" {
		s.cli.Logger.Info("chart uploaded", logging.String("object_key", res.ObjectKey))
	}
	return PrintResult(cmd, &plotResult{PlotResult: *res})
}

type plotResult struct {
	stypes.PlotResult
}

func (r *plotResult) TableHeaders() []string { return []string{r.Column, "Count"} }

func (r *plotResult) TableRows() [][]string {
	rows := make([][]string, len(r.Bars))
	for i, b := range r.Bars {
		rows[i] = []string{b.Value, strconv.Itoa(b.Count)}
	}
	return rows
}

func (r *plotResult) String() string {
	bars := make([]string, len(r.Bars))
	for i, b := range r.Bars {
		bars[i] = fmt.Sprintf("%s=%d", b.Value, b.Count)
	}
	out := fmt.Sprintf("wrote %s (%s, %d bars: %s)\n", r.Path, r.Format, len(r.Bars), strings.Join(bars, " "))
	if r.ObjectKey != "" {
		out += "uploaded " + r.ObjectKey + "\n"
	}
	if r.URL != "" {
		out += "download " + r.URL + "\n"
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

//Personal.AI order the ending
