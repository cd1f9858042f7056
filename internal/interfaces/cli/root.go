package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/hivscreen/internal/application/exploration"
	"github.com/turtacn/hivscreen/internal/config"
	"github.com/turtacn/hivscreen/internal/domain/screening"
	"github.com/turtacn/hivscreen/internal/infrastructure/chart"
	rediscache "github.com/turtacn/hivscreen/internal/infrastructure/database/redis"
	"github.com/turtacn/hivscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hivscreen/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/hivscreen/internal/infrastructure/storage/minio"
	"github.com/turtacn/hivscreen/internal/infrastructure/tabular/csvfile"
	"github.com/turtacn/hivscreen/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool

	Schema      string
	LabelCol    string
	SmilesCol   string
	ActivityCol string
	Delimiter   string
	MetricsFile string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	Collector    prometheus.MetricsCollector
	Metrics      *prometheus.AppMetrics
	OutputFormat string
	Verbose      bool
	RunID        string

	service exploration.Service
	closers []func() error
	closed  bool
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hivscreen",
		Short: "Explore HIV-1 screening datasets of small molecules",
		Long: "hivscreen loads a delimited table of molecule records (SMILES, experimental\n" +
			"activity, binary label), reports class statistics and draws the class\n" +
			"distribution as a count plot.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return nil
			}
			return cliCtx.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./"+config.DefaultFileName+")")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.StringVar(&opts.Schema, "schema", "", "column preset ("+strings.Join(screening.PresetNames(), ", ")+")")
	pf.StringVar(&opts.LabelCol, "label-col", "", "label column name, overrides the preset")
	pf.StringVar(&opts.SmilesCol, "smiles-col", "", "SMILES column name, overrides the preset")
	pf.StringVar(&opts.ActivityCol, "activity-col", "", "experimental activity column name, overrides the preset")
	pf.StringVar(&opts.Delimiter, "delimiter", "", "field delimiter (, ; | tab); sniffed when empty")
	pf.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file at exit")

	cmd.AddCommand(
		NewHeadCmd(),
		NewCountCmd(),
		NewCountsCmd(),
		NewSummaryCmd(),
		NewPlotCmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config, logger and metrics, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.NewValidationError("output", "unsupported output format "+opts.OutputFormat+"; expected text|json|table")
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, path, err := initConfig(cmd, opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "config initialization failed")
	}

	logger, err := initLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: cfg.Metrics.Namespace,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics initialization failed: %w", err)
	}

	runID := uuid.NewString()
	cliCtx := &CLIContext{
		Config:       cfg,
		ConfigPath:   path,
		Logger:       logger.With(logging.String("run_id", runID)),
		Collector:    collector,
		Metrics:      prometheus.NewAppMetrics(collector),
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Verbose:      opts.Verbose,
		RunID:        runID,
	}
	if path != "" {
		cliCtx.Logger.Debug("configuration loaded", logging.String("path", path))
	}

	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, string, error) {
	cfg, path, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return nil, "", err
	}

	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.Dataset.Schema = opts.Schema
	}
	if flags.Changed("label-col") {
		cfg.Dataset.Columns.Label = opts.LabelCol
	}
	if flags.Changed("smiles-col") {
		cfg.Dataset.Columns.Smiles = opts.SmilesCol
	}
	if flags.Changed("activity-col") {
		cfg.Dataset.Columns.Activity = opts.ActivityCol
	}
	if flags.Changed("delimiter") {
		cfg.Dataset.Delimiter = opts.Delimiter
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.TextfilePath = opts.MetricsFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = strings.ToLower(opts.LogLevel)
	}
	if opts.Verbose {
		cfg.Log.Level = logging.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// initLogger creates a logger configured for CLI usage (output to stderr).
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	format := cfg.Log.Format
	if opts.NoColor && format == "console" {
		// The console encoder colours levels unconditionally.
		format = "json"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           format,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// Service returns the exploration service, building it on first use.  out
// receives terminal charts.
func (c *CLIContext) Service(ctx context.Context, out io.Writer) (exploration.Service, error) {
	if c.service != nil {
		return c.service, nil
	}
	svc, err := c.buildService(ctx, out)
	if err != nil {
		return nil, err
	}
	c.service = svc
	return svc, nil
}

func (c *CLIContext) buildService(ctx context.Context, out io.Writer) (exploration.Service, error) {
	cfg := c.Config
	schema, err := screening.ResolveSchema(cfg.Dataset.Schema, screening.Schema{
		Smiles:   cfg.Dataset.Columns.Smiles,
		Activity: cfg.Dataset.Columns.Activity,
		Label:    cfg.Dataset.Columns.Label,
	})
	if err != nil {
		return nil, err
	}
	delim, err := cfg.Dataset.DelimiterRune()
	if err != nil {
		return nil, errors.NewValidationError("delimiter", err.Error())
	}

	deps := exploration.Deps{
		Loader: csvfile.NewLoader(schema, delim, c.Logger.Named("csvfile")),
		Image: chart.NewImageRenderer(chart.ImageOptions{
			Title:    cfg.Plot.Title,
			XLabel:   cfg.Plot.XLabel,
			YLabel:   cfg.Plot.YLabel,
			Width:    cfg.Plot.Width,
			Height:   cfg.Plot.Height,
			Annotate: true,
		}),
		Terminal:   chart.NewTerminalRenderer(out, cfg.Plot.TerminalWidth, cfg.Plot.Title),
		Digest:     csvfile.Digest,
		Metrics:    c.Metrics,
		Logger:     c.Logger,
		Schema:     schema,
		SchemaName: strings.ToLower(cfg.Dataset.Schema),
		ActiveSet:  screening.NewActivitySet(cfg.Dataset.ActiveClasses...),
		RunID:      c.RunID,
	}

	if cfg.Cache.Enabled {
		client, err := rediscache.NewClient(&rediscache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		}, c.Logger.Named("redis"))
		if err != nil {
			c.Logger.Warn("summary cache unavailable, continuing without it", logging.Err(err))
		} else {
			c.closers = append(c.closers, client.Close)
			cache := rediscache.NewRedisCache(client, c.Logger.Named("redis"),
				rediscache.WithPrefix(cfg.Cache.Prefix),
				rediscache.WithDefaultTTL(cfg.Cache.TTL),
			)
			deps.Cache = rediscache.NewSummaryCache(cache, cfg.Cache.TTL)
		}
	}

	if cfg.Storage.Enabled {
		mc, err := minio.NewMinIOClient(ctx, &minio.MinIOConfig{
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UseSSL:          cfg.Storage.UseSSL,
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			Prefix:          cfg.Storage.Prefix,
		}, c.Logger.Named("minio"))
		if err != nil {
			c.Logger.Warn("artifact store unavailable, uploads are disabled", logging.Err(err))
		} else {
			deps.Publisher = minio.NewArtifactStore(mc, c.Logger.Named("minio"))
		}
	}

	return exploration.NewService(deps)
}

// Close releases connections, writes the metrics textfile when configured and
// flushes the logger.  It is safe to call more than once.
func (c *CLIContext) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var firstErr error
	for _, fn := range c.closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if path := c.Config.Metrics.TextfilePath; path != "" && c.Collector != nil {
		if err := c.Collector.WriteTextfile(path); err != nil {
			c.Logger.Error("failed to write metrics textfile", logging.String("path", path), logging.Err(err))
			if firstErr == nil {
				firstErr = errors.Wrap(err, errors.ErrCodeInternal, "failed to write metrics textfile").WithDetail("path=" + path)
			}
		}
	}
	// Sync on a terminal stderr returns EINVAL on Linux.
	_ = c.Logger.Sync()
	return firstErr
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.NewValidationError("context", "command context is nil")
	}

	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.NewValidationError("context", "CLIContext not found in command context")
	}

	return cliCtx, nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()

	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		if cmd == nil {
			cmd = rootCmd
		}
		if cliCtx, cerr := GetCLIContext(cmd); cerr == nil {
			_ = cliCtx.Close()
		}
		PrintError(cmd, err)
		return err
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Output helpers
// ─────────────────────────────────────────────────────────────────────────────

// tableProvider is implemented by results that can render as rows.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printText outputs data as a simple string representation to stdout.
func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprint(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// printTable renders a tableProvider as a bordered table, otherwise falls
// back to text.
func printTable(cmd *cobra.Command, data interface{}) error {
	tp, ok := data.(tableProvider)
	if !ok {
		return printText(cmd, data)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header(tp.TableHeaders())
	for _, row := range tp.TableRows() {
		if err := table.Append(row); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to build table")
		}
	}
	if err := table.Render(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to render table")
	}
	return nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("OK:"), msg)
}

// FormatTable renders headers and rows as an aligned plain-text table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = displayWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if w := displayWidth(row[i]); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			if i == len(headers)-1 {
				sb.WriteString(val)
			} else {
				sb.WriteString(padRight(val, colWidths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	if w := displayWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func displayWidth(s string) int { return len([]rune(s)) }

//Personal.AI order the ending
