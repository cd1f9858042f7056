package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultSchema = "classroom"

	DefaultPlotColumn        = "Label"
	DefaultPlotOutput        = "label_distribution.png"
	DefaultPlotWidth         = 6.0
	DefaultPlotHeight        = 4.5
	DefaultPlotTitle         = "HIV-1 screening class balance"
	DefaultPlotLabelAxis     = "0 = inactive (CI), 1 = active (CA/CM)"
	DefaultPlotYLabel        = "Num of molecules"
	DefaultPlotTerminalWidth = 50

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultMetricsNamespace = "hivscreen"

	DefaultCacheAddr   = "localhost:6379"
	DefaultCachePrefix = "hivscreen:"
	DefaultCacheTTL    = 24 * time.Hour

	DefaultStorageEndpoint = "localhost:9000"
	DefaultStorageRegion   = "us-east-1"
	DefaultStorageBucket   = "hivscreen-artifacts"
	DefaultStoragePrefix   = "charts/"
)

// DefaultActiveClasses are the raw outcomes collapsed to label 1.
var DefaultActiveClasses = []string{"CA", "CM"}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields already set are left unchanged so that explicit configuration wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Dataset ───────────────────────────────────────────────────────────────
	if cfg.Dataset.Schema == "" {
		cfg.Dataset.Schema = DefaultSchema
	}
	if len(cfg.Dataset.ActiveClasses) == 0 {
		cfg.Dataset.ActiveClasses = append([]string(nil), DefaultActiveClasses...)
	}

	// ── Plot ──────────────────────────────────────────────────────────────────
	if cfg.Plot.Column == "" {
		cfg.Plot.Column = DefaultPlotColumn
	}
	if cfg.Plot.Output == "" {
		cfg.Plot.Output = DefaultPlotOutput
	}
	if cfg.Plot.Width == 0 {
		cfg.Plot.Width = DefaultPlotWidth
	}
	if cfg.Plot.Height == 0 {
		cfg.Plot.Height = DefaultPlotHeight
	}
	if cfg.Plot.Title == "" {
		cfg.Plot.Title = DefaultPlotTitle
	}
	if cfg.Plot.YLabel == "" {
		cfg.Plot.YLabel = DefaultPlotYLabel
	}
	if cfg.Plot.TerminalWidth == 0 {
		cfg.Plot.TerminalWidth = DefaultPlotTerminalWidth
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = DefaultCachePrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = DefaultStorageEndpoint
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = DefaultStorageRegion
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = DefaultStorageBucket
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = DefaultStoragePrefix
	}
}

// registerDefaults declares every key on v so that AutomaticEnv overrides are
// visible to Unmarshal even when the config file omits the key.
func registerDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("dataset.path", d.Dataset.Path)
	v.SetDefault("dataset.schema", d.Dataset.Schema)
	v.SetDefault("dataset.columns.smiles", "")
	v.SetDefault("dataset.columns.activity", "")
	v.SetDefault("dataset.columns.label", "")
	v.SetDefault("dataset.delimiter", "")
	v.SetDefault("dataset.active_classes", d.Dataset.ActiveClasses)

	v.SetDefault("plot.column", d.Plot.Column)
	v.SetDefault("plot.output", d.Plot.Output)
	v.SetDefault("plot.format", "")
	v.SetDefault("plot.width", d.Plot.Width)
	v.SetDefault("plot.height", d.Plot.Height)
	v.SetDefault("plot.title", d.Plot.Title)
	v.SetDefault("plot.x_label", "")
	v.SetDefault("plot.y_label", d.Plot.YLabel)
	v.SetDefault("plot.terminal_width", d.Plot.TerminalWidth)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.textfile_path", "")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", d.Cache.Addr)
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", d.Storage.Endpoint)
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.region", d.Storage.Region)
	v.SetDefault("storage.bucket", d.Storage.Bucket)
	v.SetDefault("storage.prefix", d.Storage.Prefix)
}
