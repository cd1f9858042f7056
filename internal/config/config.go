// Package config defines the configuration structures for hivscreen.  No I/O
// or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// DatasetConfig locates the screening table and names its columns.
type DatasetConfig struct {
	// Path is the default dataset when a command is given no file argument.
	Path string `mapstructure:"path" yaml:"path"`

	// Schema selects a column preset: "classroom" (Smiles / Experimental
	// activity / Label) or "hiv" (smiles / activity / HIV_active).
	Schema string `mapstructure:"schema" yaml:"schema"`

	// Columns overrides individual preset column names.
	Columns ColumnsConfig `mapstructure:"columns" yaml:"columns"`

	// Delimiter is one of "", ",", ";", "|", "\t" or "tab".  Empty sniffs the
	// delimiter from the header line.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// ActiveClasses lists the raw outcomes that collapse to label 1.
	ActiveClasses []string `mapstructure:"active_classes" yaml:"active_classes"`
}

// ColumnsConfig holds per-column overrides; empty fields keep the preset name.
type ColumnsConfig struct {
	Smiles   string `mapstructure:"smiles" yaml:"smiles,omitempty"`
	Activity string `mapstructure:"activity" yaml:"activity,omitempty"`
	Label    string `mapstructure:"label" yaml:"label,omitempty"`
}

// DelimiterRune resolves Delimiter to a rune; 0 means sniff.
func (d DatasetConfig) DelimiterRune() (rune, error) {
	switch d.Delimiter {
	case "":
		return 0, nil
	case ",", ";", "|":
		return rune(d.Delimiter[0]), nil
	case "\t", "tab", `\t`:
		return '\t', nil
	default:
		return 0, fmt.Errorf("config: dataset.delimiter %q is invalid; expected , ; | or tab", d.Delimiter)
	}
}

// PlotConfig controls the count plot.
type PlotConfig struct {
	Column string `mapstructure:"column" yaml:"column"`
	Output string `mapstructure:"output" yaml:"output"`
	// Format is "png" or "svg"; empty derives it from Output's extension.
	Format string  `mapstructure:"format" yaml:"format"`
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
	Title  string  `mapstructure:"title" yaml:"title"`
	// XLabel names the x axis.  Empty uses DefaultPlotLabelAxis for the label
	// column and the column name otherwise.
	XLabel string `mapstructure:"x_label" yaml:"x_label"`
	YLabel string `mapstructure:"y_label" yaml:"y_label"`
	// TerminalWidth is the longest bar, in cells, of the terminal renderer.
	TerminalWidth int `mapstructure:"terminal_width" yaml:"terminal_width"`
}

// XLabelFor returns the x axis title for a plot of column, where
// labelColumn is the schema's binary label column.
func (p PlotConfig) XLabelFor(column, labelColumn string) string {
	switch {
	case p.XLabel != "":
		return p.XLabel
	case column == labelColumn:
		return DefaultPlotLabelAxis
	default:
		return column
	}
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
	// TextfilePath, when set, receives all metrics in text exposition format
	// when the command exits.
	TextfilePath string `mapstructure:"textfile_path" yaml:"textfile_path"`
}

// CacheConfig holds the Redis summary cache settings.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// StorageConfig holds the MinIO artifact store settings.
type StorageConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	Region          string `mapstructure:"region" yaml:"region"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
}

// Config is the root configuration object.
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`
	Plot    PlotConfig    `mapstructure:"plot" yaml:"plot"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// Validate checks cfg for values that would make a run fail later.  It
// returns the first problem found.
func (c *Config) Validate() error {
	if _, err := c.Dataset.DelimiterRune(); err != nil {
		return err
	}
	if c.Dataset.Schema == "" {
		return fmt.Errorf("config: dataset.schema must not be empty")
	}

	// Plot
	switch strings.ToLower(c.Plot.Format) {
	case "", "png", "svg":
	default:
		return fmt.Errorf("config: plot.format %q is invalid; expected png|svg", c.Plot.Format)
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("config: plot.width and plot.height must be > 0, got %gx%g", c.Plot.Width, c.Plot.Height)
	}
	if c.Plot.TerminalWidth <= 0 {
		return fmt.Errorf("config: plot.terminal_width must be > 0, got %d", c.Plot.TerminalWidth)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace must not be empty")
	}

	// Cache
	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("config: cache.addr is required when cache is enabled")
		}
		if c.Cache.DB < 0 {
			return fmt.Errorf("config: cache.db must be ≥ 0, got %d", c.Cache.DB)
		}
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config: cache.ttl must be ≥ 0, got %s", c.Cache.TTL)
	}

	// Storage
	if c.Storage.Enabled {
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("config: storage.endpoint is required when storage is enabled")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("config: storage.bucket is required when storage is enabled")
		}
	}
	return nil
}

//Personal.AI order the ending
