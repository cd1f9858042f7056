// Package exploration provides the application service behind the hivscreen
// commands: load a screening dataset, report on it and plot its class balance.
package exploration

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/hivscreen/internal/domain/screening"
	"github.com/turtacn/hivscreen/internal/infrastructure/chart"
	"github.com/turtacn/hivscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hivscreen/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/hivscreen/pkg/errors"
	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

// DatasetLoader reads a dataset file into a Table.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*screening.Table, error)
}

// SummaryStore serves summaries by key.  On a miss it calls compute and
// stores the result; hit reports whether compute was skipped.
type SummaryStore interface {
	GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (stypes.Summary, error)) (summary stypes.Summary, hit bool, err error)
}

// ArtifactPublisher uploads a rendered chart and returns its object key and
// a download URL, which may be empty.
type ArtifactPublisher interface {
	Publish(ctx context.Context, localPath, runID string, tags map[string]string) (key, url string, err error)
}

// DigestFunc fingerprints a dataset file.
type DigestFunc func(path string) (string, error)

// Service defines the exploration use cases.
type Service interface {
	Load(ctx context.Context, path string) (*screening.Table, error)
	Preview(table *screening.Table, n int) []screening.Record
	Count(ctx context.Context, table *screening.Table, column, value string) (int, error)
	ValueCounts(ctx context.Context, table *screening.Table, column string) ([]stypes.CategoryCount, error)
	Summary(ctx context.Context, path string, table *screening.Table) (stypes.Summary, error)
	Plot(ctx context.Context, table *screening.Table, column string, opts PlotOptions) (*stypes.PlotResult, error)
}

// PlotOptions selects where a count plot goes.
type PlotOptions struct {
	// Output is the image path.  Ignored when Terminal is set.
	Output string
	// Format overrides the extension of Output (png or svg).
	Format string
	// Terminal draws the chart as text instead of an image.
	Terminal bool
	// Upload publishes the image to object storage after rendering.
	Upload bool
	// Style overrides the renderers' titles and sizes for this plot.
	Style chart.Style
}

// Deps are the collaborators of the service.  Cache, Publisher, Digest and
// Terminal may be nil; the features depending on them are then unavailable.
type Deps struct {
	Loader    DatasetLoader
	Image     chart.Renderer
	Terminal  chart.Renderer
	Cache     SummaryStore
	Publisher ArtifactPublisher
	Digest    DigestFunc
	Metrics   *prometheus.AppMetrics
	Logger    logging.Logger

	// Schema is the column layout the loader validates against.  It is part
	// of the summary cache key.
	Schema screening.Schema
	// SchemaName is the preset the schema came from, used as a metric label.
	SchemaName string
	ActiveSet  screening.ActivitySet
	// RunID tags logs and uploaded artifacts.
	RunID string
}

type serviceImpl struct {
	Deps
}

// NewService returns a Service.  Loader and Image are required.
func NewService(deps Deps) (Service, error) {
	if deps.Loader == nil {
		return nil, errors.InvalidParam("dataset loader is required")
	}
	if deps.Image == nil {
		return nil, errors.InvalidParam("image renderer is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = prometheus.NewNoopAppMetrics()
	}
	if deps.ActiveSet == nil {
		deps.ActiveSet = screening.NewActivitySet()
	}
	if deps.RunID != "" {
		deps.Logger = deps.Logger.With(logging.String("run_id", deps.RunID))
	}
	return &serviceImpl{Deps: deps}, nil
}

func (s *serviceImpl) Load(ctx context.Context, path string) (*screening.Table, error) {
	timer := s.Metrics.LoadTimer(s.SchemaName)
	table, err := s.Loader.Load(ctx, path)
	if err != nil {
		s.Logger.Error("dataset load failed", logging.String("path", path), logging.Err(err))
		return nil, s.fail(err)
	}
	elapsed := timer.ObserveDuration()
	s.Metrics.RecordLoaded(filepath.Base(path), table.Len())
	s.Logger.Info("dataset loaded",
		logging.String("path", path),
		logging.Int("records", table.Len()),
		logging.Int("columns", len(table.Columns())),
		logging.Duration("elapsed", elapsed),
	)
	return table, nil
}

func (s *serviceImpl) Preview(table *screening.Table, n int) []screening.Record {
	return table.Head(n)
}

func (s *serviceImpl) Count(ctx context.Context, table *screening.Table, column, value string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := screening.Count(table, column, value)
	if err != nil {
		return 0, s.fail(err)
	}
	s.Logger.Debug("counted matching records",
		logging.String("column", column),
		logging.String("value", value),
		logging.Int("count", n),
	)
	return n, nil
}

func (s *serviceImpl) ValueCounts(ctx context.Context, table *screening.Table, column string) ([]stypes.CategoryCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts, err := screening.ValueCounts(table, column)
	if err != nil {
		return nil, s.fail(err)
	}
	return counts, nil
}

// Summary reports on table.  With a cache and digest configured the result is
// read through the cache keyed by file content; cache failures are logged and
// the summary is computed directly.
func (s *serviceImpl) Summary(ctx context.Context, path string, table *screening.Table) (stypes.Summary, error) {
	if err := ctx.Err(); err != nil {
		return stypes.Summary{}, err
	}

	var digest, key string
	if s.Digest != nil {
		d, err := s.Digest(path)
		if err != nil {
			s.Logger.Warn("failed to fingerprint dataset", logging.String("path", path), logging.Err(err))
		} else {
			digest = d
			key = s.cacheKey(digest)
		}
	}

	compute := func(context.Context) (stypes.Summary, error) {
		summary := screening.Summarize(table, s.ActiveSet)
		summary.Dataset = filepath.Base(path)
		summary.Digest = digest
		if summary.LabelMismatches > 0 {
			s.Logger.Warn("labels disagree with experimental activity",
				logging.Int("rows", summary.LabelMismatches),
				logging.String("active_classes", s.activeClasses()),
			)
		}
		return summary, nil
	}

	var (
		summary stypes.Summary
		served  bool
	)
	if s.Cache != nil && key != "" {
		cached, hit, err := s.Cache.GetOrCompute(ctx, key, compute)
		if err != nil {
			s.Logger.Warn("summary cache read failed", logging.Err(err))
		} else {
			summary, served = cached, true
			s.Metrics.RecordCache("summary", hit)
			if hit {
				s.Logger.Debug("summary served from cache", logging.String("digest", digest))
			}
		}
	}
	if !served {
		summary, _ = compute(ctx)
	}
	s.Metrics.SetClassRecords(summary.Actives, summary.Inactives)
	return summary, nil
}

// Plot computes the category distribution of column and renders it.
func (s *serviceImpl) Plot(ctx context.Context, table *screening.Table, column string, opts PlotOptions) (*stypes.PlotResult, error) {
	bars, err := screening.Distribution(table, column)
	if err != nil {
		return nil, s.fail(err)
	}
	if len(bars) == 0 {
		return nil, s.fail(errors.New(errors.ErrCodeDatasetEmpty, "dataset has no records to plot"))
	}

	renderer := s.Image
	if opts.Terminal {
		if opts.Upload {
			return nil, s.fail(errors.InvalidParam("a terminal chart cannot be uploaded"))
		}
		if s.Terminal == nil {
			return nil, s.fail(errors.New(errors.ErrCodeFeatureDisabled, "terminal renderer is not configured"))
		}
		renderer = s.Terminal
	}
	if opts.Upload && s.Publisher == nil {
		return nil, s.fail(errors.New(errors.ErrCodeFeatureDisabled, "object storage is not enabled"))
	}

	res, err := renderer.Render(ctx, chart.Request{
		Column: column,
		Bars:   bars,
		Output: opts.Output,
		Format: opts.Format,
		Style:  opts.Style,
	})
	if err != nil {
		return nil, s.fail(err)
	}
	s.Metrics.RecordPlot(res.Format)

	out := &stypes.PlotResult{
		Column: column,
		Bars:   bars,
		Path:   res.Path,
		Format: res.Format,
	}
	s.Logger.Info("count plot rendered",
		logging.String("column", column),
		logging.Int("bars", len(bars)),
		logging.String("format", res.Format),
		logging.String("path", res.Path),
	)

	if opts.Upload {
		key, url, err := s.Publisher.Publish(ctx, res.Path, s.RunID, map[string]string{
			"column": column,
			"schema": s.SchemaName,
		})
		if err != nil {
			return nil, s.fail(err)
		}
		out.ObjectKey = key
		out.URL = url
	}
	return out, nil
}

// fail counts err by code and returns it unchanged.
func (s *serviceImpl) fail(err error) error {
	code := errors.GetCode(err)
	s.Metrics.RecordError(code.String())
	return err
}

func (s *serviceImpl) schemaLabel() string {
	return strings.Join([]string{s.Schema.Smiles, s.Schema.Activity, s.Schema.Label}, "|")
}

func (s *serviceImpl) activeClasses() string {
	classes := make([]string, 0, len(s.ActiveSet))
	for c := range s.ActiveSet {
		classes = append(classes, string(c))
	}
	sort.Strings(classes)
	return strings.Join(classes, ",")
}

func (s *serviceImpl) cacheKey(digest string) string {
	return "summary:" + digest + ":" + s.schemaLabel() + ":" + s.activeClasses()
}

//Personal.AI order the ending
