package chart

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/turtacn/hivscreen/pkg/errors"
	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

// ImageOptions controls the look of an image chart.  Width and Height are in
// inches.
type ImageOptions struct {
	Title  string
	XLabel string
	YLabel string
	Width  float64
	Height float64
	// Annotate draws each bar's count above it.
	Annotate bool
}

var barColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

// ImageRenderer draws bar charts to PNG or SVG.
type ImageRenderer struct {
	opts ImageOptions
}

// NewImageRenderer returns an ImageRenderer.  Zero sizes fall back to 6x4.5in.
func NewImageRenderer(opts ImageOptions) *ImageRenderer {
	if opts.Width <= 0 {
		opts.Width = 6
	}
	if opts.Height <= 0 {
		opts.Height = 4.5
	}
	return &ImageRenderer{opts: opts}
}

// WithStyle returns a renderer whose options are r's overlaid with the
// non-zero fields of st.
func (r *ImageRenderer) WithStyle(st Style) *ImageRenderer {
	opts := r.opts
	if st.Title != "" {
		opts.Title = st.Title
	}
	if st.XLabel != "" {
		opts.XLabel = st.XLabel
	}
	if st.YLabel != "" {
		opts.YLabel = st.YLabel
	}
	if st.Width > 0 {
		opts.Width = st.Width
	}
	if st.Height > 0 {
		opts.Height = st.Height
	}
	return &ImageRenderer{opts: opts}
}

// Build assembles the plot without drawing it.  Bars sit at x = 0..n-1 in the
// order given, labelled with their category values.
func (r *ImageRenderer) Build(column string, bars []stypes.CategoryCount) (*plot.Plot, error) {
	if err := checkBars(bars); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = r.opts.Title
	p.X.Label.Text = r.opts.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = column
	}
	p.Y.Label.Text = r.opts.YLabel
	p.Y.Min = 0

	values := make(plotter.Values, len(bars))
	names := make([]string, len(bars))
	maxCount := 0
	for i, b := range bars {
		values[i] = float64(b.Count)
		names[i] = b.Value
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	bc, err := plotter.NewBarChart(values, barWidth(r.opts.Width, len(bars)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeChartRenderFailed, "failed to build bar chart")
	}
	bc.Color = barColor
	bc.LineStyle.Width = 0
	p.Add(bc)
	p.NominalX(names...)

	if r.opts.Annotate {
		xys := make(plotter.XYs, len(bars))
		labels := make([]string, len(bars))
		for i, b := range bars {
			xys[i] = plotter.XY{X: float64(i), Y: float64(b.Count)}
			labels[i] = strconv.Itoa(b.Count)
		}
		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeChartRenderFailed, "failed to build bar labels")
		}
		for i := range lbl.TextStyle {
			lbl.TextStyle[i].XAlign = text.XCenter
			lbl.TextStyle[i].YAlign = text.YBottom
		}
		p.Add(lbl)
		// Headroom for the count labels.
		p.Y.Max = float64(maxCount) * 1.1
	}
	return p, nil
}

// WriteTo draws the chart in format to w.
func (r *ImageRenderer) WriteTo(w io.Writer, column string, bars []stypes.CategoryCount, format string) error {
	p, err := r.Build(column, bars)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(vg.Length(r.opts.Width)*vg.Inch, vg.Length(r.opts.Height)*vg.Inch, format)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeChartFormatUnsupported, "unsupported chart format").WithDetail("format=" + format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, errors.ErrCodeChartRenderFailed, "failed to write chart")
	}
	return nil
}

// Render writes req to req.Output.  The file is written through a temporary
// sibling and renamed so a watcher never sees a half-written chart.
func (r *ImageRenderer) Render(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	path, format, err := ResolveOutput(req.Output, req.Format)
	if err != nil {
		return Result{}, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, errors.Wrap(err, errors.ErrCodeChartRenderFailed, "failed to create output directory")
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return Result{}, errors.Wrap(err, errors.ErrCodeChartRenderFailed, "failed to create chart file")
	}
	defer os.Remove(tmp.Name())

	if err := r.WithStyle(req.Style).WriteTo(tmp, req.Column, req.Bars, format); err != nil {
		tmp.Close()
		return Result{}, err
	}
	if err := tmp.Close(); err != nil {
		return Result{}, errors.Wrap(err, errors.ErrCodeChartRenderFailed, "failed to flush chart file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Result{}, errors.Wrap(err, errors.ErrCodeChartRenderFailed, fmt.Sprintf("failed to move chart into place at %s", path))
	}
	return Result{Path: path, Format: format}, nil
}

// barWidth keeps n bars inside roughly 70% of the plot width.
func barWidth(widthInches float64, n int) vg.Length {
	w := vg.Length(widthInches) * vg.Inch * 0.7 / vg.Length(n)
	if limit := vg.Points(60); w > limit {
		return limit
	}
	return w
}

//Personal.AI order the ending
