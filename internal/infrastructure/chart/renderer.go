// Package chart renders categorical count plots.  ImageRenderer writes PNG or
// SVG files with gonum/plot; TerminalRenderer draws horizontal bars with
// lipgloss for quick inspection in a shell.
package chart

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/turtacn/hivscreen/pkg/errors"
	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

// Supported output formats.
const (
	FormatPNG      = "png"
	FormatSVG      = "svg"
	FormatTerminal = "terminal"
)

// Request is one count plot to draw.
type Request struct {
	Column string
	Bars   []stypes.CategoryCount
	// Output is the destination file for image renderers.  Ignored by the
	// terminal renderer.
	Output string
	// Format overrides the format implied by Output's extension.
	Format string
	// Style overrides the renderer's own options field by field.
	Style Style
}

// Style is the per-request look of a chart.  Zero fields keep the
// renderer's defaults.
type Style struct {
	Title  string
	XLabel string
	YLabel string
	// Width and Height are in inches.
	Width  float64
	Height float64
	// TerminalWidth is the longest terminal bar in cells.
	TerminalWidth int
}

// Result is where a rendered chart ended up.
type Result struct {
	Path   string
	Format string
}

// Renderer draws a Request.
type Renderer interface {
	Render(ctx context.Context, req Request) (Result, error)
}

// ResolveOutput returns the output path and image format for path and an
// optional explicit format.  A path without an extension gets one.
func ResolveOutput(path, format string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	if format == "" {
		format = ext
	}
	if format == "" {
		format = FormatPNG
	}
	if format != FormatPNG && format != FormatSVG {
		return "", "", errors.New(errors.ErrCodeChartFormatUnsupported, "unsupported chart format").
			WithDetail("format=" + format + " supported=png|svg")
	}
	if ext == "" {
		path += "." + format
	} else if ext != format {
		return "", "", errors.New(errors.ErrCodeChartFormatUnsupported, "output extension does not match format").
			WithDetail("path=" + path + " format=" + format)
	}
	return path, format, nil
}

func checkBars(bars []stypes.CategoryCount) error {
	if len(bars) == 0 {
		return errors.New(errors.ErrCodeDatasetEmpty, "nothing to plot")
	}
	return nil
}

//Personal.AI order the ending
