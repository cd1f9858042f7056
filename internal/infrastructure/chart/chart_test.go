package chart

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hivscreen/pkg/errors"
	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

var labelBars = []stypes.CategoryCount{
	{Value: "0", Count: 3},
	{Value: "1", Count: 2},
}

func TestResolveOutput(t *testing.T) {
	cases := []struct {
		path, format   string
		wantPath, want string
	}{
		{"chart.png", "", "chart.png", FormatPNG},
		{"chart.SVG", "", "chart.SVG", FormatSVG},
		{"chart", "", "chart.png", FormatPNG},
		{"out/chart", "svg", "out/chart.svg", FormatSVG},
		{"chart.png", ".PNG", "chart.png", FormatPNG},
	}
	for _, tc := range cases {
		p, f, err := ResolveOutput(tc.path, tc.format)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.wantPath, p)
		assert.Equal(t, tc.want, f)
	}

	_, _, err := ResolveOutput("chart.gif", "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeChartFormatUnsupported))
	_, _, err = ResolveOutput("chart.png", "svg")
	assert.True(t, errors.IsCode(err, errors.ErrCodeChartFormatUnsupported))
}

func TestImageRenderer_PNG(t *testing.T) {
	r := NewImageRenderer(ImageOptions{YLabel: "Num of molecules", Annotate: true})
	out := filepath.Join(t.TempDir(), "nested", "label_distribution.png")

	res, err := r.Render(context.Background(), Request{Column: "Label", Bars: labelBars, Output: out})
	require.NoError(t, err)
	assert.Equal(t, out, res.Path)
	assert.Equal(t, FormatPNG, res.Format)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestImageRenderer_SVGCarriesLabels(t *testing.T) {
	r := NewImageRenderer(ImageOptions{
		Title:    "class balance",
		XLabel:   "0 = inactive, 1 = active",
		YLabel:   "Num of molecules",
		Annotate: true,
	})

	var buf bytes.Buffer
	require.NoError(t, r.WriteTo(&buf, "Label", labelBars, FormatSVG))
	svg := buf.String()

	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Num of molecules")
	assert.Contains(t, svg, "0 = inactive, 1 = active")
	assert.Contains(t, svg, "class balance")
}

func TestImageRenderer_DefaultXLabelIsColumn(t *testing.T) {
	p, err := NewImageRenderer(ImageOptions{}).Build("HIV_active", labelBars)
	require.NoError(t, err)
	assert.Equal(t, "HIV_active", p.X.Label.Text)
	assert.Zero(t, p.Y.Min)
}

func TestImageRenderer_RequestStyleOverrides(t *testing.T) {
	r := NewImageRenderer(ImageOptions{Title: "startup", YLabel: "Num of molecules"})
	out := filepath.Join(t.TempDir(), "chart.svg")

	_, err := r.Render(context.Background(), Request{
		Column: "Label",
		Bars:   labelBars,
		Output: out,
		Style:  Style{YLabel: "molecules screened", Width: 8},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "molecules screened")
	assert.Contains(t, string(raw), "startup")
	assert.NotContains(t, string(raw), "Num of molecules")

	p, err := r.Build("Label", labelBars)
	require.NoError(t, err)
	assert.Equal(t, "Num of molecules", p.Y.Label.Text, "the base renderer is unchanged")
}

func TestImageRenderer_Errors(t *testing.T) {
	r := NewImageRenderer(ImageOptions{})

	_, err := r.Render(context.Background(), Request{Column: "Label", Output: filepath.Join(t.TempDir(), "a.png")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetEmpty))

	_, err = r.Render(context.Background(), Request{Column: "Label", Bars: labelBars, Output: "a.jpg"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeChartFormatUnsupported))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, Request{Column: "Label", Bars: labelBars, Output: "a.png"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminalRenderer_Draw(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf, 30, "")

	res, err := r.Render(context.Background(), Request{Column: "Label", Bars: labelBars})
	require.NoError(t, err)
	assert.Equal(t, FormatTerminal, res.Format)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Label")
	assert.Equal(t, 30, strings.Count(lines[1], barGlyph))
	assert.True(t, strings.HasSuffix(lines[1], " 3"))
	assert.Equal(t, 20, strings.Count(lines[2], barGlyph))
	assert.True(t, strings.HasSuffix(lines[2], " 2"))
}

func TestTerminalRenderer_RequestStyle(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf, 30, "startup")

	_, err := r.Render(context.Background(), Request{
		Column: "Label",
		Bars:   labelBars,
		Style:  Style{Title: "reloaded", TerminalWidth: 10},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "reloaded")
	assert.Equal(t, 10, strings.Count(lines[1], barGlyph))
}

func TestTerminalRenderer_Empty(t *testing.T) {
	_, err := NewTerminalRenderer(&bytes.Buffer{}, 0, "t").Render(context.Background(), Request{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetEmpty))
}

func TestScaleBar(t *testing.T) {
	assert.Equal(t, 0, ScaleBar(0, 10, 50))
	assert.Equal(t, 50, ScaleBar(10, 10, 50))
	assert.Equal(t, 1, ScaleBar(1, 10000, 50))
	assert.Equal(t, 25, ScaleBar(5, 10, 50))
	assert.Equal(t, 0, ScaleBar(3, 0, 50))
}
