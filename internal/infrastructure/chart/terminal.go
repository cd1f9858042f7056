package chart

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

const barGlyph = "█"

// TerminalRenderer draws horizontal bars to a writer.
type TerminalRenderer struct {
	out   io.Writer
	width int
	title string

	labelStyle lipgloss.Style
	barStyle   lipgloss.Style
	countStyle lipgloss.Style
	titleStyle lipgloss.Style
}

// NewTerminalRenderer returns a renderer writing to out whose longest bar is
// width cells.  Styling degrades to plain text when out is not a terminal.
func NewTerminalRenderer(out io.Writer, width int, title string) *TerminalRenderer {
	if width <= 0 {
		width = 50
	}
	r := lipgloss.NewRenderer(out)
	return &TerminalRenderer{
		out:        out,
		width:      width,
		title:      title,
		labelStyle: r.NewStyle().Align(lipgloss.Right).Bold(true),
		barStyle:   r.NewStyle().Foreground(lipgloss.Color("#1f77b4")),
		countStyle: r.NewStyle().Faint(true),
		titleStyle: r.NewStyle().Bold(true).Underline(true),
	}
}

func (t *TerminalRenderer) Render(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := checkBars(req.Bars); err != nil {
		return Result{}, err
	}
	view := *t
	if req.Style.Title != "" {
		view.title = req.Style.Title
	}
	if req.Style.TerminalWidth > 0 {
		view.width = req.Style.TerminalWidth
	}
	if _, err := io.WriteString(t.out, view.Draw(req.Column, req.Bars)); err != nil {
		return Result{}, err
	}
	return Result{Format: FormatTerminal}, nil
}

// Draw returns the chart text, one line per bar plus a heading.
func (t *TerminalRenderer) Draw(column string, bars []stypes.CategoryCount) string {
	labelWidth, maxCount := 0, 0
	for _, b := range bars {
		if w := lipgloss.Width(b.Value); w > labelWidth {
			labelWidth = w
		}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	var sb strings.Builder
	heading := t.title
	if heading == "" {
		heading = column
	}
	sb.WriteString(t.titleStyle.Render(heading))
	sb.WriteString("\n")

	label := t.labelStyle.Width(labelWidth)
	for _, b := range bars {
		n := ScaleBar(b.Count, maxCount, t.width)
		fmt.Fprintf(&sb, "%s │%s %s\n",
			label.Render(b.Value),
			t.barStyle.Render(strings.Repeat(barGlyph, n)),
			t.countStyle.Render(strconv.Itoa(b.Count)),
		)
	}
	return sb.String()
}

// ScaleBar returns the bar length for count relative to maxCount.  Non-zero
// counts always get at least one cell.
func ScaleBar(count, maxCount, width int) int {
	if count <= 0 || maxCount <= 0 {
		return 0
	}
	n := int(math.Round(float64(count) * float64(width) / float64(maxCount)))
	if n < 1 {
		n = 1
	}
	return n
}

//Personal.AI order the ending
