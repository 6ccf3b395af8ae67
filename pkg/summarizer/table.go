package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/user/timecut/pkg/ffmpeg"
)

// row is one labelled line of a summary.
type row struct {
	label string
	value string
}

// rows lists the populated summary fields in display order.
func rows(s *Summary) []row {
	out := []row{
		{"Source", s.Source},
		{"URL", s.URL},
		{"Mode", s.Mode},
		{"Frames", humanize.Comma(int64(s.Frames))},
		{"FPS", ffmpeg.FormatRate(s.FPS)},
	}

	if s.Output != "" {
		out = append(out, row{"Output", s.Output})
		out = append(out, row{"Size", humanize.Bytes(uint64(s.FileSize))})
	} else {
		out = append(out, row{"Output", l10n.T("(stream)")})
	}
	if s.FramesKept {
		out = append(out, row{"Frames kept in", s.FrameDir})
	}

	if v := s.Video; v != nil {
		out = append(out, row{"Codec", v.Codec})
		out = append(out, row{"Dimensions", fmt.Sprintf("%dx%d", v.Width, v.Height)})
		out = append(out, row{"Video duration", formatMs(v.DurationMs)})
	}

	out = append(out, row{"Elapsed", s.Elapsed.Round(time.Millisecond).String()})

	filtered := out[:0]
	for _, r := range out {
		if r.value != "" {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

func newTable(s *Summary) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{l10n.T("Item"), l10n.T("Value")})
	for _, r := range rows(s) {
		tw.AppendRow(table.Row{l10n.T(r.label), r.value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, WidthMax: 80},
	})
	return tw
}

// NewTableFormatter returns a Formatter that renders a rounded console table.
func NewTableFormatter() Formatter {
	return FormatFunc(func(s *Summary) string {
		tw := newTable(s)
		tw.SetStyle(table.StyleRounded)
		return tw.Render()
	})
}

// NewMarkdownFormatter returns a Formatter that renders a Markdown report.
func NewMarkdownFormatter() Formatter {
	return FormatFunc(func(s *Summary) string {
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", l10n.T("Render Summary"))
		fmt.Fprintf(&b, "%s: %s\n\n", l10n.T("Generated"), s.GeneratedAt.Format(time.RFC3339))
		b.WriteString(newTable(s).RenderMarkdown())
		b.WriteString("\n")
		return b.String()
	})
}
