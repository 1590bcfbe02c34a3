package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const barWidth = 30

func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func bar(count, largest int) string {
	if largest == 0 || count == 0 {
		return ""
	}
	n := int(math.Ceil(float64(count) / float64(largest) * barWidth))
	return strings.Repeat("█", n)
}

func formatCorrelation(c float64) string {
	if math.IsNaN(c) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", c)
}

func renderHistogram(w io.Writer, h Histogram) {
	largest := 0
	for _, b := range h.Bins {
		largest = max(largest, b.Count)
	}

	t := NewTable(w)
	t.SetTitle(fmt.Sprintf("%s distribution", h.Field))
	t.AppendHeader(table.Row{"Range", "Count", ""})
	for _, b := range h.Bins {
		t.AppendRow(table.Row{
			fmt.Sprintf("%.1f - %.1f", b.Low, b.High),
			b.Count,
			bar(b.Count, largest),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
}

// Render writes the summary as a sequence of tables.
func Render(w io.Writer, s Summary) error {
	overview := NewTable(w)
	overview.SetTitle("trending repositories")
	overview.AppendRows([]table.Row{
		{"rows", s.Rows},
		{"languages", len(s.Languages)},
		{"star/fork correlation", formatCorrelation(s.Correlation)},
	})
	overview.Render()

	renderHistogram(w, s.Stars)
	renderHistogram(w, s.Forks)
	renderHistogram(w, s.TodayStars)

	largest := 0
	for _, l := range s.Languages {
		largest = max(largest, l.Count)
	}
	languages := NewTable(w)
	languages.SetTitle("repositories per language")
	languages.AppendHeader(table.Row{"Language", "Count", ""})
	for _, l := range s.Languages {
		languages.AppendRow(table.Row{l.Language, l.Count, bar(l.Count, largest)})
	}
	languages.Render()

	_, err := io.WriteString(w, "\n")
	return err
}
