package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#64b5f6")
	colorAlert   = lipgloss.Color("#ef5350")
	colorGood    = lipgloss.Color("#66bb6a")
	colorMuted   = lipgloss.Color("#888888")
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleAlert  = lipgloss.NewStyle().Foreground(colorAlert).Bold(true)
	styleGood   = lipgloss.NewStyle().Foreground(colorGood)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
	styleLabel  = lipgloss.NewStyle().Width(24)
	styleValue  = lipgloss.NewStyle().Bold(true)
)

func setNoColor() {
	plain := lipgloss.NewStyle()
	styleHeader = plain
	styleAlert = plain
	styleGood = plain
	styleMuted = plain
	styleLabel = plain.Width(24)
	styleValue = plain
}

// table renders aligned columns; widths are measured on visible text.
type table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func newTable(headers ...string) *table {
	w := make([]int, len(headers))
	for i, h := range headers {
		w[i] = lipgloss.Width(h)
	}
	return &table{headers: headers, widths: w}
}

func (t *table) add(values ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		}
		if w := lipgloss.Width(row[i]); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

func (t *table) render() string {
	var sb strings.Builder
	line := func(cells []string, style func(string) string) {
		for i, c := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(style(pad(c, t.widths[i])))
		}
		sb.WriteString("\n")
	}
	line(t.headers, func(s string) string { return styleHeader.Render(s) })
	seps := make([]string, len(t.widths))
	for i, w := range t.widths {
		seps[i] = strings.Repeat("─", w)
	}
	line(seps, func(s string) string { return styleMuted.Render(s) })
	for _, r := range t.rows {
		line(r, func(s string) string { return s })
	}
	return sb.String()
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
