package display

import (
	"strings"
	"unicode/utf8"
)

// Table renders an aligned text table.
type Table struct {
	headers []string
	rows    [][]string
	styles  map[int]func(string) string
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers, styles: map[int]func(string) string{}}
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// StyleRow applies style to the whole of row idx (0-based).
func (t *Table) StyleRow(idx int, style func(string) string) {
	t.styles[idx] = style
}

// SetHighlightRow accents row idx, typically today or the next prayer.
func (t *Table) SetHighlightRow(idx int) {
	t.StyleRow(idx, Accent)
}

// Render produces the table with a two space indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && width(cell) > widths[i] {
				widths[i] = width(cell)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		if style, ok := t.styles[i]; ok {
			line = style(line)
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

// width counts runes, so Arabic labels align with Latin ones.
func width(s string) int {
	return utf8.RuneCountInString(s)
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = cell + strings.Repeat(" ", w-width(cell))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
