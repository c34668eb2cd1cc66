package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Width 0 sizes the column to its widest cell.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Cells are padded by display
// width so names such as "Café Coin" stay aligned.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMeta)

	widths := t.widths()

	var headers []string
	for i, col := range t.Columns {
		headers = append(headers, headerStyle.Render(fit(col.Title, widths[i])))
	}
	sb.WriteString(strings.Join(headers, " "))
	sb.WriteString("\n")

	var divParts []string
	for i := range t.Columns {
		divParts = append(divParts, dimStyle.Render(strings.Repeat("-", widths[i])))
	}
	sb.WriteString(strings.Join(divParts, " "))
	sb.WriteString("\n")

	for i, row := range t.Rows {
		style := cellStyle
		if i == t.SelIdx {
			style = StyleSelected
		}
		var cells []string
		for j := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells = append(cells, style.Render(fit(val, widths[j])))
		}
		sb.WriteString(strings.Join(cells, " "))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (t *Table) widths() []int {
	w := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		if col.Width > 0 {
			w[i] = col.Width
			continue
		}
		w[i] = lipgloss.Width(col.Title)
		for _, row := range t.Rows {
			if i < len(row) && lipgloss.Width(row[i]) > w[i] {
				w[i] = lipgloss.Width(row[i])
			}
		}
	}
	return w
}

// fit pads s to exactly width display cells, truncating with an ellipsis.
func fit(s string, width int) string {
	n := lipgloss.Width(s)
	if n == width {
		return s
	}
	if n < width {
		return s + strings.Repeat(" ", width-n)
	}
	if width <= 1 {
		return strings.Repeat("…", width)
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	out := string(runes) + "…"
	return out + strings.Repeat(" ", width-lipgloss.Width(out))
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-20s", p[0]+":"))
		val := StyleValue.Render(p[1])
		sb.WriteString("  " + key + " " + val + "\n")
	}
	return StyleBorder.Render(sb.String())
}
