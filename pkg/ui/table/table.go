// Package table renders rows of values as a terminal table backed by
// lipgloss, or as a Markdown table when the output is not a terminal.
package table

import (
	"fmt"
	"strings"

	// Packages
	lipgloss "github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TableData is the interface that data sources implement to be rendered
// as a table.
type TableData interface {
	// Header returns the column header labels.
	Header() []string

	// Len returns the number of rows.
	Len() int

	// Row returns the cell values for row i. Return nil to skip a row.
	// Wrap a value in Bold{} to emphasise it.
	Row(i int) []any
}

// Bold wraps a cell value so that it is emphasised.
type Bold struct{ Value any }

///////////////////////////////////////////////////////////////////////////////
// STYLES

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(1)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Render renders the table for a terminal. When width is positive and the
// natural rendering is wider, columns are wrapped to fit.
func Render(data TableData, width int) string {
	t := lgtable.New().
		Headers(data.Header()...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, row := range rows(data) {
		cells := make([]string, len(row))
		for j, v := range row {
			if b, ok := v.(Bold); ok {
				cells[j] = boldStyle.Render(FormatCell(b.Value))
			} else {
				cells[j] = FormatCell(v)
			}
		}
		t.Row(cells...)
	}

	result := t.Render()
	if width > 0 && lipgloss.Width(result) > width {
		t.Width(width)
		result = t.Render()
	}
	return result
}

// RenderMarkdown renders the table as a Markdown table. Bold values are
// wrapped in ** markers.
func RenderMarkdown(data TableData) string {
	header := data.Header()
	if len(header) == 0 {
		return ""
	}
	var buf strings.Builder

	// Header row
	buf.WriteString("|")
	for _, h := range header {
		buf.WriteString(" " + h + " |")
	}
	buf.WriteString("\n|")
	for range header {
		buf.WriteString("---|")
	}

	// Data rows
	for _, row := range rows(data) {
		buf.WriteString("\n|")
		for j := range header {
			cell := "-"
			if j < len(row) {
				if b, ok := row[j].(Bold); ok {
					if cell = FormatCell(b.Value); cell != "-" {
						cell = "**" + cell + "**"
					}
				} else {
					cell = FormatCell(row[j])
				}
			}
			buf.WriteString(" " + cell + " |")
		}
	}
	return buf.String()
}

// FormatCell converts a value to a display string, rendering empty and zero
// values as "-".
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case Bold:
		return FormatCell(val.Value)
	case string:
		if val == "" {
			return "-"
		}
		return val
	case int:
		if val == 0 {
			return "-"
		}
		return fmt.Sprint(val)
	case int64:
		if val == 0 {
			return "-"
		}
		return fmt.Sprint(val)
	default:
		if s := fmt.Sprint(val); s != "" {
			return s
		}
		return "-"
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func rows(data TableData) [][]any {
	result := make([][]any, 0, data.Len())
	for i := range data.Len() {
		if row := data.Row(i); row != nil {
			result = append(result, row)
		}
	}
	return result
}
