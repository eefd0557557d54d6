package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// continuationMarker leads a row that belongs to the row above it
const continuationMarker = "↳ "

// Column is one column of a Table
type Column struct {
	Title string

	// Right aligns the column to the right, for counts
	Right bool

	// Style picks the color of a cell from its value. Nil prints plain text.
	Style func(cell string) *color.Color
}

// Table renders rows under aligned, underlined headers. The last column is
// never padded.
type Table struct {
	writer  io.Writer
	columns []Column
	rows    []tableRow
	noColor bool
}

type tableRow struct {
	cells        []string
	continuation bool
}

// NewTable creates a table with the given columns
func NewTable(w io.Writer, noColor bool, columns ...Column) *Table {
	return &Table{writer: w, columns: columns, noColor: noColor}
}

// AddRow adds a row. Missing cells are left blank and extra cells dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, tableRow{cells: row})
}

// Continue adds a row under the previous one that only fills the last column
func (t *Table) Continue(last string) {
	if len(t.columns) == 0 {
		return
	}
	row := make([]string, len(t.columns))
	row[len(row)-1] = continuationMarker + last
	t.rows = append(t.rows, tableRow{cells: row, continuation: true})
}

// Len returns the number of rows, continuations included
func (t *Table) Len() int {
	return len(t.rows)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.columns) == 0 {
		return
	}
	widths := t.widths()
	last := len(t.columns) - 1

	bold := t.style(color.New(color.Bold, color.FgCyan))
	for i, col := range t.columns {
		bold.Fprint(t.writer, t.align(col.Title, widths[i], col.Right, i == last))
		if i < last {
			fmt.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("─", width)
	}
	t.style(color.New(color.FgHiBlack)).Fprintln(t.writer, strings.Join(rule, "  "))

	dim := t.style(color.New(color.FgHiBlack))
	for _, row := range t.rows {
		for i, cell := range row.cells {
			col := t.columns[i]
			text := t.align(cell, widths[i], col.Right, i == last)
			switch {
			case row.continuation && i == last:
				dim.Fprint(t.writer, text)
			case col.Style != nil && cell != "":
				t.style(col.Style(cell)).Fprint(t.writer, text)
			default:
				fmt.Fprint(t.writer, text)
			}
			if i < last {
				fmt.Fprint(t.writer, "  ")
			}
		}
		fmt.Fprintln(t.writer)
	}
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = utf8.RuneCountInString(col.Title)
	}
	for _, row := range t.rows {
		for i, cell := range row.cells {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func (t *Table) align(s string, width int, right, last bool) string {
	switch {
	case right:
		return padLeft(s, width)
	case last:
		return s
	default:
		return padRight(s, width)
	}
}

func (t *Table) style(c *color.Color) *color.Color {
	if c == nil {
		c = color.New(color.Reset)
	}
	if t.noColor {
		c.DisableColor()
	}
	return c
}

// padRight pads a string with spaces on the right to reach the target width
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func padLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// NameList renders labelled lists of resource names, one label per line
type NameList struct {
	writer  io.Writer
	entries []nameListEntry
	noColor bool
}

type nameListEntry struct {
	label string
	names []string
}

// NewNameList creates an empty list
func NewNameList(w io.Writer, noColor bool) *NameList {
	return &NameList{writer: w, noColor: noColor}
}

// Add adds a label and its names. An empty list is rendered as "none".
func (l *NameList) Add(label string, names ...string) {
	l.entries = append(l.entries, nameListEntry{label: label, names: names})
}

// Render renders the list
func (l *NameList) Render() {
	width := 0
	for _, e := range l.entries {
		if n := utf8.RuneCountInString(e.label); n > width {
			width = n
		}
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if l.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}
	for _, e := range l.entries {
		cyan.Fprint(l.writer, padRight(e.label+":", width+1))
		fmt.Fprint(l.writer, " ")
		if len(e.names) == 0 {
			gray.Fprintln(l.writer, "none")
			continue
		}
		fmt.Fprintln(l.writer, strings.Join(e.names, ", "))
	}
}

// Divider renders a horizontal divider line, 80 columns wide when width is 0
func Divider(w io.Writer, width int, noColor bool) {
	if width == 0 {
		width = 80
	}

	gray := color.New(color.FgHiBlack)
	if noColor {
		gray.DisableColor()
	}
	gray.Fprintln(w, strings.Repeat("─", width))
}

// Header renders a styled title underlined to its own width
func Header(w io.Writer, title string, noColor bool) {
	bold := color.New(color.Bold, color.FgCyan)
	if noColor {
		bold.DisableColor()
	}
	bold.Fprintln(w, title)
	Divider(w, utf8.RuneCountInString(title), noColor)
}
