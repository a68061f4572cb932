package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by values that print as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// Table is an ad-hoc TableRenderer.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers, rows: [][]string{}}
}

func (t *Table) AddRow(cells ...string) { t.rows = append(t.rows, cells) }
func (t *Table) Headers() []string      { return t.headers }
func (t *Table) Rows() [][]string       { return t.rows }

// newBorderless returns a left-aligned table without borders or separators.
func newBorderless(w io.Writer, columnSep string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetCenterSeparator("")
	tw.SetColumnSeparator(columnSep)
	tw.SetRowSeparator("")
	tw.SetHeaderLine(false)
	tw.SetBorder(false)
	tw.SetTablePadding("  ")
	tw.SetNoWhiteSpace(true)
	return tw
}

// PrintTable renders t with upper-cased headers.
func PrintTable(w io.Writer, t TableRenderer) error {
	tw := newBorderless(w, "")
	tw.SetHeader(t.Headers())
	tw.SetAutoFormatHeaders(true)
	tw.AppendBulk(t.Rows())
	tw.Render()
	return nil
}

// PrintKeyValues renders pairs as "key:  value" lines.
func PrintKeyValues(w io.Writer, pairs [][2]string) error {
	tw := newBorderless(w, ":")
	tw.SetAutoFormatHeaders(false)
	for _, p := range pairs {
		tw.Append([]string{p[0], p[1]})
	}
	tw.Render()
	return nil
}
