package format

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/qstep/qsee/core"
)

var _ core.Formatter = (*Table)(nil)

// Table renders rows as a text table with a leading row index column.
type Table struct {
	style table.Style
}

func NewTable() *Table {
	return &Table{style: table.StyleLight}
}

// NewBoxedTable renders with "+", "-" and "|" like the engine shell does.
func NewBoxedTable() *Table {
	return &Table{style: table.StyleDefault}
}

func (tf *Table) Format(header core.Header, rows []core.Row, opts *core.FormatterOptions) ([]byte, error) {
	if opts == nil {
		opts = &core.FormatterOptions{}
	}

	tableHeaders := table.Row{""}
	for _, k := range header {
		tableHeaders = append(tableHeaders, k)
	}
	index := opts.ChunkStart

	var tableRows []table.Row
	for _, row := range rows {
		indexedRow := append(table.Row{index + 1}, row...)
		tableRows = append(tableRows, indexedRow)
		index++
	}

	t := table.NewWriter()
	t.AppendHeader(tableHeaders)
	t.AppendRows(tableRows)
	t.SetStyle(tf.style)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	if opts.Meta != nil && opts.Meta.HasEngineTime {
		t.SetCaption(fmt.Sprintf("%d row(s), %.3f ms", len(rows), opts.Meta.EngineTimeMS))
	}
	t.SuppressTrailingSpaces()

	return []byte(t.Render()), nil
}
