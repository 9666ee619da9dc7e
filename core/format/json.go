package format

import (
	"encoding/json"
	"fmt"

	"github.com/qstep/qsee/core"
)

var _ core.Formatter = (*JSON)(nil)

// JSON renders schemaful results as an array of objects keyed by column.
// Schemaless results become an array of row values.
type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

// columnName names the i-th cell of a row, even if the header is shorter.
func columnName(header core.Header, i int) string {
	if i < len(header) {
		return header[i]
	}
	return fmt.Sprintf("<unknown-field-%d>", i)
}

func (jf *JSON) Format(header core.Header, rows []core.Row, opts *core.FormatterOptions) ([]byte, error) {
	schemaLess := opts != nil && opts.SchemaType == core.SchemaLess

	data := make([]any, 0, len(rows))
	for _, row := range rows {
		if schemaLess {
			switch len(row) {
			case 0:
			case 1:
				data = append(data, row[0])
			default:
				data = append(data, row)
			}
			continue
		}

		record := make(map[string]any, len(row))
		for i, val := range row {
			record[columnName(header, i)] = val
		}
		data = append(data, record)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json.MarshalIndent: %w", err)
	}

	return out, nil
}
