package format

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/qstep/qsee/core"
)

var _ core.Formatter = (*CSV)(nil)

// CSV writes the header followed by one record per row. Missing cells of
// short rows are left empty.
type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

func cellText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (cf *CSV) Format(header core.Header, rows []core.Row, _ *core.FormatterOptions) ([]byte, error) {
	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("w.Write: %w", err)
	}

	record := make([]string, 0, len(header))
	for _, row := range rows {
		record = record[:0]
		for _, cell := range row {
			record = append(record, cellText(cell))
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("w.Write: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("w.Flush: %w", err)
	}

	return b.Bytes(), nil
}
