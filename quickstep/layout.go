package quickstep

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reRowDelim = regexp.MustCompile(`^(\+-+)*\+$`)
	reTime     = regexp.MustCompile(`^Time: (\d+\.\d+) ms`)
)

// ColumnLayout holds the character width of every column of a rendered table,
// as declared by the delimiter line.
type ColumnLayout []int

func isDelimiter(line string) bool {
	return reRowDelim.MatchString(strings.TrimRight(line, " \t\r"))
}

// parseTime returns the execution time in milliseconds of a timing line.
func parseTime(line string) (float64, bool) {
	m := reTime.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	ms, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// layoutFromDelimiter measures the runs of '-' between consecutive '+' markers.
func layoutFromDelimiter(line string) ColumnLayout {
	line = strings.TrimRight(line, " \t\r")

	var layout ColumnLayout
	width := 0
	for _, c := range line[1:] {
		if c == '+' {
			layout = append(layout, width)
			width = 0
			continue
		}
		width++
	}
	return layout
}

// Slice cuts a rendered row into trimmed cells. Cell i starts right after the
// i-th '|' of the render, so offsets come only from the layout and never from
// the cell contents. Short lines yield empty trailing cells.
func (l ColumnLayout) Slice(line string) []string {
	line = strings.TrimRight(line, "\r")

	cells := make([]string, len(l))
	start := 1
	for i, width := range l {
		from, to := start, start+width
		if from > len(line) {
			from = len(line)
		}
		if to > len(line) {
			to = len(line)
		}
		cells[i] = strings.TrimSpace(line[from:to])
		start += width + 1
	}
	return cells
}
