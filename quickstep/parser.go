package quickstep

import (
	"strings"
)

type ResultKind int

const (
	// ResultKindEmpty is a successful statement that rendered no table (DDL, DML).
	ResultKindEmpty ResultKind = iota
	ResultKindTable
)

func (k ResultKind) String() string {
	switch k {
	case ResultKindEmpty:
		return "empty"
	case ResultKindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Meta holds whatever the engine reported next to the result.
type Meta struct {
	TimeMS  float64
	HasTime bool
}

// Result is the structured form of a single query output.
type Result struct {
	Kind   ResultKind
	Header []string
	Rows   [][]string
	Layout ColumnLayout
	Meta   Meta

	// Warnings lists lines that were skipped while reading the table.
	Warnings []Warning
}

// ParseOutput classifies the two channels of one engine invocation.
// Anything on stderr is a fatal crash. Output starting with "ERROR:" is a
// query error. Everything else is read as a table render.
func ParseOutput(stdout, stderr string) (*Result, error) {
	if stderr != "" {
		return nil, &EngineError{Kind: ErrorKindFatalCrash, Text: stderr}
	}

	head := stdout
	if len(head) > 6 {
		head = head[:6]
	}
	if strings.Contains(head, "ERROR:") {
		return nil, &EngineError{Kind: ErrorKindQuery, Text: stdout}
	}

	return ParseTable(stdout), nil
}

type scanState int

const (
	stateSeekHeaderRule scanState = iota
	stateHeader
	statePostHeaderRule
	stateRows
	stateTrailer
	stateDone
)

// tableScan is the accumulator threaded through the fold.
type tableScan struct {
	state    scanState
	layout   ColumnLayout
	header   []string
	rows     [][]string
	meta     Meta
	warnings []Warning
}

// ParseTable reads a boxed table render:
//
//	+----+------+
//	| id | name |
//	+----+------+
//	| 1  | abc  |
//	+----+------+
//	Time: 0.512 ms
//
// Output consisting of a timing line only (or nothing at all) is an empty result.
// The column layout is taken from the first delimiter line and used for every
// following row. Blank lines between rows are skipped and do not produce a row
// of empty cells.
func ParseTable(stdout string) *Result {
	lines := strings.Split(stdout, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	scan := tableScan{}
	for i, line := range lines {
		scan = scan.step(i+1, line)
		if scan.state == stateDone {
			break
		}
	}

	res := &Result{
		Kind:     ResultKindEmpty,
		Meta:     scan.meta,
		Warnings: scan.warnings,
	}
	if len(scan.header) > 0 {
		res.Kind = ResultKindTable
		res.Header = scan.header
		res.Rows = scan.rows
		res.Layout = scan.layout
		if res.Rows == nil {
			res.Rows = [][]string{}
		}
	}
	return res
}

func (s tableScan) step(lineNo int, line string) tableScan {
	switch s.state {
	case stateSeekHeaderRule:
		if isDelimiter(line) {
			s.layout = layoutFromDelimiter(line)
			s.state = stateHeader
			return s
		}
		if ms, ok := parseTime(line); ok {
			s.meta = Meta{TimeMS: ms, HasTime: true}
			s.state = stateDone
		}

	case stateHeader:
		s.header = s.layout.Slice(line)
		s.state = statePostHeaderRule

	case statePostHeaderRule:
		if !isDelimiter(line) {
			s.warnings = append(s.warnings, Warning{LineNo: lineNo, Line: line, Reason: "expected delimiter after header"})
			return s
		}
		s.state = stateRows

	case stateRows:
		if isDelimiter(line) {
			s.state = stateTrailer
			return s
		}
		if strings.TrimSpace(line) == "" {
			return s
		}
		s.rows = append(s.rows, s.layout.Slice(line))

	case stateTrailer:
		if ms, ok := parseTime(line); ok {
			s.meta = Meta{TimeMS: ms, HasTime: true}
			s.state = stateDone
		}
	}

	return s
}
