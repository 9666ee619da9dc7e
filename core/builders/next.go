package builders

import (
	"errors"

	"github.com/qstep/qsee/core"
)

var errNoNextRow = errors.New("no next row")

// NextSlice creates next and hasNext functions from provided values.
// toRow converts a single value from the slice into a row.
func NextSlice[T any](values []T, toRow func(T) core.Row) (func() (core.Row, error), func() bool) {
	index := 0

	hasNext := func() bool {
		return index < len(values)
	}

	next := func() (core.Row, error) {
		if !hasNext() {
			return nil, errNoNextRow
		}

		row := toRow(values[index])
		index++
		return row, nil
	}

	return next, hasNext
}

// NextRows creates next and hasNext functions that yield the provided rows as they are.
func NextRows(rows []core.Row) (func() (core.Row, error), func() bool) {
	return NextSlice(rows, func(r core.Row) core.Row { return r })
}

// NextStrings creates next and hasNext functions from rows of text cells.
func NextStrings(rows [][]string) (func() (core.Row, error), func() bool) {
	return NextSlice(rows, func(cells []string) core.Row {
		row := make(core.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		return row
	})
}

// NextNil creates next and hasNext functions that don't return anything (no rows)
func NextNil() (func() (core.Row, error), func() bool) {
	hasNext := func() bool {
		return false
	}

	next := func() (core.Row, error) {
		return nil, errNoNextRow
	}

	return next, hasNext
}
