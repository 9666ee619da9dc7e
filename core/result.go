package core

import (
	"errors"
	"fmt"
	"sync"
)

var ErrInvalidRange = func(from, to int) error { return fmt.Errorf("invalid selection range: %d ... %d", from, to) }

var errResultFilled = errors.New("result is already filled")

// Result caches the rows of a ResultStream. Readers may ask for rows while
// the stream is still being drained; they block until the rows are there.
type Result struct {
	mu   sync.Mutex
	cond *sync.Cond

	header  Header
	meta    *Meta
	rows    []Row
	filled  bool
	drained bool
}

func (cr *Result) lock() {
	cr.mu.Lock()
	if cr.cond == nil {
		cr.cond = sync.NewCond(&cr.mu)
	}
}

// SetIter drains iter into the result. onFillStart is called once the header
// is known, before the first row is read. A result can be filled only once
// until it is wiped.
func (cr *Result) SetIter(iter ResultStream, onFillStart func()) error {
	defer iter.Close()

	cr.lock()
	if cr.filled {
		cr.mu.Unlock()
		return errResultFilled
	}
	cr.header = iter.Header()
	cr.meta = iter.Meta()
	cr.rows = make([]Row, 0)
	cr.filled = true
	cr.drained = false
	cr.mu.Unlock()

	defer func() {
		cr.lock()
		cr.drained = true
		cr.cond.Broadcast()
		cr.mu.Unlock()
	}()

	if onFillStart != nil {
		onFillStart()
	}

	for iter.HasNext() {
		row, err := iter.Next()
		if err != nil {
			cr.lock()
			cr.filled = false
			cr.mu.Unlock()
			return err
		}

		cr.lock()
		cr.rows = append(cr.rows, row)
		cr.cond.Broadcast()
		cr.mu.Unlock()
	}

	return nil
}

// Wipe empties the result, so it can be filled again.
func (cr *Result) Wipe() {
	cr.lock()
	defer cr.mu.Unlock()

	cr.header = Header{}
	cr.meta = &Meta{}
	cr.rows = nil
	cr.filled = false
	cr.drained = false
}

func (cr *Result) Format(formatter Formatter, from, to int) ([]byte, error) {
	rows, start, err := cr.getRows(from, to)
	if err != nil {
		return nil, fmt.Errorf("cr.getRows: %w", err)
	}

	meta := cr.Meta()
	f, err := formatter.Format(cr.Header(), rows, &FormatterOptions{
		SchemaType: meta.SchemaType,
		ChunkStart: start,
		Meta:       meta,
	})
	if err != nil {
		return nil, fmt.Errorf("formatter.Format: %w", err)
	}

	return f, nil
}

func (cr *Result) Len() int {
	cr.lock()
	defer cr.mu.Unlock()
	return len(cr.rows)
}

func (cr *Result) IsEmpty() bool {
	cr.lock()
	defer cr.mu.Unlock()
	return !cr.filled
}

func (cr *Result) Header() Header {
	cr.lock()
	defer cr.mu.Unlock()
	return cr.header
}

// Meta never returns nil.
func (cr *Result) Meta() *Meta {
	cr.lock()
	defer cr.mu.Unlock()

	if cr.meta == nil {
		return &Meta{}
	}
	return cr.meta
}

// All returns every row of the result once it is fully drained.
func (cr *Result) All() ([]Row, error) {
	return cr.Rows(0, -1)
}

// Rows returns rows [from, to). Negative indices count from the end, -1 being
// one past the last row. The upper bound is clamped to the number of rows.
func (cr *Result) Rows(from, to int) ([]Row, error) {
	rows, _, err := cr.getRows(from, to)
	return rows, err
}

func (cr *Result) getRows(from, to int) ([]Row, int, error) {
	// a negative start needs a known end, so a positive end must come with a positive start
	if (from < 0) != (to < 0) && from < 0 {
		return nil, 0, ErrInvalidRange(from, to)
	}
	if (from < 0) == (to < 0) && from > to {
		return nil, 0, ErrInvalidRange(from, to)
	}

	cr.lock()
	defer cr.mu.Unlock()

	for !cr.drained && (to < 0 || to > len(cr.rows)) {
		if !cr.filled {
			// nothing is being drained
			break
		}
		cr.cond.Wait()
	}

	length := len(cr.rows)
	resolve := func(i int) int {
		if i < 0 {
			i += length + 1
		}
		return max(0, min(i, length))
	}
	from, to = resolve(from), resolve(to)

	return cr.rows[from:to], from, nil
}
