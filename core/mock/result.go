package mock

import (
	"fmt"
	"strconv"
	"time"

	"github.com/qstep/qsee/core"
	"github.com/qstep/qsee/core/builders"
)

type resultStreamConfig struct {
	nextSleep time.Duration
	meta      *core.Meta
	header    core.Header
}

type ResultStreamOption func(*resultStreamConfig)

// ResultStreamWithNextSleep delays every row by s.
func ResultStreamWithNextSleep(s time.Duration) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.nextSleep = s
	}
}

func ResultStreamWithMeta(meta *core.Meta) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.meta = meta
	}
}

func ResultStreamWithHeader(header core.Header) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.header = header
	}
}

// NewResultStream streams rows. Unless set with an option, the header has
// one "header_<i>" column per cell of the first row.
func NewResultStream(rows []core.Row, opts ...ResultStreamOption) *builders.ResultStream {
	config := &resultStreamConfig{meta: &core.Meta{}}
	if len(rows) > 0 {
		for i := range rows[0] {
			config.header = append(config.header, fmt.Sprintf("header_%d", i))
		}
	}
	for _, opt := range opts {
		opt(config)
	}

	next, hasNext := builders.NextRows(rows)
	sleepyNext := func() (core.Row, error) {
		time.Sleep(config.nextSleep)
		return next()
	}

	return builders.NewResultStreamBuilder().
		WithNextFunc(sleepyNext, hasNext).
		WithHeader(config.header).
		WithMeta(config.meta).
		Build()
}

// NewRows returns rows {"<i>", "row_<i>"} for i in [from, to).
func NewRows(from, to int) []core.Row {
	var rows []core.Row
	for i := from; i < to; i++ {
		rows = append(rows, core.Row{strconv.Itoa(i), "row_" + strconv.Itoa(i)})
	}
	return rows
}
