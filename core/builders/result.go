// Package builders assembles core.ResultStream values from iterator functions.
package builders

import (
	"sync"

	"github.com/qstep/qsee/core"
)

var _ core.ResultStream = (*ResultStream)(nil)

// ResultStream is a core.ResultStream backed by next/hasNext functions. It is
// closed when the rows run out or Next fails.
type ResultStream struct {
	next    func() (core.Row, error)
	hasNext func() bool
	onClose func()
	meta    *core.Meta
	header  core.Header
	closed  bool
	closeMu sync.Mutex
}

func (r *ResultStream) Meta() *core.Meta {
	return r.meta
}

func (r *ResultStream) Header() core.Header {
	return r.header
}

func (r *ResultStream) HasNext() bool {
	r.closeMu.Lock()
	closed := r.closed
	r.closeMu.Unlock()

	return !closed && r.hasNext()
}

func (r *ResultStream) Next() (core.Row, error) {
	row, err := r.next()
	if err != nil || row == nil {
		r.Close()
		return nil, err
	}
	return row, nil
}

// Close runs the close func once.
func (r *ResultStream) Close() {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.onClose()
}

// ResultStreamBuilder builds a ResultStream. Without a next func the stream
// has no rows.
type ResultStreamBuilder struct {
	stream *ResultStream
}

func NewResultStreamBuilder() *ResultStreamBuilder {
	next, hasNext := NextNil()

	return &ResultStreamBuilder{
		stream: &ResultStream{
			next:    next,
			hasNext: hasNext,
			onClose: func() {},
			meta:    &core.Meta{},
			header:  core.Header{},
		},
	}
}

func (b *ResultStreamBuilder) WithNextFunc(fn func() (core.Row, error), has func() bool) *ResultStreamBuilder {
	b.stream.next = fn
	b.stream.hasNext = has
	return b
}

func (b *ResultStreamBuilder) WithHeader(header core.Header) *ResultStreamBuilder {
	b.stream.header = header
	return b
}

func (b *ResultStreamBuilder) WithCloseFunc(fn func()) *ResultStreamBuilder {
	if fn != nil {
		b.stream.onClose = fn
	}
	return b
}

func (b *ResultStreamBuilder) WithMeta(meta *core.Meta) *ResultStreamBuilder {
	if meta != nil {
		b.stream.meta = meta
	}
	return b
}

// Build returns the stream. The builder must not be used afterwards.
func (b *ResultStreamBuilder) Build() *ResultStream {
	return b.stream
}
