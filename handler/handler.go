package handler

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/qstep/qsee/adapters"
	"github.com/qstep/qsee/core"
	"github.com/qstep/qsee/core/format"
)

// callWaitTimeout bounds how long Close waits for unfinished calls, which
// are canceled afterwards.
const callWaitTimeout = 10 * time.Second

// Handler keeps the session state of the shell: open connections and the
// calls issued on them.
type Handler struct {
	log    core.Logger
	events *eventBus
	stdout io.Writer

	history *callLog

	connections map[core.ConnectionID]*core.Connection
	calls       map[core.CallID]*core.Call
	// call ids per connection, in execution order
	callOrder map[core.ConnectionID][]core.CallID

	current core.ConnectionID
}

type Option func(*Handler)

// WithCallLog persists the call history to path on Close and restores it on New.
func WithCallLog(path string) Option {
	return func(h *Handler) {
		h.history = &callLog{path: path}
	}
}

// WithStdout sets the writer used for the "stdout" output.
func WithStdout(w io.Writer) Option {
	return func(h *Handler) {
		h.stdout = w
	}
}

func New(logger core.Logger, opts ...Option) *Handler {
	h := &Handler{
		log:    logger,
		events: &eventBus{log: logger},
		stdout: os.Stdout,

		connections: make(map[core.ConnectionID]*core.Connection),
		calls:       make(map[core.CallID]*core.Call),
		callOrder:   make(map[core.ConnectionID][]core.CallID),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.history != nil {
		if err := h.restoreHistory(); err != nil {
			h.log.Warnf("h.restoreHistory: %s", err)
		}
	}

	return h
}

func (h *Handler) restoreHistory() error {
	store, err := h.history.load()
	if err != nil {
		return err
	}

	for connID, calls := range store {
		for _, c := range calls {
			h.calls[c.GetID()] = c
			h.callOrder[connID] = append(h.callOrder[connID], c.GetID())
		}
	}
	return nil
}

func (h *Handler) storeHistory() error {
	store := make(map[core.ConnectionID][]*core.Call)
	for connID := range h.callOrder {
		calls, err := h.ConnectionGetCalls(connID)
		if err != nil || len(calls) < 1 {
			continue
		}
		store[connID] = calls
	}

	return h.history.save(store)
}

func (h *Handler) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), callWaitTimeout)
	defer cancel()
	for _, c := range h.calls {
		_ = c.Wait(ctx)
	}

	if h.history != nil {
		if err := h.storeHistory(); err != nil {
			h.log.Warnf("h.storeHistory: %s", err)
		}
	}

	for _, c := range h.connections {
		c.Close()
	}
}

func (h *Handler) CreateConnection(params *core.ConnectionParams) (core.ConnectionID, error) {
	c, err := adapters.NewConnection(params)
	if err != nil {
		return "", fmt.Errorf("adapters.NewConnection: %w", err)
	}

	return h.AddConnection(c), nil
}

// AddConnection registers an already created connection and makes it current.
func (h *Handler) AddConnection(c *core.Connection) core.ConnectionID {
	if old, ok := h.connections[c.GetID()]; ok && old != c {
		go old.Close()
	}

	h.connections[c.GetID()] = c
	_ = h.SetCurrentConnection(c.GetID())

	return c.GetID()
}

func (h *Handler) GetConnections(ids []core.ConnectionID) []*core.Connection {
	var conns []*core.Connection
	for id, c := range h.connections {
		if len(ids) == 0 || slices.Contains(ids, id) {
			conns = append(conns, c)
		}
	}
	return conns
}

func (h *Handler) GetCurrentConnection() (*core.Connection, error) {
	return h.connection(h.current)
}

func (h *Handler) SetCurrentConnection(connID core.ConnectionID) error {
	if _, err := h.connection(connID); err != nil {
		return err
	}

	if h.current != connID {
		h.current = connID
		h.events.CurrentConnectionChanged(connID)
	}
	return nil
}

// ConnectionExecute starts the query on the connection. The call is canceled
// when ctx is done.
func (h *Handler) ConnectionExecute(ctx context.Context, connID core.ConnectionID, query string) (*core.Call, error) {
	c, err := h.connection(connID)
	if err != nil {
		return nil, err
	}

	call := c.ExecuteWithContext(ctx, query, func(state core.CallState, cl *core.Call) {
		// failures reach the caller through Wait, this only traces them
		if err := cl.Err(); err != nil && state != core.CallStateCanceled {
			h.log.Debugf("call %s failed: %s", cl.GetID(), err)
		}

		h.events.CallStateChanged(cl)
	})

	h.calls[call.GetID()] = call
	h.callOrder[connID] = append(h.callOrder[connID], call.GetID())

	_ = h.SetCurrentConnection(connID)

	return call, nil
}

func (h *Handler) ConnectionGetCalls(connID core.ConnectionID) ([]*core.Call, error) {
	ids, ok := h.callOrder[connID]
	if !ok {
		// restored history may belong to connections not opened in this session
		if _, err := h.connection(connID); err != nil {
			return nil, err
		}
	}

	calls := make([]*core.Call, 0, len(ids))
	for _, id := range ids {
		if c, ok := h.calls[id]; ok {
			calls = append(calls, c)
		}
	}
	return calls, nil
}

func (h *Handler) ConnectionGetParams(connID core.ConnectionID) (*core.ConnectionParams, error) {
	c, err := h.connection(connID)
	if err != nil {
		return nil, err
	}

	return c.GetParams(), nil
}

func (h *Handler) ConnectionGetStructure(ctx context.Context, connID core.ConnectionID) ([]*core.Structure, error) {
	c, err := h.connection(connID)
	if err != nil {
		return nil, err
	}

	layout, err := c.GetStructure(ctx)
	if err != nil {
		return nil, fmt.Errorf("c.GetStructure: %w", err)
	}

	return layout, nil
}

func (h *Handler) CallCancel(callID core.CallID) error {
	call, err := h.call(callID)
	if err != nil {
		return err
	}

	call.Cancel()
	return nil
}

func (h *Handler) connection(id core.ConnectionID) (*core.Connection, error) {
	c, ok := h.connections[id]
	if !ok {
		return nil, fmt.Errorf("unknown connection with id: %q", id)
	}
	return c, nil
}

func (h *Handler) call(id core.CallID) (*core.Call, error) {
	c, ok := h.calls[id]
	if !ok {
		return nil, fmt.Errorf("unknown call with id: %q", id)
	}
	return c, nil
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string) (core.Formatter, error) {
	switch name {
	case "table":
		return format.NewTable(), nil
	case "boxed":
		return format.NewBoxedTable(), nil
	case "json":
		return format.NewJSON(), nil
	case "csv":
		return format.NewCSV(), nil
	case "yaml":
		return format.NewYAML(), nil
	case "msgpack":
		return format.NewMsgPack(), nil
	default:
		return nil, fmt.Errorf("format %q is not supported", name)
	}
}

// CallStoreResult formats the rows [from, to) of the call's result and writes
// them to out ("stdout" or "file", with the path as the first arg).
func (h *Handler) CallStoreResult(callID core.CallID, fmat, out string, from, to int, arg ...any) error {
	call, err := h.call(callID)
	if err != nil {
		return err
	}

	formatter, err := NewFormatter(fmat)
	if err != nil {
		return fmt.Errorf("store output: %w", err)
	}

	writer, closeOutput, err := h.openOutput(out, arg...)
	if err != nil {
		return err
	}
	defer closeOutput()

	res, err := call.GetResult()
	if err != nil {
		return fmt.Errorf("call.GetResult: %w", err)
	}

	text, err := res.Format(formatter, from, to)
	if err != nil {
		return fmt.Errorf("res.Format: %w", err)
	}

	_, err = writer.Write(text)
	if err != nil {
		return fmt.Errorf("writer.Write: %w", err)
	}

	return nil
}

// openOutput resolves an output name to a writer. The returned close func must
// always be called.
func (h *Handler) openOutput(output string, arg ...any) (io.Writer, func(), error) {
	nop := func() {}

	switch output {
	case "stdout":
		return h.stdout, nop, nil
	case "file":
		var path string
		if len(arg) > 0 {
			path, _ = arg[0].(string)
		}
		if path == "" {
			return nil, nop, fmt.Errorf("no output path provided")
		}

		file, err := os.Create(path)
		if err != nil {
			return nil, nop, fmt.Errorf("os.Create: %w", err)
		}
		return file, func() { file.Close() }, nil
	default:
		return nil, nop, fmt.Errorf("store output: %q is not supported", output)
	}
}
