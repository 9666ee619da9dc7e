package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type CallID string

// Call is a single asynchronous query execution. Its state moves forward on
// a background goroutine; every change is reported to the onEvent callback in
// order.
type Call struct {
	id        CallID
	query     string
	timestamp time.Time

	// mu guards the fields that change while the call runs
	mu        sync.Mutex
	state     CallState
	timeTaken time.Duration
	err       error

	result  *Result
	archive *archive
	events  *eventQueue
	cancel  context.CancelFunc

	done chan struct{}
}

// eventQueue hands state changes to a single consumer in the order they were
// applied. Pushes never block and are dropped after close.
type eventQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []CallState
	closed  bool
}

func newEventQueue() *eventQueue {
	q := new(eventQueue)
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *eventQueue) push(state CallState) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.pending = append(q.pending, state)
	q.cond.Signal()
}

func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// next blocks until a state is queued. It returns false once the queue is
// closed and drained.
func (q *eventQueue) next() (CallState, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.pending) == 0 {
		return CallStateUnknown, false
	}

	state := q.pending[0]
	q.pending = q.pending[1:]
	return state, true
}

func newCallFromExecutor(executor func(context.Context) (ResultStream, error), query string, onEvent func(CallState, *Call)) *Call {
	id := CallID(uuid.New().String())
	ctx, cancel := context.WithCancel(context.Background())

	c := &Call{
		id:        id,
		query:     query,
		state:     CallStateUnknown,
		timestamp: time.Now(),

		result:  new(Result),
		archive: newArchive(id),
		events:  newEventQueue(),
		cancel:  cancel,

		done: make(chan struct{}),
	}

	go c.dispatch(onEvent)
	go c.run(ctx, executor)

	return c
}

// dispatch forwards applied states to onEvent.
func (c *Call) dispatch(onEvent func(CallState, *Call)) {
	for {
		state, ok := c.events.next()
		if !ok {
			return
		}
		if onEvent != nil {
			onEvent(state, c)
		}
	}
}

// setState moves the call to state and queues the event. Once the call failed
// or was canceled, later states are ignored. Must be called with c.mu held.
func (c *Call) setState(state CallState) {
	if c.state.isFailure() {
		return
	}
	c.state = state
	c.events.push(state)
}

func (c *Call) transition(state CallState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setState(state)
}

func (c *Call) run(ctx context.Context, executor func(context.Context) (ResultStream, error)) {
	defer c.events.close()

	// the final state is in place before done is closed, so waiters see it
	finish := func(state CallState, err error) {
		c.mu.Lock()
		if !c.state.isFailure() {
			c.timeTaken = time.Since(c.timestamp)
			c.err = err
			c.setState(state)
		}
		c.mu.Unlock()
		close(c.done)
	}

	c.transition(CallStateExecuting)
	iter, err := executor(ctx)
	if err != nil {
		finish(CallStateExecutingFailed, err)
		return
	}

	err = c.result.SetIter(iter, func() { c.transition(CallStateRetrieving) })
	if err != nil {
		finish(CallStateRetrievingFailed, err)
		return
	}

	err = c.archive.setResult(c.result)
	if err != nil {
		finish(CallStateArchiveFailed, err)
		return
	}

	finish(CallStateArchived, nil)
}

func (c *Call) GetID() CallID {
	return c.id
}

func (c *Call) GetQuery() string {
	return c.query
}

func (c *Call) GetState() CallState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Call) GetTimeTaken() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeTaken
}

func (c *Call) GetTimestamp() time.Time {
	return c.timestamp
}

// Err is the error the call failed with, if any.
func (c *Call) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done is closed when the call finishes.
func (c *Call) Done() chan struct{} {
	return c.done
}

// Wait blocks until the call finishes or ctx is done. On ctx expiry the call
// is canceled.
func (c *Call) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Err()
	case <-ctx.Done():
		c.Cancel()
		return ctx.Err()
	}
}

// Cancel stops a call that is still executing. Calls that already retrieve
// rows run to completion.
func (c *Call) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state > CallStateExecuting || c.cancel == nil {
		return
	}

	c.timeTaken = time.Since(c.timestamp)
	c.err = context.Canceled
	c.setState(CallStateCanceled)
	c.cancel()
}

// GetResult returns the result of the call, restoring it from the archive if
// it is no longer held in memory.
func (c *Call) GetResult() (*Result, error) {
	if !c.result.IsEmpty() {
		return c.result, nil
	}

	iter, err := c.archive.getResult()
	if err != nil {
		return nil, fmt.Errorf("c.archive.getResult: %w", err)
	}
	if err := c.result.SetIter(iter, nil); err != nil {
		return nil, fmt.Errorf("c.result.SetIter: %w", err)
	}

	return c.result, nil
}

// persistedCall is the JSON form of a finished call in the call log.
type persistedCall struct {
	ID          CallID `json:"id"`
	Query       string `json:"query"`
	State       string `json:"state"`
	TimeTakenUS int64  `json:"time_taken_us"`
	TimestampUS int64  `json:"timestamp_us"`
	Error       string `json:"error,omitempty"`
}

func (c *Call) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := persistedCall{
		ID:          c.id,
		Query:       c.query,
		State:       c.state.String(),
		TimeTakenUS: c.timeTaken.Microseconds(),
		TimestampUS: c.timestamp.UnixMicro(),
	}
	if c.err != nil {
		p.Error = c.err.Error()
	}

	return json.Marshal(p)
}

// UnmarshalJSON restores a finished call. Its result is read lazily from the
// archive; an archived call whose archive is gone becomes unknown.
func (c *Call) UnmarshalJSON(data []byte) error {
	var p persistedCall
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	archive := newArchive(p.ID)
	state := CallStateFromString(p.State)
	if state == CallStateArchived && archive.isEmpty() {
		state = CallStateUnknown
	}

	var callErr error
	if p.Error != "" {
		callErr = errors.New(p.Error)
	}

	done := make(chan struct{})
	close(done)

	c.id = p.ID
	c.query = p.Query
	c.state = state
	c.timeTaken = time.Duration(p.TimeTakenUS) * time.Microsecond
	c.timestamp = time.UnixMicro(p.TimestampUS)
	c.err = callErr
	c.result = new(Result)
	c.archive = archive
	c.done = done

	return nil
}
