package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type (
	// Adapter connects to an engine described by a url (for quickstep: the path
	// of the profile holding the engine flags).
	Adapter interface {
		Connect(url string) (Driver, error)
	}

	// Driver executes queries against a specific engine
	Driver interface {
		Query(context.Context, string) (ResultStream, error)
		Structure(context.Context) ([]*Structure, error)
		Close()
	}
)

type ConnectionID string

type Connection struct {
	params           *ConnectionParams
	unexpandedParams *ConnectionParams

	driver Driver
}

func (c *Connection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.params)
}

func NewConnection(params *ConnectionParams, adapter Adapter) (*Connection, error) {
	expanded := params.Expand()

	if expanded.ID == "" {
		expanded.ID = ConnectionID(uuid.New().String())
	}

	driver, err := adapter.Connect(expanded.URL)
	if err != nil {
		return nil, fmt.Errorf("adapter.Connect: %w", err)
	}

	return &Connection{
		params:           expanded,
		unexpandedParams: params,
		driver:           driver,
	}, nil
}

func (c *Connection) GetID() ConnectionID {
	return c.params.ID
}

func (c *Connection) GetName() string {
	return c.params.Name
}

func (c *Connection) GetType() string {
	return c.params.Type
}

func (c *Connection) GetURL() string {
	return c.params.URL
}

// GetParams returns the original source for this connection
func (c *Connection) GetParams() *ConnectionParams {
	return c.unexpandedParams
}

// Execute starts the query in the background. onEvent is triggered on every
// state change of the returned call.
func (c *Connection) Execute(query string, onEvent func(CallState, *Call)) *Call {
	exec := func(ctx context.Context) (ResultStream, error) {
		return c.driver.Query(ctx, query)
	}

	return newCallFromExecutor(exec, query, onEvent)
}

// ExecuteWithContext is like Execute, but the call is also canceled when ctx is done.
func (c *Connection) ExecuteWithContext(ctx context.Context, query string, onEvent func(CallState, *Call)) *Call {
	exec := func(callCtx context.Context) (ResultStream, error) {
		merged, cancel := context.WithCancel(callCtx)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()

		return c.driver.Query(merged, query)
	}

	return newCallFromExecutor(exec, query, onEvent)
}

func (c *Connection) GetStructure(ctx context.Context) ([]*Structure, error) {
	structure, err := c.driver.Structure(ctx)
	if err != nil {
		return nil, err
	}

	// fallback to not confuse users
	if len(structure) < 1 {
		structure = []*Structure{
			{
				Name: "no relations to show",
				Type: StructureTypeNone,
			},
		}
	}
	return structure, nil
}

func (c *Connection) Close() {
	c.driver.Close()
}
