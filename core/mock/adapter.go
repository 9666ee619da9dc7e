// Package mock provides an in-memory adapter for tests of the call machinery.
package mock

import (
	"context"
	"fmt"
	"slices"

	"github.com/qstep/qsee/core"
)

var (
	_ core.Adapter = (*Adapter)(nil)
	_ core.Driver  = (*driver)(nil)
)

// Adapter connects to a driver that answers every query with the same rows.
type Adapter struct {
	rows        []core.Row
	sideEffects map[string]func(context.Context) error
	tables      []string
	connectErr  error
	streamOpts  []ResultStreamOption
}

type AdapterOption func(*Adapter)

// AdapterWithQuerySideEffect runs sideEffect before query returns. An error of
// the side effect fails the query.
func AdapterWithQuerySideEffect(query string, sideEffect func(context.Context) error) AdapterOption {
	return func(a *Adapter) {
		if _, ok := a.sideEffects[query]; ok {
			panic("side effect already registered for query: " + query)
		}
		a.sideEffects[query] = sideEffect
	}
}

// AdapterWithTables makes Structure report the given relations.
func AdapterWithTables(tables ...string) AdapterOption {
	return func(a *Adapter) {
		a.tables = append(a.tables, tables...)
	}
}

// AdapterWithConnectError makes Connect fail with err.
func AdapterWithConnectError(err error) AdapterOption {
	return func(a *Adapter) {
		a.connectErr = err
	}
}

// AdapterWithResultStreamOpts applies opts to every returned stream.
func AdapterWithResultStreamOpts(opts ...ResultStreamOption) AdapterOption {
	return func(a *Adapter) {
		a.streamOpts = append(a.streamOpts, opts...)
	}
}

func NewAdapter(rows []core.Row, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		rows:        rows,
		sideEffects: make(map[string]func(context.Context) error),
	}
	for _, opt := range opts {
		opt(a)
	}
	slices.Sort(a.tables)

	return a
}

func (a *Adapter) Connect(_ string) (core.Driver, error) {
	if a.connectErr != nil {
		return nil, a.connectErr
	}
	return &driver{adapter: a}, nil
}

type driver struct {
	adapter *Adapter
}

func (d *driver) Query(ctx context.Context, query string) (core.ResultStream, error) {
	if effect, ok := d.adapter.sideEffects[query]; ok {
		if err := effect(ctx); err != nil {
			return nil, fmt.Errorf("side effect error: %w", err)
		}
	}

	return NewResultStream(d.adapter.rows, d.adapter.streamOpts...), nil
}

func (d *driver) Structure(context.Context) ([]*core.Structure, error) {
	structure := make([]*core.Structure, len(d.adapter.tables))
	for i, table := range d.adapter.tables {
		structure[i] = &core.Structure{Name: table, Type: core.StructureTypeTable}
	}
	return structure, nil
}

func (d *driver) Close() {}
