package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/qstep/qsee/core"
	"github.com/qstep/qsee/core/builders"
	"github.com/qstep/qsee/quickstep"
)

var _ core.Driver = (*quickstepDriver)(nil)

// listRelationsCommand makes the shell print all relations as a table.
const listRelationsCommand = `\dt`

type quickstepDriver struct {
	engine *quickstep.Engine
	log    core.Logger
}

func (d *quickstepDriver) Query(ctx context.Context, query string) (core.ResultStream, error) {
	res, err := d.engine.Execute(ctx, query)
	if err != nil {
		return nil, err
	}

	return newQuickstepResultStream(res), nil
}

// newQuickstepResultStream converts the parsed shell output. Statements
// without a table produce a stream with no header and no rows.
func newQuickstepResultStream(res *quickstep.Result) *builders.ResultStream {
	meta := &core.Meta{
		SchemaType:    core.SchemaFul,
		NoTable:       res.Kind == quickstep.ResultKindEmpty,
		EngineTimeMS:  res.Meta.TimeMS,
		HasEngineTime: res.Meta.HasTime,
		Warnings:      len(res.Warnings),
	}

	if res.Kind == quickstep.ResultKindEmpty {
		return builders.NewResultStreamBuilder().
			WithNextFunc(builders.NextNil()).
			WithMeta(meta).
			Build()
	}

	return builders.NewResultStreamBuilder().
		WithNextFunc(builders.NextStrings(res.Rows)).
		WithHeader(core.Header(res.Header)).
		WithMeta(meta).
		Build()
}

func (d *quickstepDriver) Structure(ctx context.Context) ([]*core.Structure, error) {
	res, err := d.engine.Execute(ctx, listRelationsCommand)
	if err != nil {
		return nil, fmt.Errorf("d.engine.Execute: %w", err)
	}

	nameCol := 0
	for i, h := range res.Header {
		if strings.EqualFold(h, "name") {
			nameCol = i
			break
		}
	}

	var structure []*core.Structure
	for _, row := range res.Rows {
		if nameCol >= len(row) || row[nameCol] == "" {
			continue
		}
		structure = append(structure, &core.Structure{
			Name: row[nameCol],
			Type: core.StructureTypeTable,
		})
	}

	return structure, nil
}

// Close is a no-op: every query runs in its own engine process.
func (d *quickstepDriver) Close() {}
