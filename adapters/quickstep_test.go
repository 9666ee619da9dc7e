package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qstep/qsee/core"
	"github.com/qstep/qsee/quickstep"
)

// scriptedRunner answers every engine run by looking up the first stdin line.
type scriptedRunner struct {
	outputs map[string]string
	stderr  string
	stdins  []string
	args    [][]string
}

func (s *scriptedRunner) Run(_ context.Context, _ string, args []string, stdin string) (string, string, error) {
	s.stdins = append(s.stdins, stdin)
	s.args = append(s.args, args)

	first, _, _ := strings.Cut(stdin, "\n")
	return s.outputs[first], s.stderr, nil
}

const relationsOutput = `+--------+-------+
| Name   | Type  |
+--------+-------+
| foo    | table |
| bar    | table |
+--------+-------+
Time: 0.120 ms
`

const selectOutput = `+----+------+
| id | name |
+----+------+
| 1  | a    |
| 2  | b    |
+----+------+
Time: 1.500 ms
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), quickstep.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestQuickstep(runner quickstep.Runner) *Quickstep {
	return NewQuickstep(QuickstepWithEngineOptions(
		quickstep.WithExecutable("quickstep_cli_shell"),
		quickstep.WithRunner(runner),
	))
}

func TestQuickstep_Connect(t *testing.T) {
	r := require.New(t)

	storage := filepath.Join(t.TempDir(), "qstor")
	profile := writeProfile(t, "storage_path "+storage+"\n")
	runner := &scriptedRunner{}

	drv, err := newTestQuickstep(runner).Connect(profile)
	r.NoError(err)
	r.NotNil(drv)

	// storage did not exist, so the engine was bootstrapped
	r.Equal([]string{"quit;"}, runner.stdins)
	r.Equal([]string{"-storage_path=" + storage, "-initialize_db=true"}, runner.args[0])
}

func TestQuickstep_ConnectBadProfile(t *testing.T) {
	r := require.New(t)

	profile := writeProfile(t, "storage_path a b\n")
	runner := &scriptedRunner{}

	drv, err := NewQuickstep(
		QuickstepWithoutBootstrap(),
		QuickstepWithEngineOptions(quickstep.WithExecutable("qs"), quickstep.WithRunner(runner)),
	).Connect(profile)
	r.NoError(err)

	qd, ok := drv.(*quickstepDriver)
	r.True(ok)
	r.Equal(quickstep.DefaultConfig(), qd.engine.Config())
	r.Empty(runner.stdins)
}

func TestQuickstepDriver_Query(t *testing.T) {
	runner := &scriptedRunner{
		outputs: map[string]string{
			"select * from foo;": selectOutput,
			"insert into foo values (3, 'c');": "Time: 0.300 ms\n",
		},
	}

	profile := writeProfile(t, "storage_path "+t.TempDir()+"\n")
	drv, err := newTestQuickstep(runner).Connect(profile)
	require.NoError(t, err)

	t.Run("table", func(t *testing.T) {
		stream, err := drv.Query(context.Background(), "select * from foo")
		require.NoError(t, err)

		assert.Equal(t, core.Header{"id", "name"}, stream.Header())
		assert.False(t, stream.Meta().NoTable)
		assert.True(t, stream.Meta().HasEngineTime)
		assert.Equal(t, 1.5, stream.Meta().EngineTimeMS)

		var rows []core.Row
		for stream.HasNext() {
			row, err := stream.Next()
			require.NoError(t, err)
			rows = append(rows, row)
		}
		assert.Equal(t, []core.Row{{"1", "a"}, {"2", "b"}}, rows)
	})

	t.Run("no table", func(t *testing.T) {
		stream, err := drv.Query(context.Background(), "insert into foo values (3, 'c');")
		require.NoError(t, err)

		assert.True(t, stream.Meta().NoTable)
		assert.Empty(t, stream.Header())
		assert.False(t, stream.HasNext())
	})
}

func TestQuickstepDriver_QueryError(t *testing.T) {
	runner := &scriptedRunner{
		outputs: map[string]string{
			"select * from nope;": "ERROR: Unrecognized relation nope (1 : 15)\n",
		},
	}
	drv := &quickstepDriver{log: nopLogger{}}

	engine, err := quickstep.NewEngine(nil, quickstep.WithExecutable("qs"), quickstep.WithRunner(runner))
	require.NoError(t, err)
	drv.engine = engine

	_, err = drv.Query(context.Background(), "select * from nope;")
	require.ErrorIs(t, err, quickstep.ErrQueryError)

	var engineErr *quickstep.EngineError
	require.True(t, errors.As(err, &engineErr))
	assert.Contains(t, engineErr.Text, "Unrecognized relation nope")
}

func TestQuickstepDriver_Structure(t *testing.T) {
	r := require.New(t)

	runner := &scriptedRunner{
		outputs: map[string]string{
			`\dt;`: relationsOutput,
		},
	}
	engine, err := quickstep.NewEngine(nil, quickstep.WithExecutable("qs"), quickstep.WithRunner(runner))
	r.NoError(err)

	structure, err := (&quickstepDriver{engine: engine, log: nopLogger{}}).Structure(context.Background())
	r.NoError(err)
	r.Equal([]*core.Structure{
		{Name: "foo", Type: core.StructureTypeTable},
		{Name: "bar", Type: core.StructureTypeTable},
	}, structure)
}

func TestMux(t *testing.T) {
	r := require.New(t)
	mux := new(Mux)

	for _, alias := range []string{"quickstep", "qs"} {
		adapter, err := mux.GetAdapter(alias)
		r.NoError(err)
		r.IsType(&Quickstep{}, adapter)
	}

	_, err := mux.GetAdapter("postgres")
	r.ErrorIs(err, ErrUnsupportedTypeAlias)

	r.ErrorIs(mux.AddAdapter(NewQuickstep()), errNoValidTypeAliases)
	r.ErrorIs(mux.AddAdapter(NewQuickstep(), ""), errNoValidTypeAliases)

	r.NoError(mux.AddAdapter(NewQuickstep(), "quickstep-test"))
	r.Contains(mux.Types(), "quickstep-test")
}
