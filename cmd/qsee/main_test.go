package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qstep/qsee/core"
	"github.com/qstep/qsee/core/mock"
	"github.com/qstep/qsee/handler"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "qsee-archive-")
	if err != nil {
		panic(err)
	}
	core.SetArchiveDir(dir)

	code := m.Run()

	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

var errBadStatement = errors.New("bad statement")

func newTestSession(t *testing.T, opts ...mock.AdapterOption) (*session, *bytes.Buffer) {
	t.Helper()

	opts = append(opts,
		mock.AdapterWithTables("foo"),
		mock.AdapterWithQuerySideEffect("broken;", func(context.Context) error { return errBadStatement }),
	)
	conn, err := core.NewConnection(&core.ConnectionParams{ID: "test"}, mock.NewAdapter(mock.NewRows(0, 2), opts...))
	require.NoError(t, err)

	var out bytes.Buffer
	h := handler.New(nopLogger{}, handler.WithStdout(&out))
	t.Cleanup(h.Close)

	return &session{
		handler: h,
		connID:  h.AddConnection(conn),
		format:  "csv",
		out:     &out,
	}, &out
}

func TestSession_Run(t *testing.T) {
	r := require.New(t)
	s, out := newTestSession(t)

	r.NoError(s.run(context.Background(), "select * from foo;"))
	assert.Equal(t, "header_0,header_1\n0,row_0\n1,row_1\n", out.String())

	r.ErrorIs(s.run(context.Background(), "broken;"), errBadStatement)
}

func TestSession_RunNoTable(t *testing.T) {
	s, out := newTestSession(t, mock.AdapterWithResultStreamOpts(
		mock.ResultStreamWithMeta(&core.Meta{NoTable: true, EngineTimeMS: 0.25, HasEngineTime: true}),
	))

	require.NoError(t, s.run(context.Background(), "insert into foo values (1, 'a');"))
	assert.Equal(t, "OK (0.250 ms)\n", out.String())
}

func TestSession_RunFile(t *testing.T) {
	s, _ := newTestSession(t)

	path := filepath.Join(t.TempDir(), "script.sql")
	require.NoError(t, os.WriteFile(path, []byte("broken;\nselect * from foo;\n"), 0o644))

	assert.Equal(t, 1, s.runFile(context.Background(), path, false))
	assert.Equal(t, 0, s.runFile(context.Background(), path, true))
	assert.Equal(t, 1, s.runFile(context.Background(), filepath.Join(t.TempDir(), "missing.sql"), true))
}

func TestSession_REPL(t *testing.T) {
	s, out := newTestSession(t)

	input := strings.Join([]string{
		"-- comment",
		".tables",
		"select *",
		"  from foo;",
		".format json",
		"select * from foo;",
		".quit",
		"select 'never';",
	}, "\n")

	s.repl(context.Background(), strings.NewReader(input))

	text := out.String()
	assert.Contains(t, text, "foo\ttable\n")
	assert.Contains(t, text, "0,row_0\n")
	assert.Contains(t, text, `"header_1": "row_1"`)
	assert.Equal(t, "json", s.format)

	calls, err := s.handler.ConnectionGetCalls(s.connID)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "select *\nfrom foo;", calls[0].GetQuery())
}
