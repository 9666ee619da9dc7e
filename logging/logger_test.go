package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qstep/qsee/logging"
)

func TestLogger_Levels(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	l := logging.New(&buf)

	l.Debugf("hidden %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	r.NotContains(out, "hidden")
	r.Contains(out, "[info]: info 2")
	r.Contains(out, "[warn]: warn 3")
	r.Contains(out, "[error]: error 4")

	buf.Reset()
	l = logging.New(&buf, logging.WithDebug(true))
	l.Debugf("quickstep_cli_shell %s", "-storage_path=/tmp/qstor")
	r.Contains(buf.String(), "[debug]: quickstep_cli_shell -storage_path=/tmp/qstor")
}

func TestLogger_File(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "logs", "qsee.log")

	l, err := logging.NewFile(path)
	r.NoError(err)
	l.Infof("first")
	l.Close()

	l, err = logging.NewFile(path)
	r.NoError(err)
	l.Infof("second")
	l.Close()

	// writes after close are dropped
	l.Infof("third")

	b, err := os.ReadFile(path)
	r.NoError(err)
	r.Contains(string(b), "[info]: first")
	r.Contains(string(b), "[info]: second")
	r.NotContains(string(b), "third")
}
