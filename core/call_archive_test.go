package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func useArchiveDir(t *testing.T) {
	t.Helper()

	old := ArchiveDir()
	SetArchiveDir(t.TempDir())
	t.Cleanup(func() { SetArchiveDir(old) })
}

func TestArchive_Chunks(t *testing.T) {
	r := require.New(t)
	useArchiveDir(t)

	// spans three chunk files
	numOfRows := 2*archiveChunkSize + 3

	result := new(Result)
	stream := newMockedResultStream(numOfRows, 0)
	r.NoError(result.SetIter(stream, nil))

	a := newArchive("chunked")
	r.True(a.isEmpty())
	r.NoError(a.setResult(result))
	r.False(a.isEmpty())

	// a new handle sees the stored result
	a = newArchive("chunked")
	r.False(a.isEmpty())

	iter, err := a.getResult()
	r.NoError(err)
	r.Equal(Header{"id", "name"}, iter.Header())
	r.Equal(1.5, iter.Meta().EngineTimeMS)

	restored := new(Result)
	r.NoError(restored.SetIter(iter, nil))

	rows, err := restored.All()
	r.NoError(err)
	r.Equal(stream.Range(0, numOfRows), rows)
}

func TestArchive_Empty(t *testing.T) {
	r := require.New(t)
	useArchiveDir(t)

	_, err := newArchive("missing").getResult()
	r.ErrorIs(err, errArchiveEmpty)

	result := new(Result)
	r.NoError(result.SetIter(newMockedResultStream(0, 0), nil))

	a := newArchive("no-rows")
	r.NoError(a.setResult(result))

	iter, err := a.getResult()
	r.NoError(err)
	r.False(iter.HasNext())
	_, err = iter.Next()
	r.Error(err)
}
