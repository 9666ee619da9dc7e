package core

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

const (
	// archiveChunkSize is the number of rows stored per chunk file
	archiveChunkSize = 500
	// archiveWriters limits concurrent chunk writes
	archiveWriters = 10
)

var errArchiveEmpty = errors.New("archive does not contain a result")

// archiveBasePath holds one directory of gob files per archived call:
//
//	<base>/<call id>/header.gob
//	<base>/<call id>/meta.gob
//	<base>/<call id>/rows_<n>.gob
var archiveBasePath = filepath.Join(os.TempDir(), "qsee-history")

// SetArchiveDir changes where finished results are archived.
// It should be called before any query is executed.
func SetArchiveDir(dir string) {
	if dir != "" {
		archiveBasePath = dir
	}
}

// ArchiveDir returns the directory finished results are archived in.
func ArchiveDir() string {
	return archiveBasePath
}

type archive struct {
	id       CallID
	isFilled bool
}

func newArchive(id CallID) *archive {
	a := &archive{id: id}
	_, err := os.Stat(a.path(headerFileName))
	a.isFilled = err == nil
	return a
}

const (
	headerFileName = "header.gob"
	metaFileName   = "meta.gob"
)

func (a *archive) path(name string) string {
	return filepath.Join(archiveBasePath, string(a.id), name)
}

func (a *archive) chunkPath(i int) string {
	return a.path(fmt.Sprintf("rows_%d.gob", i))
}

func (a *archive) isEmpty() bool {
	return !a.isFilled
}

func writeGob(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(v); err != nil {
		return fmt.Errorf("encoder.Encode: %w", err)
	}
	return nil
}

func readGob(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("os.Open: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("decoder.Decode: %w", err)
	}
	return nil
}

// setResult stores a drained result on disk. Row chunks are written
// concurrently, the header last, so a present header marks a complete archive.
func (a *archive) setResult(result *Result) error {
	if a.isFilled {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(a.path(headerFileName)), os.ModePerm)
	if err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	rows, err := result.All()
	if err != nil {
		return fmt.Errorf("result.All: %w", err)
	}

	g := &errgroup.Group{}
	g.SetLimit(archiveWriters)
	for i := 0; i*archiveChunkSize < len(rows); i++ {
		chunk := rows[i*archiveChunkSize : min((i+1)*archiveChunkSize, len(rows))]
		g.Go(func() error {
			return writeGob(a.chunkPath(i), chunk)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := writeGob(a.path(metaFileName), *result.Meta()); err != nil {
		return err
	}
	if err := writeGob(a.path(headerFileName), result.Header()); err != nil {
		return err
	}

	a.isFilled = true
	return nil
}

// getResult loads the archived result as a ResultStream.
func (a *archive) getResult() (*archiveRows, error) {
	if !a.isFilled {
		return nil, errArchiveEmpty
	}

	r := &archiveRows{archive: a}
	if err := readGob(a.path(headerFileName), &r.header); err != nil {
		return nil, err
	}

	var meta Meta
	if err := readGob(a.path(metaFileName), &meta); err != nil {
		return nil, err
	}
	r.meta = &meta

	return r, nil
}

var _ ResultStream = (*archiveRows)(nil)

// archiveRows reads the chunk files one at a time.
type archiveRows struct {
	archive *archive
	header  Header
	meta    *Meta

	chunk     []Row
	nextChunk int
	err       error
}

func (r *archiveRows) Meta() *Meta {
	return r.meta
}

func (r *archiveRows) Header() Header {
	return r.header
}

func (r *archiveRows) HasNext() bool {
	for len(r.chunk) == 0 {
		if r.err != nil {
			return false
		}

		path := r.archive.chunkPath(r.nextChunk)
		if _, err := os.Stat(path); err != nil {
			return false
		}

		r.err = readGob(path, &r.chunk)
		r.nextChunk++
	}
	return true
}

func (r *archiveRows) Next() (Row, error) {
	if !r.HasNext() {
		if r.err != nil {
			return nil, r.err
		}
		return nil, errors.New("no next row")
	}

	row := r.chunk[0]
	r.chunk = r.chunk[1:]
	return row, nil
}

func (r *archiveRows) Close() {}
