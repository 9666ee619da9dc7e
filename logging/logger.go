package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/qstep/qsee/core"
)

var _ core.Logger = (*Logger)(nil)

// Logger writes "[level]: message" lines. Debug lines are written only when
// debug output is enabled.
type Logger struct {
	mu     sync.Mutex
	logger *log.Logger
	file   *os.File
	debug  bool
}

type Option func(*Logger)

// WithDebug enables debug lines (engine command lines among others).
func WithDebug(enabled bool) Option {
	return func(l *Logger) {
		l.debug = enabled
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts ...Option) *Logger {
	l := &Logger{
		logger: log.New(w, "", log.Ldate|log.Ltime),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewFile returns a logger appending to the file at path. The parent
// directory is created if needed.
func NewFile(path string, opts ...Option) (*Logger, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile: %w", err)
	}

	l := New(file, opts...)
	l.file = file
	return l, nil
}

func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
		l.file = nil
		l.logger.SetOutput(io.Discard)
	}
}

func (l *Logger) log(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.Printf("[%s]: %s", level, message)
}

func (l *Logger) Debugf(format string, args ...any) {
	if !l.debug {
		return
	}
	l.log("debug", fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.log("info", fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log("warn", fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log("error", fmt.Sprintf(format, args...))
}
