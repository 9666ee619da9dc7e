package quickstep

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFatalCrash matches errors produced when the engine wrote to its error channel.
	ErrFatalCrash = errors.New("quickstep crashed")
	// ErrQueryError matches errors reported in-band by the engine ("ERROR: ...").
	ErrQueryError = errors.New("quickstep query error")

	ErrExecutableNotFound = errors.New("unable to find quickstep executable")
)

type ErrorKind int

const (
	ErrorKindFatalCrash ErrorKind = iota
	ErrorKindQuery
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindFatalCrash:
		return "fatal crash"
	case ErrorKindQuery:
		return "query error"
	default:
		return "unknown"
	}
}

// EngineError carries the raw diagnostic text of a failed invocation.
type EngineError struct {
	Kind ErrorKind
	Text string
}

func (e *EngineError) Error() string {
	text := strings.TrimSpace(e.Text)
	if e.Kind == ErrorKindFatalCrash {
		return fmt.Sprintf("fatal error:\n%s", text)
	}
	return text
}

func (e *EngineError) Is(target error) bool {
	switch target {
	case ErrFatalCrash:
		return e.Kind == ErrorKindFatalCrash
	case ErrQueryError:
		return e.Kind == ErrorKindQuery
	}
	return false
}

// ConfigParseError is returned together with the default config when a
// profile contains a line that is not a KEY VALUE pair.
type ConfigParseError struct {
	LineNo int
	Line   string
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("bad config line %d: %q", e.LineNo, e.Line)
}

// Warning describes a line inside a table render that had an unexpected shape.
type Warning struct {
	LineNo int
	Line   string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("malformed query results at line %d (%s): %q", w.LineNo, w.Reason, w.Line)
}
