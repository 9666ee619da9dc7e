package core

// Logger receives diagnostics: engine command lines (debug), skipped table
// lines (warn) and failed calls (error).
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
