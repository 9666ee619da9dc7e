package quickstep

// Logger receives engine diagnostics.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

type engineConfig struct {
	executable string
	runner     Runner
	logger     Logger
}

type EngineOption func(*engineConfig)

// WithExecutable sets the path of the engine binary and skips discovery.
func WithExecutable(path string) EngineOption {
	return func(c *engineConfig) {
		c.executable = path
	}
}

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) EngineOption {
	return func(c *engineConfig) {
		if r != nil {
			c.runner = r
		}
	}
}

func WithLogger(l Logger) EngineOption {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
