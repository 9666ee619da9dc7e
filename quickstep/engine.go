package quickstep

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// ExecutableName is the name of the engine's interactive shell binary.
	ExecutableName = "quickstep_cli_shell"
	// ExecutableEnv can point to the engine binary.
	ExecutableEnv = "QUICKSTEP_EXE"

	quitCommand = "quit;"
)

// Engine issues queries to the quickstep shell. Every query runs in its own
// process, started with the flags of the session config.
type Engine struct {
	executable string
	config     ConfigMap
	runner     Runner
	log        Logger
}

// NewEngine creates an engine for the given config. The executable is looked up
// unless it was set with WithExecutable.
func NewEngine(cfg ConfigMap, opts ...EngineOption) (*Engine, error) {
	config := engineConfig{
		runner: &ExecRunner{},
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(&config)
	}

	if cfg == nil {
		cfg = DefaultConfig()
	}

	exe := config.executable
	if exe == "" {
		found, err := FindExecutable()
		if err != nil {
			return nil, err
		}
		exe = found
	}

	return &Engine{
		executable: exe,
		config:     cfg,
		runner:     config.runner,
		log:        config.logger,
	}, nil
}

// FindExecutable locates the engine binary: the QUICKSTEP_EXE environment
// variable first, then PATH, then a search below the parent directory.
func FindExecutable() (string, error) {
	if exe := os.Getenv(ExecutableEnv); exe != "" {
		return exe, nil
	}

	if exe, err := exec.LookPath(ExecutableName); err == nil {
		return exe, nil
	}

	var found string
	errFound := errors.New("found")
	err := filepath.WalkDir("..", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable directories are skipped
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && d.Name() == ExecutableName {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("filepath.WalkDir: %w", err)
	}
	if found == "" {
		return "", ErrExecutableNotFound
	}

	return found, nil
}

func (e *Engine) Executable() string {
	return e.executable
}

func (e *Engine) Config() ConfigMap {
	return e.config
}

// Flags returns the command line flags every engine process is started with.
func (e *Engine) Flags() []string {
	return FlagTokens(e.config)
}

// Bootstrap runs the engine once with -initialize_db=true if the storage
// directory does not exist yet. It reports whether an initializing run happened.
func (e *Engine) Bootstrap(ctx context.Context) (bool, error) {
	if !NeedsBootstrap(e.config) {
		return false, nil
	}

	e.log.Debugf("initializing storage at %q", e.config[KeyStoragePath])

	args := append(e.Flags(), "-"+KeyInitializeDB+"=true")
	_, stderr, err := e.runner.Run(ctx, e.executable, args, quitCommand)
	if err != nil {
		return false, fmt.Errorf("e.runner.Run: %w", err)
	}
	if stderr != "" {
		return false, &EngineError{Kind: ErrorKindFatalCrash, Text: stderr}
	}

	return true, nil
}

// Execute sends a single statement to a fresh engine process and parses its
// output. Failures are returned as *EngineError.
func (e *Engine) Execute(ctx context.Context, query string) (*Result, error) {
	stdin := Terminate(query) + "\n" + quitCommand + "\n"
	args := e.Flags()

	e.log.Debugf("%s %s < %q", e.executable, strings.Join(args, " "), Terminate(query))

	stdout, stderr, err := e.runner.Run(ctx, e.executable, args, stdin)
	if err != nil {
		return nil, fmt.Errorf("e.runner.Run: %w", err)
	}

	res, err := ParseOutput(stdout, stderr)
	if err != nil {
		return nil, err
	}

	for _, w := range res.Warnings {
		e.log.Warnf("%s", w)
	}

	return res, nil
}

// Terminate appends the statement terminator if the query lacks one.
func Terminate(query string) string {
	query = strings.TrimSpace(query)
	if strings.HasSuffix(query, ";") {
		return query
	}
	return query + ";"
}
