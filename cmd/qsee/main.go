package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/qstep/qsee/adapters"
	"github.com/qstep/qsee/core"
	"github.com/qstep/qsee/handler"
	"github.com/qstep/qsee/logging"
	"github.com/qstep/qsee/quickstep"
)

var (
	flagConfig    = flag.String("config", quickstep.DefaultConfigFile, "Engine profile with one \"KEY VALUE\" pair per line")
	flagExe       = flag.String("exe", "", "Path to quickstep_cli_shell (default: $"+quickstep.ExecutableEnv+", $PATH, then search under ..)")
	flagFormat    = flag.String("format", "table", "Output format: table, boxed, csv, json, yaml, msgpack")
	flagQuery     = flag.String("query", "", "Run a single statement and exit")
	flagFile      = flag.String("file", "", "Run all statements of a script and exit")
	flagKeepGoing = flag.Bool("keep-going", false, "Continue a script after a failing statement")
	flagTimeout   = flag.Duration("timeout", 0, "Per statement timeout (0 disables it)")
	flagLog       = flag.String("log", "", "Append log output to this file instead of stderr")
	flagDebug     = flag.Bool("debug", false, "Log engine command lines and call state changes")
	flagHistory   = flag.String("history", defaultHistoryPath(), "Call history file (empty disables it)")
)

func defaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "qsee", "calllog.json")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	logger, err := newLogger(*flagLog, *flagDebug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log error:", err)
		return 1
	}
	defer logger.Close()

	var engineOpts []quickstep.EngineOption
	if *flagExe != "" {
		engineOpts = append(engineOpts, quickstep.WithExecutable(*flagExe))
	}
	err = new(adapters.Mux).AddAdapter(adapters.NewQuickstep(
		adapters.QuickstepWithLogger(logger),
		adapters.QuickstepWithEngineOptions(engineOpts...),
	), "quickstep", "qs")
	if err != nil {
		fmt.Fprintln(os.Stderr, "adapter error:", err)
		return 1
	}

	var handlerOpts []handler.Option
	if *flagHistory != "" {
		if err := os.MkdirAll(filepath.Dir(*flagHistory), 0o755); err == nil {
			core.SetArchiveDir(filepath.Join(filepath.Dir(*flagHistory), "archive"))
			handlerOpts = append(handlerOpts, handler.WithCallLog(*flagHistory))
		}
	}
	h := handler.New(logger, handlerOpts...)
	defer h.Close()

	connID, err := h.CreateConnection(connectionParams(*flagConfig))
	if err != nil {
		fmt.Fprintln(os.Stderr, "connection error:", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &session{
		handler: h,
		connID:  connID,
		format:  *flagFormat,
		timeout: *flagTimeout,
		out:     os.Stdout,
	}

	switch {
	case *flagQuery != "":
		if err := s.run(ctx, *flagQuery); err != nil {
			printError(err)
			return 1
		}
		return 0
	case *flagFile != "":
		return s.runFile(ctx, *flagFile, *flagKeepGoing)
	default:
		s.repl(ctx, os.Stdin)
		return 0
	}
}

func newLogger(path string, debug bool) (*logging.Logger, error) {
	if path == "" {
		return logging.New(os.Stderr, logging.WithDebug(debug)), nil
	}
	return logging.NewFile(path, logging.WithDebug(debug))
}

// connectionParams names the connection after the profile, so the call
// history of one profile survives restarts.
func connectionParams(profile string) *core.ConnectionParams {
	id := profile
	if abs, err := filepath.Abs(profile); err == nil {
		id = abs
	}

	return &core.ConnectionParams{
		ID:   core.ConnectionID("quickstep:" + id),
		Name: filepath.Base(profile),
		Type: "quickstep",
		URL:  profile,
	}
}

type session struct {
	handler *handler.Handler
	connID  core.ConnectionID
	format  string
	timeout time.Duration
	out     io.Writer
}

// run executes one statement and prints its result.
func (s *session) run(ctx context.Context, query string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	call, err := s.handler.ConnectionExecute(ctx, s.connID, query)
	if err != nil {
		return err
	}

	err = call.Wait(ctx)
	if err != nil {
		return err
	}

	res, err := call.GetResult()
	if err != nil {
		return fmt.Errorf("call.GetResult: %w", err)
	}

	if res.Meta().NoTable {
		if res.Meta().HasEngineTime {
			fmt.Fprintf(s.out, "OK (%.3f ms)\n", res.Meta().EngineTimeMS)
		} else {
			fmt.Fprintln(s.out, "OK")
		}
		return nil
	}

	return s.handler.CallStoreResult(call.GetID(), s.format, "stdout", 0, -1)
}

// runFile executes a script statement by statement. Unless keepGoing is set,
// the first failure stops the script.
func (s *session) runFile(ctx context.Context, path string, keepGoing bool) int {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		return 1
	}

	failed := 0
	for _, stmt := range splitStatements(string(b)) {
		if ctx.Err() != nil {
			return 1
		}

		err := s.run(ctx, stmt)
		if err == nil {
			continue
		}

		printError(err)
		failed++
		if !keepGoing {
			return 1
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d statement(s) failed\n", failed)
	}
	return 0
}

func printError(err error) {
	var engineErr *quickstep.EngineError
	if errors.As(err, &engineErr) {
		fmt.Fprintln(os.Stderr, engineErr.Error())
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
}
