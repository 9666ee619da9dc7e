package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/qstep/qsee/core"
	"github.com/qstep/qsee/quickstep"
)

// Register client
func init() {
	_ = register(NewQuickstep(), "quickstep", "qs")
}

var _ core.Adapter = (*Quickstep)(nil)

// Quickstep connects to the quickstep shell. The connection url is the path of
// the profile holding the engine flags; an empty url uses the profile in the
// working directory.
type Quickstep struct {
	log         core.Logger
	engineOpts  []quickstep.EngineOption
	noBootstrap bool
}

type QuickstepOption func(*Quickstep)

func QuickstepWithLogger(l core.Logger) QuickstepOption {
	return func(q *Quickstep) {
		q.log = l
	}
}

// QuickstepWithEngineOptions passes options to every engine the adapter creates.
func QuickstepWithEngineOptions(opts ...quickstep.EngineOption) QuickstepOption {
	return func(q *Quickstep) {
		q.engineOpts = append(q.engineOpts, opts...)
	}
}

// QuickstepWithoutBootstrap skips storage initialization on connect.
func QuickstepWithoutBootstrap() QuickstepOption {
	return func(q *Quickstep) {
		q.noBootstrap = true
	}
}

func NewQuickstep(opts ...QuickstepOption) *Quickstep {
	q := &Quickstep{
		log: nopLogger{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Quickstep) Connect(url string) (core.Driver, error) {
	cfg, err := quickstep.LoadConfig(url)
	if err != nil {
		var parseErr *quickstep.ConfigParseError
		if !errors.As(err, &parseErr) {
			return nil, fmt.Errorf("quickstep.LoadConfig: %w", err)
		}
		q.log.Warnf("bad profile, using default: %s", parseErr)
	}

	opts := append([]quickstep.EngineOption{quickstep.WithLogger(q.log)}, q.engineOpts...)
	engine, err := quickstep.NewEngine(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("quickstep.NewEngine: %w", err)
	}

	if !q.noBootstrap {
		ran, err := engine.Bootstrap(context.Background())
		if err != nil {
			return nil, fmt.Errorf("engine.Bootstrap: %w", err)
		}
		if ran {
			q.log.Infof("initialized quickstep storage at %q", cfg[quickstep.KeyStoragePath])
		}
	}

	return &quickstepDriver{
		engine: engine,
		log:    q.log,
	}, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
