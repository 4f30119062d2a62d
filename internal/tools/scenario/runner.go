// Package scenario runs Lua membership scenarios against the reference ledger.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/louisbranch/business-network/internal/platform/timeouts"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
	"github.com/louisbranch/business-network/internal/services/membership/ledger"
	"github.com/louisbranch/business-network/internal/services/membership/storage/sqlite"
)

// Config controls scenario execution.
type Config struct {
	// DBPath is the ledger database; empty uses a throwaway temp file.
	DBPath     string
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    timeouts.Step,
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Runner executes Lua scenarios against a ledger.
type Runner struct {
	store      *sqlite.Store
	ledger     *ledger.Ledger
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
	cleanup    func()
}

// NewRunner opens the ledger database and prepares a scenario runner.
func NewRunner(ctx context.Context, cfg Config) (*Runner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanup := func() {}
	path := cfg.DBPath
	if path == "" {
		dir, err := os.MkdirTemp("", "membership-scenario-")
		if err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
		path = filepath.Join(dir, "ledger.db")
		cleanup = func() { _ = os.RemoveAll(dir) }
	}

	store, err := sqlite.Open(path)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("open ledger store: %w", err)
	}
	r, err := newRunnerWithStore(cfg, store)
	if err != nil {
		_ = store.Close()
		cleanup()
		return nil, err
	}
	r.cleanup = cleanup
	return r, nil
}

// newRunnerWithStore builds a Runner over an open store.
// Config defaults (logger, timeout) are applied here so they are testable.
func newRunnerWithStore(cfg Config, store *sqlite.Store) (*Runner, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = timeouts.Step
	}

	l, err := ledger.New(ledger.Config{
		Memberships: store,
		Verdicts:    store,
		Logger:      verboseLogger(cfg.Verbose, logger),
	})
	if err != nil {
		return nil, err
	}

	return &Runner{
		store:      store,
		ledger:     l,
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
		cleanup:    func() {},
	}, nil
}

func verboseLogger(verbose bool, logger *log.Logger) *log.Logger {
	if !verbose {
		return nil
	}
	return logger
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r == nil {
		return nil
	}
	err := r.store.Close()
	r.cleanup()
	return err
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}

	runner, err := NewRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{
		networkID:   defaultNetworkID,
		memberships: map[membership.Party]string{},
		clock:       scenarioEpoch,
	}

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
