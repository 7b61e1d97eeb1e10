// Package harness assembles the szsrun components into runnable modes.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fentz26/szsrun/internal/audit"
	"github.com/fentz26/szsrun/internal/classifier"
	"github.com/fentz26/szsrun/internal/config"
	"github.com/fentz26/szsrun/internal/connectors/localexec"
	"github.com/fentz26/szsrun/internal/corpus"
	"github.com/fentz26/szsrun/internal/executor"
	"github.com/fentz26/szsrun/internal/models"
	"github.com/fentz26/szsrun/internal/reporter"
	"github.com/fentz26/szsrun/internal/scheduler"
	"github.com/fentz26/szsrun/internal/store"
	"github.com/fentz26/szsrun/internal/suite"
)

// Random runs the randomized trial loop and returns the process exit code.
// A non-nil error is a configuration or execution error; a Fail verdict is
// reported through the exit code only.
func Random(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := checkSetup(cfg); err != nil {
		return models.ExitConfig, err
	}
	exe := cfg.ExecutablePath()

	problems, err := corpus.Build(cfg.Corpus.Root, cfg.Corpus.Suffix)
	if err != nil {
		return models.ExitConfig, configErr(ErrEmptyCorpus, err)
	}
	if problems.Len() == 0 {
		return models.ExitConfig, configErr(ErrEmptyCorpus,
			fmt.Errorf("no %s files under %s", cfg.Corpus.Suffix, cfg.Corpus.Root))
	}

	sampler, seed := newSampler(cfg)

	journal, err := store.New()
	if err != nil {
		return models.ExitExecution, fmt.Errorf("open trial journal: %w", err)
	}
	defer journal.Close()

	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))

	exec := executor.New(exe, problems, sampler, localexec.New("", exe), logger)
	rep := reporter.New(out, audit.NewRecorder(journal, runID), cfg.Scheduler.Budget, logger)
	sched := scheduler.New(exec, classifier.New(cfg.Markers), rep, &cfg.Scheduler, logger)

	rep.Start(exe, problems, seed)
	outcome, runErr := sched.Run(ctx)

	if err := rep.Summary(outcome.Trials, outcome.ExitCode); err != nil {
		logger.Warn("failed to print summary", zap.Error(err))
	}

	if runErr != nil {
		var spawnErr *executor.SpawnError
		if errors.As(runErr, &spawnErr) {
			return models.ExitExecution, &ExecutionError{Err: runErr}
		}
		return ExitCode(runErr), runErr
	}
	return outcome.ExitCode, nil
}

// Fixed replays the test table named in cfg.Suite and returns the process
// exit code.
func Fixed(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := checkSetup(cfg); err != nil {
		return models.ExitConfig, err
	}
	exe := cfg.ExecutablePath()

	rows, err := suite.Load(cfg.Suite.Table)
	if err != nil {
		return models.ExitConfig, configErr(ErrInvalidConfig, err)
	}

	binary := exe
	allowed := []string{exe}
	if cfg.Suite.Memcheck {
		if cfg.Suite.Wrapper == "" {
			return models.ExitConfig, configErr(ErrInvalidConfig, errors.New("suite.memcheck requires suite.wrapper"))
		}
		binary = cfg.Suite.Wrapper
		allowed = append(allowed, binary)
	}

	exec := executor.New(binary, nil, nil, localexec.New("", allowed...), logger)
	exec.CaptureStderr(cfg.Suite.Memcheck)

	runner := suite.NewRunner(exec, classifier.New(cfg.Markers), exe, cfg.Suite.Memcheck, out, logger)
	code, err := runner.Run(ctx, rows)
	if err != nil {
		var spawnErr *executor.SpawnError
		if errors.As(err, &spawnErr) {
			return models.ExitExecution, &ExecutionError{Err: err}
		}
		return ExitCode(err), err
	}
	return code, nil
}

func checkSetup(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return configErr(ErrInvalidConfig, err)
	}
	if err := cfg.CheckExecutable(); err != nil {
		return configErr(ErrNoExecutable, err)
	}
	return nil
}

func newSampler(cfg *config.Config) (executor.Sampler, uint64) {
	if cfg.Seed != nil {
		return executor.NewSampler(*cfg.Seed), *cfg.Seed
	}
	return executor.NewUnseededSampler()
}
