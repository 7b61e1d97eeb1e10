// Package executor runs single prover trials.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fentz26/szsrun/internal/connectors"
	"github.com/fentz26/szsrun/internal/models"
)

// ErrEmptyCorpus is returned when there is nothing to sample from.
var ErrEmptyCorpus = errors.New("corpus has no cases")

// SpawnError reports that the prover process could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// BaseArgs are passed on every invocation: SZS status output, no proof.
var BaseArgs = []string{"--output_mode", "szs", "-p", "off"}

// BuildArgs returns the randomized-mode argument vector for spec. The case
// path is always last.
func BuildArgs(corpusRoot string, spec models.TrialSpec) []string {
	args := []string{"--include", corpusRoot}
	args = append(args, BaseArgs...)
	args = append(args,
		"--random_strategy", "on",
		"-t", strconv.Itoa(spec.TimeoutSeconds)+"s",
		spec.Case.Path,
	)
	return args
}

// Executor runs trials against one prover binary.
type Executor struct {
	binary    string
	corpus    *models.Corpus
	sampler   Sampler
	connector connectors.Connector
	logger    *zap.Logger

	captureStderr bool
	seq           int
}

// New creates an executor. A nil logger discards output.
func New(binary string, corpus *models.Corpus, sampler Sampler, conn connectors.Connector, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		binary:    binary,
		corpus:    corpus,
		sampler:   sampler,
		connector: conn,
		logger:    logger,
	}
}

// CaptureStderr appends the child's stderr to the captured lines. Memory
// checkers such as valgrind report on stderr.
func (e *Executor) CaptureStderr(on bool) {
	e.captureStderr = on
}

// Next draws the spec for the next trial: the case first, then the timeout.
func (e *Executor) Next() (models.TrialSpec, error) {
	if e.corpus == nil || e.corpus.Len() == 0 {
		return models.TrialSpec{}, ErrEmptyCorpus
	}
	c := e.corpus.Cases[e.sampler.NextCase(e.corpus.Len())]
	return models.TrialSpec{
		Case:           c,
		TimeoutSeconds: e.sampler.NextTimeout(),
	}, nil
}

// Run samples a spec and runs it.
func (e *Executor) Run(ctx context.Context) (*models.Trial, error) {
	spec, err := e.Next()
	if err != nil {
		return nil, err
	}
	return e.RunArgs(ctx, spec, BuildArgs(e.corpus.Root, spec))
}

// RunArgs runs the prover with an explicit argument vector. It is used by
// the fixed suite, whose options come from its table.
func (e *Executor) RunArgs(ctx context.Context, spec models.TrialSpec, args []string) (*models.Trial, error) {
	e.seq++
	trial := &models.Trial{
		ID:   uuid.New().String(),
		Seq:  e.seq,
		Spec: spec,
		Args: args,
	}

	e.logger.Debug("starting trial",
		zap.Int("seq", trial.Seq),
		zap.String("case", spec.Case.Path),
		zap.Int("timeout_s", spec.TimeoutSeconds),
		zap.Strings("args", args))

	res, err := e.connector.Execute(ctx, e.binary, args)
	if err != nil {
		return nil, &SpawnError{Command: e.binary, Err: err}
	}

	lines := SplitLines(res.Stdout)
	if e.captureStderr {
		lines = append(lines, SplitLines(res.Stderr)...)
	}
	trial.Result = models.TrialResult{
		ExitCode:    res.ExitCode,
		StdoutLines: lines,
		Elapsed:     res.Duration,
	}

	e.logger.Debug("trial finished",
		zap.Int("seq", trial.Seq),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("elapsed", res.Duration),
		zap.Int("lines", len(trial.Result.StdoutLines)))

	return trial, nil
}

// SplitLines splits captured output into lines without the trailing empty
// line produced by a final newline.
func SplitLines(out string) []string {
	out = strings.TrimSuffix(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
