package suite

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/fentz26/szsrun/internal/classifier"
	"github.com/fentz26/szsrun/internal/executor"
	"github.com/fentz26/szsrun/internal/models"
)

// Failure reasons printed next to FAIL.
const (
	ReasonStatus     = "status"
	ReasonReturnCode = "return code"
	ReasonMemcheck   = "valgrind"
)

// Runner executes table rows in order and stops at the first failure.
type Runner struct {
	exec       *executor.Executor
	classifier *classifier.Classifier
	prover     string
	memcheck   bool
	out        io.Writer
	logger     *zap.Logger
}

// NewRunner creates a runner. When memcheck is set, exec must launch the
// memory checker with the prover as its first argument and capture stderr.
func NewRunner(exec *executor.Executor, c *classifier.Classifier, prover string, memcheck bool, out io.Writer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		exec:       exec,
		classifier: c,
		prover:     prover,
		memcheck:   memcheck,
		out:        out,
		logger:     logger,
	}
}

// Args builds the argument vector for a row.
func (r *Runner) Args(row Row) []string {
	var args []string
	if r.memcheck {
		args = append(args, r.prover)
	}
	args = append(args, row.Path)
	args = append(args, executor.BaseArgs...)
	return append(args, row.OptionArgs()...)
}

// Run executes every row and returns the process exit code. An error means
// the suite could not run at all.
func (r *Runner) Run(ctx context.Context, rows []Row) (int, error) {
	fmt.Fprintf(r.out, "Testing %s...\n", r.prover)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return models.ExitOK, err
		}

		fmt.Fprintf(r.out, "Running test: %s\n", row.Name)
		args := r.Args(row)
		fmt.Fprintf(r.out, "args are %s\n", strings.Join(args, " "))

		spec := models.TrialSpec{Case: models.Case{Path: row.Path, ExpectedTag: row.Expected}}
		trial, err := r.exec.RunArgs(ctx, spec, args)
		if err != nil {
			return models.ExitExecution, err
		}
		fmt.Fprintln(r.out, trial.Result.ExitCode)

		if reason := r.check(trial.Result, row.Expected); reason != "" {
			fmt.Fprintf(r.out, "FAIL (%s)\n", reason)
			for _, line := range trial.Result.StdoutLines {
				fmt.Fprintf(r.out, "  %s\n", line)
			}
			r.logger.Error("fixed test failed",
				zap.String("test", row.Name),
				zap.String("reason", reason),
				zap.Int("exit_code", trial.Result.ExitCode))
			return models.ExitFail, nil
		}

		fmt.Fprintln(r.out, "PASS")
		r.logger.Info("fixed test passed",
			zap.String("test", row.Name),
			zap.Duration("elapsed", trial.Result.Elapsed))
	}
	return models.ExitOK, nil
}

// check returns the failure reason for a result, or "" when it passes.
func (r *Runner) check(result models.TrialResult, expected string) string {
	if result.ExitCode != 0 {
		return ReasonReturnCode
	}
	if r.classifier.ClassifyStrict(result, expected) != models.VerdictPass {
		return ReasonStatus
	}
	if r.memcheck && !r.classifier.MemcheckClean(result.StdoutLines) {
		return ReasonMemcheck
	}
	return ""
}
