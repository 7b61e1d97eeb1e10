package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/szsrun/internal/models"
)

// Budget is the remaining wall-clock allowance of a run.
type Budget struct {
	timeLeft time.Duration
}

// NewBudget returns a budget holding total.
func NewBudget(total time.Duration) Budget {
	return Budget{timeLeft: total}
}

// HasTimeRemaining reports whether another trial may start.
func (b *Budget) HasTimeRemaining() bool {
	return b.timeLeft > 0
}

// Charge subtracts a trial's elapsed time. The result may go negative.
func (b *Budget) Charge(elapsed time.Duration) {
	b.timeLeft -= elapsed
}

// TimeLeft returns the remaining allowance, negative after an overshoot.
func (b *Budget) TimeLeft() time.Duration {
	return b.timeLeft
}

// TrialRunner starts one trial and blocks until it finishes.
type TrialRunner interface {
	Run(ctx context.Context) (*models.Trial, error)
}

// Classifier turns a trial result into a verdict.
type Classifier interface {
	Classify(result models.TrialResult, expectedTag string) models.Verdict
}

// Reporter receives every classified trial and may stop the run.
type Reporter interface {
	Report(trial *models.Trial, verdict models.Verdict, timeLeft time.Duration) models.Control
}

// Outcome summarizes a finished loop.
type Outcome struct {
	Trials   int
	ExitCode int
	Stopped  bool
	TimeLeft time.Duration
}

// Scheduler owns the budget and drives the trial loop.
type Scheduler struct {
	runner     TrialRunner
	classifier Classifier
	reporter   Reporter
	logger     *zap.Logger
	budget     Budget
}

// New creates a scheduler. A nil config uses DefaultConfig.
func New(runner TrialRunner, classifier Classifier, reporter Reporter, cfg *Config, logger *zap.Logger) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		runner:     runner,
		classifier: classifier,
		reporter:   reporter,
		logger:     logger,
		budget:     NewBudget(cfg.Budget),
	}
}

// Budget returns a copy of the current budget.
func (sch *Scheduler) Budget() Budget {
	return sch.budget
}

// Run starts trials one at a time while the budget has time left, stopping
// early when the reporter asks to. Errors from the runner end the loop
// unclassified; so does a cancelled context.
func (sch *Scheduler) Run(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{ExitCode: models.ExitOK}
	defer func() { outcome.TimeLeft = sch.budget.TimeLeft() }()

	for sch.budget.HasTimeRemaining() {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		trial, err := sch.runner.Run(ctx)
		if err != nil {
			return outcome, err
		}
		// A trial cut short by cancellation says nothing about the prover.
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		sch.budget.Charge(trial.Result.Elapsed)
		outcome.Trials++

		verdict := sch.classifier.Classify(trial.Result, trial.Spec.Case.ExpectedTag)
		ctrl := sch.reporter.Report(trial, verdict, sch.budget.TimeLeft())
		if ctrl.Stop {
			outcome.Stopped = true
			outcome.ExitCode = ctrl.ExitCode
			sch.logger.Debug("run stopped by reporter",
				zap.Int("trials", outcome.Trials),
				zap.Int("exit_code", ctrl.ExitCode))
			return outcome, nil
		}
	}

	sch.logger.Debug("budget exhausted",
		zap.Int("trials", outcome.Trials),
		zap.Duration("time_left", sch.budget.TimeLeft()))
	return outcome, nil
}
