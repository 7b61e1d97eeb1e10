// Package reporter prints trial outcomes and decides whether the run goes on.
package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"go.uber.org/zap"

	"github.com/fentz26/szsrun/internal/audit"
	"github.com/fentz26/szsrun/internal/models"
)

// Reporter writes one line per trial to out and journals it through the
// recorder. Only a Fail verdict stops the run.
type Reporter struct {
	out      io.Writer
	recorder *audit.Recorder
	logger   *zap.Logger
	budget   time.Duration
	bar      progress.Model
	styles   styles
}

// New creates a reporter. budget sizes the progress bar; a nil logger
// discards structured output.
func New(out io.Writer, rec *audit.Recorder, budget time.Duration, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		out:      out,
		recorder: rec,
		logger:   logger,
		budget:   budget,
		styles:   newStyles(out),
		bar: progress.New(
			progress.WithSolidFill(string(cyanColor)),
			progress.WithWidth(20),
			progress.WithoutPercentage(),
		),
	}
}

// Start prints the run banner.
func (r *Reporter) Start(binary string, corpus *models.Corpus, seed uint64) {
	fmt.Fprintln(r.out, r.styles.title.Render(fmt.Sprintf("Randomly testing %s...", binary)))
	fmt.Fprintln(r.out, r.styles.muted.Render(fmt.Sprintf("corpus %s (%d cases), budget %s, seed %d",
		corpus.Root, corpus.Len(), r.budget, seed)))

	r.logger.Info("run started",
		zap.String("run_id", r.recorder.RunID()),
		zap.String("binary", binary),
		zap.String("corpus", corpus.Root),
		zap.Int("cases", corpus.Len()),
		zap.Duration("budget", r.budget),
		zap.Uint64("seed", seed))
}

// Report handles one classified trial.
func (r *Reporter) Report(trial *models.Trial, verdict models.Verdict, timeLeft time.Duration) models.Control {
	if _, err := r.recorder.Record(trial, verdict); err != nil {
		r.logger.Warn("failed to journal trial", zap.Int("seq", trial.Seq), zap.Error(err))
	}

	fmt.Fprintf(r.out, "[%3d] %-10s %s  t=%ds  exit=%d  %s  %s %s\n",
		trial.Seq,
		r.styles.verdict(verdict),
		filepath.Base(trial.Spec.Case.Path),
		trial.Spec.TimeoutSeconds,
		trial.Result.ExitCode,
		trial.Result.Elapsed.Round(10*time.Millisecond),
		r.bar.ViewAs(r.usedFraction(timeLeft)),
		r.styles.muted.Render(formatLeft(timeLeft)),
	)

	fields := []zap.Field{
		zap.String("trial_id", trial.ID),
		zap.Int("seq", trial.Seq),
		zap.String("case", trial.Spec.Case.Path),
		zap.String("expected", expectedLabel(trial.Spec.Case)),
		zap.Int("timeout_s", trial.Spec.TimeoutSeconds),
		zap.Int("exit_code", trial.Result.ExitCode),
		zap.Duration("elapsed", trial.Result.Elapsed),
		zap.String("verdict", string(verdict)),
	}

	if !verdict.IsTerminal() {
		r.logger.Info("trial finished", fields...)
		return models.Continue()
	}

	r.logger.Error("trial failed", fields...)
	r.dump(trial)
	return models.StopRun(models.ExitFail)
}

// dump prints everything the prover wrote so the failure can be diagnosed.
func (r *Reporter) dump(trial *models.Trial) {
	fmt.Fprintf(r.out, "expected %s for %s\n", expectedLabel(trial.Spec.Case), trial.Spec.Case.Path)
	fmt.Fprintf(r.out, "command: %s\n", strings.Join(trial.Args, " "))
	fmt.Fprintf(r.out, "output (%d lines):\n", len(trial.Result.StdoutLines))
	for _, line := range trial.Result.StdoutLines {
		fmt.Fprintln(r.out, r.styles.dump.Render(line))
	}
}

// Summary prints per-verdict totals read back from the journal.
func (r *Reporter) Summary(outcomeTrials int, exitCode int) error {
	counts, err := r.recorder.Counts()
	if err != nil {
		return fmt.Errorf("summarize run: %w", err)
	}
	elapsed, err := r.recorder.Elapsed()
	if err != nil {
		return fmt.Errorf("summarize run: %w", err)
	}

	parts := make([]string, 0, len(models.Verdicts))
	for _, v := range models.Verdicts {
		parts = append(parts, fmt.Sprintf("%s %d", r.styles.verdict(v), counts[v]))
	}
	fmt.Fprintf(r.out, "%d trials in %s: %s\n", outcomeTrials, elapsed, strings.Join(parts, ", "))
	fmt.Fprintln(r.out, r.styles.muted.Render("fingerprint "+r.recorder.Fingerprint()))

	r.logger.Info("run finished",
		zap.String("run_id", r.recorder.RunID()),
		zap.Int("trials", outcomeTrials),
		zap.Duration("prover_time", elapsed),
		zap.Int("exit_code", exitCode),
		zap.String("fingerprint", r.recorder.Fingerprint()))
	return nil
}

func (r *Reporter) usedFraction(timeLeft time.Duration) float64 {
	if r.budget <= 0 {
		return 1
	}
	used := float64(r.budget-timeLeft) / float64(r.budget)
	switch {
	case used < 0:
		return 0
	case used > 1:
		return 1
	}
	return used
}

func formatLeft(timeLeft time.Duration) string {
	if timeLeft <= 0 {
		return "budget spent"
	}
	return timeLeft.Round(time.Second).String() + " left"
}

func expectedLabel(c models.Case) string {
	if !c.HasExpectedTag() {
		return "Unknown"
	}
	return c.ExpectedTag
}
