package reporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fentz26/szsrun/internal/audit"
	"github.com/fentz26/szsrun/internal/models"
	"github.com/fentz26/szsrun/internal/store"
)

func newTestReporter(t *testing.T) (*Reporter, *bytes.Buffer, *store.Store) {
	t.Helper()
	s, err := store.New()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	var out bytes.Buffer
	r := New(&out, audit.NewRecorder(s, "run-1"), time.Minute, zaptest.NewLogger(t))
	return r, &out, s
}

func sampleTrial(seq int, lines ...string) *models.Trial {
	return &models.Trial{
		ID:  "trial-id",
		Seq: seq,
		Spec: models.TrialSpec{
			Case:           models.Case{Path: "TPTP/Problems/SET/SET001+1.p", ExpectedTag: "Theorem"},
			TimeoutSeconds: 6,
		},
		Args: []string{"--include", "TPTP", "-t", "6s", "TPTP/Problems/SET/SET001+1.p"},
		Result: models.TrialResult{
			ExitCode:    0,
			StdoutLines: lines,
			Elapsed:     2 * time.Second,
		},
	}
}

func TestReport_NonFailingVerdictsContinue(t *testing.T) {
	for _, v := range []models.Verdict{
		models.VerdictPass, models.VerdictTimedOut, models.VerdictIncomplete, models.VerdictUserError,
	} {
		t.Run(string(v), func(t *testing.T) {
			r, out, _ := newTestReporter(t)

			ctrl := r.Report(sampleTrial(1, "secret line"), v, 30*time.Second)
			assert.False(t, ctrl.Stop)
			assert.Equal(t, models.ExitOK, ctrl.ExitCode)
			assert.Contains(t, out.String(), v.Label())
			assert.Contains(t, out.String(), "SET001+1.p")
			assert.NotContains(t, out.String(), "secret line", "output is dumped only on failure")
		})
	}
}

func TestReport_FailStopsAndDumpsOutput(t *testing.T) {
	r, out, _ := newTestReporter(t)

	trial := sampleTrial(4, "% Running strategy dis+1_3", "% SZS status CounterSatisfiable for SET001+1")
	ctrl := r.Report(trial, models.VerdictFail, 45*time.Second)

	assert.True(t, ctrl.Stop)
	assert.Equal(t, models.ExitFail, ctrl.ExitCode)

	text := out.String()
	assert.Contains(t, text, "FAIL")
	assert.Contains(t, text, "expected Theorem")
	assert.Contains(t, text, "% Running strategy dis+1_3")
	assert.Contains(t, text, "% SZS status CounterSatisfiable for SET001+1")
	assert.Contains(t, text, "--include TPTP -t 6s")
}

func TestReport_JournalsEveryTrial(t *testing.T) {
	r, _, s := newTestReporter(t)

	r.Report(sampleTrial(1), models.VerdictPass, 50*time.Second)
	r.Report(sampleTrial(2), models.VerdictTimedOut, 40*time.Second)

	rows, err := s.ListTrials("run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.VerdictPass, rows[0].Verdict)
	assert.Equal(t, models.VerdictTimedOut, rows[1].Verdict)
}

func TestSummary(t *testing.T) {
	r, out, _ := newTestReporter(t)

	r.Report(sampleTrial(1), models.VerdictPass, 50*time.Second)
	r.Report(sampleTrial(2), models.VerdictPass, 40*time.Second)
	r.Report(sampleTrial(3), models.VerdictIncomplete, 30*time.Second)
	out.Reset()

	require.NoError(t, r.Summary(3, models.ExitOK))
	text := out.String()
	assert.Contains(t, text, "3 trials in 6s")
	assert.Contains(t, text, "PASS 2")
	assert.Contains(t, text, "INCOMPLETE 1")
	assert.Contains(t, text, "FAIL 0")
	assert.Contains(t, text, "fingerprint ")
}

func TestStart_PrintsBanner(t *testing.T) {
	r, out, _ := newTestReporter(t)

	r.Start("./vampire", &models.Corpus{Root: "TPTP", Cases: make([]models.Case, 3)}, 17)
	assert.Contains(t, out.String(), "Randomly testing ./vampire...")
	assert.Contains(t, out.String(), "(3 cases)")
	assert.Contains(t, out.String(), "seed 17")
}

func TestUsedFraction(t *testing.T) {
	r, _, _ := newTestReporter(t)

	assert.Equal(t, 0.0, r.usedFraction(time.Minute))
	assert.Equal(t, 0.5, r.usedFraction(30*time.Second))
	assert.Equal(t, 1.0, r.usedFraction(-5*time.Second))
	assert.Equal(t, 0.0, r.usedFraction(2*time.Minute))
}

func TestFormatLeft(t *testing.T) {
	assert.Equal(t, "12s left", formatLeft(12*time.Second))
	assert.Equal(t, "budget spent", formatLeft(0))
	assert.Equal(t, "budget spent", formatLeft(-time.Second))
}
