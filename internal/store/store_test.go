package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/szsrun/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(runID string, seq int, verdict models.Verdict) *models.TrialRecord {
	return &models.TrialRecord{
		RunID:          runID,
		Seq:            seq,
		CasePath:       "TPTP/Problems/SET/SET001+1.p",
		ExpectedTag:    "Theorem",
		TimeoutSeconds: 5,
		ExitCode:       0,
		Verdict:        verdict,
		Elapsed:        1250 * time.Millisecond,
		InputsHash:     "abc",
	}
}

func TestNew_Ping(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)

	second := record("run-1", 2, models.VerdictTimedOut)
	first := record("run-1", 1, models.VerdictPass)
	first.ExpectedTag = models.Unknown
	other := record("run-2", 1, models.VerdictFail)

	require.NoError(t, s.RecordTrial(second))
	require.NoError(t, s.RecordTrial(first))
	require.NoError(t, s.RecordTrial(other))
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.RecordedAt.IsZero())

	got, err := s.ListTrials("run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Seq)
	assert.Equal(t, models.VerdictPass, got[0].Verdict)
	assert.Equal(t, models.Unknown, got[0].ExpectedTag)
	assert.Equal(t, 2, got[1].Seq)
	assert.Equal(t, models.VerdictTimedOut, got[1].Verdict)
	assert.Equal(t, "Theorem", got[1].ExpectedTag)
	assert.Equal(t, 1250*time.Millisecond, got[1].Elapsed)
	assert.Equal(t, 5, got[1].TimeoutSeconds)
}

func TestRecordTrial_DuplicateID(t *testing.T) {
	s := newTestStore(t)

	rec := record("run-1", 1, models.VerdictPass)
	rec.ID = "fixed"
	require.NoError(t, s.RecordTrial(rec))
	assert.Error(t, s.RecordTrial(rec))
}

func TestCountByVerdict(t *testing.T) {
	s := newTestStore(t)

	for i, v := range []models.Verdict{
		models.VerdictPass, models.VerdictPass, models.VerdictTimedOut,
		models.VerdictIncomplete, models.VerdictPass,
	} {
		require.NoError(t, s.RecordTrial(record("run-1", i+1, v)))
	}
	require.NoError(t, s.RecordTrial(record("run-2", 1, models.VerdictFail)))

	counts, err := s.CountByVerdict("run-1")
	require.NoError(t, err)
	assert.Equal(t, map[models.Verdict]int{
		models.VerdictPass:       3,
		models.VerdictTimedOut:   1,
		models.VerdictIncomplete: 1,
	}, counts)
}

func TestTotalElapsed(t *testing.T) {
	s := newTestStore(t)

	total, err := s.TotalElapsed("run-1")
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, s.RecordTrial(record("run-1", 1, models.VerdictPass)))
	require.NoError(t, s.RecordTrial(record("run-1", 2, models.VerdictPass)))

	total, err = s.TotalElapsed("run-1")
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, total)
}

func TestStoresAreIsolated(t *testing.T) {
	a := newTestStore(t)
	b := newTestStore(t)

	require.NoError(t, a.RecordTrial(record("run-1", 1, models.VerdictPass)))

	got, err := b.ListTrials("run-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
