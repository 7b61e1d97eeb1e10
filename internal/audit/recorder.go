// Package audit journals reported trials and fingerprints their inputs.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash"
	"time"

	"github.com/fentz26/szsrun/internal/models"
	"github.com/fentz26/szsrun/internal/store"
)

// Recorder writes journal rows and folds each trial's inputs hash into a
// run fingerprint. Two runs with the same corpus and seed produce the same
// fingerprint.
type Recorder struct {
	store       *store.Store
	runID       string
	fingerprint hash.Hash
}

// NewRecorder creates a recorder for one run.
func NewRecorder(s *store.Store, runID string) *Recorder {
	return &Recorder{
		store:       s,
		runID:       runID,
		fingerprint: sha256.New(),
	}
}

// RunID returns the run this recorder journals.
func (r *Recorder) RunID() string {
	return r.runID
}

// Record journals a classified trial.
func (r *Recorder) Record(trial *models.Trial, verdict models.Verdict) (*models.TrialRecord, error) {
	inputsHash := hashInputs(map[string]interface{}{
		"seq":     trial.Seq,
		"case":    trial.Spec.Case.Path,
		"timeout": trial.Spec.TimeoutSeconds,
	})
	r.fingerprint.Write([]byte(inputsHash))

	rec := &models.TrialRecord{
		ID:             trial.ID,
		RunID:          r.runID,
		Seq:            trial.Seq,
		CasePath:       trial.Spec.Case.Path,
		ExpectedTag:    trial.Spec.Case.ExpectedTag,
		TimeoutSeconds: trial.Spec.TimeoutSeconds,
		ExitCode:       trial.Result.ExitCode,
		Verdict:        verdict,
		Elapsed:        trial.Result.Elapsed,
		InputsHash:     inputsHash,
	}
	if err := r.store.RecordTrial(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Counts returns the per-verdict totals of the run.
func (r *Recorder) Counts() (map[models.Verdict]int, error) {
	return r.store.CountByVerdict(r.runID)
}

// Elapsed returns the summed prover time of the run.
func (r *Recorder) Elapsed() (time.Duration, error) {
	return r.store.TotalElapsed(r.runID)
}

// Fingerprint returns the hex digest of every inputs hash recorded so far.
func (r *Recorder) Fingerprint() string {
	return hex.EncodeToString(r.fingerprint.Sum(nil))
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
