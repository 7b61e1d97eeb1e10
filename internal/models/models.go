// Package models defines the core domain types for szsrun.
package models

import "time"

// Unknown is the expected tag of a case whose problem file declares no status.
const Unknown = ""

// Case is one discoverable problem file.
type Case struct {
	// Path identifies the case and is passed to the prover as-is.
	Path string `json:"path"`
	// ExpectedTag is the declared SZS status, or Unknown.
	ExpectedTag string `json:"expected_tag,omitempty"`
}

// HasExpectedTag reports whether the case declares a status.
func (c Case) HasExpectedTag() bool {
	return c.ExpectedTag != Unknown
}

// Corpus is the ordered set of cases discovered under a root directory.
type Corpus struct {
	Root  string `json:"root"`
	Cases []Case `json:"cases"`
}

// Len returns the number of cases.
func (c *Corpus) Len() int {
	return len(c.Cases)
}

// TrialSpec is the per-trial input: which case and how long the prover may run.
type TrialSpec struct {
	Case           Case `json:"case"`
	TimeoutSeconds int  `json:"timeout_seconds"`
}

// TrialResult is what one prover invocation produced.
type TrialResult struct {
	ExitCode    int           `json:"exit_code"`
	StdoutLines []string      `json:"stdout_lines"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Trial ties a spec to its invocation and result.
type Trial struct {
	ID     string      `json:"id"`
	Seq    int         `json:"seq"`
	Spec   TrialSpec   `json:"spec"`
	Args   []string    `json:"args"`
	Result TrialResult `json:"result"`
}

// TrialRecord is a journal row for a reported trial.
type TrialRecord struct {
	ID             string        `json:"id"`
	RunID          string        `json:"run_id"`
	Seq            int           `json:"seq"`
	CasePath       string        `json:"case_path"`
	ExpectedTag    string        `json:"expected_tag,omitempty"`
	TimeoutSeconds int           `json:"timeout_seconds"`
	ExitCode       int           `json:"exit_code"`
	Verdict        Verdict       `json:"verdict"`
	Elapsed        time.Duration `json:"elapsed"`
	InputsHash     string        `json:"inputs_hash"`
	RecordedAt     time.Time     `json:"recorded_at"`
}
