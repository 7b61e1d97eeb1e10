package models

// Verdict classifies the outcome of one trial.
type Verdict string

const (
	VerdictPass       Verdict = "pass"
	VerdictTimedOut   Verdict = "timed_out"
	VerdictIncomplete Verdict = "incomplete"
	VerdictUserError  Verdict = "user_error"
	VerdictFail       Verdict = "fail"
)

// Verdicts lists every verdict in precedence order.
var Verdicts = []Verdict{
	VerdictPass,
	VerdictTimedOut,
	VerdictIncomplete,
	VerdictUserError,
	VerdictFail,
}

// Label returns the operator-facing label printed for a trial.
func (v Verdict) Label() string {
	switch v {
	case VerdictPass:
		return "PASS"
	case VerdictTimedOut:
		return "TIMEOUT"
	case VerdictIncomplete:
		return "INCOMPLETE"
	case VerdictUserError:
		return "USER ERROR"
	case VerdictFail:
		return "FAIL"
	}
	return string(v)
}

// IsTerminal reports whether the verdict halts the run.
func (v Verdict) IsTerminal() bool {
	return v == VerdictFail
}
