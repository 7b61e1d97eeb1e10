// Package classifier turns captured prover output into a verdict.
package classifier

import (
	"strings"

	"github.com/fentz26/szsrun/internal/models"
)

// Classifier maps trial results to verdicts using a marker set.
type Classifier struct {
	markers Markers
}

// New creates a classifier. Empty markers fall back to DefaultMarkers.
func New(m Markers) *Classifier {
	return &Classifier{markers: m.withDefaults()}
}

// Markers returns the marker set in use.
func (c *Classifier) Markers() Markers {
	return c.markers
}

// Classify evaluates every marker over the whole output, then picks the first
// verdict in the order Pass, TimedOut, Incomplete, UserError, Fail. The exit
// code is ignored: the prover exits nonzero on a time limit.
func (c *Classifier) Classify(result models.TrialResult, expectedTag string) models.Verdict {
	f := c.markers.scan(result.StdoutLines, expectedTag)
	switch {
	case f.statusMatch:
		return models.VerdictPass
	case f.timeLimit:
		return models.VerdictTimedOut
	case f.incomplete:
		return models.VerdictIncomplete
	case f.userError:
		return models.VerdictUserError
	default:
		return models.VerdictFail
	}
}

// ClassifyStrict is used by the fixed suite, where every row is expected to
// finish: a nonzero exit fails outright, otherwise only a matching status
// line passes.
func (c *Classifier) ClassifyStrict(result models.TrialResult, expectedTag string) models.Verdict {
	if result.ExitCode != 0 {
		return models.VerdictFail
	}
	for _, line := range result.StdoutLines {
		if c.markers.isStatusMatch(line, expectedTag) {
			return models.VerdictPass
		}
	}
	return models.VerdictFail
}

// MemcheckClean reports whether valgrind printed a zero-error summary.
func (c *Classifier) MemcheckClean(lines []string) bool {
	for _, line := range lines {
		if strings.Contains(line, c.markers.Memcheck) {
			return true
		}
	}
	return false
}
