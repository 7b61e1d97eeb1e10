package classifier

import (
	"strings"

	"github.com/fentz26/szsrun/internal/models"
)

// Markers is the set of substrings the classifier looks for in prover output.
type Markers struct {
	Status     string `yaml:"status"`
	TimeLimit  string `yaml:"time_limit"`
	Incomplete string `yaml:"incomplete"`
	UserError  string `yaml:"user_error"`
	Memcheck   string `yaml:"memcheck"`
}

// DefaultMarkers returns the markers printed by Vampire and valgrind.
func DefaultMarkers() Markers {
	return Markers{
		Status:     "SZS status",
		TimeLimit:  "Time limit reached!",
		Incomplete: "Refutation not found",
		UserError:  "User error",
		Memcheck:   "ERROR SUMMARY: 0 errors",
	}
}

// withDefaults fills empty markers from DefaultMarkers.
func (m Markers) withDefaults() Markers {
	d := DefaultMarkers()
	if m.Status == "" {
		m.Status = d.Status
	}
	if m.TimeLimit == "" {
		m.TimeLimit = d.TimeLimit
	}
	if m.Incomplete == "" {
		m.Incomplete = d.Incomplete
	}
	if m.UserError == "" {
		m.UserError = d.UserError
	}
	if m.Memcheck == "" {
		m.Memcheck = d.Memcheck
	}
	return m
}

// findings records which markers occurred anywhere in the output.
type findings struct {
	statusMatch bool
	timeLimit   bool
	incomplete  bool
	userError   bool
}

func (m Markers) scan(lines []string, expectedTag string) findings {
	var f findings
	for _, line := range lines {
		if m.isStatusMatch(line, expectedTag) {
			f.statusMatch = true
		}
		if strings.Contains(line, m.TimeLimit) {
			f.timeLimit = true
		}
		if strings.Contains(line, m.Incomplete) {
			f.incomplete = true
		}
		if strings.Contains(line, m.UserError) {
			f.userError = true
		}
	}
	return f
}

// isStatusMatch reports whether line is a status report carrying
// expectedTag as a whole field. An Unknown tag accepts any status report.
func (m Markers) isStatusMatch(line, expectedTag string) bool {
	if !strings.Contains(line, m.Status) {
		return false
	}
	if expectedTag == models.Unknown {
		return true
	}
	for _, field := range strings.Fields(line) {
		if field == expectedTag {
			return true
		}
	}
	return false
}
