package models

// Process exit codes of the harness.
const (
	ExitOK          = 0
	ExitFail        = 1
	ExitConfig      = 2
	ExitExecution   = 3
	ExitInterrupted = 130
)

// Control tells the trial loop whether to keep going.
type Control struct {
	Stop     bool
	ExitCode int
}

// Continue lets the loop start another trial if the budget allows.
func Continue() Control {
	return Control{}
}

// StopRun halts the loop with the given process exit code.
func StopRun(exitCode int) Control {
	return Control{Stop: true, ExitCode: exitCode}
}
