package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/fentz26/szsrun/internal/models"
)

// Sentinel errors for harness setup.
var (
	ErrEmptyCorpus   = errors.New("no problem files found")
	ErrNoExecutable  = errors.New("executable not found")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConfigurationError means the run could not start: a missing prover,
// corpus or table, or an unusable setting. It is never retried.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ExecutionError means the prover could not be launched. It points at a
// broken environment, not at the program under test.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func configErr(sentinel, err error) error {
	if err == nil {
		return &ConfigurationError{Err: sentinel}
	}
	return &ConfigurationError{Err: fmt.Errorf("%w: %w", sentinel, err)}
}

// ExitCode maps an error returned by Random or Fixed to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return models.ExitOK
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return models.ExitConfig
	}
	if errors.Is(err, context.Canceled) {
		return models.ExitInterrupted
	}
	return models.ExitExecution
}
