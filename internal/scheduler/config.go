// Package scheduler runs trials back to back until the time budget is spent.
package scheduler

import "time"

// DefaultBudget is the wall-clock allowance for starting trials.
const DefaultBudget = 60 * time.Second

// Config defines the scheduler configuration.
type Config struct {
	// Budget bounds trial starts, not total wall time: the last trial may
	// finish after the budget is spent.
	Budget time.Duration `yaml:"budget"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		Budget: DefaultBudget,
	}
}
