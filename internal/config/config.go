// Package config loads szsrun settings from YAML, .env and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fentz26/szsrun/internal/classifier"
	"github.com/fentz26/szsrun/internal/corpus"
	"github.com/fentz26/szsrun/internal/scheduler"
)

// DefaultPath is the optional config file read from the working directory.
const DefaultPath = "szsrun.yaml"

// Environment variables that override the file.
const (
	EnvCorpus = "SZSRUN_CORPUS"
	EnvBudget = "SZSRUN_BUDGET"
	EnvSeed   = "SZSRUN_SEED"
)

// Config holds harness configuration.
type Config struct {
	// Executable is the prover under test, relative to the working directory.
	Executable string `yaml:"executable"`
	// Corpus locates the problem files.
	Corpus CorpusConfig `yaml:"corpus"`
	// Scheduler carries the time budget.
	Scheduler scheduler.Config `yaml:"scheduler"`
	// Seed makes a run reproducible. Nil draws a seed from the clock.
	Seed *uint64 `yaml:"seed,omitempty"`
	// Markers are the output substrings the classifier looks for.
	Markers classifier.Markers `yaml:"markers"`
	// Suite configures the fixed test table.
	Suite SuiteConfig `yaml:"suite"`
	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// CorpusConfig locates problem files.
type CorpusConfig struct {
	Root   string `yaml:"root"`
	Suffix string `yaml:"suffix"`
}

// SuiteConfig configures the fixed test table.
type SuiteConfig struct {
	Table    string `yaml:"table"`
	Memcheck bool   `yaml:"memcheck"`
	Wrapper  string `yaml:"wrapper"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Root:   "TPTP",
			Suffix: corpus.DefaultSuffix,
		},
		Scheduler: *scheduler.DefaultConfig(),
		Markers:   classifier.DefaultMarkers(),
		Suite: SuiteConfig{
			Table:   filepath.Join("testing", "test_config.csv"),
			Wrapper: "valgrind",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadWithEnv loads path, then .env (if present), then applies environment
// overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCorpus); ok && v != "" {
		c.Corpus.Root = v
	}
	if v, ok := lookup(EnvBudget); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBudget, err)
		}
		c.Scheduler.Budget = d
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = &seed
	}
	return nil
}

// SetSeed pins the run's random seed.
func (c *Config) SetSeed(seed uint64) {
	c.Seed = &seed
}

// ExecutablePath returns the prover path as it is passed to exec. Bare names
// are anchored to the working directory so PATH is never searched.
func (c *Config) ExecutablePath() string {
	exe := strings.TrimSpace(c.Executable)
	if exe == "" || filepath.IsAbs(exe) || strings.ContainsRune(exe, filepath.Separator) {
		return exe
	}
	return "." + string(filepath.Separator) + exe
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Executable) == "" {
		return fmt.Errorf("executable is required")
	}
	if c.Corpus.Root == "" {
		return fmt.Errorf("corpus.root is required")
	}
	if c.Scheduler.Budget <= 0 {
		return fmt.Errorf("scheduler.budget must be positive, got %s", c.Scheduler.Budget)
	}
	return nil
}

// CheckExecutable verifies the prover exists and is a regular file.
func (c *Config) CheckExecutable() error {
	path := c.ExecutablePath()
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("executable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("executable %s is a directory", path)
	}
	return nil
}
