package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/szsrun/internal/config"
	"github.com/fentz26/szsrun/internal/harness"
	"github.com/fentz26/szsrun/internal/logging"
	"github.com/fentz26/szsrun/internal/models"
)

var (
	configPath string
	corpusRoot string
	suffix     string
	budget     time.Duration
	seed       uint64
	verbose    bool

	tablePath string
	memcheck  bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "szsrun <executable>",
	Short: "szsrun - randomized SZS prover harness",
	Long: `szsrun runs a theorem prover on randomly chosen problems with random
time limits until the time budget is spent, and stops at the first run whose
SZS status contradicts the problem's declared status.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithEnv(configPath)
		if err != nil {
			return &harness.ConfigurationError{Err: err}
		}
		applyFlags(cmd, args)

		logger, err = logging.New(cfg.Verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, harness.Random)
	},
}

var fixedCmd = &cobra.Command{
	Use:   "fixed <executable>",
	Short: "Run the fixed test table",
	Long:  `Run every row of the test table in order, optionally under valgrind, and stop at the first failure.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("table") {
			cfg.Suite.Table = tablePath
		}
		if cmd.Flags().Changed("memcheck") {
			cfg.Suite.Memcheck = memcheck
		}
		return run(cmd, harness.Fixed)
	},
}

// exitError carries a non-zero exit code that is not an error, such as a
// failed trial.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type mode func(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.Logger) (int, error)

func run(cmd *cobra.Command, m mode) error {
	defer func() { _ = logger.Sync() }()

	code, err := m(cmd.Context(), cfg, os.Stdout, logger)
	if err != nil {
		return err
	}
	if code != models.ExitOK {
		return &exitError{code: code}
	}
	return nil
}

func applyFlags(cmd *cobra.Command, args []string) {
	if len(args) > 0 {
		cfg.Executable = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("corpus") {
		cfg.Corpus.Root = corpusRoot
	}
	if flags.Changed("suffix") {
		cfg.Corpus.Suffix = suffix
	}
	if flags.Changed("budget") {
		cfg.Scheduler.Budget = budget
	}
	if flags.Changed("seed") {
		cfg.SetSeed(seed)
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultPath, "config file")
	pf.StringVar(&corpusRoot, "corpus", "", "problem corpus root (default TPTP)")
	pf.StringVar(&suffix, "suffix", "", "problem file suffix (default .p)")
	pf.DurationVar(&budget, "budget", 0, "total time budget (default 60s)")
	pf.Uint64Var(&seed, "seed", 0, "random seed for a reproducible run")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	fixedCmd.Flags().StringVar(&tablePath, "table", "", "test table CSV (default testing/test_config.csv)")
	fixedCmd.Flags().BoolVar(&memcheck, "memcheck", false, "run each test under the memory checker")

	rootCmd.AddCommand(fixedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}
	fmt.Fprintln(os.Stderr, err)
	if cfg == nil {
		// Flag or argument errors from cobra happen before the config loads.
		os.Exit(models.ExitConfig)
	}
	os.Exit(harness.ExitCode(err))
}
