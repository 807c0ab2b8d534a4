package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/diagnostic"
	"github.com/docgov/docgov/internal/loader"
	"github.com/docgov/docgov/internal/lock"
	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/ui"
)

var (
	// Global flags
	dryRun  bool
	verbose bool
	output  string
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "docgov",
	Short: "Governance document tree with integrity checking",
	Long: `docgov manages a versioned tree of governance documents: RFCs with
individually tracked clauses, architecture decision records and work
items, all validated against explicit lifecycle and cross-reference
rules.

The source of truth lives under gov/ as JSON and frontmatter markdown;
docgov render projects it into signed, read-only markdown under docs/.

Core Commands:
  init      Create the gov/ tree
  new       Create an RFC, clause, ADR or work item
  check     Validate the whole tree
  render    Project the tree into signed markdown
  status    Per-kind counts and amendment markers
  list      List artifacts with filters

Lifecycle Commands:
  finalize, advance, accept, reject, supersede, deprecate, move

Editing Commands:
  set, add, remove, tick, bump, release, delete`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			os.Setenv("DOCGOV_CONFIG", cfgFile)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without writing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: gov/config.yaml, found walking up)")
}

// loadConfig resolves the effective configuration for this invocation.
func loadConfig() (*config.Config, error) {
	overrides := &config.Config{Output: output, Verbose: verbose}
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadProject loads config and the full tree. Load-time errors are
// fatal for commands that need a coherent snapshot; warnings are
// reported on verbose runs.
func loadProject() (*config.Config, *model.ProjectIndex, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	index, err := loadIndex(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, index, nil
}

// loadIndex reads the full tree. Mutating commands call it only after
// the guard is held, so the snapshot they modify is current.
func loadIndex(cfg *config.Config) (*model.ProjectIndex, error) {
	index, diags := loader.LoadProject(cfg)
	if diags.HasErrors() {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, ui.Render(d))
		}
		return nil, fmt.Errorf("tree does not load cleanly; fix the errors above")
	}
	if verbose {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, ui.Render(d))
		}
	}
	return index, nil
}

// acquireGuard takes the tree lock for a mutating command. The caller
// defers the release.
func acquireGuard(cfg *config.Config) (*lock.Guard, error) {
	timeout := time.Duration(cfg.LockTimeoutSecs) * time.Second
	return lock.Acquire(cfg.GovRoot, timeout)
}

// reportDiags prints a diagnostic list and returns an error when the
// run should fail: any error, or any warning under --strict.
func reportDiags(diags diagnostic.List, strict bool) error {
	for _, d := range diags {
		fmt.Println(ui.Render(d))
	}
	errs, warns := diags.Counts()
	fmt.Println(ui.Summary(errs, warns))

	if errs > 0 || (strict && warns > 0) {
		return fmt.Errorf("check failed")
	}
	return nil
}
