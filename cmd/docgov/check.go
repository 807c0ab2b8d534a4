package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/loader"
	"github.com/docgov/docgov/internal/scan"
	"github.com/docgov/docgov/internal/ui"
	"github.com/docgov/docgov/internal/validate"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the whole tree",
	Long: `Load every artifact, run the structural and cross-reference rules,
verify rendered projections against their signatures, and, when the
source scan is enabled, check governance references in source code.

Errors always fail the run. Warnings fail it only with --strict.

Examples:
  docgov check
  docgov check --strict`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Treat warnings as failures")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.GovRoot); err != nil {
		return fmt.Errorf("%s does not exist; run 'docgov init' first", cfg.GovRoot)
	}

	index, diags := loader.LoadProject(cfg)
	diags = append(diags, validate.Project(index)...)
	diags = append(diags, validate.Projections(cfg, index)...)
	diags = append(diags, scan.Sources(cfg, validate.KnownRefs(index))...)
	diags.Sort()

	if verbose {
		fmt.Println(ui.Dim(fmt.Sprintf("checked %d RFCs, %d ADRs, %d work items, %d releases",
			len(index.RFCs), len(index.ADRs), len(index.WorkItems), len(index.Releases))))
	}
	return reportDiags(diags, checkStrict)
}
