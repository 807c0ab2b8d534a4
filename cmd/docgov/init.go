package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/scaffold"
	"github.com/docgov/docgov/internal/ui"
)

var initProjectName string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the gov/ tree",
	Long: `Create the governance tree: gov/rfc, gov/adr, gov/work, the project
configuration and a seed RFC. Refuses to run when gov/ already exists.

Examples:
  docgov init
  docgov init --project payments`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initProjectName, "project", "", "Project name written into the config")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("would create %s with rfc/, adr/, work/ and config.yaml\n", cfg.GovRoot)
		return nil
	}

	created, err := scaffold.Init(cfg, initProjectName)
	if err != nil {
		return err
	}
	for _, path := range created {
		fmt.Println(ui.Dim("created " + path))
	}
	fmt.Println(ui.OK("initialized " + cfg.GovRoot))
	return nil
}
