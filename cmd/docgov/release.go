package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/mutate"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Manage releases",
}

var releaseCutCmd = &cobra.Command{
	Use:   "cut <version>",
	Short: "Cut a release from the done work items",
	Long: `Collect every done work item not yet part of a release into a new
release stanza in gov/releases.yaml.

Examples:
  docgov release cut 1.4.0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version := args[0]
		return mutatingWithConfig(version, "release cut", func(cfg *config.Config, ctx *mutationContext) error {
			release, err := mutate.CutRelease(cfg, ctx.index, version)
			if err != nil {
				return err
			}
			ctx.message = fmt.Sprintf("release %s cut with %s",
				release.Version, strings.Join(release.WorkItems, ", "))
			return nil
		})
	},
}

func init() {
	releaseCmd.AddCommand(releaseCutCmd)
	rootCmd.AddCommand(releaseCmd)
}
