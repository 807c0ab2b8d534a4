package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/mutate"
)

var (
	bumpMajor   bool
	bumpMinor   bool
	bumpPatch   bool
	bumpSummary string
	bumpChanges []string
)

var bumpCmd = &cobra.Command{
	Use:   "bump <RFC-ID>",
	Short: "Bump an RFC version with a changelog entry",
	Long: `Increment one version part of an RFC, append a categorized changelog
entry and re-sign the document. Exactly one of --major, --minor or
--patch must be given.

Examples:
  docgov bump RFC-0001 --minor --summary "clarified retention" \
    --change "changed: tightened the retention wording" \
    --change "added: new clause on backups"`,
	Args: cobra.ExactArgs(1),
	RunE: runBump,
}

func init() {
	bumpCmd.Flags().BoolVar(&bumpMajor, "major", false, "Increment the major version")
	bumpCmd.Flags().BoolVar(&bumpMinor, "minor", false, "Increment the minor version")
	bumpCmd.Flags().BoolVar(&bumpPatch, "patch", false, "Increment the patch version")
	bumpCmd.Flags().StringVar(&bumpSummary, "summary", "", "One-line summary for the changelog entry")
	bumpCmd.Flags().StringArrayVar(&bumpChanges, "change", nil, "Categorized change, \"category: text\" (repeatable)")
	rootCmd.AddCommand(bumpCmd)
}

func bumpPart() (mutate.Part, error) {
	selected := 0
	part := mutate.Patch
	if bumpMajor {
		selected++
		part = mutate.Major
	}
	if bumpMinor {
		selected++
		part = mutate.Minor
	}
	if bumpPatch {
		selected++
		part = mutate.Patch
	}
	if selected != 1 {
		return "", fmt.Errorf("exactly one of --major, --minor, --patch is required")
	}
	return part, nil
}

func runBump(cmd *cobra.Command, args []string) error {
	part, err := bumpPart()
	if err != nil {
		return err
	}
	return mutating(args[0], "bump", func(ctx *mutationContext) error {
		next, err := mutate.Bump(ctx.index, args[0], part, bumpSummary, bumpChanges)
		if err != nil {
			return err
		}
		ctx.message = fmt.Sprintf("%s bumped to %s", args[0], next)
		return nil
	})
}
