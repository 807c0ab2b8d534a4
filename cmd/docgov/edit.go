package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/mutate"
)

var setCmd = &cobra.Command{
	Use:   "set <id> <field> <value>",
	Short: "Set a validated field of an artifact",
	Long: `Assign one scalar field. The id may be an RFC, a qualified clause ref
(RFC-0001:C-NAME), an ADR or a work item. Values are validated: semver
for version and since, an active same-RFC clause for superseded_by.

Examples:
  docgov set RFC-0001 title "Storage layout"
  docgov set RFC-0001:C-RETENTION since 1.2.0`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutating(args[0], "set "+args[1], func(ctx *mutationContext) error {
			return mutate.Set(ctx.index, args[0], args[1], args[2])
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <id> <field> <value>",
	Short: "Append to an array field",
	Long: `Append one element to refs, notes or acceptance_criteria. Refs must
resolve to an existing artifact. Acceptance criteria accept an optional
category prefix, keep-a-changelog style.

Examples:
  docgov add WI-0004 refs RFC-0001:C-RETENTION
  docgov add WI-0004 acceptance_criteria "fixed: regression covered"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutating(args[0], "add "+args[1], func(ctx *mutationContext) error {
			return mutate.Add(ctx.index, args[0], args[1], args[2])
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id> <field> <value>",
	Short: "Remove from an array field by exact value",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutating(args[0], "remove "+args[1], func(ctx *mutationContext) error {
			return mutate.Remove(ctx.index, args[0], args[1], args[2])
		})
	},
}

var tickCmd = &cobra.Command{
	Use:   "tick <id> <position> <status>",
	Short: "Update one checklist item",
	Long: `Update the sub-status of a checklist item by its 1-based position.
Work items tick acceptance criteria (pending, done, cancelled); ADRs
tick alternatives (considered, accepted, rejected).

Examples:
  docgov tick WI-0004 1 done
  docgov tick ADR-0002 2 rejected`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("position %q is not a number", args[1])
		}
		return mutating(args[0], "tick", func(ctx *mutationContext) error {
			return mutate.Tick(ctx.index, args[0], position, args[2])
		})
	},
}

func init() {
	rootCmd.AddCommand(setCmd, addCmd, removeCmd, tickCmd)
}
