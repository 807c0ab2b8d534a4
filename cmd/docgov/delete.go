package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/mutate"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <RFC-ID:C-NAME | WI-ID>",
	Short: "Delete a clause or a work item",
	Long: `Delete an artifact that has not entered history yet. Clauses are
deleted only while their RFC is a draft; work items only while queued
and referenced by nothing. Everything else is deprecated or superseded,
never removed.

Examples:
  docgov delete RFC-0002:C-DRAFT-RULE
  docgov delete WI-0007`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		return mutating(id, "delete", func(ctx *mutationContext) error {
			if strings.Contains(id, ":") {
				return mutate.DeleteClause(ctx.index, id)
			}
			if strings.HasPrefix(id, "WI-") {
				return mutate.DeleteWork(ctx.index, id)
			}
			return fmt.Errorf("only clauses and work items are deletable, not %s", id)
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
