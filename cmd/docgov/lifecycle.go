package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/mutate"
	"github.com/docgov/docgov/internal/ui"
)

var supersedeBy string

var finalizeCmd = &cobra.Command{
	Use:   "finalize <RFC-ID>",
	Short: "Ratify a draft RFC as normative",
	Long: `Move a draft RFC to normative. The first changelog entry is stamped,
clauses without a since version inherit the current one, and the
content digest is stored so later edits show up as amendments.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutating(args[0], "finalize", func(ctx *mutationContext) error {
			return mutate.FinalizeRFC(ctx.index, args[0])
		})
	},
}

var advanceCmd = &cobra.Command{
	Use:   "advance <RFC-ID>",
	Short: "Advance a normative RFC one phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutating(args[0], "advance", func(ctx *mutationContext) error {
			next, err := mutate.AdvancePhase(ctx.index, args[0])
			if err != nil {
				return err
			}
			ctx.message = fmt.Sprintf("%s advanced to phase %s", args[0], next)
			return nil
		})
	},
}

var deprecateCmd = &cobra.Command{
	Use:   "deprecate <RFC-ID | RFC-ID:C-NAME>",
	Short: "Deprecate an RFC or a clause",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		return mutating(id, "deprecate", func(ctx *mutationContext) error {
			if strings.Contains(id, ":") {
				return mutate.DeprecateClause(ctx.index, id)
			}
			return mutate.DeprecateRFC(ctx.index, id)
		})
	},
}

var supersedeCmd = &cobra.Command{
	Use:   "supersede <ADR-ID | RFC-ID:C-NAME> --by <successor>",
	Short: "Supersede an ADR or a clause by a successor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if supersedeBy == "" {
			return fmt.Errorf("--by is required")
		}
		return mutating(id, "supersede", func(ctx *mutationContext) error {
			if strings.Contains(id, ":") {
				return mutate.SupersedeClause(ctx.index, id, supersedeBy)
			}
			return mutate.TransitionADR(ctx.index, id, model.ADRSuperseded, supersedeBy)
		})
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept <ADR-ID>",
	Short: "Accept a proposed decision record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutating(args[0], "accept", func(ctx *mutationContext) error {
			return mutate.TransitionADR(ctx.index, args[0], model.ADRAccepted, "")
		})
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <ADR-ID>",
	Short: "Reject a proposed decision record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutating(args[0], "reject", func(ctx *mutationContext) error {
			return mutate.TransitionADR(ctx.index, args[0], model.ADRRejected, "")
		})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <WI-ID> <queue|active|done|cancelled>",
	Short: "Transition a work item",
	Long: `Transition a work item through its lifecycle. Entering active stamps
the started date; entering done requires every acceptance criterion to
be ticked and stamps the completed date.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutating(args[0], "move", func(ctx *mutationContext) error {
			return mutate.MoveWork(ctx.index, args[0], model.WorkStatus(args[1]))
		})
	},
}

// mutationContext carries state between the guard acquisition and the
// success report of one mutating command.
type mutationContext struct {
	index   *model.ProjectIndex
	message string
}

// mutating wraps the shared skeleton of every write command: dry-run
// gate, lock, load, mutate, report. The tree is read only after the
// guard is held; a snapshot taken while another writer holds the lock
// would silently revert that writer's change on save.
func mutating(id, verb string, fn func(*mutationContext) error) error {
	return mutatingWithConfig(id, verb, func(_ *config.Config, ctx *mutationContext) error {
		return fn(ctx)
	})
}

func mutatingWithConfig(id, verb string, fn func(*config.Config, *mutationContext) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Printf("would %s %s\n", verb, id)
		return nil
	}

	guard, err := acquireGuard(cfg)
	if err != nil {
		return err
	}
	defer guard.Release()

	index, err := loadIndex(cfg)
	if err != nil {
		return err
	}

	ctx := &mutationContext{index: index}
	if err := fn(cfg, ctx); err != nil {
		return err
	}
	if ctx.message == "" {
		ctx.message = fmt.Sprintf("%s: %s", verb, id)
	}
	fmt.Println(ui.OK(ctx.message))
	return nil
}

func init() {
	supersedeCmd.Flags().StringVar(&supersedeBy, "by", "", "ID of the superseding artifact")
	rootCmd.AddCommand(finalizeCmd, advanceCmd, deprecateCmd, supersedeCmd, acceptCmd, rejectCmd, moveCmd)
}
