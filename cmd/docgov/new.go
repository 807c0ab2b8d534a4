package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/scaffold"
	"github.com/docgov/docgov/internal/ui"
)

var (
	newSection string
	newRefs    []string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an RFC, clause, ADR or work item",
}

// creating wraps the shared skeleton of the new subcommands: dry-run
// gate, lock, fresh load, scaffold. Loading under the guard keeps
// next-ID allocation from racing a concurrent create.
func creating(dryMsg string, fn func(cfg *config.Config, index *model.ProjectIndex) (string, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Println(dryMsg)
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
	msg, err := fn(cfg, index)
	if err != nil {
		return err
	}
	fmt.Println(ui.OK(msg))
	return nil
}

var newRFCCmd = &cobra.Command{
	Use:   "rfc <title>",
	Short: "Create a draft RFC with a seed clause",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		return creating(fmt.Sprintf("would create a draft RFC titled %q", title),
			func(cfg *config.Config, index *model.ProjectIndex) (string, error) {
				id, err := scaffold.NewRFC(cfg, index, title)
				if err != nil {
					return "", err
				}
				return "created " + id, nil
			})
	},
}

var newClauseCmd = &cobra.Command{
	Use:   "clause <RFC-ID> <title>",
	Short: "Add a clause to an RFC",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rfcID := args[0]
		title := strings.Join(args[1:], " ")
		return creating(fmt.Sprintf("would add clause %s to %s", scaffold.ClauseID(title), rfcID),
			func(cfg *config.Config, index *model.ProjectIndex) (string, error) {
				id, err := scaffold.NewClause(cfg, index, rfcID, title, newSection)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("created %s:%s", rfcID, id), nil
			})
	},
}

var newADRCmd = &cobra.Command{
	Use:   "adr <title>",
	Short: "Create a proposed decision record",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		return creating(fmt.Sprintf("would create an ADR titled %q", title),
			func(cfg *config.Config, index *model.ProjectIndex) (string, error) {
				id, err := scaffold.NewADR(cfg, index, title, newRefs)
				if err != nil {
					return "", err
				}
				return "created " + id, nil
			})
	},
}

var newWorkCmd = &cobra.Command{
	Use:   "work <title>",
	Short: "Create a queued work item",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		return creating(fmt.Sprintf("would create a work item titled %q", title),
			func(cfg *config.Config, index *model.ProjectIndex) (string, error) {
				id, err := scaffold.NewWork(cfg, index, title, newRefs)
				if err != nil {
					return "", err
				}
				return "created " + id, nil
			})
	},
}

func init() {
	newClauseCmd.Flags().StringVar(&newSection, "section", "", "Section to append the clause to (default General)")
	newADRCmd.Flags().StringSliceVar(&newRefs, "ref", nil, "Initial refs (repeatable)")
	newWorkCmd.Flags().StringSliceVar(&newRefs, "ref", nil, "Initial refs (repeatable)")

	newCmd.AddCommand(newRFCCmd, newClauseCmd, newADRCmd, newWorkCmd)
	rootCmd.AddCommand(newCmd)
}
