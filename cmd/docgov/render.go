package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/render"
	"github.com/docgov/docgov/internal/ui"
)

var renderCmd = &cobra.Command{
	Use:   "render [id]",
	Short: "Project the tree into signed markdown",
	Long: `Render SSOT artifacts into markdown under the docs output directory.
Every rendered file starts with a generated marker and a content
signature, so check can tell stale projections from fresh ones.

Without arguments the whole tree is rendered. With an ID only that
artifact is.

Examples:
  docgov render
  docgov render RFC-0003`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, index, err := loadProject()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return renderOne(cfg, index, args[0])
	}

	if dryRun {
		total := len(index.RFCs) + len(index.ADRs) + len(index.WorkItems)
		fmt.Printf("would render %d documents into %s\n", total, cfg.DocsOutput)
		return nil
	}
	n, err := render.All(cfg, index)
	if err != nil {
		return err
	}
	fmt.Println(ui.OK(fmt.Sprintf("rendered %d documents into %s", n, cfg.DocsOutput)))
	return nil
}

func renderOne(cfg *config.Config, index *model.ProjectIndex, id string) error {
	var (
		content string
		outPath string
		err     error
	)
	switch {
	case index.FindRFC(id) != nil:
		content, err = render.RFC(index.FindRFC(id))
		outPath = filepath.Join(cfg.RFCOutput(), id+".md")
	case index.FindADR(id) != nil:
		content, err = render.ADR(index.FindADR(id))
		outPath = filepath.Join(cfg.ADROutput(), id+".md")
	case index.FindWork(id) != nil:
		content, err = render.Work(index.FindWork(id))
		outPath = filepath.Join(cfg.WorkOutput(), id+".md")
	default:
		return fmt.Errorf("no artifact %s", id)
	}
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("would write %s\n", outPath)
		return nil
	}
	if err := render.WriteFile(outPath, content); err != nil {
		return err
	}
	fmt.Println(ui.OK("rendered " + outPath))
	return nil
}
