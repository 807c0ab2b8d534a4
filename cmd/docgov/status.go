package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/signature"
	"github.com/docgov/docgov/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Per-kind counts and amendment markers",
	Long: `Summarize the tree: how many artifacts exist per kind and status,
and which normative RFCs have been edited since their last signing.

Examples:
  docgov status
  docgov status -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	GovRoot   string         `json:"gov_root" yaml:"gov_root"`
	RFCs      map[string]int `json:"rfcs" yaml:"rfcs"`
	ADRs      map[string]int `json:"adrs" yaml:"adrs"`
	WorkItems map[string]int `json:"work_items" yaml:"work_items"`
	Releases  int            `json:"releases" yaml:"releases"`
	Amended   []string       `json:"amended,omitempty" yaml:"amended,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, index, err := loadProject()
	if err != nil {
		return err
	}

	out := statusOutput{
		GovRoot:   cfg.GovRoot,
		RFCs:      map[string]int{},
		ADRs:      map[string]int{},
		WorkItems: map[string]int{},
		Releases:  len(index.Releases),
	}
	for i := range index.RFCs {
		entry := &index.RFCs[i]
		out.RFCs[string(entry.RFC.Status)]++
		if entry.RFC.Status == model.RFCNormative && signature.Amended(entry) {
			out.Amended = append(out.Amended, entry.RFC.ID)
		}
	}
	for i := range index.ADRs {
		out.ADRs[string(index.ADRs[i].Meta.Status)]++
	}
	for i := range index.WorkItems {
		out.WorkItems[string(index.WorkItems[i].Meta.Status)]++
	}

	switch output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(out)
	}

	fmt.Println(ui.Title("docgov status"))
	fmt.Println(ui.Dim("tree: " + out.GovRoot))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tCOUNTS")
	fmt.Fprintf(w, "rfc\t%s\n", formatCounts(out.RFCs))
	fmt.Fprintf(w, "adr\t%s\n", formatCounts(out.ADRs))
	fmt.Fprintf(w, "work\t%s\n", formatCounts(out.WorkItems))
	fmt.Fprintf(w, "releases\t%d\n", out.Releases)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(out.Amended) > 0 {
		fmt.Println()
		for _, id := range out.Amended {
			fmt.Printf("%s edited since last signing; bump to re-sign\n", id)
		}
	}
	return nil
}

func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	// stable order for the statuses that matter
	order := []string{"draft", "normative", "deprecated", "proposed", "accepted",
		"rejected", "superseded", "queue", "active", "done", "cancelled"}
	s := ""
	for _, key := range order {
		if n, ok := counts[key]; ok {
			if s != "" {
				s += ", "
			}
			s += fmt.Sprintf("%d %s", n, key)
		}
	}
	return s
}
