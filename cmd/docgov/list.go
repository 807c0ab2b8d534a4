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
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List artifacts with filters",
}

type rfcRow struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
	Status  string `json:"status" yaml:"status"`
	Phase   string `json:"phase" yaml:"phase"`
	Clauses int    `json:"clauses" yaml:"clauses"`
	Amended bool   `json:"amended" yaml:"amended"`
}

var listRFCCmd = &cobra.Command{
	Use:   "rfc",
	Short: "List RFCs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, index, err := loadProject()
		if err != nil {
			return err
		}

		var rows []rfcRow
		for i := range index.RFCs {
			entry := &index.RFCs[i]
			if listStatus != "" && string(entry.RFC.Status) != listStatus {
				continue
			}
			rows = append(rows, rfcRow{
				ID:      entry.RFC.ID,
				Title:   entry.RFC.Title,
				Version: entry.RFC.Version,
				Status:  string(entry.RFC.Status),
				Phase:   string(entry.RFC.Phase),
				Clauses: len(entry.Clauses),
				Amended: signature.Amended(entry),
			})
		}

		return emit(rows, func(w *tabwriter.Writer) {
			fmt.Fprintln(w, "ID\tTITLE\tVERSION\tSTATUS\tPHASE\tCLAUSES\tAMENDED")
			for _, r := range rows {
				amended := ""
				if r.Amended {
					amended = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					r.ID, r.Title, r.Version, r.Status, r.Phase, r.Clauses, amended)
			}
		})
	},
}

type adrRow struct {
	ID     string   `json:"id" yaml:"id"`
	Title  string   `json:"title" yaml:"title"`
	Status string   `json:"status" yaml:"status"`
	Date   string   `json:"date" yaml:"date"`
	Refs   []string `json:"refs,omitempty" yaml:"refs,omitempty"`
}

var listADRCmd = &cobra.Command{
	Use:   "adr",
	Short: "List decision records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, index, err := loadProject()
		if err != nil {
			return err
		}

		var rows []adrRow
		for i := range index.ADRs {
			meta := &index.ADRs[i].Meta
			if listStatus != "" && string(meta.Status) != listStatus {
				continue
			}
			rows = append(rows, adrRow{
				ID: meta.ID, Title: meta.Title,
				Status: string(meta.Status), Date: meta.Date, Refs: meta.Refs,
			})
		}

		return emit(rows, func(w *tabwriter.Writer) {
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tDATE")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Status, r.Date)
			}
		})
	},
}

type workRow struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Status   string `json:"status" yaml:"status"`
	Created  string `json:"created" yaml:"created"`
	Criteria string `json:"criteria" yaml:"criteria"`
}

var listWorkCmd = &cobra.Command{
	Use:   "work",
	Short: "List work items (pending by default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, index, err := loadProject()
		if err != nil {
			return err
		}

		var rows []workRow
		for i := range index.WorkItems {
			meta := &index.WorkItems[i].Meta
			if !workSelected(meta.Status) {
				continue
			}
			done := 0
			for _, crit := range meta.Acceptance {
				if crit.Status == model.CheckDone {
					done++
				}
			}
			rows = append(rows, workRow{
				ID: meta.ID, Title: meta.Title,
				Status: string(meta.Status), Created: meta.Created,
				Criteria: fmt.Sprintf("%d/%d", done, len(meta.Acceptance)),
			})
		}

		return emit(rows, func(w *tabwriter.Writer) {
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCREATED\tCRITERIA")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Status, r.Created, r.Criteria)
			}
		})
	},
}

// workSelected applies the work list filter. Without --status the list
// shows pending work: queued plus active.
func workSelected(status model.WorkStatus) bool {
	switch listStatus {
	case "":
		return status == model.WorkQueue || status == model.WorkActive
	case "all":
		return true
	default:
		return string(status) == listStatus
	}
}

// emit writes rows in the selected output format.
func emit(rows any, table func(w *tabwriter.Writer)) error {
	switch output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(rows)
	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		table(w)
		return w.Flush()
	}
}

func init() {
	listCmd.PersistentFlags().StringVar(&listStatus, "status", "", "Filter by status (work: default queue+active, use \"all\")")
	listCmd.AddCommand(listRFCCmd, listADRCmd, listWorkCmd)
	rootCmd.AddCommand(listCmd)
}
