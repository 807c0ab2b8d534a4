// Package render projects SSOT artifacts into signed markdown under the
// docs output directory. Rendered files are generated artifacts; every
// one starts with the source marker and the content signature so check
// can detect stale or hand-edited projections.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/signature"
)

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"checkbox": func(s model.ChecklistStatus) string {
		switch s {
		case model.CheckDone:
			return "[x]"
		case model.CheckCancelled:
			return "[-]"
		default:
			return "[ ]"
		}
	},
}

var rfcTemplate = template.Must(template.New("rfc").Funcs(templateFuncs).Parse(`# {{.RFC.ID}}: {{.RFC.Title}}

**Version** {{.RFC.Version}} | **Status** {{.RFC.Status}} | **Phase** {{.RFC.Phase}}
{{- if .RFC.Owners}}

Owners: {{join .RFC.Owners ", "}}
{{- end}}
{{range .Sections}}
## {{.Title}}
{{range .Clauses}}
### {{.ID}}: {{.Title}}
{{if ne .Status "active"}}
> {{.Status}}{{if .SupersededBy}}, superseded by {{.SupersededBy}}{{end}}
{{end}}
{{.Text}}
{{- if .Since}}

_Since {{.Since}}._
{{- end}}
{{end}}{{end}}
{{- if .RFC.Changelog}}
## Changelog
{{range .RFC.Changelog}}
### {{.Version}} ({{.Date}})

{{.Summary}}
{{- range .Changes}}
- {{.Category}}: {{.Text}}
{{- end}}
{{end}}{{end}}`))

var adrTemplate = template.Must(template.New("adr").Funcs(templateFuncs).Parse(`# {{.Meta.ID}}: {{.Meta.Title}}

**Status** {{.Meta.Status}} | **Date** {{.Meta.Date}}
{{- if .Meta.SupersededBy}}

Superseded by {{.Meta.SupersededBy}}.
{{- end}}
{{- if .Meta.Refs}}

Refs: {{join .Meta.Refs ", "}}
{{- end}}

{{.Body}}
{{- if .Meta.Alternatives}}

## Alternatives
{{range .Meta.Alternatives}}
- {{.Text}} ({{.Status}})
{{- end}}
{{- end}}
`))

var workTemplate = template.Must(template.New("work").Funcs(templateFuncs).Parse(`# {{.Meta.ID}}: {{.Meta.Title}}

**Status** {{.Meta.Status}} | **Created** {{.Meta.Created}}
{{- if .Meta.Started}} | **Started** {{.Meta.Started}}{{end}}
{{- if .Meta.Completed}} | **Completed** {{.Meta.Completed}}{{end}}
{{- if .Meta.Refs}}

Refs: {{join .Meta.Refs ", "}}
{{- end}}
{{- if .Meta.Acceptance}}

## Acceptance criteria
{{range .Meta.Acceptance}}
- {{checkbox .Status}} {{.Text}} ({{.Category}})
{{- end}}
{{- end}}

{{.Body}}
{{- if .Meta.Notes}}

## Notes
{{range .Meta.Notes}}
- {{.}}
{{- end}}
{{- end}}
`))

// sectionView pairs a section title with its resolved clauses, in the
// order the section lists them.
type sectionView struct {
	Title   string
	Clauses []model.Clause
}

type rfcView struct {
	RFC      model.RFC
	Sections []sectionView
}

func buildRFCView(entry *model.RFCEntry) rfcView {
	byID := make(map[string]model.Clause, len(entry.Clauses))
	for _, ce := range entry.Clauses {
		byID[ce.Clause.ID] = ce.Clause
	}

	view := rfcView{RFC: entry.RFC}
	for _, section := range entry.RFC.Sections {
		sv := sectionView{Title: section.Title}
		for _, path := range section.Clauses {
			id := strings.TrimSuffix(filepath.Base(path), ".json")
			if clause, ok := byID[id]; ok {
				sv.Clauses = append(sv.Clauses, clause)
			}
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}

// RFC renders one signed RFC projection.
func RFC(entry *model.RFCEntry) (string, error) {
	digest, err := signature.RFC(entry)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", entry.RFC.ID, err)
	}
	return execute(rfcTemplate, entry.RFC.ID, digest, buildRFCView(entry))
}

// ADR renders one signed decision record projection.
func ADR(entry *model.ADREntry) (string, error) {
	digest, err := signature.ADR(entry)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", entry.Meta.ID, err)
	}
	return execute(adrTemplate, entry.Meta.ID, digest, entry)
}

// Work renders one signed work item projection.
func Work(entry *model.WorkEntry) (string, error) {
	digest, err := signature.Work(entry)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", entry.Meta.ID, err)
	}
	return execute(workTemplate, entry.Meta.ID, digest, entry)
}

func execute(tmpl *template.Template, sourceID, digest string, data any) (string, error) {
	var sb strings.Builder
	sb.WriteString(signature.Header(sourceID, digest))
	sb.WriteString("\n")
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", sourceID, err)
	}
	out := sb.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// All renders every artifact of the project into the docs tree.
// Returns the number of files written.
func All(cfg *config.Config, index *model.ProjectIndex) (int, error) {
	written := 0
	for i := range index.RFCs {
		entry := &index.RFCs[i]
		content, err := RFC(entry)
		if err != nil {
			return written, err
		}
		if err := WriteFile(filepath.Join(cfg.RFCOutput(), entry.RFC.ID+".md"), content); err != nil {
			return written, err
		}
		written++
	}
	for i := range index.ADRs {
		entry := &index.ADRs[i]
		content, err := ADR(entry)
		if err != nil {
			return written, err
		}
		if err := WriteFile(filepath.Join(cfg.ADROutput(), entry.Meta.ID+".md"), content); err != nil {
			return written, err
		}
		written++
	}
	for i := range index.WorkItems {
		entry := &index.WorkItems[i]
		content, err := Work(entry)
		if err != nil {
			return written, err
		}
		if err := WriteFile(filepath.Join(cfg.WorkOutput(), entry.Meta.ID+".md"), content); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// WriteFile writes one rendered document, creating the output
// directory as needed.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write rendered document: %w", err)
	}
	return nil
}
