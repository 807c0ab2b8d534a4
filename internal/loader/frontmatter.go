package loader

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/docgov/docgov/internal/model"
)

var (
	// ErrMissingFrontmatter indicates the document did not start with a
	// YAML fence.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrMalformedFrontmatter indicates the YAML block was not closed or
	// did not carry the docgov namespace.
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")
)

// adrEnvelope wraps ADR metadata under the docgov: namespace key so
// foreign tooling can add its own top-level keys without colliding.
type adrEnvelope struct {
	Docgov model.ADRMeta `yaml:"docgov"`
}

type workEnvelope struct {
	Docgov model.WorkMeta `yaml:"docgov"`
}

// splitFrontmatter separates the fenced YAML block from the body.
func splitFrontmatter(content []byte) (meta, body []byte, err error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, nil, ErrMissingFrontmatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return nil, nil, ErrMalformedFrontmatter
	}
	return parts[0], bytes.TrimLeft(parts[1], "\n"), nil
}

// ParseADR decodes a decision record document: docgov-namespaced YAML
// frontmatter followed by the markdown body.
func ParseADR(content []byte) (model.ADRMeta, string, error) {
	metaBytes, body, err := splitFrontmatter(content)
	if err != nil {
		return model.ADRMeta{}, "", err
	}

	var envelope adrEnvelope
	if err := yaml.Unmarshal(metaBytes, &envelope); err != nil {
		return model.ADRMeta{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}
	if envelope.Docgov.ID == "" {
		return model.ADRMeta{}, "", fmt.Errorf("%w: no docgov.id", ErrMalformedFrontmatter)
	}
	return envelope.Docgov, string(body), nil
}

// ParseWork decodes a work item document.
func ParseWork(content []byte) (model.WorkMeta, string, error) {
	metaBytes, body, err := splitFrontmatter(content)
	if err != nil {
		return model.WorkMeta{}, "", err
	}

	var envelope workEnvelope
	if err := yaml.Unmarshal(metaBytes, &envelope); err != nil {
		return model.WorkMeta{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}
	if envelope.Docgov.ID == "" {
		return model.WorkMeta{}, "", fmt.Errorf("%w: no docgov.id", ErrMalformedFrontmatter)
	}
	return envelope.Docgov, string(body), nil
}

// FormatADR renders a decision record back to its on-disk form.
func FormatADR(meta model.ADRMeta, body string) ([]byte, error) {
	return formatDocument(adrEnvelope{Docgov: meta}, body)
}

// FormatWork renders a work item back to its on-disk form.
func FormatWork(meta model.WorkMeta, body string) ([]byte, error) {
	return formatDocument(workEnvelope{Docgov: meta}, body)
}

func formatDocument(envelope any, body string) ([]byte, error) {
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.WriteString(body)
	if len(body) > 0 && body[len(body)-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
