// Package signature computes deterministic content digests for governed
// artifacts and embeds them in rendered projections. A projection whose
// embedded digest no longer matches a recompute has either been edited
// by hand or is stale against its source; an RFC whose stored digest no
// longer matches has been amended without a version bump.
//
// The digest is SHA-256 over a format-version tag, a type tag, and the
// canonical JSON of each covered document, each segment terminated by a
// newline. Canonical JSON sorts object keys recursively, so two
// semantically identical documents hash identically regardless of field
// order.
package signature

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/docgov/docgov/internal/model"
)

// Version tags the signature scheme so it can evolve without silently
// invalidating old digests.
const Version = 1

// signedADR is the serialized shape covered by an ADR signature.
type signedADR struct {
	Meta model.ADRMeta `json:"meta"`
	Body string        `json:"body"`
}

// signedWork is the serialized shape covered by a work item signature.
type signedWork struct {
	Meta model.WorkMeta `json:"meta"`
	Body string         `json:"body"`
}

// RFC digests the RFC metadata and every loaded clause, clauses sorted
// by clause ID for determinism. The stored Signature field is excluded
// from the hash so signing is idempotent.
func RFC(entry *model.RFCEntry) (string, error) {
	h := sha256.New()
	writeHeader(h, "rfc")

	rfc := entry.RFC
	rfc.Signature = ""
	if err := writeCanonical(h, rfc); err != nil {
		return "", fmt.Errorf("serialize %s: %w", rfc.ID, err)
	}

	clauses := make([]model.ClauseEntry, len(entry.Clauses))
	copy(clauses, entry.Clauses)
	sort.Slice(clauses, func(i, j int) bool {
		return clauses[i].Clause.ID < clauses[j].Clause.ID
	})

	for _, c := range clauses {
		if err := writeCanonical(h, c.Clause); err != nil {
			return "", fmt.Errorf("serialize %s: %w", c.Clause.ID, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// ADR digests a decision record's frontmatter and body.
func ADR(entry *model.ADREntry) (string, error) {
	h := sha256.New()
	writeHeader(h, "adr")
	if err := writeCanonical(h, signedADR{Meta: entry.Meta, Body: entry.Body}); err != nil {
		return "", fmt.Errorf("serialize %s: %w", entry.Meta.ID, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Work digests a work item's frontmatter and body.
func Work(entry *model.WorkEntry) (string, error) {
	h := sha256.New()
	writeHeader(h, "work")
	if err := writeCanonical(h, signedWork{Meta: entry.Meta, Body: entry.Body}); err != nil {
		return "", fmt.Errorf("serialize %s: %w", entry.Meta.ID, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Amended reports whether the RFC's content has drifted from the digest
// it was last signed at. An RFC that has never been signed is not
// amended. A serialization failure also reports false: it is an
// internal fault surfaced elsewhere, not an amendment.
func Amended(entry *model.RFCEntry) bool {
	if entry.RFC.Signature == "" {
		return false
	}
	current, err := RFC(entry)
	if err != nil {
		return false
	}
	return current != entry.RFC.Signature
}

// Header formats the projection preamble: a do-not-edit marker naming
// the source artifact and the signature line.
func Header(sourceID, digest string) string {
	return fmt.Sprintf(
		"<!-- GENERATED: do not edit. Source: %s -->\n<!-- SIGNATURE: sha256:%s -->\n",
		sourceID, digest,
	)
}

// Extract pulls the embedded digest out of a rendered projection.
// Returns "" when no signature line is present.
func Extract(rendered string) string {
	for _, line := range strings.Split(rendered, "\n") {
		trimmed := strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(trimmed, "<!-- SIGNATURE: sha256:")
		if !ok {
			continue
		}
		if sig, ok := strings.CutSuffix(rest, " -->"); ok {
			return strings.TrimSpace(sig)
		}
	}
	return ""
}

func writeHeader(h interface{ Write([]byte) (int, error) }, typeTag string) {
	fmt.Fprintf(h, "docgov-signature-v%d\n", Version)
	fmt.Fprintf(h, "type:%s\n", typeTag)
}

// writeCanonical serializes v through JSON into a dynamic value, writes
// its canonical form, and terminates the segment with a newline.
func writeCanonical(h interface{ Write([]byte) (int, error) }, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := writeValue(&buf, value); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = h.Write(buf.Bytes())
	return err
}

// writeValue emits compact JSON with object keys sorted at every level.
// Array order is preserved; only objects are normalized. The walk is
// generic over the dynamic representation so all signed kinds share it.
func writeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(val.String())
	case string:
		escaped, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(escaped)
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			escaped, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(escaped)
			buf.WriteByte(':')
			if err := writeValue(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}
