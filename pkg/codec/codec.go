// Package codec encodes and decodes workshop documents and implements the
// export envelope and the import gateway.
//
// JSON is the persisted and default interchange format; YAML is accepted for
// hand-edited exports. Imports are always re-validated with graph.Validate
// before they are handed back to the caller.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/eventstorm/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format.
type Format string

const (
	// FormatJSON is the default format, indented with two spaces.
	FormatJSON Format = "json"
	// FormatYAML encodes with gopkg.in/yaml.v3.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a user supplied format name. Empty means JSON.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", domain.Validation("unknown format %q (expected json or yaml)", raw)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Encode serializes v with two-space indentation.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return data, nil
	}
}

// EncodeDocument serializes a workshop document in its persisted layout.
func EncodeDocument(doc *domain.Document, f Format) ([]byte, error) {
	out := doc.Clone()
	out.Normalize()
	return Encode(out, f)
}

// DecodeDocument parses a workshop document without validating it.
// Syntax errors are reported as ErrValidationFailed.
func DecodeDocument(data []byte, f Format) (*domain.Document, error) {
	var env envelope
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &env); err != nil {
			return nil, &domain.Error{Kind: domain.ErrValidationFailed, Msg: "invalid yaml document", Err: err}
		}
	default:
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, &domain.Error{Kind: domain.ErrValidationFailed, Msg: "invalid json document", Err: err}
		}
	}
	if env.Metadata == nil {
		return nil, domain.Validation("document has no metadata section")
	}
	doc := &domain.Document{
		Metadata:        *env.Metadata,
		Elements:        env.Elements,
		BoundedContexts: env.BoundedContexts,
	}
	doc.Normalize()
	return doc, nil
}

// envelope accepts both stored documents and export envelopes.
type envelope struct {
	Metadata        *domain.Metadata        `json:"metadata" yaml:"metadata"`
	Elements        []domain.Element        `json:"elements" yaml:"elements"`
	BoundedContexts []domain.BoundedContext `json:"bounded_contexts" yaml:"bounded_contexts"`
	ExportInfo      *ExportInfo             `json:"export_info,omitempty" yaml:"export_info,omitempty"`
}
