package codec

import (
	"strings"
	"time"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/ids"
)

// ExportInfo stamps an export with its origin.
type ExportInfo struct {
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Version    string    `json:"version" yaml:"version"`
	Tool       string    `json:"tool" yaml:"tool"`
}

// BriefMetadata is the metadata kept when an export omits extended metadata.
type BriefMetadata struct {
	Name        string `json:"name" yaml:"name"`
	Domain      string `json:"domain" yaml:"domain"`
	Description string `json:"description" yaml:"description"`
}

// Export is the export envelope: the full graph plus export_info.
type Export struct {
	Metadata        any                     `json:"metadata" yaml:"metadata"` // domain.Metadata or BriefMetadata
	Elements        []domain.Element        `json:"elements" yaml:"elements"`
	BoundedContexts []domain.BoundedContext `json:"bounded_contexts" yaml:"bounded_contexts"`
	ExportInfo      ExportInfo              `json:"export_info" yaml:"export_info"`
}

// NewExport wraps doc in an export envelope. Without includeMetadata only the
// name, domain and description are kept; elements and contexts are always
// exported in full so the graph can be rebuilt losslessly.
func NewExport(doc *domain.Document, includeMetadata bool, version string, now time.Time) Export {
	d := doc.Clone()
	d.Normalize()
	exp := Export{
		Metadata:        d.Metadata,
		Elements:        d.Elements,
		BoundedContexts: d.BoundedContexts,
		ExportInfo: ExportInfo{
			ExportedAt: now,
			Version:    version,
			Tool:       domain.Tool,
		},
	}
	if !includeMetadata {
		exp.Metadata = BriefMetadata{
			Name:        d.Metadata.Name,
			Domain:      d.Metadata.Domain,
			Description: d.Metadata.Description,
		}
	}
	return exp
}

// ImportOptions controls how an imported document is adopted.
type ImportOptions struct {
	NewName    string // Replaces the workshop name when non-empty
	PreserveID bool   // Keep the document's ID (overwriting any existing workshop)
}

// Import decodes data, adopts it as a workshop and re-validates every
// invariant. The first inconsistency is returned as ErrValidationFailed.
// A fresh workshop ID is allocated unless PreserveID is set and the
// document carries one. Metadata timestamps are regenerated.
func Import(data []byte, f Format, opts ImportOptions, gen ids.Generator, now time.Time) (*domain.Document, error) {
	doc, err := DecodeDocument(data, f)
	if err != nil {
		return nil, err
	}

	if !opts.PreserveID || strings.TrimSpace(doc.Metadata.ID) == "" {
		doc.Metadata.ID = gen.NewID()
	}
	if name := strings.TrimSpace(opts.NewName); name != "" {
		doc.Metadata.Name = name
	}
	doc.Metadata.CreatedAt = now
	doc.Metadata.UpdatedAt = now

	g, err := graph.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	return g.Document(), nil
}
