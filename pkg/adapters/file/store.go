// Package file stores one JSON document per workshop in a local directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/eventstorm/pkg/domain"
)

// DefaultDirName is the directory, under the user's home, used when no path is configured.
const DefaultDirName = ".eventstorming_workshops"

// Store implements ports.WorkshopStore using the local filesystem.
// Each workshop lives in <BasePath>/<id>.json.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ~/.eventstorming_workshops.
func New(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultDir()
	}
	return &Store{BasePath: basePath}
}

// DefaultDir returns ~/.eventstorming_workshops, or a relative fallback when
// the home directory cannot be resolved.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

func (s *Store) path(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", domain.Validation("invalid workshop id %q", id)
	}
	return filepath.Join(s.BasePath, id+".json"), nil
}

// Save persists the workshop document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.Validation("document cannot be nil")
	}
	id := doc.Metadata.ID
	destPath, err := s.path(id)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return domain.Storage("save", fmt.Errorf("failed to ensure workshop directory: %w", err))
	}

	out := doc.Clone()
	out.Normalize()
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return domain.Storage("save", fmt.Errorf("failed to marshal workshop: %w", err))
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, ".tmp-"+id+"-*")
	if err != nil {
		return domain.Storage("save", fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmpFile.Name()

	// Cleanup temp file in case of failure
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return domain.Storage("save", fmt.Errorf("failed to write to temp file: %w", err))
	}
	if err := tmpFile.Sync(); err != nil {
		return domain.Storage("save", fmt.Errorf("failed to fsync temp file: %w", err))
	}
	// Close before rename (cannot rename open file on Windows)
	if err := tmpFile.Close(); err != nil {
		return domain.Storage("save", fmt.Errorf("failed to close temp file: %w", err))
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return domain.Storage("save", fmt.Errorf("failed to rename temp file: %w", err))
	}
	return nil
}

// Load retrieves the workshop document from its JSON file.
func (s *Store) Load(ctx context.Context, id string) (*domain.Document, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFound("workshop", id)
		}
		return nil, domain.Storage("load", fmt.Errorf("failed to read workshop file: %w", err))
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.Storage("load", fmt.Errorf("failed to unmarshal workshop %s: %w", id, err))
	}
	doc.Normalize()
	return &doc, nil
}

// Delete removes the workshop file.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NotFound("workshop", id)
		}
		return domain.Storage("delete", fmt.Errorf("failed to delete workshop file: %w", err))
	}
	return nil
}

// listing decodes only what a summary needs; elements and contexts are
// counted, not parsed.
type listing struct {
	Metadata struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Domain    string    `json:"domain"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	} `json:"metadata"`
	Elements        []json.RawMessage `json:"elements"`
	BoundedContexts []json.RawMessage `json:"bounded_contexts"`
}

// List returns the summaries of every readable workshop file.
// Files that cannot be decoded are skipped.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Summary{}, nil
		}
		return nil, domain.Storage("list", fmt.Errorf("failed to list workshops: %w", err))
	}

	summaries := make([]domain.Summary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.BasePath, name))
		if err != nil {
			continue
		}
		var l listing
		if err := json.Unmarshal(data, &l); err != nil || l.Metadata.ID == "" {
			continue
		}
		summaries = append(summaries, domain.Summary{
			ID:           l.Metadata.ID,
			Name:         l.Metadata.Name,
			Domain:       l.Metadata.Domain,
			CreatedAt:    l.Metadata.CreatedAt,
			UpdatedAt:    l.Metadata.UpdatedAt,
			ElementCount: len(l.Elements),
			ContextCount: len(l.BoundedContexts),
		})
	}
	domain.SortSummaries(summaries)
	return summaries, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
