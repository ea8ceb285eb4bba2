package entities

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/craftlab/skillforge/pkg/logger"
	"github.com/craftlab/skillforge/pkg/types/entity"
)

// JSONStore implements Store with one JSON document per entity under a
// configured root directory. Writes go through a temp file plus rename so a
// crashed write never leaves a torn document behind.
type JSONStore struct {
	basePath string
}

// NewJSONStore creates a JSON file-based entity store rooted at basePath.
func NewJSONStore(basePath string) (*JSONStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create entities directory")
	}
	return &JSONStore{basePath: basePath}, nil
}

func (s *JSONStore) path(id string) string {
	return filepath.Join(s.basePath, id+".json")
}

// Create persists a brand-new entity document.
func (s *JSONStore) Create(_ context.Context, e *entity.Entity) error {
	if _, err := os.Stat(s.path(e.ID)); err == nil {
		return storageErr(errors.Errorf("entity %q already exists", e.ID), "create")
	}
	return s.write(e)
}

// Load retrieves the document for id.
func (s *JSONStore) Load(_ context.Context, id string) (*entity.Entity, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, storageErr(err, "read entity file")
	}
	var e entity.Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, storageErr(err, "unmarshal entity document")
	}
	return &e, nil
}

// Save overwrites the persisted document. The id must have been created
// before; there is no silent create-on-save.
func (s *JSONStore) Save(_ context.Context, e *entity.Entity) error {
	if _, err := os.Stat(s.path(e.ID)); err != nil {
		if os.IsNotExist(err) {
			return notFound(e.ID)
		}
		return storageErr(err, "stat entity file")
	}
	return s.write(e)
}

func (s *JSONStore) write(e *entity.Entity) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return storageErr(err, "marshal entity document")
	}

	filePath := s.path(e.ID)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return storageErr(err, "write temporary entity file")
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return storageErr(err, "rename temporary entity file")
	}
	return nil
}

// List walks the root directory and returns summaries ordered by creation
// time. Unreadable files are logged and skipped so one corrupt document does
// not hide the rest.
func (s *JSONStore) List(ctx context.Context) ([]entity.Summary, error) {
	summaries := []entity.Summary{}

	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("path", path).Warn("skipping unreadable entity file")
			return nil
		}
		var e entity.Entity
		if err := json.Unmarshal(data, &e); err != nil {
			logger.G(ctx).WithError(err).WithField("path", path).Warn("skipping unparsable entity file")
			return nil
		}
		summaries = append(summaries, e.ToSummary())
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "list entities")
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Remove deletes the document if present. Absence is success.
func (s *JSONStore) Remove(_ context.Context, id string) error {
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return storageErr(err, "delete entity file")
	}
	return nil
}

// Close is a no-op for the file store.
func (s *JSONStore) Close() error {
	return nil
}
