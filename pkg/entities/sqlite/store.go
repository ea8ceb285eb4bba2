// Package sqlite implements the entity store on SQLite via sqlx. Summary
// columns are projected out of the document at write time so that list
// operations never materialize full documents.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/craftlab/skillforge/pkg/db"
	"github.com/craftlab/skillforge/pkg/types/entity"
)

// Store implements the entity store on a SQLite database.
type Store struct {
	dbPath string
	db     *sqlx.DB
}

// entityRow is the scan target for summary queries.
type entityRow struct {
	ID           string    `db:"id"`
	Kind         string    `db:"kind"`
	Name         string    `db:"name"`
	Phase        string    `db:"phase"`
	SkillCount   int       `db:"skill_count"`
	ToolCount    int       `db:"tool_count"`
	GrantCount   int       `db:"grant_count"`
	HandoffCount int       `db:"handoff_count"`
	MessageCount int       `db:"message_count"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// NewStore opens (or creates) the database at dbPath and ensures the schema.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	database, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	store := &Store{dbPath: dbPath, db: database}
	if err := store.initializeSchema(ctx); err != nil {
		database.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}
	return store, nil
}

func (s *Store) initializeSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// Create inserts a brand-new entity document.
func (s *Store) Create(ctx context.Context, e *entity.Entity) error {
	document, err := json.Marshal(e)
	if err != nil {
		return entity.StorageError("marshal entity document", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities (
			id, kind, name, phase,
			skill_count, tool_count, grant_count, handoff_count, message_count,
			created_at, updated_at, document
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.Name, string(e.Phase),
		len(e.Skills), len(e.Tools), len(e.Grants), len(e.Handoffs), len(e.Conversation),
		e.CreatedAt, e.UpdatedAt, string(document),
	)
	if err != nil {
		return entity.StorageError("insert entity", err)
	}
	return nil
}

// Load retrieves the full document for id.
func (s *Store) Load(ctx context.Context, id string) (*entity.Entity, error) {
	var document string
	err := s.db.GetContext(ctx, &document, `SELECT document FROM entities WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.NotFoundError(id)
		}
		return nil, entity.StorageError("query entity", err)
	}
	var e entity.Entity
	if err := json.Unmarshal([]byte(document), &e); err != nil {
		return nil, entity.StorageError("unmarshal entity document", err)
	}
	return &e, nil
}

// Save overwrites the persisted document. The id must exist already.
func (s *Store) Save(ctx context.Context, e *entity.Entity) error {
	document, err := json.Marshal(e)
	if err != nil {
		return entity.StorageError("marshal entity document", err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE entities SET
			kind = ?, name = ?, phase = ?,
			skill_count = ?, tool_count = ?, grant_count = ?, handoff_count = ?, message_count = ?,
			updated_at = ?, document = ?
		WHERE id = ?`,
		string(e.Kind), e.Name, string(e.Phase),
		len(e.Skills), len(e.Tools), len(e.Grants), len(e.Handoffs), len(e.Conversation),
		e.UpdatedAt, string(document), e.ID,
	)
	if err != nil {
		return entity.StorageError("update entity", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return entity.StorageError("check update result", err)
	}
	if affected == 0 {
		return entity.NotFoundError(e.ID)
	}
	return nil
}

// List returns summaries from the projection columns only; documents are
// never read.
func (s *Store) List(ctx context.Context) ([]entity.Summary, error) {
	var rows []entityRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, kind, name, phase,
			skill_count, tool_count, grant_count, handoff_count, message_count,
			created_at, updated_at
		FROM entities
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, entity.StorageError("list entities", err)
	}

	summaries := make([]entity.Summary, 0, len(rows))
	for _, row := range rows {
		phase := entity.Phase(row.Phase)
		summaries = append(summaries, entity.Summary{
			ID:           row.ID,
			Kind:         entity.Kind(row.Kind),
			Name:         row.Name,
			Phase:        phase,
			Progress:     phase.Progress(),
			SkillCount:   row.SkillCount,
			ToolCount:    row.ToolCount,
			GrantCount:   row.GrantCount,
			HandoffCount: row.HandoffCount,
			MessageCount: row.MessageCount,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		})
	}
	return summaries, nil
}

// Remove deletes the row if present; absence is success.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id); err != nil {
		return entity.StorageError("delete entity", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
