package entities

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlab/skillforge/pkg/types/entity"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)
	return NewService(store)
}

func TestServiceCreateDefaults(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	e, report, err := service.Create(ctx, entity.KindSolution, "Test Solution", nil)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, strings.HasPrefix(e.ID, "sol_"))
	assert.Equal(t, "1.0.0", e.Version)
	assert.Equal(t, entity.Phase("SOLUTION_DISCOVERY"), e.Phase)
	assert.Empty(t, e.Skills)

	// Created entities are persisted immediately.
	loaded, err := service.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Solution", loaded.Name)
}

func TestServiceCreateWithInitialFields(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	e, report, err := service.Create(ctx, entity.KindSolution, "Seeded", map[string]any{
		"problem":     map[string]any{"statement": "Order tracking is slow and manual."},
		"skills_push": map[string]any{"id": "gateway", "role": "gateway"},
	})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Len(t, e.Skills, 1)
	assert.NotEmpty(t, e.Problem)
}

func TestServiceUpdateStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	e, _, err := service.Create(ctx, entity.KindSolution, "Roundtrip", nil)
	require.NoError(t, err)

	updated, report, err := service.UpdateState(ctx, e.ID, map[string]any{
		"skills_push": map[string]any{"id": "gateway", "role": "gateway"},
	})
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Len(t, updated.Skills, 1)

	// A fresh load yields the mutated state exactly.
	loaded, err := service.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Skills, 1)
	assert.Equal(t, "gateway", loaded.Skills[0]["id"])
	assert.True(t, loaded.UpdatedAt.After(loaded.CreatedAt) || loaded.UpdatedAt.Equal(loaded.CreatedAt))
}

func TestServiceUpdateStateUpsert(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	e, _, err := service.Create(ctx, entity.KindSolution, "Upsert", nil)
	require.NoError(t, err)

	_, _, err = service.UpdateState(ctx, e.ID, map[string]any{
		"skills_push": map[string]any{"id": "gateway", "role": "gateway"},
	})
	require.NoError(t, err)

	updated, _, err := service.UpdateState(ctx, e.ID, map[string]any{
		"skills_push": map[string]any{"id": "gateway", "role": "gateway", "description": "Updated"},
	})
	require.NoError(t, err)
	require.Len(t, updated.Skills, 1)
	assert.Equal(t, "Updated", updated.Skills[0]["description"])
}

func TestServiceUpdateStateNotFound(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	_, _, err := service.UpdateState(ctx, "sol_missing", map[string]any{"name": "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestServiceUpdateStateRejectedInstructionStillPersistsRest(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	e, _, err := service.Create(ctx, entity.KindSolution, "Partial", nil)
	require.NoError(t, err)

	_, report, err := service.UpdateState(ctx, e.ID, map[string]any{
		"skills_push": map[string]any{"id": "gateway"},
		"nonsense":    true,
	})
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)

	loaded, err := service.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Skills, 1)
}

func TestServiceConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	e, _, err := service.Create(ctx, entity.KindSolution, "Concurrent", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, skillID := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, err := service.UpdateState(ctx, e.ID, map[string]any{
				"skills_push": map[string]any{"id": id},
			})
			assert.NoError(t, err)
		}(skillID)
	}
	wg.Wait()

	loaded, err := service.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Skills, 2, "neither concurrent write may be lost")
}

func TestServiceConcurrentAppendMessages(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	e, _, err := service.Create(ctx, entity.KindSolution, "Chatty", nil)
	require.NoError(t, err)

	const appends = 10
	var wg sync.WaitGroup
	for i := 0; i < appends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.AppendMessage(ctx, e.ID, "user", "hello")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	loaded, err := service.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Conversation, appends, "conversation length only grows")
}

func TestServiceAppendMessage(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	e, _, err := service.Create(ctx, entity.KindSolution, "Messaged", nil)
	require.NoError(t, err)

	updated, err := service.AppendMessage(ctx, e.ID, "user", "What can you do?")
	require.NoError(t, err)
	require.Len(t, updated.Conversation, 1)

	message := updated.Conversation[0]
	assert.True(t, strings.HasPrefix(message.ID, "msg_"))
	assert.Equal(t, "user", message.Role)
	assert.Equal(t, "What can you do?", message.Content)
	assert.False(t, message.Timestamp.IsZero())
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	e, _, err := service.Create(ctx, entity.KindSolution, "Doomed", nil)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, e.ID))
	_, err = service.Get(ctx, e.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	// Deleting a non-existent id is not an error.
	assert.NoError(t, service.Delete(ctx, "does-not-exist"))
}

func TestServiceImportFromYAML(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	doc := []byte(`
name: Imported Commerce Solution
skills:
  - id: gateway
    role: gateway
  - id: orders
    role: worker
grants:
  - key: ecom.customer_id
    issued_by: gateway
    consumed_by: orders
handoffs:
  - id: h1
    from: gateway
    to: orders
routing:
  telegram:
    default_skill: gateway
status: EXPORTED
`)

	e, err := service.ImportFromYAML(ctx, doc, []string{"d1", "d2"})
	require.NoError(t, err)

	assert.Equal(t, entity.Phase("VALIDATION"), e.Phase, "import forces the fixed post-import phase")
	assert.Empty(t, e.Conversation)
	assert.Equal(t, []string{"d1", "d2"}, e.LinkedDomains)
	assert.Len(t, e.Skills, 2)
	assert.Len(t, e.Grants, 1)
	assert.Len(t, e.Handoffs, 1)
	assert.Contains(t, e.Routing, "telegram")
	assert.True(t, strings.HasPrefix(e.ID, "sol_"), "imports always get a fresh id")

	// The imported draft is persisted.
	loaded, err := service.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Imported Commerce Solution", loaded.Name)
}

func TestServiceImportInvalidYAML(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	_, err := service.ImportFromYAML(ctx, []byte("{not yaml: ["), nil)
	require.Error(t, err)
}
