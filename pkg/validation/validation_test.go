package validation

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlab/skillforge/pkg/types/entity"
)

// completeEntity builds a draft that passes every validator.
func completeEntity() *entity.Entity {
	e := entity.New(entity.KindSolution, "Complete Solution")
	e.Skills = []entity.Item{
		{"id": "gateway", "role": "gateway"},
		{"id": "orders", "role": "worker"},
	}
	e.Tools = []entity.Item{{"id": "tool_lookup", "name": "order_lookup"}}
	e.Workflows = []entity.Item{{
		"id": "workflow_track",
		"steps": []any{
			map[string]any{"tool": "order_lookup"},
		},
	}}
	e.Triggers = []entity.Item{{"id": "trigger_1", "intent": "intent_track"}}
	e.Grants = []entity.Item{{
		"key":         "ecom.customer_id",
		"issued_by":   "gateway",
		"consumed_by": "orders",
	}}
	e.Handoffs = []entity.Item{{"id": "h1", "from": "gateway", "to": "orders"}}
	e.Problem = map[string]any{"statement": "Customers cannot track orders without emailing support."}
	e.Role = map[string]any{"name": "Order Assistant", "persona": "helpful, concise"}
	e.Intents = map[string]any{
		"intents": []any{
			map[string]any{"id": "intent_track", "workflow": "workflow_track"},
		},
		"scenarios": []any{
			map[string]any{"id": "s1", "description": "customer asks where their parcel is"},
		},
	}
	e.Policy = map[string]any{"guardrails": []any{"never reveal other customers' data"}}
	return e
}

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline(opts...)
	require.NoError(t, err)
	return pipeline
}

func TestPipelineCompleteEntity(t *testing.T) {
	pipeline := newTestPipeline(t)
	result := pipeline.Run(context.Background(), completeEntity())

	assert.True(t, result.Valid)
	assert.True(t, result.ReadyToExport)
	assert.Empty(t, result.Errors)
	assert.True(t, result.Unresolved.Empty())
	for section, present := range result.Completeness {
		assert.True(t, present, "section %s should be complete", section)
	}
}

func TestPipelineEmptyEntityNotReady(t *testing.T) {
	pipeline := newTestPipeline(t)
	result := pipeline.Run(context.Background(), entity.New(entity.KindSolution, "Empty"))

	// An empty draft is structurally valid but nowhere near exportable.
	assert.True(t, result.Valid)
	assert.False(t, result.ReadyToExport)
	assert.NotEmpty(t, result.Suggestions)
	assert.False(t, result.Completeness[SectionProblem])
	assert.False(t, result.Completeness[SectionTools])
}

func TestPipelineUnresolvedReferences(t *testing.T) {
	e := completeEntity()
	e.Grants = append(e.Grants, entity.Item{
		"key":       "ecom.ghost",
		"issued_by": "phantom",
	})
	e.Handoffs = append(e.Handoffs, entity.Item{"id": "h2", "from": "gateway", "to": "nowhere"})
	e.Workflows = append(e.Workflows, entity.Item{
		"id":    "workflow_broken",
		"steps": []any{map[string]any{"tool": "missing_tool"}},
	})

	pipeline := newTestPipeline(t)
	result := pipeline.Run(context.Background(), e)

	assert.False(t, result.Valid, "dangling references block validity")
	assert.False(t, result.ReadyToExport)
	assert.Contains(t, result.Unresolved.Skills, "phantom")
	assert.Contains(t, result.Unresolved.Skills, "nowhere")
	assert.Contains(t, result.Unresolved.Tools, "missing_tool")
}

func TestPipelineDoesNotShortCircuit(t *testing.T) {
	// An entity with both a schema violation and dangling references
	// reports all of them, not just the first validator's findings.
	e := completeEntity()
	e.Version = ""
	e.Triggers = append(e.Triggers, entity.Item{"id": "trigger_2", "intent": "intent_ghost"})

	pipeline := newTestPipeline(t)
	result := pipeline.Run(context.Background(), e)

	var types []string
	for _, issue := range result.Errors {
		types = append(types, issue.Type)
	}
	assert.Contains(t, types, "schema")
	assert.Contains(t, types, "unresolved_intent")
}

type stubConsistencyChecker struct {
	issues []Issue
	err    error
}

func (s *stubConsistencyChecker) CheckConsistency(_ context.Context, _ *entity.Entity, _ string) ([]Issue, error) {
	return s.issues, s.err
}

func TestPipelineConsistencyIsAdvisory(t *testing.T) {
	checker := &stubConsistencyChecker{
		issues: []Issue{{
			Severity:    SeverityBlocker,
			Type:        "guardrail_conflict",
			Description: "guardrails contradict workflow step 2",
		}},
	}
	pipeline := newTestPipeline(t, WithConsistencyChecker(checker))
	result := pipeline.Run(context.Background(), completeEntity())

	// Blocker findings from the injected judge are demoted to warnings and
	// never gate export readiness.
	assert.True(t, result.Valid)
	assert.True(t, result.ReadyToExport)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, SeverityWarning, result.Warnings[0].Severity)
	assert.Equal(t, "guardrail_conflict", result.Warnings[0].Type)
}

func TestPipelineConsistencyFailure(t *testing.T) {
	pipeline := newTestPipeline(t, WithConsistencyChecker(&stubConsistencyChecker{
		err: errors.New("judge unavailable"),
	}))
	result := pipeline.Run(context.Background(), completeEntity())

	assert.True(t, result.Valid, "an unavailable judge never blocks")
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "consistency_unavailable", result.Warnings[0].Type)
}
