package validation

import (
	"context"
	"fmt"

	"github.com/craftlab/skillforge/pkg/types/entity"
)

// ReferenceResolver walks every declared cross-collection reference and
// reports identifiers whose targets do not exist. All references resolve
// against the entity's own collections, including solution-level grants and
// handoffs naming skill ids. Dangling references are blockers; they are
// flagged, never silently dropped.
type ReferenceResolver struct{}

// NewReferenceResolver creates a resolver.
func NewReferenceResolver() *ReferenceResolver {
	return &ReferenceResolver{}
}

// Resolve returns the reference issues plus the unresolved identifier
// buckets consumed by the UI layer.
func (r *ReferenceResolver) Resolve(_ context.Context, e *entity.Entity) ([]Issue, Unresolved) {
	var issues []Issue
	unresolved := Unresolved{
		Tools:     []string{},
		Workflows: []string{},
		Intents:   []string{},
		Skills:    []string{},
	}

	skillIDs := collectionKeySet(e, "skills")
	workflowIDs := collectionKeySet(e, "workflows")
	toolTargets := toolNameSet(e)
	intentIDs := intentIDSet(e)

	report := func(bucket *[]string, issueType, ref, context, suggestion string, related ...string) {
		*bucket = appendUnique(*bucket, ref)
		issues = append(issues, Issue{
			Severity:    SeverityBlocker,
			Type:        issueType,
			Description: fmt.Sprintf("%s references %q, which does not exist", context, ref),
			Suggestion:  suggestion,
			RelatedIDs:  related,
		})
	}

	// Workflow steps name tools.
	for _, workflow := range e.Workflows {
		workflowID, _ := entity.ItemKey("workflows", workflow)
		steps, _ := workflow["steps"].([]any)
		for i, raw := range steps {
			step, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			tool, ok := step["tool"].(string)
			if !ok || tool == "" {
				continue
			}
			if !toolTargets[tool] {
				report(&unresolved.Tools, "unresolved_tool", tool,
					fmt.Sprintf("workflow %q step %d", workflowID, i+1),
					"define the tool or correct the step's tool name",
					workflowID)
			}
		}
	}

	// Intents name workflows.
	for _, item := range intentItems(e) {
		intentID, _ := item["id"].(string)
		workflow, ok := item["workflow"].(string)
		if !ok || workflow == "" {
			continue
		}
		if !workflowIDs[workflow] {
			report(&unresolved.Workflows, "unresolved_workflow", workflow,
				fmt.Sprintf("intent %q", intentID),
				"define the workflow or correct the intent's workflow id",
				intentID)
		}
	}

	// Triggers name intents.
	for _, trigger := range e.Triggers {
		triggerID, _ := entity.ItemKey("triggers", trigger)
		intent, ok := trigger["intent"].(string)
		if !ok || intent == "" {
			continue
		}
		if !intentIDs[intent] {
			report(&unresolved.Intents, "unresolved_intent", intent,
				fmt.Sprintf("trigger %q", triggerID),
				"define the intent or correct the trigger's intent id",
				triggerID)
		}
	}

	// Grants are issued and consumed by skills.
	for _, grant := range e.Grants {
		grantKey, _ := entity.ItemKey("grants", grant)
		for _, field := range []string{"issued_by", "consumed_by"} {
			skill, ok := grant[field].(string)
			if !ok || skill == "" {
				continue
			}
			if !skillIDs[skill] {
				report(&unresolved.Skills, "unresolved_skill", skill,
					fmt.Sprintf("grant %q field %q", grantKey, field),
					"add the skill to the topology or correct the grant",
					grantKey)
			}
		}
	}

	// Handoffs connect two skills.
	for _, handoff := range e.Handoffs {
		handoffID, _ := entity.ItemKey("handoffs", handoff)
		for _, field := range []string{"from", "to"} {
			skill, ok := handoff[field].(string)
			if !ok || skill == "" {
				continue
			}
			if !skillIDs[skill] {
				report(&unresolved.Skills, "unresolved_skill", skill,
					fmt.Sprintf("handoff %q field %q", handoffID, field),
					"add the skill to the topology or correct the handoff",
					handoffID)
			}
		}
	}

	return issues, unresolved
}

// collectionKeySet gathers the local keys of a keyed collection.
func collectionKeySet(e *entity.Entity, collection string) map[string]bool {
	set := map[string]bool{}
	for _, item := range *e.Collection(collection) {
		if key, ok := entity.ItemKey(collection, item); ok {
			set[key] = true
		}
	}
	return set
}

// toolNameSet resolves workflow step tool references against either the
// tool's id or its human-readable name.
func toolNameSet(e *entity.Entity) map[string]bool {
	set := map[string]bool{}
	for _, tool := range e.Tools {
		if id, ok := tool["id"].(string); ok && id != "" {
			set[id] = true
		}
		if name, ok := tool["name"].(string); ok && name != "" {
			set[name] = true
		}
	}
	return set
}

// intentItems extracts the intent list from the intents sub-document.
func intentItems(e *entity.Entity) []map[string]any {
	raw, _ := e.Intents["intents"].([]any)
	items := make([]map[string]any, 0, len(raw))
	for _, element := range raw {
		if item, ok := element.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items
}

func intentIDSet(e *entity.Entity) map[string]bool {
	set := map[string]bool{}
	for _, item := range intentItems(e) {
		if id, ok := item["id"].(string); ok && id != "" {
			set[id] = true
		}
	}
	return set
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
