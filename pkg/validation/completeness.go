package validation

import (
	"context"
	"strings"

	"github.com/craftlab/skillforge/pkg/types/entity"
)

// Section names of the completeness map.
const (
	SectionProblem   = "problem"
	SectionScenarios = "scenarios"
	SectionRole      = "role"
	SectionIntents   = "intents"
	SectionTools     = "tools"
	SectionPolicy    = "policy"
)

// minProblemStatementLength is the heuristic floor for a usable problem
// statement.
const minProblemStatementLength = 10

// CompletenessChecker evaluates section-presence heuristics. It informs
// ready_to_export through the completeness map and emits suggestion-severity
// issues for missing sections; it never raises blockers.
type CompletenessChecker struct{}

// NewCompletenessChecker creates a checker.
func NewCompletenessChecker() *CompletenessChecker {
	return &CompletenessChecker{}
}

// Check returns per-section suggestions plus the section->present map.
func (c *CompletenessChecker) Check(_ context.Context, e *entity.Entity) ([]Issue, map[string]bool) {
	sections := map[string]bool{
		SectionProblem:   hasProblemStatement(e),
		SectionScenarios: hasScenarios(e),
		SectionRole:      hasRole(e),
		SectionIntents:   hasIntents(e),
		SectionTools:     len(e.Tools) > 0,
		SectionPolicy:    hasPolicy(e),
	}

	hints := map[string]string{
		SectionProblem:   "describe the problem this agent solves (at least a sentence)",
		SectionScenarios: "capture at least one concrete usage scenario",
		SectionRole:      "give the agent role both a name and a persona",
		SectionIntents:   "define at least one intent",
		SectionTools:     "define at least one tool",
		SectionPolicy:    "add policy guardrails",
	}

	var issues []Issue
	// Stable iteration over a fixed section order keeps suggestion output
	// deterministic for the UI.
	for _, section := range []string{
		SectionProblem, SectionScenarios, SectionRole,
		SectionIntents, SectionTools, SectionPolicy,
	} {
		if sections[section] {
			continue
		}
		issues = append(issues, Issue{
			Severity:    SeveritySuggestion,
			Type:        "incomplete_section",
			Description: "section " + section + " is not complete yet",
			Suggestion:  hints[section],
		})
	}
	return issues, sections
}

func hasProblemStatement(e *entity.Entity) bool {
	statement, _ := e.Problem["statement"].(string)
	return len(strings.TrimSpace(statement)) >= minProblemStatementLength
}

func hasScenarios(e *entity.Entity) bool {
	scenarios, _ := e.Intents["scenarios"].([]any)
	return len(scenarios) > 0
}

func hasRole(e *entity.Entity) bool {
	name, _ := e.Role["name"].(string)
	persona, _ := e.Role["persona"].(string)
	return strings.TrimSpace(name) != "" && strings.TrimSpace(persona) != ""
}

func hasIntents(e *entity.Entity) bool {
	intents, _ := e.Intents["intents"].([]any)
	return len(intents) > 0
}

func hasPolicy(e *entity.Entity) bool {
	guardrails, _ := e.Policy["guardrails"].([]any)
	return len(guardrails) > 0
}
