// Package validation runs the multi-stage validation pipeline over draft
// entities: structural schema checks, cross-collection reference resolution,
// completeness heuristics, and an optional injected consistency checker.
// Validation never fails as an error; partially built and invalid documents
// always produce an inspectable Result.
package validation

import (
	"context"
	"sync"

	"github.com/craftlab/skillforge/pkg/logger"
	"github.com/craftlab/skillforge/pkg/types/entity"
)

// Severity grades a validation finding.
type Severity string

const (
	SeverityBlocker    Severity = "blocker"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Issue is a single structured validation finding.
type Issue struct {
	Severity    Severity `json:"severity"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion,omitempty"`
	RelatedIDs  []string `json:"related_ids,omitempty"`
}

// Unresolved buckets identifiers that failed reference resolution, grouped
// by the kind of target they should have named.
type Unresolved struct {
	Tools     []string `json:"tools"`
	Workflows []string `json:"workflows"`
	Intents   []string `json:"intents"`
	Skills    []string `json:"skills"`
}

// Empty reports whether every bucket is empty.
func (u Unresolved) Empty() bool {
	return len(u.Tools) == 0 && len(u.Workflows) == 0 &&
		len(u.Intents) == 0 && len(u.Skills) == 0
}

// Result aggregates all validator findings for one entity.
type Result struct {
	Valid         bool            `json:"valid"`
	ReadyToExport bool            `json:"ready_to_export"`
	Errors        []Issue         `json:"errors"`
	Warnings      []Issue         `json:"warnings"`
	Suggestions   []Issue         `json:"suggestions,omitempty"`
	Unresolved    Unresolved      `json:"unresolved"`
	Completeness  map[string]bool `json:"completeness"`
}

// ConsistencyChecker is an injected semantic judge (typically LLM-backed, so
// non-deterministic). The core defines only the interface; results are
// advisory and never gate ready_to_export, so blocker-severity findings from
// it are demoted to warnings by the pipeline.
type ConsistencyChecker interface {
	CheckConsistency(ctx context.Context, e *entity.Entity, focus string) ([]Issue, error)
}

// Pipeline runs the validators and merges their findings. The deterministic
// validators are read-only and independent, so they run concurrently against
// the loaded entity; the pipeline never short-circuits on the first blocker.
type Pipeline struct {
	schema       *SchemaValidator
	references   *ReferenceResolver
	completeness *CompletenessChecker
	consistency  ConsistencyChecker
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConsistencyChecker injects an external consistency checker.
func WithConsistencyChecker(checker ConsistencyChecker) Option {
	return func(p *Pipeline) {
		p.consistency = checker
	}
}

// NewPipeline builds the standard pipeline (schema, references,
// completeness) plus any injected checkers.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	schema, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		schema:       schema,
		references:   NewReferenceResolver(),
		completeness: NewCompletenessChecker(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run validates the entity and merges all findings into a Result.
func (p *Pipeline) Run(ctx context.Context, e *entity.Entity) Result {
	var (
		mu           sync.Mutex
		issues       []Issue
		unresolved   Unresolved
		completeness map[string]bool
		wg           sync.WaitGroup
	)

	collect := func(found []Issue) {
		mu.Lock()
		defer mu.Unlock()
		issues = append(issues, found...)
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		collect(p.schema.Validate(ctx, e))
	}()
	go func() {
		defer wg.Done()
		found, dangling := p.references.Resolve(ctx, e)
		mu.Lock()
		unresolved = dangling
		mu.Unlock()
		collect(found)
	}()
	go func() {
		defer wg.Done()
		found, sections := p.completeness.Check(ctx, e)
		mu.Lock()
		completeness = sections
		mu.Unlock()
		collect(found)
	}()
	wg.Wait()

	if p.consistency != nil {
		found, err := p.consistency.CheckConsistency(ctx, e, "")
		if err != nil {
			// Advisory checker failures degrade to a warning; the document
			// must remain inspectable without the external judge.
			logger.G(ctx).WithError(err).Warn("consistency checker failed")
			issues = append(issues, Issue{
				Severity:    SeverityWarning,
				Type:        "consistency_unavailable",
				Description: "consistency check could not be completed: " + err.Error(),
			})
		} else {
			for _, issue := range found {
				if issue.Severity == SeverityBlocker {
					issue.Severity = SeverityWarning
				}
				issues = append(issues, issue)
			}
		}
	}

	result := Result{
		Errors:       []Issue{},
		Warnings:     []Issue{},
		Unresolved:   unresolved,
		Completeness: completeness,
	}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityBlocker:
			result.Errors = append(result.Errors, issue)
		case SeverityWarning:
			result.Warnings = append(result.Warnings, issue)
		default:
			result.Suggestions = append(result.Suggestions, issue)
		}
	}
	result.Valid = len(result.Errors) == 0

	complete := true
	for _, present := range result.Completeness {
		if !present {
			complete = false
			break
		}
	}
	result.ReadyToExport = result.Valid && complete
	return result
}
