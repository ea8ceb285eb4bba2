package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/craftlab/skillforge/pkg/types/entity"
)

// entitySchemaJSON is the structural contract every draft document must
// satisfy: required top-level fields, primitive field types, and the local
// key field of every keyed collection. Cross-collection knowledge lives in
// the reference resolver, not here.
const entitySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": [
    "id", "kind", "name", "version", "phase",
    "created_at", "updated_at",
    "skills", "grants", "handoffs", "tools", "workflows", "triggers",
    "routing", "conversation"
  ],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "kind": {"enum": ["solution", "skill"]},
    "name": {"type": "string"},
    "version": {"type": "string", "minLength": 1},
    "phase": {"type": "string", "minLength": 1},
    "skills": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {"id": {"type": "string", "minLength": 1}}
      }
    },
    "grants": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["key"],
        "properties": {"key": {"type": "string", "minLength": 1}}
      }
    },
    "handoffs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {"id": {"type": "string", "minLength": 1}}
      }
    },
    "tools": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {"id": {"type": "string", "minLength": 1}}
      }
    },
    "workflows": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "steps": {"type": "array", "items": {"type": "object"}}
        }
      }
    },
    "triggers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {"id": {"type": "string", "minLength": 1}}
      }
    },
    "routing": {"type": "object"},
    "conversation": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "role", "content"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "role": {"type": "string", "minLength": 1},
          "content": {"type": "string"}
        }
      }
    },
    "problem": {"type": "object"},
    "role": {"type": "object"},
    "intents": {"type": "object"},
    "policy": {"type": "object"},
    "engine": {"type": "object"},
    "linked_domains": {"type": "array", "items": {"type": "string"}}
  }
}`

// SchemaValidator checks the structural shape of a single entity against a
// compiled JSON Schema. It is stateless across calls and has no cross-entity
// knowledge.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the embedded entity schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	// jsonschema.UnmarshalJSON is required for correct number handling.
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(entitySchemaJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal entity schema")
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("entity.schema.json", doc); err != nil {
		return nil, errors.Wrap(err, "failed to add entity schema resource")
	}
	schema, err := compiler.Compile("entity.schema.json")
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile entity schema")
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate reports one blocker issue per schema violation. A document that
// cannot even be serialized reports a single blocker.
func (v *SchemaValidator) Validate(_ context.Context, e *entity.Entity) []Issue {
	data, err := json.Marshal(e)
	if err != nil {
		return []Issue{{
			Severity:    SeverityBlocker,
			Type:        "schema",
			Description: "entity cannot be serialized: " + err.Error(),
		}}
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return []Issue{{
			Severity:    SeverityBlocker,
			Type:        "schema",
			Description: "entity cannot be decoded for validation: " + err.Error(),
		}}
	}

	err = v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []Issue{{
			Severity:    SeverityBlocker,
			Type:        "schema",
			Description: err.Error(),
		}}
	}

	var issues []Issue
	for _, leaf := range flattenCauses(validationErr) {
		location := "/" + strings.Join(leaf.InstanceLocation, "/")
		issues = append(issues, Issue{
			Severity:    SeverityBlocker,
			Type:        "schema",
			Description: leaf.Error(),
			Suggestion:  "fix the document field at " + location,
			RelatedIDs:  []string{e.ID},
		})
	}
	return issues
}

// flattenCauses walks the validation error tree and returns the leaf causes,
// which carry the specific violations.
func flattenCauses(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		leaves = append(leaves, flattenCauses(cause)...)
	}
	return leaves
}
