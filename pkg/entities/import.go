package entities

import (
	"context"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/craftlab/skillforge/pkg/logger"
	"github.com/craftlab/skillforge/pkg/types/entity"
)

// ImportDocument is the externally authored document shape accepted by
// import: a topology (skills, grants, handoffs, routing) plus optional
// sub-documents. Conversation state and lifecycle status in the source are
// ignored; an import always produces a fresh draft.
type ImportDocument struct {
	Name      string           `mapstructure:"name"`
	Kind      string           `mapstructure:"kind"`
	Version   string           `mapstructure:"version"`
	Skills    []map[string]any `mapstructure:"skills"`
	Grants    []map[string]any `mapstructure:"grants"`
	Handoffs  []map[string]any `mapstructure:"handoffs"`
	Tools     []map[string]any `mapstructure:"tools"`
	Workflows []map[string]any `mapstructure:"workflows"`
	Triggers  []map[string]any `mapstructure:"triggers"`
	Routing   map[string]any   `mapstructure:"routing"`
	Problem   map[string]any   `mapstructure:"problem"`
	Role      map[string]any   `mapstructure:"role"`
	Intents   map[string]any   `mapstructure:"intents"`
	Policy    map[string]any   `mapstructure:"policy"`
	Engine    map[string]any   `mapstructure:"engine"`
}

// ImportFromYAML builds a new entity from an externally authored YAML
// document plus a list of externally linked reference ids. The returned
// entity always has a fresh id, an empty conversation, and the fixed
// post-import phase, regardless of what the source document claims.
func (s *Service) ImportFromYAML(ctx context.Context, data []byte, linkedRefs []string) (*entity.Entity, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse import document")
	}
	return s.Import(ctx, raw, linkedRefs)
}

// Import builds a new entity from an already-decoded document map.
func (s *Service) Import(ctx context.Context, raw map[string]any, linkedRefs []string) (*entity.Entity, error) {
	var doc ImportDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create import decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode import document")
	}

	kind := entity.KindSolution
	if doc.Kind == string(entity.KindSkill) {
		kind = entity.KindSkill
	}
	name := doc.Name
	if name == "" {
		name = "Imported Solution"
	}

	e := entity.New(kind, name)
	e.Phase = entity.ImportPhase
	if doc.Version != "" {
		e.Version = doc.Version
	}
	e.Skills = importItems(doc.Skills)
	e.Grants = importItems(doc.Grants)
	e.Handoffs = importItems(doc.Handoffs)
	e.Tools = importItems(doc.Tools)
	e.Workflows = importItems(doc.Workflows)
	e.Triggers = importItems(doc.Triggers)
	if doc.Routing != nil {
		e.Routing = doc.Routing
	}
	e.Problem = doc.Problem
	e.Role = doc.Role
	e.Intents = doc.Intents
	e.Policy = doc.Policy
	e.Engine = doc.Engine
	e.LinkedDomains = linkedRefs
	e.Conversation = []entity.Message{}
	e.UpdatedAt = time.Now().UTC()

	if err := s.store.Create(ctx, e); err != nil {
		return nil, err
	}
	logger.G(ctx).
		WithField("entity_id", e.ID).
		WithField("linked_domains", len(linkedRefs)).
		Info("imported entity")
	return e, nil
}

func importItems(items []map[string]any) []entity.Item {
	out := make([]entity.Item, 0, len(items))
	for _, item := range items {
		out = append(out, entity.Item(item))
	}
	return out
}
