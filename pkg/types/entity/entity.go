// Package entity defines the draft document types managed by the entity
// store: skill and solution drafts, their keyed collections, conversation
// log, lifecycle phases, and id generation conventions.
package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind identifies the flavor of a draft document.
type Kind string

const (
	KindSolution Kind = "solution"
	KindSkill    Kind = "skill"
)

// Id prefixes. Every generated identifier carries a kind tag so that ids
// are self-describing across collections.
const (
	SolutionIDPrefix = "sol_"
	SkillIDPrefix    = "skill_"
	MessageIDPrefix  = "msg_"
	ToolIDPrefix     = "tool_"
	IntentIDPrefix   = "intent_"
	WorkflowIDPrefix = "workflow_"
	TriggerIDPrefix  = "trigger_"
)

// DefaultVersion is the semantic version assigned to freshly created drafts.
const DefaultVersion = "1.0.0"

// Item is a single element of a keyed collection (a skill, grant, tool, ...).
// Items stay schemaless so that the chat layer can author arbitrary fields;
// only the local key field is mandatory and enforced by the mutation layer.
type Item = map[string]any

// Message is one entry of the append-only conversation log.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Entity is a skill or solution draft document.
type Entity struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Phase     Phase     `json:"phase"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Keyed collections. Every item carries its own local key field
	// (see CollectionKeyField).
	Skills    []Item `json:"skills"`
	Grants    []Item `json:"grants"`
	Handoffs  []Item `json:"handoffs"`
	Tools     []Item `json:"tools"`
	Workflows []Item `json:"workflows"`
	Triggers  []Item `json:"triggers"`

	// Free-form channel routing map (channel name -> config).
	Routing map[string]any `json:"routing"`

	// Append-only wizard transcript. Entries are never mutated in place.
	Conversation []Message `json:"conversation"`

	// Nested sub-documents, replaced wholesale or patched by dotted path.
	Problem map[string]any `json:"problem,omitempty"`
	Role    map[string]any `json:"role,omitempty"`
	Intents map[string]any `json:"intents,omitempty"`
	Policy  map[string]any `json:"policy,omitempty"`
	Engine  map[string]any `json:"engine,omitempty"`

	// Reference ids of externally linked domain documents, set on import.
	LinkedDomains []string `json:"linked_domains,omitempty"`
}

// Summary is the lightweight projection returned by list operations.
type Summary struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Name         string    `json:"name"`
	Phase        Phase     `json:"phase"`
	Progress     float64   `json:"progress"`
	SkillCount   int       `json:"skill_count"`
	ToolCount    int       `json:"tool_count"`
	GrantCount   int       `json:"grant_count"`
	HandoffCount int       `json:"handoff_count"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// collectionKeyFields maps each keyed collection to the item field that acts
// as its local unique key. The mutation processor and the reference resolver
// both consult this table so they agree on identity semantics.
var collectionKeyFields = map[string]string{
	"skills":    "id",
	"grants":    "key",
	"handoffs":  "id",
	"tools":     "id",
	"workflows": "id",
	"triggers":  "id",
}

// CollectionKeyField returns the local key field name for a keyed collection,
// or false if the name does not denote a keyed collection.
func CollectionKeyField(collection string) (string, bool) {
	field, ok := collectionKeyFields[collection]
	return field, ok
}

// CollectionNames returns the names of all keyed collections.
func CollectionNames() []string {
	names := make([]string, 0, len(collectionKeyFields))
	for name := range collectionKeyFields {
		names = append(names, name)
	}
	return names
}

// Collection returns a pointer to the named keyed collection slice, or nil
// if the name is not a keyed collection.
func (e *Entity) Collection(name string) *[]Item {
	switch name {
	case "skills":
		return &e.Skills
	case "grants":
		return &e.Grants
	case "handoffs":
		return &e.Handoffs
	case "tools":
		return &e.Tools
	case "workflows":
		return &e.Workflows
	case "triggers":
		return &e.Triggers
	default:
		return nil
	}
}

// SubDocument returns a pointer to the named nested sub-document map, or nil
// if the name is not a nested sub-document.
func (e *Entity) SubDocument(name string) *map[string]any {
	switch name {
	case "problem":
		return &e.Problem
	case "role":
		return &e.Role
	case "intents":
		return &e.Intents
	case "policy":
		return &e.Policy
	case "engine":
		return &e.Engine
	case "routing":
		return &e.Routing
	default:
		return nil
	}
}

// New creates an empty draft of the given kind with a fresh prefixed id,
// default version, and the initial lifecycle phase.
func New(kind Kind, name string) *Entity {
	now := time.Now().UTC()
	return &Entity{
		ID:           GenerateID(IDPrefix(kind)),
		Kind:         kind,
		Name:         name,
		Version:      DefaultVersion,
		Phase:        InitialPhase,
		CreatedAt:    now,
		UpdatedAt:    now,
		Skills:       []Item{},
		Grants:       []Item{},
		Handoffs:     []Item{},
		Tools:        []Item{},
		Workflows:    []Item{},
		Triggers:     []Item{},
		Routing:      map[string]any{},
		Conversation: []Message{},
	}
}

// IDPrefix returns the id prefix for entities of the given kind.
func IDPrefix(kind Kind) string {
	if kind == KindSkill {
		return SkillIDPrefix
	}
	return SolutionIDPrefix
}

// GenerateID creates a unique identifier carrying the given kind prefix,
// e.g. "sol_9f1c2ab04e7d4c1e8a2b".
func GenerateID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + raw[:20]
}

// NewMessage creates a conversation entry with a generated msg_ id and the
// current timestamp.
func NewMessage(role, content string) Message {
	return Message{
		ID:        GenerateID(MessageIDPrefix),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// Clone returns a deep copy of the entity via a JSON round trip. Mutations
// are applied to clones so that a failed batch never leaves a half-updated
// document visible to readers.
func (e *Entity) Clone() (*Entity, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal entity for cloning")
	}
	var clone Entity
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal entity clone")
	}
	return &clone, nil
}

// ToSummary builds the list projection for this entity.
func (e *Entity) ToSummary() Summary {
	return Summary{
		ID:           e.ID,
		Kind:         e.Kind,
		Name:         e.Name,
		Phase:        e.Phase,
		Progress:     e.Phase.Progress(),
		SkillCount:   len(e.Skills),
		ToolCount:    len(e.Tools),
		GrantCount:   len(e.Grants),
		HandoffCount: len(e.Handoffs),
		MessageCount: len(e.Conversation),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// ItemKey extracts the local key of an item in the named collection. The
// second return is false when the key field is absent or not a string.
func ItemKey(collection string, item Item) (string, bool) {
	field, ok := collectionKeyFields[collection]
	if !ok {
		return "", false
	}
	key, ok := item[field].(string)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
