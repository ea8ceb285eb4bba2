// Package mutation interprets flat update-descriptions into structural edits
// on a draft entity. Each key of an update-description is classified by an
// explicit grammar into one of five instruction variants (collection push,
// collection update, collection delete, nested set, direct set) and then
// dispatched on the variant; there is no reflection-based routing.
//
// Instructions within one update-description are applied in ascending
// lexicographic key order so that a batch is deterministic regardless of the
// wire format's map ordering. A malformed instruction is reported in the
// batch report and never aborts the remaining instructions.
package mutation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/craftlab/skillforge/pkg/types/entity"
)

// Op is the instruction variant an update-description key parses into.
type Op int

const (
	OpInvalid Op = iota
	OpCollectionPush
	OpCollectionUpdate
	OpCollectionDelete
	OpNestedSet
	OpDirectSet
)

func (o Op) String() string {
	switch o {
	case OpCollectionPush:
		return "collection_push"
	case OpCollectionUpdate:
		return "collection_update"
	case OpCollectionDelete:
		return "collection_delete"
	case OpNestedSet:
		return "nested_set"
	case OpDirectSet:
		return "direct_set"
	default:
		return "invalid"
	}
}

// Instruction is one classified update-description entry.
type Instruction struct {
	Key        string
	Op         Op
	Collection string   // collection ops only
	Path       []string // nested set only
	Field      string   // direct set only
	Reason     string   // OpInvalid only: why classification failed
	Value      any
}

// InstructionError reports a single instruction that could not be applied.
type InstructionError struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Report summarizes the outcome of applying one update-description.
type Report struct {
	Applied []string           `json:"applied"`
	Errors  []InstructionError `json:"errors,omitempty"`
}

// OK reports whether every instruction in the batch applied cleanly.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// directFields are the top-level fields a bare update-description key may
// assign. Identity and bookkeeping fields (id, kind, timestamps) and the
// append-only conversation log are deliberately absent.
var directFields = map[string]bool{
	"name":           true,
	"version":        true,
	"phase":          true,
	"problem":        true,
	"role":           true,
	"intents":        true,
	"policy":         true,
	"engine":         true,
	"routing":        true,
	"linked_domains": true,
}

// Classify parses an update-description key into an instruction variant.
// The value is carried along untouched; value coercion happens at apply time.
func Classify(key string, value any) Instruction {
	inst := Instruction{Key: key, Value: value}

	for _, suffix := range []struct {
		text string
		op   Op
	}{
		{"_push", OpCollectionPush},
		{"_update", OpCollectionUpdate},
		{"_delete", OpCollectionDelete},
	} {
		if !strings.HasSuffix(key, suffix.text) {
			continue
		}
		collection := strings.TrimSuffix(key, suffix.text)
		if collection == "conversation" {
			inst.Op = OpInvalid
			inst.Reason = "conversation is append-only; use message append"
			return inst
		}
		if _, ok := entity.CollectionKeyField(collection); ok {
			inst.Op = suffix.op
			inst.Collection = collection
			return inst
		}
		// Not a keyed collection; fall through to the remaining rules so
		// that e.g. "auto_update" can still be a (rejected) bare field.
	}

	if strings.Contains(key, ".") {
		path := strings.Split(key, ".")
		for _, segment := range path {
			if segment == "" {
				inst.Op = OpInvalid
				inst.Reason = "empty path segment"
				return inst
			}
		}
		if sub := (&entity.Entity{}).SubDocument(path[0]); sub == nil {
			inst.Op = OpInvalid
			inst.Reason = fmt.Sprintf("unknown nested root %q", path[0])
			return inst
		}
		inst.Op = OpNestedSet
		inst.Path = path
		return inst
	}

	if directFields[key] {
		inst.Op = OpDirectSet
		inst.Field = key
		return inst
	}

	inst.Op = OpInvalid
	inst.Reason = fmt.Sprintf("unrecognized instruction key %q", key)
	return inst
}

// Apply interprets an update-description against the entity in place. The
// caller is expected to hand in a private copy (the entity service clones
// before applying) and to persist the result exactly once.
func Apply(e *entity.Entity, updates map[string]any) Report {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var report Report
	for _, key := range keys {
		inst := Classify(key, updates[key])
		var err *InstructionError
		switch inst.Op {
		case OpCollectionPush:
			err = applyPush(e, inst)
		case OpCollectionUpdate:
			err = applyUpdate(e, inst)
		case OpCollectionDelete:
			err = applyDelete(e, inst)
		case OpNestedSet:
			err = applyNestedSet(e, inst)
		case OpDirectSet:
			err = applyDirectSet(e, inst)
		default:
			err = &InstructionError{Key: key, Reason: inst.Reason}
		}
		if err != nil {
			report.Errors = append(report.Errors, *err)
			continue
		}
		report.Applied = append(report.Applied, key)
	}
	return report
}

// applyPush upserts one or more items into a keyed collection. An item whose
// local key already exists has its fields shallow-merged in place, keeping
// its position; new keys append.
func applyPush(e *entity.Entity, inst Instruction) *InstructionError {
	items, reason := coerceItems(inst.Value)
	if reason != "" {
		return &InstructionError{Key: inst.Key, Reason: reason}
	}
	list := e.Collection(inst.Collection)
	for _, item := range items {
		key, ok := entity.ItemKey(inst.Collection, item)
		if !ok {
			field, _ := entity.CollectionKeyField(inst.Collection)
			return &InstructionError{
				Key:    inst.Key,
				Reason: fmt.Sprintf("item missing local key field %q", field),
			}
		}
		if idx := indexOf(*list, inst.Collection, key); idx >= 0 {
			mergeFields((*list)[idx], item)
		} else {
			*list = append(*list, item)
		}
	}
	return nil
}

// applyUpdate merges partial fields into an existing item. A missing target
// is reported rather than silently created.
func applyUpdate(e *entity.Entity, inst Instruction) *InstructionError {
	items, reason := coerceItems(inst.Value)
	if reason != "" {
		return &InstructionError{Key: inst.Key, Reason: reason}
	}
	list := e.Collection(inst.Collection)
	for _, item := range items {
		key, ok := entity.ItemKey(inst.Collection, item)
		if !ok {
			field, _ := entity.CollectionKeyField(inst.Collection)
			return &InstructionError{
				Key:    inst.Key,
				Reason: fmt.Sprintf("update missing local key field %q", field),
			}
		}
		idx := indexOf(*list, inst.Collection, key)
		if idx < 0 {
			return &InstructionError{
				Key:    inst.Key,
				Reason: fmt.Sprintf("no %s item with key %q", inst.Collection, key),
			}
		}
		mergeFields((*list)[idx], item)
	}
	return nil
}

// applyDelete removes items by local key. Absent keys are a no-op.
func applyDelete(e *entity.Entity, inst Instruction) *InstructionError {
	keys, reason := coerceKeys(inst.Value)
	if reason != "" {
		return &InstructionError{Key: inst.Key, Reason: reason}
	}
	list := e.Collection(inst.Collection)
	for _, key := range keys {
		if idx := indexOf(*list, inst.Collection, key); idx >= 0 {
			*list = append((*list)[:idx], (*list)[idx+1:]...)
		}
	}
	return nil
}

// applyNestedSet sets a deeply nested field, creating intermediate objects
// as needed.
func applyNestedSet(e *entity.Entity, inst Instruction) *InstructionError {
	if len(inst.Path) < 2 {
		// Classify requires a dot, so this cannot occur; guard anyway.
		return &InstructionError{Key: inst.Key, Reason: "path too short"}
	}
	root := e.SubDocument(inst.Path[0])
	if *root == nil {
		*root = map[string]any{}
	}
	current := *root
	for _, segment := range inst.Path[1 : len(inst.Path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[inst.Path[len(inst.Path)-1]] = inst.Value
	return nil
}

// applyDirectSet assigns a top-level field.
func applyDirectSet(e *entity.Entity, inst Instruction) *InstructionError {
	fail := func(reason string) *InstructionError {
		return &InstructionError{Key: inst.Key, Reason: reason}
	}
	switch inst.Field {
	case "name":
		s, ok := inst.Value.(string)
		if !ok {
			return fail("name must be a string")
		}
		e.Name = s
	case "version":
		s, ok := inst.Value.(string)
		if !ok {
			return fail("version must be a string")
		}
		e.Version = s
	case "phase":
		s, ok := inst.Value.(string)
		if !ok {
			return fail("phase must be a string")
		}
		phase := entity.Phase(s)
		if !phase.Valid() {
			return fail(fmt.Sprintf("unknown phase %q", s))
		}
		e.Phase = phase
	case "linked_domains":
		refs, reason := coerceKeys(inst.Value)
		if reason != "" {
			return fail(reason)
		}
		e.LinkedDomains = refs
	case "problem", "role", "intents", "policy", "engine", "routing":
		doc, ok := inst.Value.(map[string]any)
		if !ok {
			return fail(fmt.Sprintf("%s must be an object", inst.Field))
		}
		*e.SubDocument(inst.Field) = doc
	default:
		return fail(fmt.Sprintf("field %q is not assignable", inst.Field))
	}
	return nil
}

// coerceItems normalizes an instruction value into a list of items. Accepts
// a single object, a list of objects, or a typed item slice.
func coerceItems(value any) ([]entity.Item, string) {
	switch v := value.(type) {
	case map[string]any:
		return []entity.Item{v}, ""
	case []entity.Item:
		return v, ""
	case []any:
		items := make([]entity.Item, 0, len(v))
		for _, element := range v {
			item, ok := element.(map[string]any)
			if !ok {
				return nil, fmt.Sprintf("expected object in item list, got %T", element)
			}
			items = append(items, item)
		}
		return items, ""
	default:
		return nil, fmt.Sprintf("expected object or list of objects, got %T", value)
	}
}

// coerceKeys normalizes an instruction value into a list of local keys.
func coerceKeys(value any) ([]string, string) {
	switch v := value.(type) {
	case string:
		return []string{v}, ""
	case []string:
		return v, ""
	case []any:
		keys := make([]string, 0, len(v))
		for _, element := range v {
			key, ok := element.(string)
			if !ok {
				return nil, fmt.Sprintf("expected string key, got %T", element)
			}
			keys = append(keys, key)
		}
		return keys, ""
	default:
		return nil, fmt.Sprintf("expected string or list of strings, got %T", value)
	}
}

func indexOf(list []entity.Item, collection, key string) int {
	for i, item := range list {
		if candidate, ok := entity.ItemKey(collection, item); ok && candidate == key {
			return i
		}
	}
	return -1
}

// mergeFields shallow-merges src fields into dst, replacing existing values.
func mergeFields(dst, src entity.Item) {
	for field, value := range src {
		dst[field] = value
	}
}
