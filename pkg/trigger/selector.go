package trigger

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Phase decides when a matched trigger runs relative to the commit.
type Phase string

const (
	// PhaseAfter runs the statement synchronously once the commit is durable.
	PhaseAfter Phase = "after"
	// PhaseAfterAsync queues the statement on the dispatcher's worker pool.
	PhaseAfterAsync Phase = "afterAsync"
)

// EventKind is a category of committed change.
type EventKind string

const (
	EventCreatedNodes                   EventKind = "createdNodes"
	EventDeletedNodes                   EventKind = "deletedNodes"
	EventCreatedRelationships           EventKind = "createdRelationships"
	EventDeletedRelationships           EventKind = "deletedRelationships"
	EventAssignedLabels                 EventKind = "assignedLabels"
	EventRemovedLabels                  EventKind = "removedLabels"
	EventAssignedNodeProperties         EventKind = "assignedNodeProperties"
	EventRemovedNodeProperties          EventKind = "removedNodeProperties"
	EventAssignedRelationshipProperties EventKind = "assignedRelationshipProperties"
	EventRemovedRelationshipProperties  EventKind = "removedRelationshipProperties"
)

// EventKinds lists every change category in binding order.
var EventKinds = []EventKind{
	EventCreatedNodes,
	EventDeletedNodes,
	EventCreatedRelationships,
	EventDeletedRelationships,
	EventAssignedLabels,
	EventRemovedLabels,
	EventAssignedNodeProperties,
	EventRemovedNodeProperties,
	EventAssignedRelationshipProperties,
	EventRemovedRelationshipProperties,
}

var ErrInvalidSelector = errors.New("invalid selector")

// Selector filters which commits activate a trigger. Every populated clause
// must hold; inside a list clause a single element is enough.
type Selector struct {
	Phase             Phase       `json:"phase,omitempty"`
	Events            []EventKind `json:"events,omitempty"`
	AssignedLabels    []string    `json:"assignedLabels,omitempty"`
	RemovedLabels     []string    `json:"removedLabels,omitempty"`
	RelationshipTypes []string    `json:"relationshipTypes,omitempty"`
	PropertyKeys      []string    `json:"propertyKeys,omitempty"`
	// Condition is an optional CEL expression over the change summary.
	Condition string `json:"condition,omitempty"`
}

// EffectivePhase returns the phase with the default applied.
func (s Selector) EffectivePhase() Phase {
	if s.Phase == "" {
		return PhaseAfter
	}
	return s.Phase
}

// IsZero reports whether the selector matches every non-empty commit.
func (s Selector) IsZero() bool {
	return len(s.Events) == 0 && len(s.AssignedLabels) == 0 && len(s.RemovedLabels) == 0 &&
		len(s.RelationshipTypes) == 0 && len(s.PropertyKeys) == 0 && strings.TrimSpace(s.Condition) == ""
}

// Equal reports whether both selectors describe the same filter.
func (s Selector) Equal(o Selector) bool {
	return s.EffectivePhase() == o.EffectivePhase() &&
		slices.Equal(s.Events, o.Events) &&
		slices.Equal(s.AssignedLabels, o.AssignedLabels) &&
		slices.Equal(s.RemovedLabels, o.RemovedLabels) &&
		slices.Equal(s.RelationshipTypes, o.RelationshipTypes) &&
		slices.Equal(s.PropertyKeys, o.PropertyKeys) &&
		s.Condition == o.Condition
}

// Validate checks a selector built in Go rather than parsed from a map.
func (s Selector) Validate() error {
	switch s.Phase {
	case "", PhaseAfter, PhaseAfterAsync:
	default:
		return fmt.Errorf("%w: unsupported phase %q", ErrInvalidSelector, s.Phase)
	}
	for _, e := range s.Events {
		if !slices.Contains(EventKinds, e) {
			return fmt.Errorf("%w: unknown event %q", ErrInvalidSelector, e)
		}
	}
	for _, list := range [][]string{s.AssignedLabels, s.RemovedLabels, s.RelationshipTypes, s.PropertyKeys} {
		for _, n := range list {
			if n == "" {
				return fmt.Errorf("%w: empty name", ErrInvalidSelector)
			}
		}
	}
	return nil
}

// Config is the procedure-style config map of install.
type Config struct {
	Params Params `json:"params,omitempty"`
}

//go:embed selector.schema.json
var selectorSchemaJSON string

var (
	schemaOnce     sync.Once
	selectorSchema *jsonschema.Schema
	configSchema   *jsonschema.Schema
	schemaErr      error
)

func compileSchemas() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("selector.schema.json", strings.NewReader(selectorSchemaJSON)); err != nil {
		schemaErr = fmt.Errorf("add selector schema: %w", err)
		return
	}
	selectorSchema, schemaErr = compiler.Compile("selector.schema.json#/definitions/selector")
	if schemaErr != nil {
		return
	}
	configSchema, schemaErr = compiler.Compile("selector.schema.json#/definitions/config")
}

// normalize round trips raw through JSON so the validator only sees
// JSON-native types (maps of any, []any, json.Number).
func normalize(raw map[string]any) (any, []byte, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, nil, err
	}
	return v, data, nil
}

// ParseSelector validates a raw selector map and decodes it.
func ParseSelector(raw map[string]any) (Selector, error) {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return Selector{}, schemaErr
	}
	v, data, err := normalize(raw)
	if err != nil {
		return Selector{}, fmt.Errorf("%w: %v", ErrInvalidSelector, err)
	}
	if err := selectorSchema.Validate(v); err != nil {
		return Selector{}, fmt.Errorf("%w: %v", ErrInvalidSelector, err)
	}
	var sel Selector
	if err := json.Unmarshal(data, &sel); err != nil {
		return Selector{}, fmt.Errorf("%w: %v", ErrInvalidSelector, err)
	}
	return sel, nil
}

// ParseConfig validates the install config map. Only params is interpreted;
// unknown keys are ignored.
func ParseConfig(raw map[string]any) (Config, error) {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return Config{}, schemaErr
	}
	v, _, err := normalize(raw)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := configSchema.Validate(v); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	cfg := Config{Params: Params{}}
	m, _ := v.(map[string]any)
	if p, ok := m["params"].(map[string]any); ok {
		params, err := ParamsOf(p)
		if err != nil {
			return Config{}, fmt.Errorf("invalid config: %w", err)
		}
		cfg.Params = params
	}
	return cfg, nil
}
