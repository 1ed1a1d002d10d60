package model

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNoNodes          = errors.New("model has no nodes")
	ErrDuplicateID      = errors.New("duplicate component_id")
	ErrDuplicateName    = errors.New("duplicate node name")
	ErrInvalidID        = errors.New("component_id must be positive")
	ErrEmptyName        = errors.New("node name cannot be empty")
	ErrAlreadyResolved  = errors.New("model references already resolved")
)

// Node is one typed element of the modeled system (hardware, system layer,
// virtual resource, service, network, and so on).
type Node struct {
	ComponentID    int            `json:"component_id"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	PrimaryLabel   string         `json:"primary_label,omitempty"`
	SecondaryLabel string         `json:"secondary_label,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
}

// Relationship is a typed, directed edge between two nodes. Source and Target
// are node names; a purely numeric string referencing a component_id is
// accepted on input and rewritten to the node's name by Normalize.
type Relationship struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Protocol   *Protocol      `json:"protocol,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ArchitectureModel is the complete input to a validation run: an ordered
// list of nodes and an ordered list of relationships between them.
type ArchitectureModel struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`

	resolved bool
}

// New builds a model from nodes and relationships and normalizes it.
func New(nodes []Node, relationships []Relationship) (*ArchitectureModel, error) {
	m := &ArchitectureModel{Nodes: nodes, Relationships: relationships}
	if err := m.Normalize(); err != nil {
		return nil, err
	}
	return m, nil
}

// Normalize checks identity invariants and resolves numeric relationship
// endpoints to node names. It runs exactly once per model; after it returns
// the model must not be mutated.
//
// Duplicate component IDs or node names are caller errors: relationship
// resolution would be ambiguous, so they are rejected here rather than left
// for the graph store to trip over.
func (m *ArchitectureModel) Normalize() error {
	if m.resolved {
		return ErrAlreadyResolved
	}

	byID := make(map[int]string, len(m.Nodes))
	seenNames := make(map[string]bool, len(m.Nodes))

	for _, n := range m.Nodes {
		if n.ComponentID <= 0 {
			return fmt.Errorf("%w: node %q has component_id %d", ErrInvalidID, n.Name, n.ComponentID)
		}
		if n.Name == "" {
			return fmt.Errorf("%w: component_id %d", ErrEmptyName, n.ComponentID)
		}
		if prev, ok := byID[n.ComponentID]; ok {
			return fmt.Errorf("%w: %d used by %q and %q", ErrDuplicateID, n.ComponentID, prev, n.Name)
		}
		if seenNames[n.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, n.Name)
		}
		byID[n.ComponentID] = n.Name
		seenNames[n.Name] = true
	}

	for i := range m.Relationships {
		m.Relationships[i].Source = resolveEndpoint(m.Relationships[i].Source, byID)
		m.Relationships[i].Target = resolveEndpoint(m.Relationships[i].Target, byID)
	}

	m.resolved = true
	return nil
}

// resolveEndpoint rewrites a purely numeric endpoint to the matching node's
// name. Numeric strings that match no component_id pass through unchanged;
// partially-specified models are probed for partial validity downstream, so
// this is not an error.
func resolveEndpoint(ref string, byID map[int]string) string {
	id, err := strconv.Atoi(ref)
	if err != nil {
		return ref
	}
	if name, ok := byID[id]; ok {
		return name
	}
	return ref
}

// NodeNames returns the set of node names in the model.
func (m *ArchitectureModel) NodeNames() map[string]bool {
	names := make(map[string]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		names[n.Name] = true
	}
	return names
}
