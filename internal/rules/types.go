// Package rules holds the declarative rule configuration for one game
// variant: the phases of play, the actions legal within each phase, the
// constraints guarding those actions, and the declared state changes. A
// RuleSet is produced by the loader, validated once, and then owned by a
// single engine for the life of a game session.
package rules

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// RuleSet is the complete rule configuration of one game variant.
type RuleSet struct {
	ID           string  `yaml:"id" validate:"required"`
	DefaultPhase string  `yaml:"default_phase" validate:"required"`
	Phases       []Phase `yaml:"phases" validate:"required,min=1,dive"`
	Goals        []Goal  `yaml:"goals,omitempty" validate:"omitempty,dive"`
}

// Phase declares the actions legal while the phase is active. A phase with
// no actions is a practical terminal: nothing can transition out of it.
type Phase struct {
	ID        string   `yaml:"id" validate:"required,flow_id"`
	Actions   []Action `yaml:"actions,omitempty" validate:"omitempty,dive"`
	NextPhase string   `yaml:"next_phase,omitempty"`
}

// Action is an operation available within a phase. Result maps each outcome
// label to the phase the game transitions into; Changes declares the board
// effects the outcome stands for.
type Action struct {
	Kind        string            `yaml:"kind" validate:"required"`
	Constraints []Constraint      `yaml:"constraints,omitempty" validate:"omitempty,dive"`
	Result      map[string]string `yaml:"result,omitempty"`
	Changes     []StateChange     `yaml:"changes,omitempty"`
}

// Constraint is a precondition checked against the runtime action context.
// Op defaults to "eq"; "expr" marks Value as a CEL expression over the
// context attributes.
type Constraint struct {
	Field string `yaml:"field"`
	Op    string `yaml:"op,omitempty" validate:"omitempty,oneof=eq ne lt le gt ge expr"`
	Value Value  `yaml:"value"`
}

// Goal is a victory condition referenced by player configuration.
type Goal struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ValueKind discriminates the closed set of constraint value types.
type ValueKind int

const (
	// Number is a numeric constraint value, decoded as float64.
	Number ValueKind = iota
	// Bool is a boolean constraint value.
	Bool
	// String is a textual constraint value.
	String
)

// Value is a constraint comparison value: exactly one of number, bool, or
// string. The closed variant replaces the open-ended dynamic values of
// hand-written rule files.
type Value struct {
	Kind   ValueKind
	Number float64
	Bool   bool
	Str    string
}

// NumberValue wraps a float64.
func NumberValue(n float64) Value { return Value{Kind: Number, Number: n} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Kind: Bool, Bool: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// UnmarshalYAML decodes a scalar node into the matching variant.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("constraint value must be a scalar, got %s", nodeKindName(node.Kind))
	}

	switch node.Tag {
	case "!!int", "!!float":
		n, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric constraint value %q", node.Value)
		}
		*v = NumberValue(n)
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return fmt.Errorf("invalid boolean constraint value %q", node.Value)
		}
		*v = BoolValue(b)
	default:
		*v = StringValue(node.Value)
	}
	return nil
}

// MarshalYAML renders the wrapped scalar.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.Kind {
	case Number:
		return v.Number, nil
	case Bool:
		return v.Bool, nil
	default:
		return v.Str, nil
	}
}

// String renders the value for messages and display.
func (v Value) String() string {
	switch v.Kind {
	case Number:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// Equal reports whether two values share kind and content.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Number:
		return v.Number == other.Number
	case Bool:
		return v.Bool == other.Bool
	default:
		return v.Str == other.Str
	}
}

// Compare orders two values of the same kind. The second return is false
// when the kinds differ or the kind has no ordering (bool).
func (v Value) Compare(other Value) (int, bool) {
	if v.Kind != other.Kind {
		return 0, false
	}
	switch v.Kind {
	case Number:
		switch {
		case v.Number < other.Number:
			return -1, true
		case v.Number > other.Number:
			return 1, true
		}
		return 0, true
	case String:
		switch {
		case v.Str < other.Str:
			return -1, true
		case v.Str > other.Str:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// State change discriminators as written in rule files.
const (
	ChangeTypeMoveFigures = "move_figures"
	ChangeTypeChangeOwner = "change_owner"
)

// StateChange is the declared effect of an action outcome.
type StateChange struct {
	Type string `yaml:"type" validate:"required"`

	MoveFigures *MoveFiguresChange `yaml:"-"`
	ChangeOwner *ChangeOwnerChange `yaml:"-"`
}

// MoveFiguresChange moves figures between two distinct fields.
type MoveFiguresChange struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Count uint32 `yaml:"count"`
}

// ChangeOwnerChange hands a field to a new owner.
type ChangeOwnerChange struct {
	FieldID  string `yaml:"field_id"`
	NewOwner string `yaml:"new_owner"`
}

// UnmarshalYAML customises state-change decoding to populate the variant
// matching the type discriminator.
func (c *StateChange) UnmarshalYAML(node *yaml.Node) error {
	type baseChange struct {
		Type string `yaml:"type"`
	}

	var base baseChange
	if err := node.Decode(&base); err != nil {
		return err
	}

	c.Type = base.Type
	c.MoveFigures = nil
	c.ChangeOwner = nil

	switch base.Type {
	case ChangeTypeMoveFigures:
		var mv MoveFiguresChange
		if err := node.Decode(&mv); err != nil {
			return err
		}
		c.MoveFigures = &mv
	case ChangeTypeChangeOwner:
		var co ChangeOwnerChange
		if err := node.Decode(&co); err != nil {
			return err
		}
		c.ChangeOwner = &co
	}

	return nil
}

// Phase returns the phase with the given id.
func (rs *RuleSet) Phase(id string) (Phase, bool) {
	for _, phase := range rs.Phases {
		if phase.ID == id {
			return phase, true
		}
	}
	return Phase{}, false
}

// PhaseMap builds a lookup table for phases by id.
func PhaseMap(phases []Phase) map[string]Phase {
	out := make(map[string]Phase, len(phases))
	for _, phase := range phases {
		out[phase.ID] = phase
	}
	return out
}

// Action returns the action with the given kind.
func (p Phase) Action(kind string) (Action, bool) {
	for _, action := range p.Actions {
		if action.Kind == kind {
			return action, true
		}
	}
	return Action{}, false
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
