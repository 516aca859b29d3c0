// Package constraint evaluates action constraints against the runtime
// action context. The engine only sees the Evaluator interface, so the
// evaluation policy can be swapped without touching the engine: the default
// evaluator compares typed values, the CEL evaluator compiles expressions.
package constraint

import (
	"fmt"
	"sort"

	"github.com/tegflow/tegflow/internal/rules"
)

// Context exposes runtime attributes to an evaluator by name.
type Context interface {
	Lookup(field string) (rules.Value, bool)
}

// Evaluator decides whether a single constraint holds against the context.
// A false result means the constraint failed; an error means the constraint
// could not be evaluated at all.
type Evaluator interface {
	Evaluate(ctx Context, c rules.Constraint) (bool, error)
}

// MapContext is the mutable map-backed action context owned by an engine.
// It is not safe for concurrent mutation; the engine's single-owner rule
// covers it.
type MapContext struct {
	values map[string]rules.Value
}

// NewMapContext creates an empty action context.
func NewMapContext() *MapContext {
	return &MapContext{values: make(map[string]rules.Value)}
}

// Lookup returns the attribute value for the field.
func (c *MapContext) Lookup(field string) (rules.Value, bool) {
	v, ok := c.values[field]
	return v, ok
}

// Set stores an attribute value.
func (c *MapContext) Set(field string, v rules.Value) {
	c.values[field] = v
}

// SetNumber stores a numeric attribute.
func (c *MapContext) SetNumber(field string, n float64) {
	c.Set(field, rules.NumberValue(n))
}

// SetBool stores a boolean attribute.
func (c *MapContext) SetBool(field string, b bool) {
	c.Set(field, rules.BoolValue(b))
}

// SetString stores a textual attribute.
func (c *MapContext) SetString(field string, s string) {
	c.Set(field, rules.StringValue(s))
}

// Delete removes an attribute.
func (c *MapContext) Delete(field string) {
	delete(c.values, field)
}

// Fields returns the attribute names in sorted order.
func (c *MapContext) Fields() []string {
	out := make([]string, 0, len(c.values))
	for field := range c.values {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Values copies the attributes as typed values, for persistence.
func (c *MapContext) Values() map[string]rules.Value {
	out := make(map[string]rules.Value, len(c.values))
	for field, v := range c.values {
		out[field] = v
	}
	return out
}

// Snapshot copies the attributes into plain Go values keyed by field name.
func (c *MapContext) Snapshot() map[string]any {
	out := make(map[string]any, len(c.values))
	for field, v := range c.values {
		switch v.Kind {
		case rules.Number:
			out[field] = v.Number
		case rules.Bool:
			out[field] = v.Bool
		default:
			out[field] = v.Str
		}
	}
	return out
}

// RuleEvaluator is the default evaluation policy: look up the constraint's
// field in the context and compare typed values with the constraint's op.
// A missing attribute or a kind mismatch fails the constraint rather than
// erroring, so rule authors can guard on attributes that may be absent.
type RuleEvaluator struct{}

// Evaluate applies the constraint's comparison.
func (RuleEvaluator) Evaluate(ctx Context, c rules.Constraint) (bool, error) {
	op := c.Op
	if op == "" {
		op = "eq"
	}
	if op == "expr" {
		return false, fmt.Errorf("constraint %q: expression constraints require the CEL evaluator", c.Field)
	}

	actual, ok := ctx.Lookup(c.Field)
	if !ok {
		return false, nil
	}

	switch op {
	case "eq":
		return actual.Equal(c.Value), nil
	case "ne":
		return !actual.Equal(c.Value), nil
	case "lt", "le", "gt", "ge":
		cmp, ordered := actual.Compare(c.Value)
		if !ordered {
			return false, nil
		}
		switch op {
		case "lt":
			return cmp < 0, nil
		case "le":
			return cmp <= 0, nil
		case "gt":
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	}

	return false, fmt.Errorf("constraint %q: unsupported op %q", c.Field, op)
}
