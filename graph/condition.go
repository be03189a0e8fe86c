//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Operator identifies a leaf predicate comparison.
type Operator string

// Leaf predicate operators.
const (
	OperatorExists    Operator = "exists"
	OperatorNotExists Operator = "not_exists"
	OperatorEquals    Operator = "equals"
	OperatorNotEquals Operator = "not_equals"
	OperatorGreater   Operator = "greater"
	OperatorLess      Operator = "less"
	OperatorContains  Operator = "contains"
)

// Condition is a pure boolean predicate over a State. Conditions are built
// once, evaluated many times, and must be side-effect-free.
type Condition interface {
	// Evaluate tests the condition against the state.
	Evaluate(ctx context.Context, state *State) (bool, error)
	// Description returns a human-readable rendering of the predicate.
	Description() string
}

// StateValueCondition tests a payload key against an expected value.
//
// Missing-key semantics: exists/not_exists answer directly; equals, greater,
// less, and contains are false without error; not_equals is true, since an
// absent value cannot equal the expected one.
type StateValueCondition struct {
	Key      string
	Operator Operator
	Value    any
}

// NewStateValueCondition creates a leaf condition over (key, value, operator).
func NewStateValueCondition(key string, value any, operator Operator) *StateValueCondition {
	return &StateValueCondition{Key: key, Operator: operator, Value: value}
}

// Evaluate tests the condition against the state.
func (c *StateValueCondition) Evaluate(_ context.Context, state *State) (bool, error) {
	value, found := state.Get(c.Key)
	switch c.Operator {
	case OperatorExists:
		return found, nil
	case OperatorNotExists:
		return !found, nil
	case OperatorEquals:
		return found && reflect.DeepEqual(value, c.Value), nil
	case OperatorNotEquals:
		return !found || !reflect.DeepEqual(value, c.Value), nil
	case OperatorGreater, OperatorLess:
		if !found {
			return false, nil
		}
		return compareNumeric(value, c.Value, c.Operator)
	case OperatorContains:
		if !found {
			return false, nil
		}
		return evalContains(value, c.Value)
	default:
		return false, fmt.Errorf("unknown operator %q", c.Operator)
	}
}

// Description returns a human-readable rendering of the predicate.
func (c *StateValueCondition) Description() string {
	switch c.Operator {
	case OperatorExists, OperatorNotExists:
		return fmt.Sprintf("%s %s", c.Key, c.Operator)
	default:
		return fmt.Sprintf("%s %s %v", c.Key, c.Operator, c.Value)
	}
}

func compareNumeric(value, expected any, op Operator) (bool, error) {
	left, err := toFloat64(value)
	if err != nil {
		return false, err
	}
	right, err := toFloat64(expected)
	if err != nil {
		return false, err
	}
	if op == OperatorGreater {
		return left > right, nil
	}
	return left < right, nil
}

// toFloat64 coerces integers, floats, and numeric strings to float64.
func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &TypeCoercionError{Value: v, Target: "number"}
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, &TypeCoercionError{Value: v, Target: "number"}
		}
		return f, nil
	default:
		return 0, &TypeCoercionError{Value: v, Target: "number"}
	}
}

// evalContains implements the contains operator: substring on text, element
// membership on sequences, key presence on maps.
func evalContains(container, expected any) (bool, error) {
	switch c := container.(type) {
	case string:
		sub, ok := expected.(string)
		if !ok {
			return false, &TypeCoercionError{Value: expected, Target: "string"}
		}
		return strings.Contains(c, sub), nil
	case []any:
		for _, elem := range c {
			if reflect.DeepEqual(elem, expected) {
				return true, nil
			}
		}
		return false, nil
	case []string:
		sub, ok := expected.(string)
		if !ok {
			return false, &TypeCoercionError{Value: expected, Target: "string"}
		}
		for _, elem := range c {
			if elem == sub {
				return true, nil
			}
		}
		return false, nil
	case map[string]any:
		key, ok := expected.(string)
		if !ok {
			return false, &TypeCoercionError{Value: expected, Target: "string"}
		}
		_, present := c[key]
		return present, nil
	default:
		return false, &TypeCoercionError{Value: container, Target: "string, sequence, or map"}
	}
}

// AndCondition is true iff all children are true. Evaluation short-circuits
// on the first false child or the first error.
type AndCondition struct {
	conditions []Condition
}

// NewAndCondition composes children with AND.
func NewAndCondition(conditions ...Condition) *AndCondition {
	return &AndCondition{conditions: conditions}
}

// Evaluate tests the condition against the state.
func (c *AndCondition) Evaluate(ctx context.Context, state *State) (bool, error) {
	for _, cond := range c.conditions {
		ok, err := cond.Evaluate(ctx, state)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Description returns a human-readable rendering of the predicate.
func (c *AndCondition) Description() string {
	return composeDescription(c.conditions, " AND ")
}

// OrCondition is true iff any child is true. Evaluation short-circuits on
// the first true child or the first error.
type OrCondition struct {
	conditions []Condition
}

// NewOrCondition composes children with OR.
func NewOrCondition(conditions ...Condition) *OrCondition {
	return &OrCondition{conditions: conditions}
}

// Evaluate tests the condition against the state.
func (c *OrCondition) Evaluate(ctx context.Context, state *State) (bool, error) {
	for _, cond := range c.conditions {
		ok, err := cond.Evaluate(ctx, state)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Description returns a human-readable rendering of the predicate.
func (c *OrCondition) Description() string {
	return composeDescription(c.conditions, " OR ")
}

func composeDescription(conditions []Condition, sep string) string {
	if len(conditions) == 0 {
		return "(empty)"
	}
	parts := make([]string, 0, len(conditions))
	for _, cond := range conditions {
		parts = append(parts, cond.Description())
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// NotCondition negates one child.
type NotCondition struct {
	condition Condition
}

// NewNotCondition negates cond.
func NewNotCondition(cond Condition) *NotCondition {
	return &NotCondition{condition: cond}
}

// Evaluate tests the condition against the state.
func (c *NotCondition) Evaluate(ctx context.Context, state *State) (bool, error) {
	ok, err := c.condition.Evaluate(ctx, state)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Description returns a human-readable rendering of the predicate.
func (c *NotCondition) Description() string {
	return "NOT " + c.condition.Description()
}

// ConstCondition always evaluates to a fixed value.
type ConstCondition struct {
	value bool
}

// NewTrueCondition returns a condition that is always true.
func NewTrueCondition() *ConstCondition {
	return &ConstCondition{value: true}
}

// NewFalseCondition returns a condition that is always false.
func NewFalseCondition() *ConstCondition {
	return &ConstCondition{value: false}
}

// Evaluate tests the condition against the state.
func (c *ConstCondition) Evaluate(context.Context, *State) (bool, error) {
	return c.value, nil
}

// Description returns a human-readable rendering of the predicate.
func (c *ConstCondition) Description() string {
	if c.value {
		return "true"
	}
	return "false"
}

// FuncCondition wraps a native predicate as the escape hatch for tests that
// the operator algebra cannot express.
type FuncCondition struct {
	description string
	fn          func(ctx context.Context, state *State) (bool, error)
}

// NewFuncCondition wraps fn under the given description.
func NewFuncCondition(description string, fn func(ctx context.Context, state *State) (bool, error)) *FuncCondition {
	return &FuncCondition{description: description, fn: fn}
}

// Evaluate tests the condition against the state.
func (c *FuncCondition) Evaluate(ctx context.Context, state *State) (bool, error) {
	if c.fn == nil {
		return false, NewValidationError("condition "+c.description, "predicate function is nil")
	}
	return c.fn(ctx, state)
}

// Description returns a human-readable rendering of the predicate.
func (c *FuncCondition) Description() string {
	if c.description == "" {
		return "custom"
	}
	return c.description
}
