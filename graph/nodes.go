//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

package graph

import "context"

// Flag keys written by ConditionalNode when no custom keys are configured.
const (
	DefaultTrueFlagKey  = "condition_true"
	DefaultFalseFlagKey = "condition_false"
)

// StartNode merges a fixed initial key/value set into the state. It is the
// usual entry node of a graph.
type StartNode struct {
	nodeMeta
	initialValues map[string]any
}

// NewStartNode creates a start node that seeds the given initial values.
// A nil map is allowed; the node then passes the state through unchanged.
func NewStartNode(id string, initialValues map[string]any, opts ...NodeOption) *StartNode {
	return &StartNode{
		nodeMeta:      newNodeMeta(id, NodeTypeStart, opts),
		initialValues: initialValues,
	}
}

// Execute transforms the state under the ambient cancellable context.
func (n *StartNode) Execute(_ context.Context, state *State) (*State, error) {
	clone := state.Clone()
	clone.SetMultiple(n.initialValues)
	return clone, nil
}

// Validate rejects empty or nil required configuration.
func (n *StartNode) Validate() error {
	if n.id == "" {
		return NewValidationError("node", "start node id cannot be empty")
	}
	return nil
}

// Finalizer runs over the state a graph ends with.
type Finalizer func(ctx context.Context, state *State) error

// EndNode optionally runs a finalizer over the state. Multiple end nodes
// are permitted in one graph.
//
// A node declared as an exit point stops the run before executing, so its
// finalizer only fires when the node terminates the run naturally (no
// outgoing edge matches) instead.
type EndNode struct {
	nodeMeta
	finalizer Finalizer
}

// NewEndNode creates an end node. The finalizer may be nil.
func NewEndNode(id string, finalizer Finalizer, opts ...NodeOption) *EndNode {
	return &EndNode{
		nodeMeta:  newNodeMeta(id, NodeTypeEnd, opts),
		finalizer: finalizer,
	}
}

// Execute transforms the state under the ambient cancellable context.
func (n *EndNode) Execute(ctx context.Context, state *State) (*State, error) {
	clone := state.Clone()
	if n.finalizer != nil {
		if err := n.finalizer(ctx, clone); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

// Validate rejects empty or nil required configuration.
func (n *EndNode) Validate() error {
	if n.id == "" {
		return NewValidationError("node", "end node id cannot be empty")
	}
	return nil
}

// TransformFunc is the native transform wrapped by a FunctionNode. It
// receives an already independent clone and returns the state to carry
// forward; mutating and returning its argument is fine.
type TransformFunc func(ctx context.Context, state *State) (*State, error)

// FunctionNode wraps an arbitrary native transform for purely local
// computation.
type FunctionNode struct {
	nodeMeta
	fn TransformFunc
}

// NewFunctionNode creates a function node around fn.
func NewFunctionNode(id string, fn TransformFunc, opts ...NodeOption) *FunctionNode {
	return &FunctionNode{
		nodeMeta: newNodeMeta(id, NodeTypeFunction, opts),
		fn:       fn,
	}
}

// Execute transforms the state under the ambient cancellable context.
func (n *FunctionNode) Execute(ctx context.Context, state *State) (*State, error) {
	result, err := n.fn(ctx, state.Clone())
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, NewValidationError("node "+n.id, "transform returned nil state")
	}
	return result, nil
}

// Validate rejects empty or nil required configuration.
func (n *FunctionNode) Validate() error {
	if n.id == "" {
		return NewValidationError("node", "function node id cannot be empty")
	}
	if n.fn == nil {
		return NewValidationError("node "+n.id, "transform function cannot be nil")
	}
	return nil
}

// ConditionalNode evaluates an injected predicate and records the boolean
// outcome in one of two flag keys, clearing the opposite flag. It does not
// choose the next hop itself; branching happens at the edge level by
// testing the flags.
type ConditionalNode struct {
	nodeMeta
	condition Condition
	trueKey   string
	falseKey  string
}

// ConditionalNodeOption configures a ConditionalNode.
type ConditionalNodeOption func(*ConditionalNode)

// WithFlagKeys overrides the payload keys the outcome is written to.
func WithFlagKeys(trueKey, falseKey string) ConditionalNodeOption {
	return func(n *ConditionalNode) {
		n.trueKey = trueKey
		n.falseKey = falseKey
	}
}

// WithConditionalName sets the display name of the conditional node.
func WithConditionalName(name string) ConditionalNodeOption {
	return func(n *ConditionalNode) {
		n.name = name
	}
}

// NewConditionalNode creates a conditional node over the given predicate.
func NewConditionalNode(id string, condition Condition, opts ...ConditionalNodeOption) *ConditionalNode {
	n := &ConditionalNode{
		nodeMeta:  newNodeMeta(id, NodeTypeConditional, nil),
		condition: condition,
		trueKey:   DefaultTrueFlagKey,
		falseKey:  DefaultFalseFlagKey,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// TrueFlagKey returns the key written when the predicate holds.
func (n *ConditionalNode) TrueFlagKey() string { return n.trueKey }

// FalseFlagKey returns the key written when the predicate fails.
func (n *ConditionalNode) FalseFlagKey() string { return n.falseKey }

// Execute transforms the state under the ambient cancellable context.
func (n *ConditionalNode) Execute(ctx context.Context, state *State) (*State, error) {
	clone := state.Clone()
	ok, err := n.condition.Evaluate(ctx, clone)
	if err != nil {
		return nil, err
	}
	if ok {
		clone.Set(n.trueKey, true)
		clone.Delete(n.falseKey)
	} else {
		clone.Set(n.falseKey, true)
		clone.Delete(n.trueKey)
	}
	return clone, nil
}

// Validate rejects empty or nil required configuration.
func (n *ConditionalNode) Validate() error {
	if n.id == "" {
		return NewValidationError("node", "conditional node id cannot be empty")
	}
	if n.condition == nil {
		return NewValidationError("node "+n.id, "condition cannot be nil")
	}
	if n.trueKey == "" || n.falseKey == "" {
		return NewValidationError("node "+n.id, "flag keys cannot be empty")
	}
	if n.trueKey == n.falseKey {
		return NewValidationError("node "+n.id, "true and false flag keys must differ")
	}
	return nil
}
