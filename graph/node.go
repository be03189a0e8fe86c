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

// NodeType tags the variant of a node.
type NodeType string

// Node variants.
const (
	NodeTypeStart       NodeType = "start"
	NodeTypeEnd         NodeType = "end"
	NodeTypeLLM         NodeType = "llm"
	NodeTypeTool        NodeType = "tool"
	NodeTypeFunction    NodeType = "function"
	NodeTypeConditional NodeType = "conditional"
)

// Node is a unit of work that transforms a State. Implementations are
// immutable after construction and must never mutate the input state in
// place: Execute clones, mutates the clone, and returns it, so the engine
// can retain prior checkpoints for audit.
type Node interface {
	// ID returns the node id, unique within a graph.
	ID() string
	// Name returns the display name.
	Name() string
	// Type returns the variant tag.
	Type() NodeType
	// Execute transforms the state under the ambient cancellable context.
	Execute(ctx context.Context, state *State) (*State, error)
	// Validate rejects empty or nil required configuration. It is invoked
	// at least once before the node's first execution.
	Validate() error
}

// nodeMeta carries the static identity shared by all node variants.
type nodeMeta struct {
	id   string
	name string
	typ  NodeType
}

// ID returns the node id.
func (m nodeMeta) ID() string { return m.id }

// Name returns the display name.
func (m nodeMeta) Name() string { return m.name }

// Type returns the variant tag.
func (m nodeMeta) Type() NodeType { return m.typ }

func newNodeMeta(id string, typ NodeType, opts []NodeOption) nodeMeta {
	m := nodeMeta{id: id, name: id, typ: typ}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// NodeOption configures the identity of a node.
type NodeOption func(*nodeMeta)

// WithNodeName sets the display name of a node. The name defaults to the id.
func WithNodeName(name string) NodeOption {
	return func(m *nodeMeta) {
		m.name = name
	}
}
