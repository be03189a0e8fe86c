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
	"fmt"

	"github.com/google/uuid"

	"github.com/voyagent/graphflow/model"
	"github.com/voyagent/graphflow/tool"
)

// Builder provides a fluent interface for assembling a validated Graph.
//
// The builder keeps a "current node" cursor: AddNode moves it to the added
// node, ConnectTo appends an edge from it and advances it, ConnectToIf
// appends a conditional edge without advancing (so several conditional
// branches can leave one source), and From repositions it. Entry and exit
// points may be declared before the nodes they name exist; they are
// resolved at Build time.
//
// Example:
//
//	g, err := NewBuilder("trip-planner").
//		AddStartNode("start", nil).
//		AddLLMNode("draft", llm, LLMNodeConfig{PromptTemplate: "...", OutputKey: "draft"}).
//		AddEndNode("end", nil).
//		From("start").ConnectTo("draft").ConnectTo("end").
//		Build()
type Builder struct {
	graph   *Graph
	current string
	entry   string
	exits   []string
	err     error
}

// NewBuilder creates a builder for a graph with the given name. The graph
// id is generated.
func NewBuilder(name string) *Builder {
	return &Builder{
		graph: newGraph(uuid.NewString(), name),
	}
}

// WithDescription sets the graph description.
func (b *Builder) WithDescription(description string) *Builder {
	b.graph.description = description
	return b
}

// AddNode adds a node and moves the cursor to it. Duplicate ids are
// rejected; the error surfaces at Build.
func (b *Builder) AddNode(node Node) *Builder {
	if err := b.graph.addNode(node); err != nil {
		b.recordErr(err)
		return b
	}
	b.current = node.ID()
	return b
}

// AddStartNode adds a StartNode and, if no entry point was declared yet,
// makes it the entry point.
func (b *Builder) AddStartNode(id string, initialValues map[string]any, opts ...NodeOption) *Builder {
	b.AddNode(NewStartNode(id, initialValues, opts...))
	if b.entry == "" {
		b.entry = id
	}
	return b
}

// AddEndNode adds an EndNode and declares it as an exit point.
func (b *Builder) AddEndNode(id string, finalizer Finalizer, opts ...NodeOption) *Builder {
	b.AddNode(NewEndNode(id, finalizer, opts...))
	b.exits = append(b.exits, id)
	return b
}

// AddLLMNode adds an LLMNode.
func (b *Builder) AddLLMNode(id string, llm model.Model, cfg LLMNodeConfig, opts ...NodeOption) *Builder {
	return b.AddNode(NewLLMNode(id, llm, cfg, opts...))
}

// AddToolNode adds a ToolNode.
func (b *Builder) AddToolNode(id string, registry *tool.Registry, cfg ToolNodeConfig, opts ...NodeOption) *Builder {
	return b.AddNode(NewToolNode(id, registry, cfg, opts...))
}

// AddFunctionNode adds a FunctionNode.
func (b *Builder) AddFunctionNode(id string, fn TransformFunc, opts ...NodeOption) *Builder {
	return b.AddNode(NewFunctionNode(id, fn, opts...))
}

// AddConditionalNode adds a ConditionalNode.
func (b *Builder) AddConditionalNode(id string, condition Condition, opts ...ConditionalNodeOption) *Builder {
	return b.AddNode(NewConditionalNode(id, condition, opts...))
}

// SetEntryPoint declares the entry node. The id is resolved at Build, so it
// may be declared before the node is added.
func (b *Builder) SetEntryPoint(id string) *Builder {
	b.entry = id
	return b
}

// AddExitPoint declares an exit node. The id is resolved at Build.
func (b *Builder) AddExitPoint(id string) *Builder {
	b.exits = append(b.exits, id)
	return b
}

// AddEdge appends an unconditional edge to from's ordered edge list.
func (b *Builder) AddEdge(from, to string) *Builder {
	b.recordErr(b.graph.addEdge(NewEdge(from, to)))
	return b
}

// AddConditionalEdge appends an edge guarded by cond to from's ordered edge
// list. Several conditional edges from one source form an if/else-if chain
// evaluated in registration order.
func (b *Builder) AddConditionalEdge(from, to string, cond Condition) *Builder {
	b.recordErr(b.graph.addEdge(NewConditionalEdge(from, to, cond)))
	return b
}

// AddLabeledEdge appends an unconditional edge carrying a label and weight.
func (b *Builder) AddLabeledEdge(from, to, label string, weight float64) *Builder {
	b.recordErr(b.graph.addEdge(&Edge{From: from, To: to, Label: label, Weight: weight}))
	return b
}

// From repositions the cursor to the given node id.
func (b *Builder) From(id string) *Builder {
	b.current = id
	return b
}

// ConnectTo appends an unconditional edge from the cursor to target and
// advances the cursor to target.
//
// Calling any Connect method before a node has been established as current
// is a programmer error and panics.
func (b *Builder) ConnectTo(target string) *Builder {
	b.mustCurrent("ConnectTo")
	b.recordErr(b.graph.addEdge(NewEdge(b.current, target)))
	b.current = target
	return b
}

// ConnectToIf appends a conditional edge from the cursor to target. The
// cursor does not advance, so several conditional branches can be attached
// to the same source.
func (b *Builder) ConnectToIf(target string, cond Condition) *Builder {
	b.mustCurrent("ConnectToIf")
	b.recordErr(b.graph.addEdge(NewConditionalEdge(b.current, target, cond)))
	return b
}

func (b *Builder) mustCurrent(method string) {
	if b.current == "" {
		panic(fmt.Sprintf("graph.Builder.%s called before any node is current", method))
	}
}

func (b *Builder) recordErr(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// Build resolves the declared entry and exit points, validates the graph,
// and returns it. The first construction or validation error is returned
// wrapped.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, fmt.Errorf("invalid graph: %w", b.err)
	}
	b.graph.entryPoint = b.entry
	for _, id := range b.exits {
		b.graph.exitPoints[id] = struct{}{}
	}
	if err := b.graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return b.graph, nil
}

// MustBuild builds the graph or panics if it is invalid.
func (b *Builder) MustBuild() *Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
