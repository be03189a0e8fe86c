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
	"sort"
)

// Graph is the assembled workflow: nodes, ordered per-source edge lists, one
// entry point, and one or more exit points. Instances are built through a
// Builder and are read-only after Build, so concurrent executions can share
// one Graph without locking.
type Graph struct {
	id          string
	name        string
	description string
	nodes       map[string]Node
	// edges keeps per-source lists in registration order; first-match-wins
	// routing depends on that order.
	edges      map[string][]*Edge
	entryPoint string
	exitPoints map[string]struct{}
}

func newGraph(id, name string) *Graph {
	return &Graph{
		id:         id,
		name:       name,
		nodes:      make(map[string]Node),
		edges:      make(map[string][]*Edge),
		exitPoints: make(map[string]struct{}),
	}
}

// ID returns the graph id.
func (g *Graph) ID() string { return g.id }

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Description returns the graph description.
func (g *Graph) Description() string { return g.description }

// Node returns a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// NodeIDs returns all node ids in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edges returns the outgoing edges of a node in registration order.
func (g *Graph) Edges(nodeID string) []*Edge {
	return g.edges[nodeID]
}

// EntryPoint returns the entry node id.
func (g *Graph) EntryPoint() string { return g.entryPoint }

// ExitPoints returns the declared exit node ids in sorted order.
func (g *Graph) ExitPoints() []string {
	ids := make([]string, 0, len(g.exitPoints))
	for id := range g.exitPoints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsExitPoint reports whether id is a declared exit node.
func (g *Graph) IsExitPoint(id string) bool {
	_, ok := g.exitPoints[id]
	return ok
}

func (g *Graph) addNode(node Node) error {
	if node == nil {
		return NewValidationError("graph "+g.id, "node cannot be nil")
	}
	if node.ID() == "" {
		return NewValidationError("graph "+g.id, "node id cannot be empty")
	}
	if _, exists := g.nodes[node.ID()]; exists {
		return NewValidationError("graph "+g.id, fmt.Sprintf("node with id %q already exists", node.ID()))
	}
	g.nodes[node.ID()] = node
	return nil
}

func (g *Graph) addEdge(edge *Edge) error {
	if err := edge.Validate(); err != nil {
		return err
	}
	g.edges[edge.From] = append(g.edges[edge.From], edge)
	return nil
}

// Validate checks the graph structure: the entry point resolves, at least
// one exit point exists and resolves, every edge endpoint resolves, and
// every node accepts its own configuration. The first violation is
// reported.
func (g *Graph) Validate() error {
	if g.entryPoint == "" {
		return NewValidationError("graph "+g.id, "entry point is not set")
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return NewValidationError("graph "+g.id, fmt.Sprintf("entry point node %q does not exist", g.entryPoint))
	}
	if len(g.exitPoints) == 0 {
		return NewValidationError("graph "+g.id, "at least one exit point is required")
	}
	for _, id := range g.ExitPoints() {
		if _, ok := g.nodes[id]; !ok {
			return NewValidationError("graph "+g.id, fmt.Sprintf("exit point node %q does not exist", id))
		}
	}
	for _, from := range sortedEdgeSources(g.edges) {
		for _, edge := range g.edges[from] {
			if _, ok := g.nodes[edge.From]; !ok {
				return NewValidationError(
					fmt.Sprintf("edge %s->%s", edge.From, edge.To),
					fmt.Sprintf("source node %q does not exist", edge.From))
			}
			if _, ok := g.nodes[edge.To]; !ok {
				return NewValidationError(
					fmt.Sprintf("edge %s->%s", edge.From, edge.To),
					fmt.Sprintf("target node %q does not exist", edge.To))
			}
		}
	}
	for _, id := range g.NodeIDs() {
		if err := g.nodes[id].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func sortedEdgeSources(edges map[string][]*Edge) []string {
	sources := make([]string, 0, len(edges))
	for from := range edges {
		sources = append(sources, from)
	}
	sort.Strings(sources)
	return sources
}
