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

// Edge is a directed transition between two node ids, optionally guarded by
// a condition. A graph may register any number of edges per source node;
// they are evaluated in registration order and the first edge whose
// condition is absent or true wins.
type Edge struct {
	From      string
	To        string
	Condition Condition
	Label     string
	// Weight is informational only; routing never consults it.
	Weight   float64
	Metadata map[string]any
}

// NewEdge creates an unconditional edge. It always matches.
func NewEdge(from, to string) *Edge {
	return &Edge{From: from, To: to}
}

// NewConditionalEdge creates an edge guarded by cond.
func NewConditionalEdge(from, to string, cond Condition) *Edge {
	return &Edge{From: from, To: to, Condition: cond}
}

// Matches reports whether the edge's guard is absent or holds for state.
func (e *Edge) Matches(ctx context.Context, state *State) (bool, error) {
	if e.Condition == nil {
		return true, nil
	}
	return e.Condition.Evaluate(ctx, state)
}

// Validate rejects edges with missing endpoints.
func (e *Edge) Validate() error {
	if e.From == "" || e.To == "" {
		return NewValidationError("edge", "from and to cannot be empty")
	}
	return nil
}
