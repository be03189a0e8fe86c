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
	"time"

	"github.com/voyagent/graphflow/tool"
)

const defaultToolOutputKey = "tool_result"

// ToolNodeConfig controls how a ToolNode invokes its capability.
type ToolNodeConfig struct {
	// ToolName names the capability in the registry.
	ToolName string
	// InputKeys whitelists the payload keys collected into the input bag.
	// Absent keys are skipped, not errors.
	InputKeys []string
	// OutputKey is the payload key the result is stored under.
	OutputKey string
}

// ToolNode collects a whitelisted subset of payload keys into an input bag,
// invokes a named capability from the registry, and stores the result under
// the configured output key. An unknown tool name fails fast at Validate.
type ToolNode struct {
	nodeMeta
	registry *tool.Registry
	cfg      ToolNodeConfig
}

// NewToolNode creates a tool node resolving against the given registry.
func NewToolNode(id string, registry *tool.Registry, cfg ToolNodeConfig, opts ...NodeOption) *ToolNode {
	if cfg.OutputKey == "" {
		cfg.OutputKey = defaultToolOutputKey
	}
	return &ToolNode{
		nodeMeta: newNodeMeta(id, NodeTypeTool, opts),
		registry: registry,
		cfg:      cfg,
	}
}

// Execute transforms the state under the ambient cancellable context.
func (n *ToolNode) Execute(ctx context.Context, state *State) (*State, error) {
	t, err := n.registry.Get(n.cfg.ToolName)
	if err != nil {
		return nil, NewNotFoundError("tool", n.cfg.ToolName)
	}

	clone := state.Clone()
	inputs := make(map[string]any, len(n.cfg.InputKeys))
	for _, key := range n.cfg.InputKeys {
		if value, ok := clone.Get(key); ok {
			inputs[key] = value
		}
	}

	result, err := t.Call(ctx, inputs)
	if err != nil {
		return nil, &ExternalCallError{Kind: "tool", Name: n.cfg.ToolName, Err: err}
	}

	clone.Set(n.cfg.OutputKey, result)
	clone.SetMetadata("tool:"+n.id, map[string]any{
		"node_id":   n.id,
		"tool":      n.cfg.ToolName,
		"inputs":    inputs,
		"result":    result,
		"timestamp": time.Now().Format(time.RFC3339Nano),
	})
	return clone, nil
}

// Validate rejects empty or nil required configuration. An unknown tool
// name is caught here, before the graph is ever executed.
func (n *ToolNode) Validate() error {
	if n.id == "" {
		return NewValidationError("node", "tool node id cannot be empty")
	}
	if n.registry == nil {
		return NewValidationError("node "+n.id, "tool registry cannot be nil")
	}
	if n.cfg.ToolName == "" {
		return NewValidationError("node "+n.id, "tool name cannot be empty")
	}
	if n.cfg.OutputKey == "" {
		return NewValidationError("node "+n.id, "output key cannot be empty")
	}
	if !n.registry.Has(n.cfg.ToolName) {
		return NewNotFoundError("tool", n.cfg.ToolName)
	}
	return nil
}
