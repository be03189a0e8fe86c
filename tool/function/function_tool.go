//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

// Package function wraps native Go functions as callable tools.
package function

import (
	"context"
	"errors"

	"github.com/voyagent/graphflow/tool"
)

// Func is the signature wrapped by a FunctionTool: an input bag in, an
// arbitrary result out.
type Func func(ctx context.Context, args map[string]any) (any, error)

// FunctionTool implements tool.CallableTool for a native Go function.
type FunctionTool struct {
	name        string
	description string
	inputSchema *tool.Schema
	fn          Func
}

// Option is a function that configures a FunctionTool.
type Option func(*FunctionTool)

// WithName sets the name of the function tool.
func WithName(name string) Option {
	return func(ft *FunctionTool) {
		ft.name = name
	}
}

// WithDescription sets the description of the function tool.
func WithDescription(description string) Option {
	return func(ft *FunctionTool) {
		ft.description = description
	}
}

// WithInputSchema sets the declared input schema of the function tool.
func WithInputSchema(schema *tool.Schema) Option {
	return func(ft *FunctionTool) {
		ft.inputSchema = schema
	}
}

// NewFunctionTool creates a tool around fn with the given options.
func NewFunctionTool(fn Func, opts ...Option) *FunctionTool {
	ft := &FunctionTool{
		name: "function",
		fn:   fn,
	}
	for _, opt := range opts {
		opt(ft)
	}
	return ft
}

// Declaration returns the metadata describing the tool.
func (ft *FunctionTool) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:        ft.name,
		Description: ft.description,
		InputSchema: ft.inputSchema,
	}
}

// Call executes the wrapped function with the provided input bag.
func (ft *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if ft.fn == nil {
		return nil, errors.New("function tool has no function")
	}
	return ft.fn(ctx, args)
}
