//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

// Package model provides the interface between graphflow and text-generation
// providers. The engine only depends on this boundary; concrete providers
// live in subpackages.
package model

import "context"

// Request is a single text-generation request.
type Request struct {
	// Prompt is the fully rendered prompt text.
	Prompt string
	// Model is the provider-specific model identifier.
	Model string
	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
	// Temperature controls sampling randomness.
	Temperature float64
	// Tools optionally describes callable capabilities the provider may
	// reference in its completion.
	Tools []ToolSpec
}

// ToolSpec describes a tool to the provider.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Usage reports token accounting for one request.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the provider's completion.
type Response struct {
	// Text is the completion text.
	Text string
	// Model is the model that actually served the request.
	Model string
	// FinishReason is the provider's stop reason, when reported.
	FinishReason string
	// Usage is the token accounting, when reported.
	Usage Usage
}

// Model is the interface all text-generation providers implement.
// Quota, auth, and validation failures are returned as opaque errors; the
// engine wraps them at its boundary and never retries.
type Model interface {
	// GenerateContent generates a completion for the given request.
	GenerateContent(ctx context.Context, request *Request) (*Response, error)

	// Info returns basic information about the model.
	Info() Info
}

// Info contains basic information about a Model.
type Info struct {
	Name string
}
