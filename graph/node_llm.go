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
	"fmt"
	"regexp"
	"time"

	"github.com/voyagent/graphflow/model"
)

// Defaults applied by NewLLMNode when the config leaves them zero.
const (
	defaultLLMOutputKey   = "llm_output"
	defaultLLMMaxTokens   = 1000
	defaultLLMTemperature = 0.7
)

// LLMNodeConfig controls how an LLMNode calls its provider.
type LLMNodeConfig struct {
	// PromptTemplate is rendered against the payload before each call.
	// {{key}} placeholders resolve to payload values; unresolved
	// placeholders render as the empty string.
	PromptTemplate string
	// OutputKey is the payload key the completion text is stored under.
	OutputKey string
	// Model is the provider-specific model identifier.
	Model string
	// MaxTokens caps the completion length.
	MaxTokens int
	// Temperature controls sampling randomness.
	Temperature float64
}

// LLMNode renders a prompt template against the current payload, calls the
// text-generation collaborator, and stores the completion under the
// configured output key. A failed call aborts the run; the engine never
// retries.
type LLMNode struct {
	nodeMeta
	llm model.Model
	cfg LLMNodeConfig
}

// NewLLMNode creates an LLM node backed by the given provider.
func NewLLMNode(id string, llm model.Model, cfg LLMNodeConfig, opts ...NodeOption) *LLMNode {
	if cfg.OutputKey == "" {
		cfg.OutputKey = defaultLLMOutputKey
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultLLMMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultLLMTemperature
	}
	return &LLMNode{
		nodeMeta: newNodeMeta(id, NodeTypeLLM, opts),
		llm:      llm,
		cfg:      cfg,
	}
}

// Execute transforms the state under the ambient cancellable context.
func (n *LLMNode) Execute(ctx context.Context, state *State) (*State, error) {
	clone := state.Clone()
	prompt := RenderPrompt(n.cfg.PromptTemplate, clone)

	resp, err := n.llm.GenerateContent(ctx, &model.Request{
		Prompt:      prompt,
		Model:       n.cfg.Model,
		MaxTokens:   n.cfg.MaxTokens,
		Temperature: n.cfg.Temperature,
	})
	if err != nil {
		return nil, &ExternalCallError{Kind: "model", Name: n.llm.Info().Name, Err: err}
	}

	clone.Set(n.cfg.OutputKey, resp.Text)
	clone.SetMetadata("llm:"+n.id, map[string]any{
		"node_id":   n.id,
		"provider":  n.llm.Info().Name,
		"model":     n.cfg.Model,
		"prompt":    prompt,
		"response":  resp.Text,
		"timestamp": time.Now().Format(time.RFC3339Nano),
	})
	return clone, nil
}

// Validate rejects empty or nil required configuration.
func (n *LLMNode) Validate() error {
	if n.id == "" {
		return NewValidationError("node", "llm node id cannot be empty")
	}
	if n.llm == nil {
		return NewValidationError("node "+n.id, "model cannot be nil")
	}
	if n.cfg.PromptTemplate == "" {
		return NewValidationError("node "+n.id, "prompt template cannot be empty")
	}
	if n.cfg.OutputKey == "" {
		return NewValidationError("node "+n.id, "output key cannot be empty")
	}
	return nil
}

var promptPlaceholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// RenderPrompt substitutes {{key}} placeholders in template with payload
// values from state. Placeholders with no matching payload key render as the
// empty string, so optional context keys can appear in templates.
func RenderPrompt(template string, state *State) string {
	return promptPlaceholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := promptPlaceholderRe.FindStringSubmatch(match)[1]
		value, ok := state.Get(key)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%v", value)
	})
}
