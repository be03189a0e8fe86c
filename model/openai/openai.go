//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

// Package openai implements the model.Model interface on top of the OpenAI
// chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/voyagent/graphflow/model"
)

// Model calls OpenAI's chat completion API to produce text.
type Model struct {
	client       *openai.Client
	defaultModel string
}

// Option configures a Model.
type Option func(*Model)

// WithDefaultModel sets the model used when a request leaves Model empty.
func WithDefaultModel(name string) Option {
	return func(m *Model) {
		m.defaultModel = name
	}
}

// New creates a Model authenticated with the given API key.
func New(apiKey string, opts ...Option) *Model {
	return NewWithClient(openai.NewClient(apiKey), opts...)
}

// NewWithClient creates a Model around an existing client. Useful for
// OpenAI-compatible endpoints configured through openai.ClientConfig.
func NewWithClient(client *openai.Client, opts ...Option) *Model {
	m := &Model{
		client:       client,
		defaultModel: openai.GPT4oMini,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Info returns basic information about the model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.defaultModel}
}

// GenerateContent generates a completion for the given request.
func (m *Model) GenerateContent(ctx context.Context, request *model.Request) (*model.Response, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}
	modelName := request.Model
	if modelName == "" {
		modelName = m.defaultModel
	}

	req := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: request.Prompt},
		},
		MaxTokens:   request.MaxTokens,
		Temperature: float32(request.Temperature),
		Tools:       toOpenAITools(request.Tools),
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned empty choice list")
	}

	choice := resp.Choices[0]
	return &model.Response{
		Text:         strings.TrimSpace(choice.Message.Content),
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: model.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func toOpenAITools(specs []model.ToolSpec) []openai.Tool {
	if len(specs) == 0 {
		return nil
	}
	tools := make([]openai.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return tools
}
