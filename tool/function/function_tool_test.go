//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

package function

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagent/graphflow/tool"
)

func TestFunctionToolCall(t *testing.T) {
	ft := NewFunctionTool(func(_ context.Context, args map[string]any) (any, error) {
		city, _ := args["city"].(string)
		return "weather in " + city, nil
	}, WithName("get_weather"), WithDescription("returns the weather"))

	result, err := ft.Call(context.Background(), map[string]any{"city": "lisbon"})
	require.NoError(t, err)
	assert.Equal(t, "weather in lisbon", result)
}

func TestFunctionToolDeclaration(t *testing.T) {
	schema := &tool.Schema{
		Type: "object",
		Properties: map[string]*tool.Schema{
			"city": {Type: "string", Description: "city name"},
		},
		Required: []string{"city"},
	}
	ft := NewFunctionTool(func(context.Context, map[string]any) (any, error) {
		return nil, nil
	}, WithName("get_weather"), WithDescription("returns the weather"), WithInputSchema(schema))

	decl := ft.Declaration()
	assert.Equal(t, "get_weather", decl.Name)
	assert.Equal(t, "returns the weather", decl.Description)
	assert.Equal(t, schema, decl.InputSchema)
}

func TestFunctionToolDefaults(t *testing.T) {
	ft := NewFunctionTool(func(context.Context, map[string]any) (any, error) {
		return nil, nil
	})
	assert.Equal(t, "function", ft.Declaration().Name)
}

func TestFunctionToolErrors(t *testing.T) {
	failing := NewFunctionTool(func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("backend down")
	}, WithName("flaky"))
	_, err := failing.Call(context.Background(), nil)
	require.Error(t, err)

	nilFn := NewFunctionTool(nil, WithName("empty"))
	_, err = nilFn.Call(context.Background(), nil)
	require.Error(t, err)
}
