//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
}

func (t *stubTool) Declaration() *Declaration {
	return &Declaration{Name: t.name, Description: "stub"}
}

func (t *stubTool) Call(context.Context, map[string]any) (any, error) {
	return "stub-result", nil
}

func TestRegistryRegisterGet(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubTool{name: "search"}))

	got, err := registry.Get("search")
	require.NoError(t, err)
	assert.Equal(t, "search", got.Declaration().Name)
	assert.True(t, registry.Has("search"))
	assert.False(t, registry.Has("missing"))
}

func TestRegistryNotFound(t *testing.T) {
	_, err := NewRegistry().Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestRegistryRejectsInvalid(t *testing.T) {
	registry := NewRegistry()
	require.Error(t, registry.Register(nil))
	require.Error(t, registry.Register(&stubTool{name: ""}))

	require.NoError(t, registry.Register(&stubTool{name: "dup"}))
	require.Error(t, registry.Register(&stubTool{name: "dup"}))
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubTool{name: "ephemeral"}))
	registry.Unregister("ephemeral")
	assert.False(t, registry.Has("ephemeral"))

	// Unregistering an unknown name is a no-op.
	registry.Unregister("ephemeral")
}

func TestRegistryNames(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, registry.Register(&stubTool{name: name}))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, registry.Names())
}
