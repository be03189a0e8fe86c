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
	"reflect"
	"sync"
)

// StateFilter narrows a ListStates call. Zero-valued fields are ignored.
type StateFilter struct {
	GraphID   string
	UserID    string
	SessionID string
	// Keys matches payload keys by deep structural equality.
	Keys map[string]any
}

// StateManager is the persistence boundary for state checkpoints. SaveState
// and LoadState always trade in clones, so callers can never corrupt the
// store's copy by mutating a returned State.
type StateManager interface {
	// SaveState persists an independent clone of state.
	SaveState(ctx context.Context, state *State) error
	// LoadState returns a clone of the stored state, or a NotFoundError.
	LoadState(ctx context.Context, id string) (*State, error)
	// DeleteState removes the stored state. Deleting an unknown id is a
	// no-op.
	DeleteState(ctx context.Context, id string) error
	// ListStates returns clones of every stored state matching filter.
	// A nil filter matches everything.
	ListStates(ctx context.Context, filter *StateFilter) ([]*State, error)
}

// InMemoryStateManager is the reference StateManager: a map guarded by one
// exclusive-writer/shared-reader lock. Suitable for tests and single-process
// deployments; nothing survives a restart.
type InMemoryStateManager struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewInMemoryStateManager creates an empty in-memory state manager.
func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		states: make(map[string]*State),
	}
}

// SaveState persists an independent clone of state.
func (m *InMemoryStateManager) SaveState(_ context.Context, state *State) error {
	if state == nil {
		return NewValidationError("state manager", "state cannot be nil")
	}
	clone := state.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[clone.ID()] = clone
	return nil
}

// LoadState returns a clone of the stored state, or a NotFoundError.
func (m *InMemoryStateManager) LoadState(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[id]
	if !ok {
		return nil, NewNotFoundError("state", id)
	}
	return state.Clone(), nil
}

// DeleteState removes the stored state. Deleting an unknown id is a no-op.
func (m *InMemoryStateManager) DeleteState(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

// ListStates returns clones of every stored state matching filter.
func (m *InMemoryStateManager) ListStates(_ context.Context, filter *StateFilter) ([]*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*State
	for _, state := range m.states {
		if matchesFilter(state, filter) {
			result = append(result, state.Clone())
		}
	}
	return result, nil
}

// Size returns the number of stored states.
func (m *InMemoryStateManager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

// matchesFilter reports whether state passes every set field of filter.
func matchesFilter(state *State, filter *StateFilter) bool {
	if filter == nil {
		return true
	}
	if filter.GraphID != "" && state.GraphID() != filter.GraphID {
		return false
	}
	if filter.UserID != "" && state.UserID() != filter.UserID {
		return false
	}
	if filter.SessionID != "" && state.SessionID() != filter.SessionID {
		return false
	}
	for key, expected := range filter.Keys {
		value, ok := state.Get(key)
		if !ok || !reflect.DeepEqual(value, expected) {
			return false
		}
	}
	return true
}
