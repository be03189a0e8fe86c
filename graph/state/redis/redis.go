//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

// Package redis provides a Redis-backed StateManager. States round-trip
// through the JSON wire format, so checkpoints survive the process and can
// be shared across instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/redis/go-redis/v9"

	"github.com/voyagent/graphflow/graph"
)

const defaultKeyPrefix = "graphflow:"

// Manager is a StateManager over a Redis instance. Besides the per-state
// document it maintains index sets per graph, user, and session id so
// ListStates does not have to scan the keyspace.
type Manager struct {
	client    redis.UniversalClient
	keyPrefix string
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	client    redis.UniversalClient
	addr      string
	keyPrefix string
}

// WithClient uses an existing Redis client.
func WithClient(client redis.UniversalClient) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithAddr connects to the given address. Ignored when WithClient is used.
func WithAddr(addr string) Option {
	return func(o *options) {
		o.addr = addr
	}
}

// WithKeyPrefix overrides the key prefix, default "graphflow:".
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

// NewManager creates a Redis-backed state manager.
func NewManager(opts ...Option) *Manager {
	o := options{
		addr:      "localhost:6379",
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}
	client := o.client
	if client == nil {
		client = redis.NewClient(&redis.Options{Addr: o.addr})
	}
	return &Manager{
		client:    client,
		keyPrefix: o.keyPrefix,
	}
}

func (m *Manager) stateKey(id string) string { return m.keyPrefix + "state:" + id }
func (m *Manager) allKey() string            { return m.keyPrefix + "states" }
func (m *Manager) graphKey(id string) string { return m.keyPrefix + "idx:graph:" + id }
func (m *Manager) userKey(id string) string  { return m.keyPrefix + "idx:user:" + id }
func (m *Manager) sessKey(id string) string  { return m.keyPrefix + "idx:session:" + id }

// SaveState persists the state document and updates the index sets.
func (m *Manager) SaveState(ctx context.Context, state *graph.State) error {
	if state == nil {
		return graph.NewValidationError("redis state manager", "state cannot be nil")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state %s: %w", state.ID(), err)
	}
	pipe := m.client.TxPipeline()
	pipe.Set(ctx, m.stateKey(state.ID()), raw, 0)
	pipe.SAdd(ctx, m.allKey(), state.ID())
	if state.GraphID() != "" {
		pipe.SAdd(ctx, m.graphKey(state.GraphID()), state.ID())
	}
	if state.UserID() != "" {
		pipe.SAdd(ctx, m.userKey(state.UserID()), state.ID())
	}
	if state.SessionID() != "" {
		pipe.SAdd(ctx, m.sessKey(state.SessionID()), state.ID())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save state %s: %w", state.ID(), err)
	}
	return nil
}

// LoadState returns the stored state, or a NotFoundError.
func (m *Manager) LoadState(ctx context.Context, id string) (*graph.State, error) {
	raw, err := m.client.Get(ctx, m.stateKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, graph.NewNotFoundError("state", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state %s: %w", id, err)
	}
	state := &graph.State{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state %s: %w", id, err)
	}
	return state, nil
}

// DeleteState removes the state document and its index entries. Deleting an
// unknown id is a no-op.
func (m *Manager) DeleteState(ctx context.Context, id string) error {
	state, err := m.LoadState(ctx, id)
	if graph.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := m.client.TxPipeline()
	pipe.Del(ctx, m.stateKey(id))
	pipe.SRem(ctx, m.allKey(), id)
	if state.GraphID() != "" {
		pipe.SRem(ctx, m.graphKey(state.GraphID()), id)
	}
	if state.UserID() != "" {
		pipe.SRem(ctx, m.userKey(state.UserID()), id)
	}
	if state.SessionID() != "" {
		pipe.SRem(ctx, m.sessKey(state.SessionID()), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete state %s: %w", id, err)
	}
	return nil
}

// ListStates returns every stored state matching filter, using the
// narrowest index set available and finishing the match in process.
func (m *Manager) ListStates(ctx context.Context, filter *graph.StateFilter) ([]*graph.State, error) {
	ids, err := m.client.SMembers(ctx, m.indexFor(filter)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	var result []*graph.State
	for _, id := range ids {
		state, err := m.LoadState(ctx, id)
		if graph.IsNotFound(err) {
			// Index entry outlived its document; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		if matchesFilter(state, filter) {
			result = append(result, state)
		}
	}
	return result, nil
}

func (m *Manager) indexFor(filter *graph.StateFilter) string {
	switch {
	case filter == nil:
		return m.allKey()
	case filter.SessionID != "":
		return m.sessKey(filter.SessionID)
	case filter.UserID != "":
		return m.userKey(filter.UserID)
	case filter.GraphID != "":
		return m.graphKey(filter.GraphID)
	default:
		return m.allKey()
	}
}

func matchesFilter(state *graph.State, filter *graph.StateFilter) bool {
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

// Close releases the underlying client.
func (m *Manager) Close() error {
	return m.client.Close()
}
