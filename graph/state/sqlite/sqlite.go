//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

// Package sqlite provides a SQLite-backed StateManager. It expects an
// initialized *sql.DB with a SQLite driver and stores each state as a JSON
// document alongside indexed correlation columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/voyagent/graphflow/graph"
)

const (
	sqliteCreateStates = "CREATE TABLE IF NOT EXISTS graph_states (" +
		"id TEXT PRIMARY KEY, " +
		"graph_id TEXT NOT NULL, " +
		"user_id TEXT, " +
		"session_id TEXT, " +
		"version INTEGER NOT NULL, " +
		"document BLOB NOT NULL" +
		")"

	sqliteCreateGraphIndex = "CREATE INDEX IF NOT EXISTS idx_graph_states_graph_id " +
		"ON graph_states (graph_id)"

	sqliteUpsertState = "INSERT OR REPLACE INTO graph_states " +
		"(id, graph_id, user_id, session_id, version, document) VALUES (?, ?, ?, ?, ?, ?)"

	sqliteSelectState = "SELECT document FROM graph_states WHERE id = ? LIMIT 1"

	sqliteDeleteState = "DELETE FROM graph_states WHERE id = ?"
)

// Manager is a StateManager over a SQLite database.
type Manager struct {
	db *sql.DB
}

// NewManager creates a manager using the provided DB and creates the schema
// if needed.
func NewManager(db *sql.DB) (*Manager, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if _, err := db.Exec(sqliteCreateStates); err != nil {
		return nil, fmt.Errorf("create graph_states table: %w", err)
	}
	if _, err := db.Exec(sqliteCreateGraphIndex); err != nil {
		return nil, fmt.Errorf("create graph_states index: %w", err)
	}
	return &Manager{db: db}, nil
}

// SaveState persists the state as a JSON document.
func (m *Manager) SaveState(ctx context.Context, state *graph.State) error {
	if state == nil {
		return graph.NewValidationError("sqlite state manager", "state cannot be nil")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state %s: %w", state.ID(), err)
	}
	_, err = m.db.ExecContext(ctx, sqliteUpsertState,
		state.ID(), state.GraphID(), state.UserID(), state.SessionID(), state.Version(), raw)
	if err != nil {
		return fmt.Errorf("failed to save state %s: %w", state.ID(), err)
	}
	return nil
}

// LoadState returns the stored state, or a NotFoundError.
func (m *Manager) LoadState(ctx context.Context, id string) (*graph.State, error) {
	var raw []byte
	err := m.db.QueryRowContext(ctx, sqliteSelectState, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
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

// DeleteState removes the stored state. Deleting an unknown id is a no-op.
func (m *Manager) DeleteState(ctx context.Context, id string) error {
	if _, err := m.db.ExecContext(ctx, sqliteDeleteState, id); err != nil {
		return fmt.Errorf("failed to delete state %s: %w", id, err)
	}
	return nil
}

// ListStates returns every stored state matching filter. Correlation-id
// fields narrow the query; payload-key filters finish in process.
func (m *Manager) ListStates(ctx context.Context, filter *graph.StateFilter) ([]*graph.State, error) {
	query := "SELECT document FROM graph_states"
	var (
		clauses []string
		args    []any
	)
	if filter != nil {
		if filter.GraphID != "" {
			clauses = append(clauses, "graph_id = ?")
			args = append(args, filter.GraphID)
		}
		if filter.UserID != "" {
			clauses = append(clauses, "user_id = ?")
			args = append(args, filter.UserID)
		}
		if filter.SessionID != "" {
			clauses = append(clauses, "session_id = ?")
			args = append(args, filter.SessionID)
		}
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	defer rows.Close()

	var result []*graph.State
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %w", err)
		}
		state := &graph.State{}
		if err := json.Unmarshal(raw, state); err != nil {
			return nil, fmt.Errorf("failed to unmarshal state row: %w", err)
		}
		if matchesKeys(state, filter) {
			result = append(result, state)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate state rows: %w", err)
	}
	return result, nil
}

func matchesKeys(state *graph.State, filter *graph.StateFilter) bool {
	if filter == nil {
		return true
	}
	for key, expected := range filter.Keys {
		value, ok := state.Get(key)
		if !ok || !reflect.DeepEqual(value, expected) {
			return false
		}
	}
	return true
}
