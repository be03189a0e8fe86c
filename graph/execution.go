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
	"sync"
	"time"
)

// ExecutionStatus is the lifecycle state of one run.
type ExecutionStatus string

// Execution lifecycle states. Running transitions exactly once to one of
// the terminal states; Cancelled is reachable only through an explicit
// cancel while still running.
const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// ExecutionResult is the auditable record of one run. It is created with
// status running when Execute is called, updated as nodes are visited, and
// frozen by exactly one terminal transition. Accessors are safe for
// concurrent use, so callers may observe a run in flight.
type ExecutionResult struct {
	mu sync.RWMutex

	id           string
	graphID      string
	stateID      string
	status       ExecutionStatus
	startTime    time.Time
	endTime      time.Time
	duration     time.Duration
	nodesVisited []string
	finalState   *State
	errText      string
	metadata     map[string]any

	cancel context.CancelFunc
}

func newExecutionResult(id, graphID, stateID string, cancel context.CancelFunc) *ExecutionResult {
	return &ExecutionResult{
		id:        id,
		graphID:   graphID,
		stateID:   stateID,
		status:    ExecutionStatusRunning,
		startTime: time.Now(),
		metadata:  make(map[string]any),
		cancel:    cancel,
	}
}

// ID returns the execution id.
func (r *ExecutionResult) ID() string { return r.id }

// GraphID returns the executed graph's id.
func (r *ExecutionResult) GraphID() string { return r.graphID }

// StateID returns the id of the run's state document.
func (r *ExecutionResult) StateID() string { return r.stateID }

// Status returns the current lifecycle state.
func (r *ExecutionResult) Status() ExecutionStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// StartTime returns when the run started.
func (r *ExecutionResult) StartTime() time.Time { return r.startTime }

// EndTime returns when the run reached a terminal status, or the zero time
// while it is still running.
func (r *ExecutionResult) EndTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endTime
}

// Duration returns the run's wall-clock duration, fixed at the terminal
// transition.
func (r *ExecutionResult) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.duration
}

// NodesVisited returns the visited node ids in execution order.
func (r *ExecutionResult) NodesVisited() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	visited := make([]string, len(r.nodesVisited))
	copy(visited, r.nodesVisited)
	return visited
}

// FinalState returns the terminal state of a completed run, or nil.
func (r *ExecutionResult) FinalState() *State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finalState
}

// Err returns the error text of a failed or cancelled run.
func (r *ExecutionResult) Err() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errText
}

// SetMetadata attaches a free-form metadata entry to the record.
func (r *ExecutionResult) SetMetadata(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata[key] = value
}

// Metadata returns a copy of the free-form metadata.
func (r *ExecutionResult) Metadata() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	md := make(map[string]any, len(r.metadata))
	for k, v := range r.metadata {
		md[k] = v
	}
	return md
}

func (r *ExecutionResult) appendVisited(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodesVisited = append(r.nodesVisited, nodeID)
}

// finish performs the single terminal transition. Later calls are no-ops,
// which keeps the record immutable once terminal.
func (r *ExecutionResult) finish(status ExecutionStatus, finalState *State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != ExecutionStatusRunning {
		return
	}
	r.status = status
	r.endTime = time.Now()
	r.duration = r.endTime.Sub(r.startTime)
	r.finalState = finalState
	if err != nil {
		r.errText = err.Error()
	}
}

// requestCancel fires the run's cancel function if it is still running.
func (r *ExecutionResult) requestCancel() error {
	r.mu.RLock()
	running := r.status == ExecutionStatusRunning
	cancel := r.cancel
	r.mu.RUnlock()
	if !running {
		return ErrExecutionNotRunning
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

// ExecutionStats aggregates the run ledger.
type ExecutionStats struct {
	Total    int
	ByStatus map[ExecutionStatus]int
	// TotalDuration and AverageDuration cover terminal runs only.
	TotalDuration   time.Duration
	AverageDuration time.Duration
}
