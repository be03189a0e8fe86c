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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/voyagent/graphflow/log"
	"github.com/voyagent/graphflow/telemetry/trace"
)

// Executor defaults.
const (
	// DefaultMaxIterations bounds the hop count of one run.
	DefaultMaxIterations = 100
	// DefaultTimeout bounds the wall-clock duration of one run. The two
	// bounds are independent: a tight loop and one slow external call are
	// distinct failure modes.
	DefaultTimeout = 5 * time.Minute
)

// Executor drives graph runs. One Executor may run many graphs, and
// distinct runs may proceed fully concurrently; they interact only through
// the shared StateManager, keyed by distinct state ids. Within a single run
// nodes execute strictly sequentially.
type Executor struct {
	stateManager  StateManager
	maxIterations int
	timeout       time.Duration

	mu         sync.RWMutex
	executions map[string]*ExecutionResult
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*ExecutorOptions)

// ExecutorOptions contains configuration options for creating an Executor.
type ExecutorOptions struct {
	// StateManager persists checkpoints. Defaults to the in-memory
	// reference implementation.
	StateManager StateManager
	// MaxIterations is the hop-count budget per run.
	MaxIterations int
	// Timeout is the wall-clock budget per run.
	Timeout time.Duration
}

// WithStateManager sets the checkpoint store.
func WithStateManager(sm StateManager) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.StateManager = sm
	}
}

// WithMaxIterations sets the hop-count budget per run.
func WithMaxIterations(n int) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.MaxIterations = n
	}
}

// WithTimeout sets the wall-clock budget per run.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.Timeout = d
	}
}

// NewExecutor creates an executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	options := ExecutorOptions{
		MaxIterations: DefaultMaxIterations,
		Timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.StateManager == nil {
		options.StateManager = NewInMemoryStateManager()
	}
	if options.MaxIterations <= 0 {
		options.MaxIterations = DefaultMaxIterations
	}
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	return &Executor{
		stateManager:  options.StateManager,
		maxIterations: options.MaxIterations,
		timeout:       options.Timeout,
		executions:    make(map[string]*ExecutionResult),
	}
}

// StateManager returns the executor's checkpoint store.
func (e *Executor) StateManager() StateManager {
	return e.stateManager
}

// Execute runs the graph to a terminal outcome with input as the initial
// payload. The returned ExecutionResult is well-formed even on failure: it
// carries the status, the error text, and whatever visited-node trail
// accumulated before termination. The returned error mirrors the result's
// error for convenience.
func (e *Executor) Execute(ctx context.Context, g *Graph, input map[string]any) (*ExecutionResult, error) {
	state, result, runCtx, err := e.prepare(ctx, g, input)
	if err != nil {
		return nil, err
	}
	runErr := e.run(runCtx, g, state, result)
	return result, runErr
}

// ExecuteAsync starts the run on its own goroutine and returns immediately
// with the execution id and a single-slot channel that receives exactly one
// ExecutionResult and is then closed. The caller never blocks; the ledger
// exposes the run under the returned id while it is in flight.
func (e *Executor) ExecuteAsync(ctx context.Context, g *Graph, input map[string]any) (string, <-chan *ExecutionResult, error) {
	state, result, runCtx, err := e.prepare(ctx, g, input)
	if err != nil {
		return "", nil, err
	}
	results := make(chan *ExecutionResult, 1)
	go func() {
		defer close(results)
		if err := e.run(runCtx, g, state, result); err != nil {
			log.Debugf("async execution %s terminated: %v", result.ID(), err)
		}
		results <- result
	}()
	return result.ID(), results, nil
}

// prepare builds the initial state, registers the run in the ledger, and
// derives the run context carrying both execution bounds.
func (e *Executor) prepare(ctx context.Context, g *Graph, input map[string]any) (*State, *ExecutionResult, context.Context, error) {
	if g == nil {
		return nil, nil, nil, NewValidationError("executor", "graph cannot be nil")
	}
	state := NewState(g.ID())
	state.SetMultiple(input)

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	result := newExecutionResult(uuid.NewString(), g.ID(), state.ID(), cancel)

	e.mu.Lock()
	e.executions[result.ID()] = result
	e.mu.Unlock()

	return state, result, runCtx, nil
}

// run drives the execution loop to its terminal outcome.
func (e *Executor) run(ctx context.Context, g *Graph, state *State, result *ExecutionResult) error {
	ctx, span := trace.Tracer.Start(ctx, "execute_graph")
	defer span.End()
	span.SetAttributes(
		attribute.String("graphflow.graph_id", g.ID()),
		attribute.String("graphflow.graph_name", g.Name()),
		attribute.String("graphflow.execution_id", result.ID()),
	)
	log.Infof("execution %s started: graph=%s entry=%s", result.ID(), g.ID(), g.EntryPoint())

	// Release the timeout timer once the run is terminal.
	defer result.cancel()

	if err := e.stateManager.SaveState(ctx, state); err != nil {
		return e.finish(ctx, result, nil, fmt.Errorf("failed to save initial checkpoint: %w", err))
	}

	current := g.EntryPoint()
	for iteration := 0; iteration < e.maxIterations; iteration++ {
		select {
		case <-ctx.Done():
			return e.finish(ctx, result, nil, ctx.Err())
		default:
		}

		result.appendVisited(current)
		if g.IsExitPoint(current) {
			return e.finish(ctx, result, state, nil)
		}

		node, ok := g.Node(current)
		if !ok {
			return e.finish(ctx, result, nil, NewNotFoundError("node", current))
		}

		newState, err := e.executeNode(ctx, node, state)
		if err != nil {
			return e.finish(ctx, result, nil, fmt.Errorf("node %s: %w", current, err))
		}
		state = newState

		if err := e.stateManager.SaveState(ctx, state); err != nil {
			return e.finish(ctx, result, nil, fmt.Errorf("failed to save checkpoint after node %s: %w", current, err))
		}

		next, matched, err := e.nextNode(ctx, g, current, state)
		if err != nil {
			return e.finish(ctx, result, nil, err)
		}
		if !matched {
			// Natural termination: no outgoing edge matched.
			return e.finish(ctx, result, state, nil)
		}
		current = next
	}
	return e.finish(ctx, result, nil,
		fmt.Errorf("%w after %d iterations", ErrMaxIterationsExceeded, e.maxIterations))
}

// executeNode runs one node under its own span.
func (e *Executor) executeNode(ctx context.Context, node Node, state *State) (*State, error) {
	ctx, span := trace.Tracer.Start(ctx, "execute_node "+node.ID())
	defer span.End()
	span.SetAttributes(
		attribute.String("graphflow.node_id", node.ID()),
		attribute.String("graphflow.node_name", node.Name()),
		attribute.String("graphflow.node_type", string(node.Type())),
	)
	log.Debugf("executing node %s (%s)", node.ID(), node.Type())

	newState, err := node.Execute(ctx, state)
	if err != nil {
		span.SetAttributes(attribute.String("graphflow.error", err.Error()))
		return nil, err
	}
	if newState == nil {
		return nil, NewValidationError("node "+node.ID(), "execute returned nil state")
	}
	return newState, nil
}

// nextNode scans the current node's outgoing edges in registration order
// and returns the target of the first edge whose condition is absent or
// true. matched is false when no edge matches.
func (e *Executor) nextNode(ctx context.Context, g *Graph, current string, state *State) (next string, matched bool, err error) {
	for _, edge := range g.Edges(current) {
		ok, err := edge.Matches(ctx, state)
		if err != nil {
			return "", false, fmt.Errorf("condition on edge %s->%s: %w", edge.From, edge.To, err)
		}
		if ok {
			return edge.To, true, nil
		}
	}
	return "", false, nil
}

// finish performs the terminal transition and returns the run error, if
// any. Context cancellation maps to Cancelled; everything else, including a
// timeout, maps to Failed.
func (e *Executor) finish(ctx context.Context, result *ExecutionResult, finalState *State, err error) error {
	switch {
	case err == nil:
		result.finish(ExecutionStatusCompleted, finalState, nil)
		log.Infof("execution %s completed: visited=%d", result.ID(), len(result.NodesVisited()))
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		result.finish(ExecutionStatusCancelled, nil, err)
		log.Infof("execution %s cancelled: %v", result.ID(), err)
	default:
		result.finish(ExecutionStatusFailed, nil, err)
		log.Errorf("execution %s failed: %v", result.ID(), err)
	}
	return err
}

// GetExecution returns the ledger entry for id.
func (e *Executor) GetExecution(id string) (*ExecutionResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result, ok := e.executions[id]
	if !ok {
		return nil, NewNotFoundError("execution", id)
	}
	return result, nil
}

// ListExecutions returns every ledger entry.
func (e *Executor) ListExecutions() []*ExecutionResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	results := make([]*ExecutionResult, 0, len(e.executions))
	for _, result := range e.executions {
		results = append(results, result)
	}
	return results
}

// CancelExecution cancels a running execution. The run observes the cancel
// at its next suspension point and terminates as Cancelled. Cancelling a
// terminal execution returns ErrExecutionNotRunning.
func (e *Executor) CancelExecution(id string) error {
	result, err := e.GetExecution(id)
	if err != nil {
		return err
	}
	return result.requestCancel()
}

// CleanupExecutions evicts terminal ledger entries whose end time is older
// than maxAge and returns how many were removed. Running executions are
// never evicted.
func (e *Executor) CleanupExecutions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	for id, result := range e.executions {
		if result.Status() == ExecutionStatusRunning {
			continue
		}
		if result.EndTime().Before(cutoff) {
			delete(e.executions, id)
			removed++
		}
	}
	return removed
}

// GetExecutionStats aggregates the ledger: counts per status plus total and
// average duration of terminal runs.
func (e *Executor) GetExecutionStats() ExecutionStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	stats := ExecutionStats{
		ByStatus: make(map[ExecutionStatus]int),
	}
	terminal := 0
	for _, result := range e.executions {
		stats.Total++
		status := result.Status()
		stats.ByStatus[status]++
		if status != ExecutionStatusRunning {
			stats.TotalDuration += result.Duration()
			terminal++
		}
	}
	if terminal > 0 {
		stats.AverageDuration = stats.TotalDuration / time.Duration(terminal)
	}
	return stats
}
