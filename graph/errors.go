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
	"errors"
	"fmt"
)

// Errors.
var (
	// ErrMaxIterationsExceeded reports that a run exhausted its hop budget
	// without reaching a terminal node. It usually means the graph has an
	// unconditional cycle.
	ErrMaxIterationsExceeded = errors.New("maximum execution iterations exceeded")
	// ErrExecutionNotRunning reports a cancel request against an execution
	// that already reached a terminal status.
	ErrExecutionNotRunning = errors.New("execution is not running")
)

// ValidationError reports a malformed graph, node, or condition. It is
// raised at build time, before a graph can be handed to the executor.
type ValidationError struct {
	Component string // e.g. "graph", "node start", "edge a->b"
	Reason    string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Component, e.Reason)
}

// NewValidationError creates a ValidationError for the given component.
func NewValidationError(component, reason string) *ValidationError {
	return &ValidationError{Component: component, Reason: reason}
}

// NotFoundError reports a missing state, node, tool, model, or execution.
type NotFoundError struct {
	Resource string // "state", "node", "tool", "model", "execution"
	ID       string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given resource and id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// TypeCoercionError reports operands that cannot be coerced to the type a
// condition operator requires.
type TypeCoercionError struct {
	Value  any
	Target string // e.g. "number", "string"
}

// Error implements the error interface.
func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %v (%T) to %s", e.Value, e.Value, e.Target)
}

// ExternalCallError wraps a failure from a text-generation or tool
// collaborator. The engine never retries these; the run fails and the caller
// decides whether to re-invoke.
type ExternalCallError struct {
	Kind string // "model" or "tool"
	Name string
	Err  error
}

// Error implements the error interface.
func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s call %q failed: %v", e.Kind, e.Name, e.Err)
}

// Unwrap returns the underlying collaborator error.
func (e *ExternalCallError) Unwrap() error {
	return e.Err
}
