//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrModelNotFound is returned by Get for an unregistered provider name.
var ErrModelNotFound = errors.New("model not found")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Model)
)

// Register makes a model available under the given name.
// Registering the same name twice overrides the previous entry.
func Register(name string, m Model) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = m
}

// Get returns the model registered under name.
func Get(name string) (Model, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("model %q not registered: %w", name, ErrModelNotFound)
	}
	return m, nil
}

// Unregister removes the model registered under name, if any.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

// Names returns the registered model names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
