// Package graph provides a graph-based orchestration engine for multi-step,
// state-carrying workflows. Nodes transform a shared State, edges route
// between nodes, and the Executor drives a bounded, auditable run.
package graph

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the versioned key/value document that flows through one
// execution. Payload lives in data; diagnostics that are not workflow
// payload live in a separate metadata side-channel. All accessors are safe
// for concurrent use.
type State struct {
	mu sync.RWMutex

	id        string
	graphID   string
	userID    string
	sessionID string
	data      map[string]any
	metadata  map[string]any
	createdAt time.Time
	updatedAt time.Time
	version   int64
}

// NewState creates an empty state owned by the given graph.
func NewState(graphID string) *State {
	now := time.Now()
	return &State{
		id:        uuid.NewString(),
		graphID:   graphID,
		data:      make(map[string]any),
		metadata:  make(map[string]any),
		createdAt: now,
		updatedAt: now,
		version:   1,
	}
}

// ID returns the state id.
func (s *State) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// GraphID returns the owning graph id.
func (s *State) GraphID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graphID
}

// UserID returns the optional user correlation id.
func (s *State) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SetUserID sets the user correlation id.
func (s *State) SetUserID(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}

// SessionID returns the optional session correlation id.
func (s *State) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// SetSessionID sets the session correlation id.
func (s *State) SetSessionID(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
}

// Version returns the mutation counter. Every payload or metadata mutation
// strictly increases it.
func (s *State) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// CreatedAt returns the creation timestamp.
func (s *State) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// UpdatedAt returns the last-mutation timestamp.
func (s *State) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// touch must be called with the write lock held.
func (s *State) touch() {
	s.version++
	s.updatedAt = time.Now()
}

// Get returns the payload value stored under key.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// GetString returns the value under key as a string.
func (s *State) GetString(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetInt returns the value under key as an int. JSON numbers decoded as
// float64 are accepted when they carry no fractional part.
func (s *State) GetInt(key string) (int, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// GetFloat returns the value under key as a float64.
func (s *State) GetFloat(key string) (float64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// GetBool returns the value under key as a bool.
func (s *State) GetBool(key string) (bool, bool) {
	v, ok := s.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Set stores value under key.
func (s *State) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.touch()
}

// SetMultiple stores all entries of values atomically: other goroutines
// observe either none or all of them, and the version advances once.
func (s *State) SetMultiple(values map[string]any) {
	if len(values) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.data[k] = v
	}
	s.touch()
}

// Delete removes the value under key. Deleting an absent key is a no-op and
// does not advance the version.
func (s *State) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return
	}
	delete(s.data, key)
	s.touch()
}

// Has reports whether a payload value exists under key.
func (s *State) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Keys returns the payload keys in sorted order.
func (s *State) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size returns the number of payload entries.
func (s *State) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// SetMetadata stores a diagnostic value in the metadata side-channel.
func (s *State) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[key] = value
	s.touch()
}

// GetMetadata returns the diagnostic value stored under key.
func (s *State) GetMetadata(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.metadata[key]
	return v, ok
}

// Clone returns a fully independent deep copy. Two clones can be mutated
// concurrently without interference, including through nested maps and
// slices.
func (s *State) Clone() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &State{
		id:        s.id,
		graphID:   s.graphID,
		userID:    s.userID,
		sessionID: s.sessionID,
		data:      make(map[string]any, len(s.data)),
		metadata:  make(map[string]any, len(s.metadata)),
		createdAt: s.createdAt,
		updatedAt: s.updatedAt,
		version:   s.version,
	}
	for k, v := range s.data {
		clone.data[k] = deepCopyValue(v)
	}
	for k, v := range s.metadata {
		clone.metadata[k] = deepCopyValue(v)
	}
	return clone
}

// deepCopyValue recursively duplicates any map or slice, whatever its
// element type; scalars copy by value. The common JSON shapes take the fast
// path, everything else goes through reflection so typed containers like
// map[string]int or []bool are never shared between clones.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		cp := make(map[string]any, len(val))
		for k, elem := range val {
			cp[k] = deepCopyValue(elem)
		}
		return cp
	case []any:
		cp := make([]any, len(val))
		for i, elem := range val {
			cp[i] = deepCopyValue(elem)
		}
		return cp
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		cp := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), copiedValueOf(iter.Value().Interface(), rv.Type().Elem()))
		}
		return cp.Interface()
	case reflect.Slice:
		cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			cp.Index(i).Set(copiedValueOf(rv.Index(i).Interface(), rv.Type().Elem()))
		}
		return cp.Interface()
	default:
		return v
	}
}

// copiedValueOf deep-copies elem and wraps it for a container of element
// type t. A nil element stays the zero value of t.
func copiedValueOf(elem any, t reflect.Type) reflect.Value {
	cp := reflect.ValueOf(deepCopyValue(elem))
	if !cp.IsValid() {
		return reflect.Zero(t)
	}
	return cp
}

// stateDocument is the JSON wire format. Out-of-process state managers must
// round-trip it losslessly for all JSON-representable payload values.
type stateDocument struct {
	ID        string         `json:"id"`
	GraphID   string         `json:"graph_id"`
	UserID    string         `json:"user_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Data      map[string]any `json:"data"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Version   int64          `json:"version"`
}

// MarshalJSON implements json.Marshaler.
func (s *State) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(stateDocument{
		ID:        s.id,
		GraphID:   s.graphID,
		UserID:    s.userID,
		SessionID: s.sessionID,
		Data:      s.data,
		Metadata:  s.metadata,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
		Version:   s.version,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(raw []byte) error {
	var doc stateDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal state document: %w", err)
	}
	if doc.ID == "" {
		return fmt.Errorf("state document missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = doc.ID
	s.graphID = doc.GraphID
	s.userID = doc.UserID
	s.sessionID = doc.SessionID
	s.data = doc.Data
	s.metadata = doc.Metadata
	if s.data == nil {
		s.data = make(map[string]any)
	}
	if s.metadata == nil {
		s.metadata = make(map[string]any)
	}
	s.createdAt = doc.CreatedAt
	s.updatedAt = doc.UpdatedAt
	s.version = doc.Version
	return nil
}
