package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func stateWith(t *testing.T, values map[string]any) *State {
	t.Helper()
	s := NewState("test-graph")
	s.SetMultiple(values)
	return s
}

func TestStateValueConditionOperators(t *testing.T) {
	ctx := context.Background()
	state := stateWith(t, map[string]any{
		"number":  42,
		"text":    "lisbon beach trip",
		"tags":    []any{"beach", "food"},
		"nested":  map[string]any{"hotel": "booked"},
		"strs":    []string{"x", "y"},
		"numeric": "17.5",
	})

	tests := []struct {
		name string
		cond *StateValueCondition
		want bool
	}{
		{"exists hit", NewStateValueCondition("number", nil, OperatorExists), true},
		{"exists miss", NewStateValueCondition("ghost", nil, OperatorExists), false},
		{"not_exists hit", NewStateValueCondition("ghost", nil, OperatorNotExists), true},
		{"not_exists miss", NewStateValueCondition("number", nil, OperatorNotExists), false},
		{"equals hit", NewStateValueCondition("number", 42, OperatorEquals), true},
		{"equals miss", NewStateValueCondition("number", 41, OperatorEquals), false},
		{"equals deep", NewStateValueCondition("nested", map[string]any{"hotel": "booked"}, OperatorEquals), true},
		{"not_equals hit", NewStateValueCondition("number", 41, OperatorNotEquals), true},
		{"not_equals missing key", NewStateValueCondition("ghost", 1, OperatorNotEquals), true},
		{"greater hit", NewStateValueCondition("number", 40, OperatorGreater), true},
		{"greater miss", NewStateValueCondition("number", 42, OperatorGreater), false},
		{"greater numeric string", NewStateValueCondition("numeric", 17, OperatorGreater), true},
		{"less hit", NewStateValueCondition("number", 50, OperatorLess), true},
		{"less miss", NewStateValueCondition("number", 10, OperatorLess), false},
		{"contains substring", NewStateValueCondition("text", "beach", OperatorContains), true},
		{"contains substring miss", NewStateValueCondition("text", "ski", OperatorContains), false},
		{"contains element", NewStateValueCondition("tags", "food", OperatorContains), true},
		{"contains element miss", NewStateValueCondition("tags", "spa", OperatorContains), false},
		{"contains string slice", NewStateValueCondition("strs", "y", OperatorContains), true},
		{"contains map key", NewStateValueCondition("nested", "hotel", OperatorContains), true},
		{"contains map key miss", NewStateValueCondition("nested", "flight", OperatorContains), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cond.Evaluate(ctx, state)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate = %v, want %v", got, tt.want)
			}
		})
	}
}

// Numeric comparison against a missing key is false, not an error.
func TestGreaterMissingKey(t *testing.T) {
	cond := NewStateValueCondition("number", 40, OperatorGreater)

	for input, want := range map[int]bool{42: true, 39: false} {
		got, err := cond.Evaluate(context.Background(), stateWith(t, map[string]any{"number": input}))
		if err != nil || got != want {
			t.Errorf("number=%d: Evaluate = %v, %v, want %v, nil", input, got, err, want)
		}
	}

	got, err := cond.Evaluate(context.Background(), NewState("g"))
	if err != nil {
		t.Fatalf("missing key: unexpected error %v", err)
	}
	if got {
		t.Error("missing key: Evaluate = true, want false")
	}
}

func TestNumericCoercionError(t *testing.T) {
	state := stateWith(t, map[string]any{"number": "not-a-number"})
	_, err := NewStateValueCondition("number", 1, OperatorGreater).Evaluate(context.Background(), state)
	var tce *TypeCoercionError
	if !errors.As(err, &tce) {
		t.Fatalf("expected TypeCoercionError, got %v", err)
	}

	state = stateWith(t, map[string]any{"tags": 3})
	_, err = NewStateValueCondition("tags", "x", OperatorContains).Evaluate(context.Background(), state)
	if !errors.As(err, &tce) {
		t.Fatalf("contains on int: expected TypeCoercionError, got %v", err)
	}
}

// countingCondition records how often it was evaluated.
type countingCondition struct {
	result bool
	err    error
	calls  int
}

func (c *countingCondition) Evaluate(context.Context, *State) (bool, error) {
	c.calls++
	return c.result, c.err
}

func (c *countingCondition) Description() string { return "counting" }

func TestAndShortCircuits(t *testing.T) {
	ctx := context.Background()
	state := NewState("g")

	c1 := &countingCondition{result: false}
	c2 := &countingCondition{result: true}
	got, err := NewAndCondition(c1, c2).Evaluate(ctx, state)
	if err != nil || got {
		t.Fatalf("Evaluate = %v, %v, want false, nil", got, err)
	}
	if c2.calls != 0 {
		t.Errorf("second condition evaluated %d times after first was false", c2.calls)
	}

	c1.result = true
	got, err = NewAndCondition(c1, c2).Evaluate(ctx, state)
	if err != nil || !got {
		t.Fatalf("Evaluate = %v, %v, want true, nil", got, err)
	}
	if c2.calls != 1 {
		t.Errorf("second condition calls = %d, want 1", c2.calls)
	}

	c1.err = errors.New("boom")
	if _, err := NewAndCondition(c1, c2).Evaluate(ctx, state); err == nil {
		t.Error("expected error to propagate")
	}
}

func TestOrShortCircuits(t *testing.T) {
	ctx := context.Background()
	state := NewState("g")

	c1 := &countingCondition{result: true}
	c2 := &countingCondition{result: false}
	got, err := NewOrCondition(c1, c2).Evaluate(ctx, state)
	if err != nil || !got {
		t.Fatalf("Evaluate = %v, %v, want true, nil", got, err)
	}
	if c2.calls != 0 {
		t.Errorf("second condition evaluated %d times after first was true", c2.calls)
	}

	got, err = NewOrCondition(&countingCondition{}, &countingCondition{}).Evaluate(ctx, state)
	if err != nil || got {
		t.Fatalf("all-false Or = %v, %v, want false, nil", got, err)
	}
}

func TestNotAndConstConditions(t *testing.T) {
	ctx := context.Background()
	state := NewState("g")

	if got, _ := NewNotCondition(NewTrueCondition()).Evaluate(ctx, state); got {
		t.Error("NOT true = true")
	}
	if got, _ := NewNotCondition(NewFalseCondition()).Evaluate(ctx, state); !got {
		t.Error("NOT false = false")
	}
	if got, _ := NewTrueCondition().Evaluate(ctx, state); !got {
		t.Error("true condition = false")
	}
	if got, _ := NewFalseCondition().Evaluate(ctx, state); got {
		t.Error("false condition = true")
	}
}

func TestFuncCondition(t *testing.T) {
	cond := NewFuncCondition("has budget over 1000", func(_ context.Context, s *State) (bool, error) {
		v, ok := s.GetFloat("budget")
		return ok && v > 1000, nil
	})
	got, err := cond.Evaluate(context.Background(), stateWith(t, map[string]any{"budget": 1500.0}))
	if err != nil || !got {
		t.Fatalf("Evaluate = %v, %v", got, err)
	}
	if cond.Description() != "has budget over 1000" {
		t.Errorf("Description = %q", cond.Description())
	}
}

func TestDescriptions(t *testing.T) {
	leaf := NewStateValueCondition("number", 40, OperatorGreater)
	if leaf.Description() != "number greater 40" {
		t.Errorf("leaf description = %q", leaf.Description())
	}
	and := NewAndCondition(leaf, NewTrueCondition())
	if got := and.Description(); got != "(number greater 40 AND true)" {
		t.Errorf("and description = %q", got)
	}
	or := NewOrCondition(NewFalseCondition(), leaf)
	if !strings.Contains(or.Description(), " OR ") {
		t.Errorf("or description = %q", or.Description())
	}
	not := NewNotCondition(leaf)
	if not.Description() != "NOT number greater 40" {
		t.Errorf("not description = %q", not.Description())
	}
	exists := NewStateValueCondition("number", nil, OperatorExists)
	if exists.Description() != "number exists" {
		t.Errorf("exists description = %q", exists.Description())
	}
}
