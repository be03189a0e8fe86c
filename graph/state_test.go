package graph

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"
)

func TestStateSetGet(t *testing.T) {
	s := NewState("g1")
	if s.ID() == "" {
		t.Fatal("expected generated state id")
	}
	if s.GraphID() != "g1" {
		t.Errorf("GraphID() = %q, want %q", s.GraphID(), "g1")
	}

	s.Set("destination", "Lisbon")
	v, ok := s.Get("destination")
	if !ok || v != "Lisbon" {
		t.Errorf("Get(destination) = %v, %v", v, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) reported found")
	}
	if !s.Has("destination") || s.Has("missing") {
		t.Error("Has gave wrong answers")
	}
	if s.Size() != 1 {
		t.Errorf("Size() = %d, want 1", s.Size())
	}
}

func TestStateTypedGetters(t *testing.T) {
	s := NewState("g1")
	s.Set("name", "trip")
	s.Set("count", 3)
	s.Set("count_json", float64(4))
	s.Set("ratio", 0.5)
	s.Set("ok", true)

	if v, ok := s.GetString("name"); !ok || v != "trip" {
		t.Errorf("GetString = %q, %v", v, ok)
	}
	if v, ok := s.GetInt("count"); !ok || v != 3 {
		t.Errorf("GetInt = %d, %v", v, ok)
	}
	if v, ok := s.GetInt("count_json"); !ok || v != 4 {
		t.Errorf("GetInt(float64) = %d, %v", v, ok)
	}
	if v, ok := s.GetFloat("ratio"); !ok || v != 0.5 {
		t.Errorf("GetFloat = %v, %v", v, ok)
	}
	if v, ok := s.GetBool("ok"); !ok || !v {
		t.Errorf("GetBool = %v, %v", v, ok)
	}
	if _, ok := s.GetInt("ratio"); ok {
		t.Error("GetInt accepted fractional float")
	}
	if _, ok := s.GetString("count"); ok {
		t.Error("GetString accepted int")
	}
}

func TestStateVersionAdvances(t *testing.T) {
	s := NewState("g1")
	v0 := s.Version()
	t0 := s.UpdatedAt()

	s.Set("a", 1)
	if s.Version() != v0+1 {
		t.Errorf("Set: version = %d, want %d", s.Version(), v0+1)
	}
	s.SetMultiple(map[string]any{"b": 2, "c": 3})
	if s.Version() != v0+2 {
		t.Errorf("SetMultiple: version = %d, want %d", s.Version(), v0+2)
	}
	s.Delete("a")
	if s.Version() != v0+3 {
		t.Errorf("Delete: version = %d, want %d", s.Version(), v0+3)
	}
	s.SetMetadata("note", "x")
	if s.Version() != v0+4 {
		t.Errorf("SetMetadata: version = %d, want %d", s.Version(), v0+4)
	}
	if s.UpdatedAt().Before(t0) {
		t.Error("UpdatedAt went backwards")
	}

	// Mutations that change nothing do not advance the version.
	s.Delete("never-there")
	if s.Version() != v0+4 {
		t.Errorf("Delete(absent): version = %d, want %d", s.Version(), v0+4)
	}
	s.SetMultiple(nil)
	if s.Version() != v0+4 {
		t.Errorf("SetMultiple(nil): version = %d, want %d", s.Version(), v0+4)
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	s := NewState("g1")
	s.Set("plan", map[string]any{
		"city":  "Porto",
		"stops": []any{"a", "b"},
	})
	s.Set("tags", []string{"beach", "food"})
	s.SetMetadata("trace", map[string]any{"hops": 1})

	clone := s.Clone()
	if clone.ID() != s.ID() || clone.Version() != s.Version() {
		t.Fatal("clone identity diverged")
	}
	want, _ := s.Get("plan")
	got, _ := clone.Get("plan")
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("clone payload = %v, want %v", got, want)
	}

	// Mutating nested structures on one side never shows on the other.
	plan, _ := s.Get("plan")
	plan.(map[string]any)["city"] = "Faro"
	plan.(map[string]any)["stops"].([]any)[0] = "z"
	tags, _ := s.Get("tags")
	tags.([]string)[0] = "museum"

	clonePlan, _ := clone.Get("plan")
	if clonePlan.(map[string]any)["city"] != "Porto" {
		t.Error("nested map mutation leaked into clone")
	}
	if clonePlan.(map[string]any)["stops"].([]any)[0] != "a" {
		t.Error("nested slice mutation leaked into clone")
	}
	cloneTags, _ := clone.Get("tags")
	if cloneTags.([]string)[0] != "beach" {
		t.Error("string slice mutation leaked into clone")
	}

	clone.Set("extra", true)
	if s.Has("extra") {
		t.Error("clone mutation leaked into original")
	}
	md, _ := clone.GetMetadata("trace")
	md.(map[string]any)["hops"] = 99
	origMd, _ := s.GetMetadata("trace")
	if origMd.(map[string]any)["hops"] != 1 {
		t.Error("metadata mutation leaked into original")
	}
}

func TestStateCloneCopiesTypedContainers(t *testing.T) {
	s := NewState("g1")
	s.Set("scores", map[string]int{"hotel": 1, "food": 2})
	s.Set("checks", []bool{true, false})
	s.Set("limits", map[string]bool{"budget": true})
	s.Set("rows", []map[string]int{{"day": 1}})

	clone := s.Clone()

	scores, _ := s.Get("scores")
	scores.(map[string]int)["hotel"] = 99
	checks, _ := s.Get("checks")
	checks.([]bool)[0] = false
	limits, _ := s.Get("limits")
	limits.(map[string]bool)["budget"] = false
	rows, _ := s.Get("rows")
	rows.([]map[string]int)[0]["day"] = 7

	cloneScores, _ := clone.Get("scores")
	if cloneScores.(map[string]int)["hotel"] != 1 {
		t.Error("map[string]int shared between clone and original")
	}
	cloneChecks, _ := clone.Get("checks")
	if !cloneChecks.([]bool)[0] {
		t.Error("[]bool shared between clone and original")
	}
	cloneLimits, _ := clone.Get("limits")
	if !cloneLimits.(map[string]bool)["budget"] {
		t.Error("map[string]bool shared between clone and original")
	}
	cloneRows, _ := clone.Get("rows")
	if cloneRows.([]map[string]int)[0]["day"] != 1 {
		t.Error("nested typed map shared between clone and original")
	}
}

func TestStateCloneConcurrentMutation(t *testing.T) {
	s := NewState("g1")
	s.Set("n", 0)
	a := s.Clone()
	b := s.Clone()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			a.Set("n", i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			b.Set("n", -i)
		}
	}()
	wg.Wait()

	if v, _ := a.GetInt("n"); v != 99 {
		t.Errorf("clone a final n = %d, want 99", v)
	}
	if v, _ := b.GetInt("n"); v != -99 {
		t.Errorf("clone b final n = %d, want -99", v)
	}
}

func TestStateKeysSorted(t *testing.T) {
	s := NewState("g1")
	s.SetMultiple(map[string]any{"c": 1, "a": 2, "b": 3})
	want := []string{"a", "b", "c"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	s := NewState("g1")
	s.SetUserID("u1")
	s.SetSessionID("sess1")
	s.Set("city", "Lisbon")
	s.Set("budget", 1200.5)
	s.Set("itinerary", map[string]any{"days": float64(3)})
	s.SetMetadata("source", "test")

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := &State{}
	if err := json.Unmarshal(raw, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.ID() != s.ID() || restored.GraphID() != "g1" {
		t.Error("identity did not round-trip")
	}
	if restored.UserID() != "u1" || restored.SessionID() != "sess1" {
		t.Error("correlation ids did not round-trip")
	}
	if restored.Version() != s.Version() {
		t.Errorf("version = %d, want %d", restored.Version(), s.Version())
	}
	if v, _ := restored.Get("city"); v != "Lisbon" {
		t.Errorf("city = %v", v)
	}
	if v, _ := restored.Get("itinerary"); !reflect.DeepEqual(v, map[string]any{"days": float64(3)}) {
		t.Errorf("itinerary = %v", v)
	}
	if v, _ := restored.GetMetadata("source"); v != "test" {
		t.Errorf("metadata source = %v", v)
	}
}

func TestStateUnmarshalRejectsMissingID(t *testing.T) {
	restored := &State{}
	if err := json.Unmarshal([]byte(`{"graph_id":"g"}`), restored); err == nil {
		t.Fatal("expected error for document without id")
	}
}
