package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/campusquest/api/internal/campus"
	"github.com/campusquest/api/internal/database"
)

type testDoc struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func newStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := New(ctx, db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

func TestSetGetRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	in := testDoc{ID: "q1", Name: "first", Tags: []string{"a"}}
	if err := s.Set(ctx, Quests, "q1", in); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out testDoc
	if err := s.Get(ctx, Quests, "q1", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Name != "first" || len(out.Tags) != 1 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestGetMissing(t *testing.T) {
	s := newStore(t)
	var out testDoc
	err := s.Get(context.Background(), Quests, "nope", &out)
	if !errors.Is(err, campus.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUnknownCollection(t *testing.T) {
	s := newStore(t)
	if err := s.Set(context.Background(), "evil; DROP TABLE", "x", testDoc{}); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.Set(ctx, Quests, "q1", testDoc{ID: "q1", Name: "old", Tags: []string{"keep"}})
	if err := s.Update(ctx, Quests, "q1", map[string]any{"name": "new"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var out testDoc
	s.Get(ctx, Quests, "q1", &out)
	if out.Name != "new" {
		t.Errorf("expected updated name, got %q", out.Name)
	}
	if len(out.Tags) != 1 || out.Tags[0] != "keep" {
		t.Errorf("update clobbered untouched field: %+v", out)
	}
}

func TestArrayUnionDeduplicates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.Set(ctx, Quests, "q1", testDoc{ID: "q1"})
	for i := 0; i < 3; i++ {
		if err := s.ArrayUnion(ctx, Quests, "q1", "tags", "u1"); err != nil {
			t.Fatalf("union: %v", err)
		}
	}
	s.ArrayUnion(ctx, Quests, "q1", "tags", "u2")

	var out testDoc
	s.Get(ctx, Quests, "q1", &out)
	if len(out.Tags) != 2 {
		t.Errorf("expected 2 distinct tags, got %v", out.Tags)
	}
}

func TestArrayRemove(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.Set(ctx, Quests, "q1", testDoc{ID: "q1", Tags: []string{"a", "b"}})
	if err := s.ArrayRemove(ctx, Quests, "q1", "tags", "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing an absent value is a no-op, not an error.
	if err := s.ArrayRemove(ctx, Quests, "q1", "tags", "zzz"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}

	var out testDoc
	s.Get(ctx, Quests, "q1", &out)
	if len(out.Tags) != 1 || out.Tags[0] != "b" {
		t.Errorf("expected [b], got %v", out.Tags)
	}
}

func TestSwapAppliesFn(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.Set(ctx, Quests, "q1", testDoc{ID: "q1", Name: "before"})
	err := s.Swap(ctx, Quests, "q1", func(data []byte) ([]byte, error) {
		var d testDoc
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		d.Name = "after"
		return json.Marshal(d)
	})
	if err != nil {
		t.Fatalf("swap: %v", err)
	}

	var out testDoc
	s.Get(ctx, Quests, "q1", &out)
	if out.Name != "after" {
		t.Errorf("expected swapped name, got %q", out.Name)
	}
}

func TestSwapConflict(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.Set(ctx, Quests, "q1", testDoc{ID: "q1", Name: "v1"})
	err := s.Swap(ctx, Quests, "q1", func(data []byte) ([]byte, error) {
		// A concurrent writer bumps the revision mid-swap.
		if err := s.Set(ctx, Quests, "q1", testDoc{ID: "q1", Name: "racer"}); err != nil {
			return nil, err
		}
		return data, nil
	})
	if !errors.Is(err, campus.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestQueryVisitsAll(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.Set(ctx, Users, "u1", testDoc{ID: "u1"})
	s.Set(ctx, Users, "u2", testDoc{ID: "u2"})

	var ids []string
	err := s.Query(ctx, Users, func(data []byte) error {
		var d testDoc
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		ids = append(ids, d.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 docs, got %v", ids)
	}
}
