package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/careloom/reminisce/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedPatient(t *testing.T, s *SQLiteStore, id string) *model.Patient {
	t.Helper()
	p, err := s.PutPatient(context.Background(), PutPatientParams{
		ID:        id,
		Name:      "Ana",
		BirthYear: 1941,
		Interests: []string{"gardening", "jazz"},
	})
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func TestPutAndGetPatient(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.PutPatient(ctx, PutPatientParams{
		Name:       "Ana",
		BirthYear:  1941,
		Background: "retired teacher",
		Interests:  []string{"gardening", "jazz"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated ID")
	}

	got, err := s.GetPatientByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ana" || got.BirthYear != 1941 {
		t.Errorf("unexpected patient: %+v", got)
	}
	if len(got.Interests) != 2 || got.Interests[0] != "gardening" {
		t.Errorf("interests not round-tripped: %v", got.Interests)
	}
}

func TestGetPatientNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPatientByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPutAndGetMemory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedPatient(t, s, "")

	mem, err := s.PutMemory(ctx, PutMemoryParams{
		PatientID:   p.ID,
		Title:       "Wedding day",
		Description: "The church by the river, summer of 1963.",
		MediaURLs:   []string{"https://example.com/wedding.jpg"},
		Tags:        []string{"family"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetMemoryByID(ctx, mem.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PatientID != p.ID {
		t.Errorf("expected patient_id %s, got %s", p.ID, got.PatientID)
	}
	if got.Title != "Wedding day" {
		t.Errorf("expected title 'Wedding day', got %q", got.Title)
	}
	if len(got.MediaURLs) != 1 || got.MediaURLs[0] != "https://example.com/wedding.jpg" {
		t.Errorf("media not round-tripped: %v", got.MediaURLs)
	}
}

func TestGetMemoryNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMemoryByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListMemories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p1 := seedPatient(t, s, "p1")
	p2 := seedPatient(t, s, "p2")

	s.PutMemory(ctx, PutMemoryParams{PatientID: p1.ID, Title: "a", Description: "x"})
	s.PutMemory(ctx, PutMemoryParams{PatientID: p1.ID, Title: "b", Description: "y", Tags: []string{"family"}})
	s.PutMemory(ctx, PutMemoryParams{PatientID: p2.ID, Title: "c", Description: "z"})

	all, _ := s.ListMemories(ctx, ListMemoriesParams{})
	if len(all) != 3 {
		t.Errorf("expected 3, got %d", len(all))
	}

	byPatient, _ := s.ListMemories(ctx, ListMemoriesParams{PatientID: p1.ID})
	if len(byPatient) != 2 {
		t.Errorf("expected 2 for p1, got %d", len(byPatient))
	}

	byTag, _ := s.ListMemories(ctx, ListMemoriesParams{Tags: []string{"family"}})
	if len(byTag) != 1 {
		t.Errorf("expected 1 with 'family' tag, got %d", len(byTag))
	}
}

func TestSearchMemories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedPatient(t, s, "")

	s.PutMemory(ctx, PutMemoryParams{PatientID: p.ID, Title: "Wedding day", Description: "church by the river"})
	s.PutMemory(ctx, PutMemoryParams{PatientID: p.ID, Title: "First job", Description: "the print shop"})

	results, err := s.SearchMemories(ctx, SearchMemoriesParams{Query: "river"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Wedding day" {
		t.Errorf("expected 'Wedding day', got %q", results[0].Title)
	}
}

func TestSaveAndGetOutline(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedPatient(t, s, "")
	mem, _ := s.PutMemory(ctx, PutMemoryParams{PatientID: p.ID, Title: "t", Description: "d"})

	outline := &model.TherapyOutline{
		PatientID: p.ID,
		MemoryID:  mem.ID,
		Steps: []model.Step{
			{
				Step:        1,
				Description: "Welcome",
				Guide:       []string{"greet warmly"},
				Type:        "INTRODUCTION",
				MediaURLs:   []string{},
				Script:      model.Script{Voice: "alloy", Text: "Hello."},
			},
		},
	}

	id, err := s.SaveTherapyOutline(ctx, outline)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty outline id")
	}

	got, err := s.GetTherapyOutlineByMemoryID(ctx, mem.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != id {
		t.Errorf("expected id %s, got %s", id, got.ID)
	}
	if got.PatientID != p.ID || got.MemoryID != mem.ID {
		t.Errorf("ids not round-tripped: %+v", got)
	}
	if len(got.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(got.Steps))
	}
	step := got.Steps[0]
	if step.Type != "INTRODUCTION" || step.Script.Voice != "alloy" || step.Script.Text != "Hello." {
		t.Errorf("step not round-tripped: %+v", step)
	}
}

func TestGetOutlineReturnsLatest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedPatient(t, s, "")
	mem, _ := s.PutMemory(ctx, PutMemoryParams{PatientID: p.ID, Title: "t", Description: "d"})

	first := &model.TherapyOutline{PatientID: p.ID, MemoryID: mem.ID, Steps: []model.Step{{Step: 1, Description: "old", Type: "NORMAL", Script: model.Script{Voice: "nova"}}}}
	s.SaveTherapyOutline(ctx, first)

	second := &model.TherapyOutline{PatientID: p.ID, MemoryID: mem.ID, Steps: []model.Step{{Step: 1, Description: "new", Type: "NORMAL", Script: model.Script{Voice: "nova"}}}}
	secondID, _ := s.SaveTherapyOutline(ctx, second)

	got, err := s.GetTherapyOutlineByMemoryID(ctx, mem.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != secondID {
		t.Errorf("expected latest outline %s, got %s", secondID, got.ID)
	}
	if got.Steps[0].Description != "new" {
		t.Errorf("expected latest steps, got %q", got.Steps[0].Description)
	}
}

func TestGetOutlineLatestUnderRapidSaves(t *testing.T) {
	// Back-to-back saves land in the same RFC3339 second, so recency
	// ordering rests entirely on the id tiebreak.
	ctx := context.Background()
	s := newTestStore(t)
	p := seedPatient(t, s, "")
	mem, _ := s.PutMemory(ctx, PutMemoryParams{PatientID: p.ID, Title: "t", Description: "d"})

	steps := []model.Step{{Step: 1, Description: "d", Type: "NORMAL", Script: model.Script{Voice: "nova"}}}

	for round := 0; round < 100; round++ {
		s.SaveTherapyOutline(ctx, &model.TherapyOutline{PatientID: p.ID, MemoryID: mem.ID, Steps: steps})
		wantID, err := s.SaveTherapyOutline(ctx, &model.TherapyOutline{PatientID: p.ID, MemoryID: mem.ID, Steps: steps})
		if err != nil {
			t.Fatalf("round %d: save: %v", round, err)
		}

		got, err := s.GetTherapyOutlineByMemoryID(ctx, mem.ID)
		if err != nil {
			t.Fatalf("round %d: get: %v", round, err)
		}
		if got.ID != wantID {
			t.Fatalf("round %d: expected latest outline %s, got %s", round, wantID, got.ID)
		}
	}
}

func TestNewIDsSortInMintOrder(t *testing.T) {
	s := newTestStore(t)

	prev := s.newID()
	for i := 0; i < 1000; i++ {
		id := s.newID()
		if id <= prev {
			t.Fatalf("id %d not greater than predecessor: %s <= %s", i, id, prev)
		}
		prev = id
	}
}

func TestGetOutlineNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTherapyOutlineByMemoryID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	p, _ := s.PutPatient(ctx, PutPatientParams{Name: "Ana"})
	s.PutMemory(ctx, PutMemoryParams{PatientID: p.ID, Title: "t", Description: "d"})

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Patients != 1 || st.Memories != 1 || st.Outlines != 0 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if len(st.PerPatient) != 1 || st.PerPatient[0].Memories != 1 {
		t.Errorf("unexpected per-patient stats: %+v", st.PerPatient)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
