package store

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/MWood1988/TrainingLog/internal/models"
	"github.com/google/uuid"
)

func testStore() *Store {
	return NewMemory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestTemplateCRUD covers create, lookup by ID and name, and update.
func TestTemplateCRUD(t *testing.T) {
	st := testStore()

	tmpl, err := st.CreateTemplate("Push Day", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tmpl.ID == uuid.Nil {
		t.Fatal("template ID not assigned")
	}

	got, ok := st.FindTemplate(tmpl.ID)
	if !ok || got.Name != "Push Day" {
		t.Fatalf("FindTemplate = %+v, %v", got, ok)
	}
	if _, ok := st.FindTemplateByName("Push Day"); !ok {
		t.Fatal("FindTemplateByName missed")
	}
	if _, ok := st.FindTemplateByName("push day"); ok {
		t.Fatal("template name lookup should be exact, not case-insensitive")
	}

	tmpl.Name = "Push Day A"
	if err := st.UpdateTemplate(tmpl); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = st.FindTemplate(tmpl.ID)
	if got.Name != "Push Day A" {
		t.Errorf("name after update = %q", got.Name)
	}

	if err := st.UpdateTemplate(models.WorkoutTemplate{ID: uuid.New()}); !errors.Is(err, ErrNotFound) {
		t.Errorf("updating unknown template: err = %v, want ErrNotFound", err)
	}
}

// TestDeleteTemplateCascades verifies that deleting a template removes
// its sessions while leaving other templates' sessions alone.
func TestDeleteTemplateCascades(t *testing.T) {
	st := testStore()
	push, _ := st.CreateTemplate("Push Day", nil)
	pull, _ := st.CreateTemplate("Pull Day", nil)

	mustCreateSession(t, st, push.ID, time.Now())
	mustCreateSession(t, st, push.ID, time.Now().Add(24*time.Hour))
	keep := mustCreateSession(t, st, pull.ID, time.Now())

	if err := st.DeleteTemplate(push.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	sessions := st.ListSessions()
	if len(sessions) != 1 || sessions[0].ID != keep.ID {
		t.Errorf("sessions after cascade = %d, want only the Pull Day one", len(sessions))
	}
	if err := st.DeleteTemplate(push.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

// TestExerciseLibraryCaseInsensitive verifies that get-or-create matches
// names regardless of case and keeps the first spelling.
func TestExerciseLibraryCaseInsensitive(t *testing.T) {
	st := testStore()

	first, err := st.GetOrCreateExerciseByName("Bench Press")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := st.GetOrCreateExerciseByName("bench press")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("case variants created two library items")
	}
	if second.Name != "Bench Press" {
		t.Errorf("name = %q, want first spelling kept", second.Name)
	}
	if got := len(st.ListExercises()); got != 1 {
		t.Errorf("library size = %d, want 1", got)
	}

	if _, ok := st.FindExerciseByName("BENCH PRESS"); !ok {
		t.Error("FindExerciseByName should be case-insensitive")
	}
	if _, ok := st.FindExerciseByName("Squat"); ok {
		t.Error("FindExerciseByName must not create entries")
	}
}

// TestExerciseNotes covers set, read, and not-found behavior.
func TestExerciseNotes(t *testing.T) {
	st := testStore()
	item, _ := st.GetOrCreateExerciseByName("Squat")

	if got := st.GetExerciseNotes(item.ID); got != "" {
		t.Errorf("fresh notes = %q, want empty", got)
	}
	if err := st.UpdateExerciseNotes(item.ID, "knees out"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := st.GetExerciseNotes(item.ID); got != "knees out" {
		t.Errorf("notes = %q", got)
	}
	if err := st.UpdateExerciseNotes(uuid.New(), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown exercise: err = %v, want ErrNotFound", err)
	}
	if got := st.GetExerciseNotes(uuid.New()); got != "" {
		t.Errorf("unknown exercise notes = %q, want empty", got)
	}
}

// TestDeleteExerciseCascades verifies that deleting a library item
// removes it from template slots and session entries.
func TestDeleteExerciseCascades(t *testing.T) {
	st := testStore()
	bench, _ := st.GetOrCreateExerciseByName("Bench Press")
	dips, _ := st.GetOrCreateExerciseByName("Dips")

	tmpl, _ := st.CreateTemplate("Push Day", []models.ExerciseTemplate{
		{ID: uuid.New(), ExerciseID: bench.ID, Name: bench.Name},
		{ID: uuid.New(), ExerciseID: dips.ID, Name: dips.Name},
	})

	sess := models.WorkoutSession{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		Date:       time.Now(),
		Exercises: []models.Exercise{
			{ID: uuid.New(), ExerciseID: bench.ID, Name: bench.Name, Form: models.FormGood,
				Sets: []models.ExerciseSet{{ID: uuid.New(), Reps: 8, Weight: 60}}},
			{ID: uuid.New(), ExerciseID: dips.ID, Name: dips.Name, Form: models.FormGood,
				Sets: []models.ExerciseSet{{ID: uuid.New(), Reps: 10}}},
		},
	}
	if err := st.CreateSession(sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := st.DeleteExercise(bench.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tmpl, _ = st.FindTemplate(tmpl.ID)
	if len(tmpl.Exercises) != 1 || tmpl.Exercises[0].ExerciseID != dips.ID {
		t.Errorf("template slots after cascade = %+v", tmpl.Exercises)
	}
	got := st.ListSessions()[0]
	if len(got.Exercises) != 1 || got.Exercises[0].ExerciseID != dips.ID {
		t.Errorf("session exercises after cascade = %+v", got.Exercises)
	}
	if _, ok := st.FindExerciseByName("Bench Press"); ok {
		t.Error("library item still present")
	}
}

// TestSessionsForExercise verifies cross-template lookup sorted oldest
// first.
func TestSessionsForExercise(t *testing.T) {
	st := testStore()
	bench, _ := st.GetOrCreateExerciseByName("Bench Press")
	push, _ := st.CreateTemplate("Push Day", nil)
	full, _ := st.CreateTemplate("Full Body", nil)

	day := func(d int) time.Time { return time.Date(2025, 1, d, 18, 30, 0, 0, time.UTC) }
	newer := benchSession(push.ID, bench.ID, day(20), 62.5)
	older := benchSession(full.ID, bench.ID, day(10), 60)
	st.CreateSession(newer)
	st.CreateSession(older)
	st.CreateSession(models.WorkoutSession{ID: uuid.New(), TemplateID: push.ID, Date: day(15)})

	got := st.SessionsForExercise(bench.ID)
	if len(got) != 2 {
		t.Fatalf("sessions = %d, want 2", len(got))
	}
	if got[0].ID != older.ID || got[1].ID != newer.ID {
		t.Error("sessions not sorted oldest first")
	}
}

// TestExerciseProgress verifies top weight, total reps, and volume per
// session, ordered by date.
func TestExerciseProgress(t *testing.T) {
	st := testStore()
	bench, _ := st.GetOrCreateExerciseByName("Bench Press")
	tmpl, _ := st.CreateTemplate("Push Day", nil)

	sess := models.WorkoutSession{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		Date:       time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC),
		Exercises: []models.Exercise{{
			ID: uuid.New(), ExerciseID: bench.ID, Name: bench.Name, Form: models.FormGood,
			Sets: []models.ExerciseSet{
				{ID: uuid.New(), Reps: 8, Weight: 60},
				{ID: uuid.New(), Reps: 6, Weight: 62.5},
			},
		}},
	}
	st.CreateSession(sess)

	points := st.ExerciseProgress(bench.ID)
	if len(points) != 1 {
		t.Fatalf("points = %d, want 1", len(points))
	}
	p := points[0]
	if p.TopWeight != 62.5 {
		t.Errorf("topWeight = %v, want 62.5", p.TopWeight)
	}
	if p.TotalReps != 14 {
		t.Errorf("totalReps = %d, want 14", p.TotalReps)
	}
	if want := 8*60.0 + 6*62.5; p.Volume != want {
		t.Errorf("volume = %v, want %v", p.Volume, want)
	}
}

// TestImportLogs verifies insertion order and newest-first querying with
// a limit.
func TestImportLogs(t *testing.T) {
	st := testStore()
	for _, src := range []string{"http", "cli", "mcp"} {
		if _, err := st.InsertImportLog(ImportLog{Source: src, Status: "success"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	logs := st.QueryImportLogs(2)
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
	if logs[0].Source != "mcp" || logs[1].Source != "cli" {
		t.Errorf("order = %s,%s, want newest first", logs[0].Source, logs[1].Source)
	}
	if logs[0].ID <= logs[1].ID {
		t.Errorf("IDs not increasing: %d then %d", logs[1].ID, logs[0].ID)
	}
	if logs[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted")
	}
}

func mustCreateSession(t *testing.T, st *Store, templateID uuid.UUID, date time.Time) models.WorkoutSession {
	t.Helper()
	s := models.WorkoutSession{ID: uuid.New(), TemplateID: templateID, Date: date}
	if err := st.CreateSession(s); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func benchSession(templateID, exerciseID uuid.UUID, date time.Time, weight float64) models.WorkoutSession {
	return models.WorkoutSession{
		ID:         uuid.New(),
		TemplateID: templateID,
		Date:       date,
		Exercises: []models.Exercise{{
			ID: uuid.New(), ExerciseID: exerciseID, Name: "Bench Press", Form: models.FormGood,
			Sets: []models.ExerciseSet{{ID: uuid.New(), Reps: 5, Weight: weight}},
		}},
	}
}
