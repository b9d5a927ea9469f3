package store

import (
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/MWood1988/TrainingLog/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when an update or delete targets an entity that
// is not in the store.
var ErrNotFound = errors.New("store: not found")

// Store holds the whole dataset in memory and writes every mutation
// through to a SQLite snapshot synchronously. The dataset is single-user;
// the mutex only guards against overlapping HTTP requests.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	log *slog.Logger

	templates  []models.WorkoutTemplate
	sessions   []models.WorkoutSession
	library    []models.ExerciseLibraryItem
	importLogs []ImportLog
	nextLogID  int64
}

// NewMemory creates a store with no backing database. Mutations stay in
// memory; used by tests and dry-run imports.
func NewMemory(log *slog.Logger) *Store {
	return &Store{log: log, nextLogID: 1}
}

// ListTemplates returns all workout templates.
func (st *Store) ListTemplates() []models.WorkoutTemplate {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]models.WorkoutTemplate(nil), st.templates...)
}

// FindTemplate returns the template with the given ID.
func (st *Store) FindTemplate(id uuid.UUID) (models.WorkoutTemplate, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, t := range st.templates {
		if t.ID == id {
			return t, true
		}
	}
	return models.WorkoutTemplate{}, false
}

// FindTemplateByName returns the first template whose name matches
// exactly. Template name is the join key used during CSV import; two
// stored templates with the same name conflate to the first one listed.
func (st *Store) FindTemplateByName(name string) (models.WorkoutTemplate, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, t := range st.templates {
		if t.Name == name {
			return t, true
		}
	}
	return models.WorkoutTemplate{}, false
}

// CreateTemplate creates a new template with the given name and exercise
// slots and persists it.
func (st *Store) CreateTemplate(name string, exercises []models.ExerciseTemplate) (models.WorkoutTemplate, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	t := models.WorkoutTemplate{ID: uuid.New(), Name: name, Exercises: exercises}
	st.templates = append(st.templates, t)
	if err := st.persistTemplate(t); err != nil {
		return models.WorkoutTemplate{}, err
	}
	return t, nil
}

// UpdateTemplate replaces the stored template with the same ID.
func (st *Store) UpdateTemplate(t models.WorkoutTemplate) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.templates {
		if st.templates[i].ID == t.ID {
			st.templates[i] = t
			return st.persistTemplate(t)
		}
	}
	return ErrNotFound
}

// DeleteTemplate removes a template and all sessions logged against it.
func (st *Store) DeleteTemplate(id uuid.UUID) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	idx := -1
	for i := range st.templates {
		if st.templates[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	st.templates = append(st.templates[:idx], st.templates[idx+1:]...)
	if err := st.deleteRow("templates", id.String()); err != nil {
		return err
	}

	kept := st.sessions[:0]
	for _, s := range st.sessions {
		if s.TemplateID != id {
			kept = append(kept, s)
			continue
		}
		if err := st.deleteRow("sessions", s.ID.String()); err != nil {
			return err
		}
	}
	st.sessions = kept
	return nil
}

// ListSessions returns all workout sessions.
func (st *Store) ListSessions() []models.WorkoutSession {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]models.WorkoutSession(nil), st.sessions...)
}

// SessionsForTemplate returns the sessions logged against a template,
// oldest first.
func (st *Store) SessionsForTemplate(templateID uuid.UUID) []models.WorkoutSession {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []models.WorkoutSession
	for _, s := range st.sessions {
		if s.TemplateID == templateID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SessionsForExercise returns every session, across all templates, that
// contains the given library exercise, oldest first.
func (st *Store) SessionsForExercise(exerciseID uuid.UUID) []models.WorkoutSession {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []models.WorkoutSession
	for i := range st.sessions {
		if st.sessions[i].FindExercise(exerciseID) != nil {
			out = append(out, st.sessions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// CreateSession adds a new session. The caller supplies the ID.
func (st *Store) CreateSession(s models.WorkoutSession) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	st.sessions = append(st.sessions, s)
	return st.persistSession(s)
}

// UpdateSession replaces the stored session with the same ID.
func (st *Store) UpdateSession(s models.WorkoutSession) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.sessions {
		if st.sessions[i].ID == s.ID {
			st.sessions[i] = s
			return st.persistSession(s)
		}
	}
	return ErrNotFound
}

// DeleteSession removes a single session.
func (st *Store) DeleteSession(id uuid.UUID) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.sessions {
		if st.sessions[i].ID == id {
			st.sessions = append(st.sessions[:i], st.sessions[i+1:]...)
			return st.deleteRow("sessions", id.String())
		}
	}
	return ErrNotFound
}

// ListExercises returns the exercise library.
func (st *Store) ListExercises() []models.ExerciseLibraryItem {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]models.ExerciseLibraryItem(nil), st.library...)
}

// FindExerciseByName returns the library item whose name matches
// case-insensitively, without creating one.
func (st *Store) FindExerciseByName(name string) (models.ExerciseLibraryItem, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.findExerciseByNameLocked(name)
}

func (st *Store) findExerciseByNameLocked(name string) (models.ExerciseLibraryItem, bool) {
	for _, e := range st.library {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return models.ExerciseLibraryItem{}, false
}

// GetOrCreateExerciseByName returns the library item for the given name,
// creating it (with empty notes) on first reference. Lookup is
// case-insensitive so "bench press" and "Bench Press" share one entry.
func (st *Store) GetOrCreateExerciseByName(name string) (models.ExerciseLibraryItem, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if e, ok := st.findExerciseByNameLocked(name); ok {
		return e, nil
	}
	e := models.ExerciseLibraryItem{ID: uuid.New(), Name: name}
	st.library = append(st.library, e)
	if err := st.persistExercise(e); err != nil {
		return models.ExerciseLibraryItem{}, err
	}
	return e, nil
}

// UpdateExerciseNotes replaces the notes on a library item.
func (st *Store) UpdateExerciseNotes(exerciseID uuid.UUID, notes string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.library {
		if st.library[i].ID == exerciseID {
			st.library[i].Notes = notes
			return st.persistExercise(st.library[i])
		}
	}
	return ErrNotFound
}

// GetExerciseNotes returns the notes for a library item, or "" if the
// item does not exist.
func (st *Store) GetExerciseNotes(exerciseID uuid.UUID) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, e := range st.library {
		if e.ID == exerciseID {
			return e.Notes
		}
	}
	return ""
}

// DeleteExercise removes a library item and cascades: the exercise is
// dropped from every template and every session that references it.
func (st *Store) DeleteExercise(exerciseID uuid.UUID) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	idx := -1
	for i := range st.library {
		if st.library[i].ID == exerciseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	st.library = append(st.library[:idx], st.library[idx+1:]...)
	if err := st.deleteRow("exercises", exerciseID.String()); err != nil {
		return err
	}

	for i := range st.templates {
		kept := st.templates[i].Exercises[:0]
		changed := false
		for _, e := range st.templates[i].Exercises {
			if e.ExerciseID == exerciseID {
				changed = true
				continue
			}
			kept = append(kept, e)
		}
		if changed {
			st.templates[i].Exercises = kept
			if err := st.persistTemplate(st.templates[i]); err != nil {
				return err
			}
		}
	}

	for i := range st.sessions {
		kept := st.sessions[i].Exercises[:0]
		changed := false
		for _, e := range st.sessions[i].Exercises {
			if e.ExerciseID == exerciseID {
				changed = true
				continue
			}
			kept = append(kept, e)
		}
		if changed {
			st.sessions[i].Exercises = kept
			if err := st.persistSession(st.sessions[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
