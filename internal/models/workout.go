package models

import (
	"time"

	"github.com/google/uuid"
)

// Form is the qualitative rating of how an exercise was performed.
type Form string

const (
	FormMeh     Form = "Meh"
	FormGood    Form = "Good"
	FormPerfect Form = "Perfect"
)

// ParseForm maps a free-text form value onto the enum.
// Unknown or empty values fall back to FormGood.
func ParseForm(s string) Form {
	switch Form(s) {
	case FormMeh, FormGood, FormPerfect:
		return Form(s)
	}
	return FormGood
}

// ExerciseLibraryItem is a named exercise shared across templates and
// sessions. Notes hold free-form instructions for the exercise.
type ExerciseLibraryItem struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Notes string    `json:"notes"`
}

// ExerciseTemplate is one slot in a workout template. Name is a display
// copy taken from the library item when the slot was added; it is allowed
// to drift if the library item is later renamed.
type ExerciseTemplate struct {
	ID         uuid.UUID `json:"id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	Name       string    `json:"name"`
}

// WorkoutTemplate is a named, ordered list of exercises to perform.
type WorkoutTemplate struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Exercises []ExerciseTemplate `json:"exercises"`
}

// HasExercise reports whether the template already references the given
// library exercise.
func (t *WorkoutTemplate) HasExercise(exerciseID uuid.UUID) bool {
	for _, e := range t.Exercises {
		if e.ExerciseID == exerciseID {
			return true
		}
	}
	return false
}

// ExerciseSet is a single logged set. Position within the exercise's set
// list encodes the 1-based set number.
type ExerciseSet struct {
	ID     uuid.UUID `json:"id"`
	Reps   int       `json:"reps"`
	Weight float64   `json:"weight"` // kilograms
}

// Exercise is a session-scoped instance of a library exercise with its
// logged sets.
type Exercise struct {
	ID         uuid.UUID     `json:"id"`
	ExerciseID uuid.UUID     `json:"exercise_id"`
	Name       string        `json:"name"`
	Sets       []ExerciseSet `json:"sets"`
	Form       Form          `json:"form"`
}

// WorkoutSession is one logged workout against a template. Exercise order
// is significant and preserved.
type WorkoutSession struct {
	ID         uuid.UUID  `json:"id"`
	TemplateID uuid.UUID  `json:"template_id"`
	Date       time.Time  `json:"date"`
	Exercises  []Exercise `json:"exercises"`
}

// FindExercise returns a pointer to the session's entry for the given
// library exercise, or nil if the session has none. A session holds at
// most one entry per library exercise.
func (s *WorkoutSession) FindExercise(exerciseID uuid.UUID) *Exercise {
	for i := range s.Exercises {
		if s.Exercises[i].ExerciseID == exerciseID {
			return &s.Exercises[i]
		}
	}
	return nil
}
