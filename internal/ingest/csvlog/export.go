package csvlog

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/MWood1988/TrainingLog/internal/models"
	"github.com/google/uuid"
)

// exportHeader is the ordered column layout; the parser accepts this and
// the legacy layout without the Exercise Order column.
const exportHeader = "Date,Time,Workout Template,Exercise,Exercise Order,Set Number,Reps,Weight (kg),Form,Notes"

// ExportStore is the read-side contract the exporter needs.
type ExportStore interface {
	ListTemplates() []models.WorkoutTemplate
	ListSessions() []models.WorkoutSession
	GetExerciseNotes(exerciseID uuid.UUID) string
}

// Export flattens the store's sessions into the ordered CSV layout, one
// line per set, sessions oldest first. The output round-trips through
// Parse and Reconcile as a pure no-op.
func Export(st ExportStore, w io.Writer) error {
	templateNames := make(map[uuid.UUID]string)
	for _, t := range st.ListTemplates() {
		templateNames[t.ID] = t.Name
	}

	sessions := st.ListSessions()
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Date.Before(sessions[j].Date) })

	var b strings.Builder
	b.WriteString(exportHeader)
	b.WriteByte('\n')

	for _, sess := range sessions {
		date := sess.Date.Format("2006-01-02")
		clock := sess.Date.Format("15:04")
		tmplName := templateNames[sess.TemplateID]

		for exIdx, ex := range sess.Exercises {
			notes := st.GetExerciseNotes(ex.ExerciseID)
			for setIdx, set := range ex.Sets {
				fields := []string{
					date,
					clock,
					quoteField(tmplName),
					quoteField(ex.Name),
					strconv.Itoa(exIdx + 1),
					strconv.Itoa(setIdx + 1),
					strconv.Itoa(set.Reps),
					formatWeight(set.Weight),
					string(ex.Form),
					quoteField(notes),
				}
				b.WriteString(strings.Join(fields, ","))
				b.WriteByte('\n')
			}
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
