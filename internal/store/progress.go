package store

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ProgressPoint is one session's worth of history for a single exercise,
// the data behind a progressive-overload chart.
type ProgressPoint struct {
	SessionID uuid.UUID `json:"session_id"`
	Date      time.Time `json:"date"`
	TopWeight float64   `json:"top_weight"` // heaviest set, kg
	TotalReps int       `json:"total_reps"`
	Volume    float64   `json:"volume"` // sum of reps*weight, kg
}

// ExerciseProgress returns one point per session containing the given
// library exercise, oldest first.
func (st *Store) ExerciseProgress(exerciseID uuid.UUID) []ProgressPoint {
	st.mu.Lock()
	defer st.mu.Unlock()

	var points []ProgressPoint
	for i := range st.sessions {
		ex := st.sessions[i].FindExercise(exerciseID)
		if ex == nil {
			continue
		}
		p := ProgressPoint{SessionID: st.sessions[i].ID, Date: st.sessions[i].Date}
		for _, set := range ex.Sets {
			if set.Weight > p.TopWeight {
				p.TopWeight = set.Weight
			}
			p.TotalReps += set.Reps
			p.Volume += float64(set.Reps) * set.Weight
		}
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}
