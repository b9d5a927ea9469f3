package csvlog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/MWood1988/TrainingLog/internal/ingest"
	"github.com/MWood1988/TrainingLog/internal/models"
	"github.com/google/uuid"
)

// sessionMergeWindow is how close an existing session's timestamp must be
// to a file row's timestamp for the row to merge into that session
// instead of creating a new one. Fixed heuristic; two genuinely distinct
// workouts less than a minute apart against the same template will merge.
const sessionMergeWindow = 60 * time.Second

// Store is the repository contract the reconciler needs. *store.Store
// satisfies it; tests may substitute a memory-only instance.
type Store interface {
	ListTemplates() []models.WorkoutTemplate
	FindTemplateByName(name string) (models.WorkoutTemplate, bool)
	CreateTemplate(name string, exercises []models.ExerciseTemplate) (models.WorkoutTemplate, error)
	UpdateTemplate(t models.WorkoutTemplate) error
	ListSessions() []models.WorkoutSession
	CreateSession(s models.WorkoutSession) error
	UpdateSession(s models.WorkoutSession) error
	GetOrCreateExerciseByName(name string) (models.ExerciseLibraryItem, error)
	UpdateExerciseNotes(exerciseID uuid.UUID, notes string) error
	GetExerciseNotes(exerciseID uuid.UUID) string
}

// identity is the duplicate-detection key: two rows with equal identity
// are the same logged set. Notes and exercise order are deliberately
// excluded — rows differing only there are still duplicates.
type identity struct {
	minute     int64 // unix time truncated to the minute
	template   string
	exercise   string
	setNumber  int
	reps       int
	weightDeci int64 // weight rounded to 1 decimal, scaled by 10
	form       models.Form
}

// identityKey computes the identity tuple for one logged set. Weight is
// compared at 1-decimal granularity via integer scaling to avoid
// floating-point equality pitfalls.
func identityKey(date time.Time, template, exercise string, setNumber, reps int, weight float64, form models.Form) identity {
	return identity{
		minute:     date.Truncate(time.Minute).Unix(),
		template:   template,
		exercise:   exercise,
		setNumber:  setNumber,
		reps:       reps,
		weightDeci: int64(math.Round(weight * 10)),
		form:       form,
	}
}

// group is one exercise's accepted rows within a session bucket, in file
// order.
type group struct {
	key  string // exercise name
	rows []Row
}

// groupRows groups items by key while preserving first-occurrence order
// of both groups and members. Two import paths (legacy and ordered
// layouts) rely on this stability.
func groupRows(rows []Row, key func(Row) string) []group {
	index := make(map[string]int)
	var groups []group
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	return groups
}

// bucketKey identifies a logical session within a file: same template,
// same minute.
type bucketKey struct {
	minute   int64
	template string
}

// Reconcile merges parsed CSV rows into the store. Re-importing the same
// file is a no-op beyond the first run: rows already present (in the
// store or earlier in the same file) are counted as skipped, survivors
// are grouped into sessions and applied as creates or merges.
func Reconcile(ctx context.Context, st Store, rows []Row, log *slog.Logger) (*ingest.Result, error) {
	result := &ingest.Result{}
	if len(rows) == 0 {
		return result, nil
	}

	// Existing identities: every set of every session already stored.
	templateNames := make(map[uuid.UUID]string)
	for _, t := range st.ListTemplates() {
		templateNames[t.ID] = t.Name
	}
	seen := make(map[identity]struct{})
	for _, sess := range st.ListSessions() {
		tmplName := templateNames[sess.TemplateID]
		for _, ex := range sess.Exercises {
			for i, set := range ex.Sets {
				k := identityKey(sess.Date, tmplName, ex.Name, i+1, set.Reps, set.Weight, ex.Form)
				seen[k] = struct{}{}
			}
		}
	}

	// Dedup pass: first occurrence wins, within the file too. Notes are
	// tracked across all rows (skipped included) so a notes-only change
	// still reaches the library.
	var accepted []Row
	pendingNotes := make(map[string]string)
	var noteOrder []string
	for _, r := range rows {
		if r.Notes != "" {
			if _, ok := pendingNotes[r.Exercise]; !ok {
				noteOrder = append(noteOrder, r.Exercise)
			}
			pendingNotes[r.Exercise] = r.Notes
		}
		k := identityKey(r.Date, r.Template, r.Exercise, r.SetNumber, r.Reps, r.Weight, models.ParseForm(r.Form))
		if _, dup := seen[k]; dup {
			result.RowsSkipped++
			continue
		}
		seen[k] = struct{}{}
		accepted = append(accepted, r)
		result.RowsImported++
	}

	// Session buckets: minute + template name, processed in
	// first-appearance order so runs are deterministic.
	buckets := make(map[bucketKey][]Row)
	var bucketOrder []bucketKey
	for _, r := range accepted {
		k := bucketKey{minute: r.Date.Truncate(time.Minute).Unix(), template: r.Template}
		if _, ok := buckets[k]; !ok {
			bucketOrder = append(bucketOrder, k)
		}
		buckets[k] = append(buckets[k], r)
	}

	// Buckets are independent; a cancellation between them leaves the
	// store valid with all buckets applied so far.
	for _, bk := range bucketOrder {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := applyBucket(st, bk, buckets[bk]); err != nil {
			return result, err
		}
		result.SessionsAffected++
	}

	// Apply staged note updates last, resolving by name so exercises
	// whose rows were all skipped still get their notes refreshed.
	for _, name := range noteOrder {
		item, err := st.GetOrCreateExerciseByName(name)
		if err != nil {
			return result, fmt.Errorf("resolving exercise %q for notes: %w", name, err)
		}
		notes := pendingNotes[name]
		if st.GetExerciseNotes(item.ID) == notes {
			continue
		}
		if err := st.UpdateExerciseNotes(item.ID, notes); err != nil {
			return result, fmt.Errorf("updating notes for %q: %w", name, err)
		}
	}

	if log != nil {
		log.Info("csv import reconciled",
			"rows_imported", result.RowsImported,
			"rows_skipped", result.RowsSkipped,
			"sessions_affected", result.SessionsAffected,
		)
	}
	return result, nil
}

// applyBucket merges one logical session's rows into the store: resolves
// or creates the template, finds a session within the merge window or
// creates one, and appends exercises/sets in the right order.
func applyBucket(st Store, bk bucketKey, rows []Row) error {
	bucketDate := time.Unix(bk.minute, 0).UTC()

	tmpl, ok := st.FindTemplateByName(bk.template)
	if !ok {
		var err error
		tmpl, err = st.CreateTemplate(bk.template, nil)
		if err != nil {
			return fmt.Errorf("creating template %q: %w", bk.template, err)
		}
	}

	// Update target: an existing session for this template within the
	// merge window of the bucket's timestamp.
	var target *models.WorkoutSession
	for _, sess := range st.ListSessions() {
		if sess.TemplateID != tmpl.ID {
			continue
		}
		diff := sess.Date.Sub(bucketDate)
		if diff < 0 {
			diff = -diff
		}
		if diff <= sessionMergeWindow {
			s := sess
			target = &s
			break
		}
	}

	updating := target != nil
	if !updating {
		target = &models.WorkoutSession{
			ID:         uuid.New(),
			TemplateID: tmpl.ID,
			Date:       bucketDate,
		}
	}

	groups := groupRows(rows, func(r Row) string { return r.Exercise })

	// Processing order: explicit nonzero ExerciseOrder values ascending;
	// order 0 means "no opinion" and keeps first-occurrence file order
	// after the explicitly ordered groups. The sort is stable so equal
	// keys never reshuffle.
	orderOf := func(g group) int {
		for _, r := range g.rows {
			if r.ExerciseOrder != 0 {
				return r.ExerciseOrder
			}
		}
		return math.MaxInt
	}
	sort.SliceStable(groups, func(i, j int) bool { return orderOf(groups[i]) < orderOf(groups[j]) })

	templateChanged := false
	for _, g := range groups {
		item, err := st.GetOrCreateExerciseByName(g.key)
		if err != nil {
			return fmt.Errorf("resolving exercise %q: %w", g.key, err)
		}

		if !tmpl.HasExercise(item.ID) {
			tmpl.Exercises = append(tmpl.Exercises, models.ExerciseTemplate{
				ID:         uuid.New(),
				ExerciseID: item.ID,
				Name:       item.Name,
			})
			templateChanged = true
		}

		setRows := append([]Row(nil), g.rows...)
		sort.SliceStable(setRows, func(i, j int) bool { return setRows[i].SetNumber < setRows[j].SetNumber })
		sets := make([]models.ExerciseSet, len(setRows))
		for i, r := range setRows {
			sets[i] = models.ExerciseSet{ID: uuid.New(), Reps: r.Reps, Weight: r.Weight}
		}

		if existing := target.FindExercise(item.ID); existing != nil {
			existing.Sets = append(existing.Sets, sets...)
			continue
		}
		target.Exercises = append(target.Exercises, models.Exercise{
			ID:         uuid.New(),
			ExerciseID: item.ID,
			Name:       item.Name,
			Sets:       sets,
			Form:       models.ParseForm(g.rows[0].Form),
		})
	}

	if templateChanged {
		if err := st.UpdateTemplate(tmpl); err != nil {
			return fmt.Errorf("updating template %q: %w", tmpl.Name, err)
		}
	}

	if updating {
		if err := st.UpdateSession(*target); err != nil {
			return fmt.Errorf("updating session %s: %w", target.ID, err)
		}
		return nil
	}
	if err := st.CreateSession(*target); err != nil {
		return fmt.Errorf("creating session %s: %w", target.ID, err)
	}
	return nil
}
