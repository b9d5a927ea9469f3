package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MWood1988/TrainingLog/internal/ingest/csvlog"
	"github.com/MWood1988/TrainingLog/internal/models"
	"github.com/MWood1988/TrainingLog/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := s.csv.Ingest(r.Context(), r.Body)

	logEntry := store.ImportLog{Source: "http", Status: "success"}
	if err != nil {
		logEntry.Status = "error"
		logEntry.ErrorMessage = err.Error()
	} else {
		logEntry.RowsImported = result.RowsImported
		logEntry.RowsSkipped = result.RowsSkipped
		logEntry.SessionsAffected = result.SessionsAffected
	}
	logEntry.DurationMs = int(time.Since(start).Milliseconds())
	if _, logErr := s.store.InsertImportLog(logEntry); logErr != nil {
		s.log.Error("recording import log", "error", logErr)
	}

	if err != nil {
		s.log.Error("csv import failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="traininglog.csv"`)
	if err := csvlog.Export(s.store, w); err != nil {
		s.log.Error("csv export failed", "error", err)
	}
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListTemplates())
}

func (s *Server) handleTemplateSessions(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template id"})
		return
	}
	writeJSON(w, http.StatusOK, s.store.SessionsForTemplate(id))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListSessions())
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListExercises())
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("exercise")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}
	item, ok := s.store.FindExerciseByName(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown exercise"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exercise": item,
		"points":   s.store.ExerciseProgress(item.ID),
	})
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.QueryImportLogs(50))
}

// createTemplateRequest names exercises by library name; unknown names
// are created in the library on the fly.
type createTemplateRequest struct {
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	var slots []models.ExerciseTemplate
	for _, exName := range req.Exercises {
		item, err := s.store.GetOrCreateExerciseByName(exName)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		slots = append(slots, models.ExerciseTemplate{
			ID:         uuid.New(),
			ExerciseID: item.ID,
			Name:       item.Name,
		})
	}

	tmpl, err := s.store.CreateTemplate(req.Name, slots)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

// createSessionRequest logs a workout without going through CSV.
type createSessionRequest struct {
	TemplateID uuid.UUID `json:"template_id"`
	Date       time.Time `json:"date"`
	Exercises  []struct {
		Exercise string `json:"exercise"`
		Form     string `json:"form"`
		Sets     []struct {
			Reps   int     `json:"reps"`
			Weight float64 `json:"weight"`
		} `json:"sets"`
	} `json:"exercises"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if _, ok := s.store.FindTemplate(req.TemplateID); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown template"})
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now().Truncate(time.Minute)
	}

	sess := models.WorkoutSession{
		ID:         uuid.New(),
		TemplateID: req.TemplateID,
		Date:       req.Date.Truncate(time.Minute),
	}
	for _, ex := range req.Exercises {
		item, err := s.store.GetOrCreateExerciseByName(ex.Exercise)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		entry := models.Exercise{
			ID:         uuid.New(),
			ExerciseID: item.ID,
			Name:       item.Name,
			Form:       models.ParseForm(ex.Form),
		}
		for _, set := range ex.Sets {
			entry.Sets = append(entry.Sets, models.ExerciseSet{ID: uuid.New(), Reps: set.Reps, Weight: set.Weight})
		}
		sess.Exercises = append(sess.Exercises, entry)
	}

	if err := s.store.CreateSession(sess); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise id"})
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.store.UpdateExerciseNotes(id, req.Notes); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise id"})
		return
	}
	if err := s.store.DeleteExercise(id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}
	if err := s.store.DeleteSession(id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
