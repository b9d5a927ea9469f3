package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MWood1988/TrainingLog/internal/models"
	"github.com/MWood1988/TrainingLog/internal/store"
)

// --- Tool definitions ---

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List all workout templates with their ordered exercise lists."),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Query logged workout sessions. Returns sessions with exercises, sets (reps/weight), and form ratings."),
	mcp.WithString("template", mcp.Description("Filter by template name (exact match)")),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to now.")),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Per-session progress for one exercise across all templates: top-set weight, total reps, and volume per session date."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive)")),
)

var toolImportCSV = mcp.NewTool("import_csv",
	mcp.WithDescription("Import a workout-log CSV export. Duplicate rows are skipped; returns rows imported, rows skipped, and sessions affected."),
	mcp.WithString("csv", mcp.Required(), mcp.Description("Full CSV file content including the header line")),
)

// --- Tool handlers ---

func (h *handlers) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(h.store.ListTemplates())
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := dateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	templateFilter := req.GetString("template", "")

	templateNames := make(map[string]string)
	for _, t := range h.store.ListTemplates() {
		templateNames[t.ID.String()] = t.Name
	}

	var out []models.WorkoutSession
	for _, sess := range h.store.ListSessions() {
		if sess.Date.Before(start) || sess.Date.After(end) {
			continue
		}
		if templateFilter != "" && templateNames[sess.TemplateID.String()] != templateFilter {
			continue
		}
		out = append(out, sess)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	item, ok := h.store.FindExerciseByName(name)
	if !ok {
		return mcp.NewToolResultError("unknown exercise: " + name), nil
	}
	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": item,
		"points":   h.store.ExerciseProgress(item.ID),
	})
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) importCSV(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("csv")
	if err != nil {
		return mcp.NewToolResultError("csv parameter is required"), nil
	}

	startedAt := time.Now()
	res, err := h.csv.Ingest(ctx, strings.NewReader(content))

	logEntry := store.ImportLog{Source: "mcp", Status: "success"}
	if err != nil {
		logEntry.Status = "error"
		logEntry.ErrorMessage = err.Error()
	} else {
		logEntry.RowsImported = res.RowsImported
		logEntry.RowsSkipped = res.RowsSkipped
		logEntry.SessionsAffected = res.SessionsAffected
	}
	logEntry.DurationMs = int(time.Since(startedAt).Milliseconds())
	if _, logErr := h.store.InsertImportLog(logEntry); logErr != nil {
		h.log.Error("mcp import_csv: recording import log", "error", logErr)
	}

	if err != nil {
		h.log.Error("mcp import_csv", "error", err)
		return mcp.NewToolResultError("import failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

// dateRange parses optional YYYY-MM-DD bounds, defaulting to the last
// 30 days.
func dateRange(startStr, endStr string) (time.Time, time.Time, error) {
	end := time.Now()
	if endStr != "" {
		t, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t.AddDate(0, 0, 1) // inclusive end date
	}
	start := end.AddDate(0, 0, -30)
	if startStr != "" {
		t, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	return start, end, nil
}
