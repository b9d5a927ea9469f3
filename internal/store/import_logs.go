package store

import (
	"fmt"
	"time"
)

// ImportLog records the outcome of one CSV import run.
type ImportLog struct {
	ID               int64     `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"` // "http", "cli", "mcp"
	Status           string    `json:"status"` // "success" or "error"
	RowsImported     int       `json:"rows_imported"`
	RowsSkipped      int       `json:"rows_skipped"`
	SessionsAffected int       `json:"sessions_affected"`
	DurationMs       int       `json:"duration_ms"`
	ErrorMessage     string    `json:"error_message,omitempty"`
}

// InsertImportLog records an import run and returns its ID.
func (st *Store) InsertImportLog(l ImportLog) (int64, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	l.ID = st.nextLogID
	st.nextLogID++
	st.importLogs = append(st.importLogs, l)

	if st.db == nil {
		return l.ID, nil
	}
	res, err := st.db.Exec(
		`INSERT INTO import_logs (created_at, source, status, rows_imported, rows_skipped,
		 sessions_affected, duration_ms, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.CreatedAt.Format(time.RFC3339), l.Source, l.Status,
		l.RowsImported, l.RowsSkipped, l.SessionsAffected, l.DurationMs, l.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		l.ID = id
		st.importLogs[len(st.importLogs)-1].ID = id
		st.nextLogID = id + 1
	}
	return l.ID, nil
}

// QueryImportLogs returns the most recent import runs, newest first.
func (st *Store) QueryImportLogs(limit int) []ImportLog {
	st.mu.Lock()
	defer st.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	n := len(st.importLogs)
	out := make([]ImportLog, 0, min(limit, n))
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, st.importLogs[i])
	}
	return out
}

func (st *Store) loadImportLogs() error {
	rows, err := st.db.Query(
		`SELECT id, created_at, source, status, rows_imported, rows_skipped,
		 sessions_affected, COALESCE(duration_ms, 0), COALESCE(error_message, '')
		 FROM import_logs ORDER BY id`)
	if err != nil {
		return fmt.Errorf("loading import logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l ImportLog
		var createdAt string
		if err := rows.Scan(&l.ID, &createdAt, &l.Source, &l.Status,
			&l.RowsImported, &l.RowsSkipped, &l.SessionsAffected,
			&l.DurationMs, &l.ErrorMessage); err != nil {
			return fmt.Errorf("scanning import log: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			l.CreatedAt = t
		}
		st.importLogs = append(st.importLogs, l)
		if l.ID >= st.nextLogID {
			st.nextLogID = l.ID + 1
		}
	}
	return rows.Err()
}
