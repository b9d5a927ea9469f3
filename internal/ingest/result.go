package ingest

// Result holds the outcome of an import operation.
type Result struct {
	RowsImported     int `json:"rows_imported"`
	RowsSkipped      int `json:"rows_skipped"`
	SessionsAffected int `json:"sessions_affected"`

	Message string `json:"message,omitempty"`
}
