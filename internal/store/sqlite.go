package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/MWood1988/TrainingLog/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// sessionDateLayout is how session timestamps are stored in the snapshot.
// Minute precision is all the data model carries.
const sessionDateLayout = time.RFC3339

// RunMigrations applies all pending schema migrations to the snapshot
// database at the given path, creating the file if needed.
func RunMigrations(dbPath string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Open opens the snapshot database and loads the full dataset into
// memory. Every later mutation is written back synchronously.
func Open(dbPath string, log *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}

	st := &Store{db: db, log: log, nextLogID: 1}
	if err := st.loadAll(); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// Detach disconnects the snapshot database. Further mutations stay in
// memory only; used by dry-run imports.
func (st *Store) Detach() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.db != nil {
		st.db.Close()
		st.db = nil
	}
}

// Close closes the snapshot database.
func (st *Store) Close() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.db == nil {
		return nil
	}
	err := st.db.Close()
	st.db = nil
	return err
}

func (st *Store) loadAll() error {
	if err := st.loadExercises(); err != nil {
		return err
	}
	if err := st.loadTemplates(); err != nil {
		return err
	}
	if err := st.loadSessions(); err != nil {
		return err
	}
	if err := st.loadImportLogs(); err != nil {
		return err
	}
	st.log.Info("snapshot loaded",
		"templates", len(st.templates),
		"sessions", len(st.sessions),
		"exercises", len(st.library),
	)
	return nil
}

func (st *Store) loadExercises() error {
	rows, err := st.db.Query(`SELECT id, name, notes FROM exercises ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("loading exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idStr string
		var e models.ExerciseLibraryItem
		if err := rows.Scan(&idStr, &e.Name, &e.Notes); err != nil {
			return fmt.Errorf("scanning exercise: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("exercise id %q: %w", idStr, err)
		}
		e.ID = id
		st.library = append(st.library, e)
	}
	return rows.Err()
}

func (st *Store) loadTemplates() error {
	rows, err := st.db.Query(`SELECT id, name, exercises FROM templates ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idStr, exJSON string
		var t models.WorkoutTemplate
		if err := rows.Scan(&idStr, &t.Name, &exJSON); err != nil {
			return fmt.Errorf("scanning template: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("template id %q: %w", idStr, err)
		}
		t.ID = id
		if err := json.Unmarshal([]byte(exJSON), &t.Exercises); err != nil {
			return fmt.Errorf("template %s exercises: %w", idStr, err)
		}
		st.templates = append(st.templates, t)
	}
	return rows.Err()
}

func (st *Store) loadSessions() error {
	rows, err := st.db.Query(`SELECT id, template_id, date, exercises FROM sessions ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idStr, tmplStr, dateStr, exJSON string
		var s models.WorkoutSession
		if err := rows.Scan(&idStr, &tmplStr, &dateStr, &exJSON); err != nil {
			return fmt.Errorf("scanning session: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("session id %q: %w", idStr, err)
		}
		tmplID, err := uuid.Parse(tmplStr)
		if err != nil {
			return fmt.Errorf("session %s template id %q: %w", idStr, tmplStr, err)
		}
		date, err := time.Parse(sessionDateLayout, dateStr)
		if err != nil {
			return fmt.Errorf("session %s date %q: %w", idStr, dateStr, err)
		}
		s.ID = id
		s.TemplateID = tmplID
		s.Date = date
		if err := json.Unmarshal([]byte(exJSON), &s.Exercises); err != nil {
			return fmt.Errorf("session %s exercises: %w", idStr, err)
		}
		st.sessions = append(st.sessions, s)
	}
	return rows.Err()
}

// persistTemplate writes one template row. Callers hold st.mu.
func (st *Store) persistTemplate(t models.WorkoutTemplate) error {
	if st.db == nil {
		return nil
	}
	exJSON, err := json.Marshal(t.Exercises)
	if err != nil {
		return fmt.Errorf("encoding template exercises: %w", err)
	}
	_, err = st.db.Exec(
		`INSERT OR REPLACE INTO templates (id, name, exercises) VALUES (?, ?, ?)`,
		t.ID.String(), t.Name, string(exJSON),
	)
	if err != nil {
		return fmt.Errorf("persisting template %s: %w", t.ID, err)
	}
	return nil
}

// persistSession writes one session row. Callers hold st.mu.
func (st *Store) persistSession(s models.WorkoutSession) error {
	if st.db == nil {
		return nil
	}
	exJSON, err := json.Marshal(s.Exercises)
	if err != nil {
		return fmt.Errorf("encoding session exercises: %w", err)
	}
	_, err = st.db.Exec(
		`INSERT OR REPLACE INTO sessions (id, template_id, date, exercises) VALUES (?, ?, ?, ?)`,
		s.ID.String(), s.TemplateID.String(), s.Date.Format(sessionDateLayout), string(exJSON),
	)
	if err != nil {
		return fmt.Errorf("persisting session %s: %w", s.ID, err)
	}
	return nil
}

// persistExercise writes one library row. Callers hold st.mu.
func (st *Store) persistExercise(e models.ExerciseLibraryItem) error {
	if st.db == nil {
		return nil
	}
	_, err := st.db.Exec(
		`INSERT OR REPLACE INTO exercises (id, name, notes) VALUES (?, ?, ?)`,
		e.ID.String(), e.Name, e.Notes,
	)
	if err != nil {
		return fmt.Errorf("persisting exercise %s: %w", e.ID, err)
	}
	return nil
}

// deleteRow removes one row by primary key. Callers hold st.mu.
func (st *Store) deleteRow(table, id string) error {
	if st.db == nil {
		return nil
	}
	_, err := st.db.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	return nil
}
