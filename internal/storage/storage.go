package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"agenda/internal/board"
	"agenda/internal/task"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	ddl := []string{`
CREATE TABLE IF NOT EXISTS tasks (
	seq INTEGER NOT NULL,
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	entered_at TEXT NOT NULL,
	recommended TEXT DEFAULT NULL,
	deadline TEXT NOT NULL,
	criticality INTEGER NOT NULL DEFAULT 5,
	state TEXT NOT NULL DEFAULT 'pending',
	category TEXT NOT NULL DEFAULT 'medium'
);`, `
CREATE TABLE IF NOT EXISTS notes (
	seq INTEGER NOT NULL,
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS hobbies (
	seq INTEGER NOT NULL,
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	done INTEGER NOT NULL DEFAULT 0
);`, `
CREATE TABLE IF NOT EXISTS schedule (
	seq INTEGER NOT NULL,
	id TEXT PRIMARY KEY,
	day INTEGER NOT NULL,
	start_at TEXT NOT NULL,
	end_at TEXT NOT NULL,
	activity TEXT NOT NULL,
	kind TEXT NOT NULL
);`}
	for _, stmt := range ddl {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return s.ensureColumns("schedule", map[string]string{
		"modality": "ALTER TABLE schedule ADD COLUMN modality TEXT NOT NULL DEFAULT '';",
	})
}

func (s *Store) ensureColumns(table string, required map[string]string) error {
	existing := map[string]struct{}{}
	rows, err := s.db.Query(fmt.Sprintf(`PRAGMA table_info(%s);`, table))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

// LoadState reads every collection in stored order. Rows that no longer
// parse are skipped.
func (s *Store) LoadState() (board.Snapshot, error) {
	var snap board.Snapshot
	var err error
	if snap.Tasks, err = s.fetchTasks(); err != nil {
		return board.Snapshot{}, fmt.Errorf("load tasks: %w", err)
	}
	if snap.Notes, err = s.fetchNotes(); err != nil {
		return board.Snapshot{}, fmt.Errorf("load notes: %w", err)
	}
	if snap.Hobbies, err = s.fetchHobbies(); err != nil {
		return board.Snapshot{}, fmt.Errorf("load hobbies: %w", err)
	}
	if snap.Schedule, err = s.fetchSchedule(); err != nil {
		return board.Snapshot{}, fmt.Errorf("load schedule: %w", err)
	}
	return snap, nil
}

func (s *Store) fetchTasks() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT id, name, entered_at, recommended, deadline, criticality, state, category FROM tasks ORDER BY seq;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var enteredStr, deadlineStr, stateStr, categoryStr string
		var recommendedStr sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &enteredStr, &recommendedStr, &deadlineStr, &t.Criticality, &stateStr, &categoryStr); err != nil {
			return nil, err
		}
		deadline, err := task.ParseDate(deadlineStr)
		if err != nil {
			slog.Warn("skipping task with bad deadline", "id", t.ID, "deadline", deadlineStr)
			continue
		}
		t.Deadline = deadline
		t.RecommendedStart = deadline
		if recommendedStr.Valid {
			if parsed, err := task.ParseDate(recommendedStr.String); err == nil {
				t.RecommendedStart = parsed
			}
		}
		if entered, err := time.Parse(time.RFC3339Nano, enteredStr); err == nil {
			t.EnteredAt = entered.Local()
		}
		if t.State, err = task.ParseState(stateStr); err != nil {
			t.State = task.StatePending
		}
		if t.Category, err = task.ParseCategory(categoryStr); err != nil {
			t.Category = task.CategoryMedium
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) fetchNotes() ([]board.Note, error) {
	rows, err := s.db.Query(`SELECT id, content, created_at FROM notes ORDER BY seq;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []board.Note
	for rows.Next() {
		var n board.Note
		var createdStr string
		if err := rows.Scan(&n.ID, &n.Content, &createdStr); err != nil {
			return nil, err
		}
		if created, err := time.Parse(time.RFC3339Nano, createdStr); err == nil {
			n.CreatedAt = created.Local()
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *Store) fetchHobbies() ([]board.Hobby, error) {
	rows, err := s.db.Query(`SELECT id, name, done FROM hobbies ORDER BY seq;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hobbies []board.Hobby
	for rows.Next() {
		var h board.Hobby
		var doneInt int
		if err := rows.Scan(&h.ID, &h.Name, &doneInt); err != nil {
			return nil, err
		}
		h.Done = doneInt == 1
		hobbies = append(hobbies, h)
	}
	return hobbies, rows.Err()
}

func (s *Store) fetchSchedule() ([]board.Event, error) {
	rows, err := s.db.Query(`SELECT id, day, start_at, end_at, activity, kind, modality FROM schedule ORDER BY seq;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []board.Event
	for rows.Next() {
		var e board.Event
		var day int
		var kindStr, modalityStr string
		if err := rows.Scan(&e.ID, &day, &e.Start, &e.End, &e.Activity, &kindStr, &modalityStr); err != nil {
			return nil, err
		}
		if day < 0 || day > 6 {
			slog.Warn("skipping event with bad weekday", "id", e.ID, "day", day)
			continue
		}
		e.Day = time.Weekday(day)
		if e.Kind, err = board.ParseEventKind(kindStr); err != nil {
			slog.Warn("skipping event with bad kind", "id", e.ID, "kind", kindStr)
			continue
		}
		e.Modality, _ = board.ParseModality(modalityStr)
		events = append(events, e)
	}
	return events, rows.Err()
}

// SaveState replaces every stored row with snap in one transaction.
func (s *Store) SaveState(snap board.Snapshot) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"tasks", "notes", "hobbies", "schedule"} {
		if _, err = tx.Exec(`DELETE FROM ` + table + `;`); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for i, t := range snap.Tasks {
		_, err = tx.Exec(`INSERT INTO tasks (seq, id, name, entered_at, recommended, deadline, criticality, state, category) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			i, t.ID, t.Name, t.EnteredAt.UTC().Format(time.RFC3339Nano), nullDate(t.RecommendedStart), task.FormatDate(t.Deadline),
			t.Criticality, string(t.State), string(t.Category))
		if err != nil {
			return fmt.Errorf("save task %s: %w", t.ID, err)
		}
	}
	for i, n := range snap.Notes {
		_, err = tx.Exec(`INSERT INTO notes (seq, id, content, created_at) VALUES (?, ?, ?, ?);`,
			i, n.ID, n.Content, n.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("save note %s: %w", n.ID, err)
		}
	}
	for i, h := range snap.Hobbies {
		done := 0
		if h.Done {
			done = 1
		}
		if _, err = tx.Exec(`INSERT INTO hobbies (seq, id, name, done) VALUES (?, ?, ?, ?);`, i, h.ID, h.Name, done); err != nil {
			return fmt.Errorf("save hobby %s: %w", h.ID, err)
		}
	}
	for i, e := range snap.Schedule {
		_, err = tx.Exec(`INSERT INTO schedule (seq, id, day, start_at, end_at, activity, kind, modality) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			i, e.ID, int(e.Day), e.Start, e.End, e.Activity, string(e.Kind), string(e.Modality))
		if err != nil {
			return fmt.Errorf("save event %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func nullDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: task.FormatDate(t), Valid: true}
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
