package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sandeepkv93/taskremind/internal/model"
)

// Fixed-width so that text comparison in SQL matches instant order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, model.NewStorageError("open sqlite", err)
	}
	// One connection keeps PRAGMAs and :memory: databases consistent.
	db.SetMaxOpenConns(1)
	if err := MigrateUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, model.NewStorageError("migrate", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, model.NewStorageError("open sqlite", err)
	}
	return store, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, details, start_time, end_time, recurring, frequency_minutes, created_at
		FROM tasks ORDER BY start_time ASC, id ASC`)
	if err != nil {
		return nil, model.NewStorageError("load tasks", err)
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		rec, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, model.NewStorageError("load tasks", scanErr)
		}
		out = append(out, rec.toTask())
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("load tasks", err)
	}
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, task model.Task) error {
	in := recordFromTask(task)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, details, start_time, end_time, recurring, frequency_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			details = excluded.details,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			recurring = excluded.recurring,
			frequency_minutes = excluded.frequency_minutes`,
		in.ID, in.Title, in.Details, mustTime(in.StartTime), mustTime(in.EndTime),
		boolInt(in.Recurring), in.FrequencyMinutes, mustTime(in.CreatedAt),
	)
	return model.NewStorageError("save task", err)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return model.NewStorageError("delete task", err)
	}
	return model.NewStorageError("delete task", checkRowsAffected(res))
}

func (s *SQLiteStore) LoadFired(ctx context.Context) ([]model.ReminderKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, occurrence_start, kind, fired_at
		FROM fired_reminders ORDER BY occurrence_start ASC, task_id ASC, kind DESC`)
	if err != nil {
		return nil, model.NewStorageError("load fired reminders", err)
	}
	defer rows.Close()

	out := make([]model.ReminderKey, 0)
	for rows.Next() {
		rec, scanErr := scanFired(rows)
		if scanErr != nil {
			return nil, model.NewStorageError("load fired reminders", scanErr)
		}
		key, keyErr := rec.toKey()
		if keyErr != nil {
			return nil, model.NewStorageError("load fired reminders", keyErr)
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("load fired reminders", err)
	}
	return out, nil
}

// MarkFired records keys in one transaction. Keys already present, or whose
// task no longer exists, are skipped.
func (s *SQLiteStore) MarkFired(ctx context.Context, firedAt time.Time, keys ...model.ReminderKey) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewStorageError("mark fired", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO fired_reminders (task_id, occurrence_start, kind, fired_at)
		SELECT ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM tasks WHERE id = ?)`)
	if err != nil {
		_ = tx.Rollback()
		return model.NewStorageError("mark fired", err)
	}
	defer stmt.Close()
	for _, key := range keys {
		if _, err := stmt.ExecContext(ctx, key.TaskID, mustTime(key.OccurrenceStart), string(key.Kind), mustTime(firedAt), key.TaskID); err != nil {
			_ = tx.Rollback()
			return model.NewStorageError("mark fired", err)
		}
	}
	return model.NewStorageError("mark fired", tx.Commit())
}

// ForgetFired deletes the given keys in one transaction.
func (s *SQLiteStore) ForgetFired(ctx context.Context, keys ...model.ReminderKey) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, model.NewStorageError("forget fired", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		DELETE FROM fired_reminders WHERE task_id = ? AND occurrence_start = ? AND kind = ?`)
	if err != nil {
		_ = tx.Rollback()
		return 0, model.NewStorageError("forget fired", err)
	}
	defer stmt.Close()
	var total int64
	for _, key := range keys {
		res, err := stmt.ExecContext(ctx, key.TaskID, mustTime(key.OccurrenceStart), string(key.Kind))
		if err != nil {
			_ = tx.Rollback()
			return 0, model.NewStorageError("forget fired", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, model.NewStorageError("forget fired", err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, model.NewStorageError("forget fired", err)
	}
	return total, nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, v)
	if err != nil {
		// Rows written by hand may use plain RFC 3339.
		t, err = time.Parse(time.RFC3339Nano, v)
	}
	return t.UTC(), err
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (taskRecord, error) {
	var out taskRecord
	var start, end, created string
	var recurring int
	if err := s.Scan(&out.ID, &out.Title, &out.Details, &start, &end, &recurring, &out.FrequencyMinutes, &created); err != nil {
		return taskRecord{}, err
	}
	startAt, err := parseRequiredTime(start)
	if err != nil {
		return taskRecord{}, err
	}
	endAt, err := parseRequiredTime(end)
	if err != nil {
		return taskRecord{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return taskRecord{}, err
	}
	out.StartTime = startAt
	out.EndTime = endAt
	out.CreatedAt = createdAt
	out.Recurring = recurring == 1
	return out, nil
}

func scanFired(s scanner) (firedRecord, error) {
	var out firedRecord
	var occurrence, fired string
	if err := s.Scan(&out.TaskID, &occurrence, &out.Kind, &fired); err != nil {
		return firedRecord{}, err
	}
	occurrenceAt, err := parseRequiredTime(occurrence)
	if err != nil {
		return firedRecord{}, err
	}
	firedAt, err := parseRequiredTime(fired)
	if err != nil {
		return firedRecord{}, err
	}
	out.OccurrenceStart = occurrenceAt
	out.FiredAt = firedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
