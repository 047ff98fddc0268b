// Package progress tracks ingest task progress in an embedded SQLite table,
// grouped per ingest run, with create/increment/complete semantics.
package progress

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jreader/yomitanctl/internal/jerrors"
)

// TaskType is the closed set of ingest step kinds a task can represent.
type TaskType string

const (
	TaskLoadJSON         TaskType = "LoadJson"
	TaskMergeJSON        TaskType = "MergeJson"
	TaskDBInsertAll      TaskType = "DbInsertAll"
	TaskCopyStaticAssets TaskType = "CopyStaticAssets"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS progress (
  task_id             TEXT PRIMARY KEY,
  group_id            TEXT NOT NULL,
  task_type           TEXT NOT NULL,
  dictionary_title    TEXT NOT NULL,
  dictionary_revision TEXT NOT NULL,
  schema_name         TEXT,
  current             INTEGER NOT NULL DEFAULT 0,
  total               INTEGER NOT NULL DEFAULT 0
);
`

// Task is a snapshot of one row of the progress table.
type Task struct {
	TaskID             string
	GroupID            string
	TaskType           string
	DictionaryTitle    string
	DictionaryRevision string
	SchemaName         string
	Current            int64
	Total              int64
}

// Tracker is the embedded, process-wide progress table. The zero value is
// not usable; construct with New.
type Tracker struct {
	mu sync.Mutex
	db *sql.DB
}

// New opens (or creates) the progress table at path. An empty path opens an
// in-memory database, matching the default behavior of clearing state at
// construction.
func New(path string) (*Tracker, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, jerrors.New(jerrors.Storage, "progress.New", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, jerrors.New(jerrors.Storage, "progress.New: init schema", err)
	}
	if _, err := db.Exec("DELETE FROM progress"); err != nil {
		db.Close()
		return nil, jerrors.New(jerrors.Storage, "progress.New: clear table", err)
	}
	return &Tracker{db: db}, nil
}

// Close releases the underlying database handle.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.db.Close()
}

// CreateTask inserts a new task row under groupID and returns its generated
// task id. schemaName may be empty for tasks not tied to a single shard.
func (t *Tracker) CreateTask(groupID, taskType, title, revision, schemaName string, total int64) (string, error) {
	taskID := uuid.NewString()

	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.db.Exec(
		`INSERT INTO progress (task_id, group_id, task_type, dictionary_title, dictionary_revision, schema_name, current, total)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		taskID, groupID, taskType, title, revision, schemaName, total,
	)
	if err != nil {
		return "", jerrors.New(jerrors.Storage, "progress.CreateTask", err)
	}
	return taskID, nil
}

// Increment adds delta to a task's current counter.
func (t *Tracker) Increment(taskID string, delta int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	res, err := t.db.Exec(`UPDATE progress SET current = current + ? WHERE task_id = ?`, delta, taskID)
	if err != nil {
		return jerrors.New(jerrors.Storage, "progress.Increment", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return jerrors.New(jerrors.Storage, "progress.Increment: rows affected", err)
	}
	if n == 0 {
		return jerrors.New(jerrors.Storage, "progress.Increment", fmt.Errorf("unknown task %q", taskID))
	}
	return nil
}

// Get returns the current snapshot of a task.
func (t *Tracker) Get(taskID string) (Task, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row := t.db.QueryRow(
		`SELECT task_id, group_id, task_type, dictionary_title, dictionary_revision, schema_name, current, total
		 FROM progress WHERE task_id = ?`, taskID)
	var task Task
	var schemaName sql.NullString
	if err := row.Scan(&task.TaskID, &task.GroupID, &task.TaskType, &task.DictionaryTitle, &task.DictionaryRevision, &schemaName, &task.Current, &task.Total); err != nil {
		if err == sql.ErrNoRows {
			return Task{}, false, nil
		}
		return Task{}, false, jerrors.New(jerrors.Storage, "progress.Get", err)
	}
	task.SchemaName = schemaName.String
	return task, true, nil
}

// GetAll returns every tracked task.
func (t *Tracker) GetAll() ([]Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.db.Query(
		`SELECT task_id, group_id, task_type, dictionary_title, dictionary_revision, schema_name, current, total FROM progress`)
	if err != nil {
		return nil, jerrors.New(jerrors.Storage, "progress.GetAll", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var task Task
		var schemaName sql.NullString
		if err := rows.Scan(&task.TaskID, &task.GroupID, &task.TaskType, &task.DictionaryTitle, &task.DictionaryRevision, &schemaName, &task.Current, &task.Total); err != nil {
			return nil, jerrors.New(jerrors.Storage, "progress.GetAll: scan", err)
		}
		task.SchemaName = schemaName.String
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, jerrors.New(jerrors.Storage, "progress.GetAll: rows", err)
	}
	return tasks, nil
}

// IsComplete reports whether a task's current count has reached its total
// (a task with total==0 is never complete).
func (t *Tracker) IsComplete(taskID string) (bool, error) {
	task, ok, err := t.Get(taskID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, jerrors.New(jerrors.Storage, "progress.IsComplete", fmt.Errorf("unknown task %q", taskID))
	}
	return task.Total > 0 && task.Current >= task.Total, nil
}

// WaitForCompletion polls every 100ms until the task completes or ctx is
// done, returning true if it completed before ctx expired.
func (t *Tracker) WaitForCompletion(ctx context.Context, taskID string) (bool, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		complete, err := t.IsComplete(taskID)
		if err != nil {
			return false, err
		}
		if complete {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, nil
		case <-ticker.C:
		}
	}
}
