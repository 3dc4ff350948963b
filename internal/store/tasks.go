package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vinpro/dealdesk/internal/finance"
)

// Task statuses and priorities.
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Subtask is one checklist item inside a task.
type Subtask struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Task is a store to-do: follow-ups, recon work, title paperwork.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"` // "follow_up", "recon", "title", "general"
	Priority    string     `json:"priority"` // "low", "medium", "high"
	Status      string     `json:"status"`
	Assignee    string     `json:"assignee,omitempty"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	Subtasks    []Subtask  `json:"subtasks"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskStore persists tasks.
type TaskStore struct {
	db *sql.DB
}

// NewTaskStore creates a TaskStore on db.
func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Create adds a task in open status.
func (s *TaskStore) Create(ctx context.Context, t *Task) (*Task, error) {
	if t.Title == "" {
		return nil, &finance.InvalidInputError{Field: "title", Reason: "is required"}
	}

	now := time.Now().UTC()
	t.ID = uuid.New().String()
	t.Status = TaskStatusOpen
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Category == "" {
		t.Category = "general"
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}

	subtasksJSON, _ := json.Marshal(t.Subtasks)
	var dueAt interface{}
	if t.DueAt != nil {
		dueAt = formatTime(*t.DueAt)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, category, priority, status,
			assignee, due_at, subtasks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Category, t.Priority, t.Status,
		t.Assignee, dueAt, string(subtasksJSON), formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	return t, nil
}

// Get returns one task by ID.
func (s *TaskStore) Get(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, taskSelect+` WHERE id = ?`, id)
	return scanTask(row)
}

// List returns tasks, open first then by due date, optionally filtered.
func (s *TaskStore) List(ctx context.Context, status, assignee string, limit, offset int) ([]*Task, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := taskSelect + ` WHERE 1=1`
	var args []interface{}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if assignee != "" {
		query += ` AND assignee = ?`
		args = append(args, assignee)
	}
	query += ` ORDER BY status ASC, due_at IS NULL, due_at ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update replaces a task's mutable fields.
func (s *TaskStore) Update(ctx context.Context, id string, t *Task) (*Task, error) {
	if t.Title == "" {
		return nil, &finance.InvalidInputError{Field: "title", Reason: "is required"}
	}
	switch t.Status {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusDone:
	default:
		return nil, &finance.InvalidInputError{Field: "status", Reason: "unknown task status"}
	}

	subtasksJSON, _ := json.Marshal(t.Subtasks)
	var dueAt interface{}
	if t.DueAt != nil {
		dueAt = formatTime(*t.DueAt)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, category = ?, priority = ?,
			status = ?, assignee = ?, due_at = ?, subtasks = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Description, t.Category, t.Priority, t.Status, t.Assignee,
		dueAt, string(subtasksJSON), formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a task.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const taskSelect = `
	SELECT id, title, description, category, priority, status, assignee,
		due_at, subtasks, created_at, updated_at
	FROM tasks`

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var dueAt sql.NullString
	var subtasksJSON, createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Priority,
		&t.Status, &t.Assignee, &dueAt, &subtasksJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	if dueAt.Valid && dueAt.String != "" {
		due := parseTime(dueAt.String)
		t.DueAt = &due
	}
	_ = json.Unmarshal([]byte(subtasksJSON), &t.Subtasks)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}
