package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// EvaluationTaskRepository handles database operations for evaluation tasks
type EvaluationTaskRepository struct {
	db *sql.DB
}

// NewEvaluationTaskRepository creates a new evaluation task repository
func NewEvaluationTaskRepository(db *sql.DB) *EvaluationTaskRepository {
	return &EvaluationTaskRepository{db: db}
}

const taskColumns = `id, run_id, spec_id, author_email, analyzers, status, progress_percent,
		start_time, end_time, result_summary, error_message, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.EvaluationTask, error) {
	task := &models.EvaluationTask{}
	err := row.Scan(
		&task.ID,
		&task.RunID,
		&task.SpecID,
		&task.AuthorEmail,
		&task.Analyzers,
		&task.Status,
		&task.ProgressPercent,
		&task.StartTime,
		&task.EndTime,
		&task.ResultSummary,
		&task.ErrorMessage,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	return task, err
}

// Create creates a new evaluation task
func (r *EvaluationTaskRepository) Create(task *models.EvaluationTask) error {
	query := `
		INSERT INTO evaluation_tasks (
			run_id, spec_id, author_email, analyzers, status, progress_percent, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		task.RunID,
		task.SpecID,
		task.AuthorEmail,
		task.Analyzers,
		task.Status,
		task.ProgressPercent,
		task.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create evaluation task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.ID = id
	return nil
}

// GetByID retrieves an evaluation task by ID
func (r *EvaluationTaskRepository) GetByID(id int64) (*models.EvaluationTask, error) {
	query := `SELECT ` + taskColumns + ` FROM evaluation_tasks WHERE id = ?`

	task, err := scanTask(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("evaluation task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation task: %w", err)
	}

	return task, nil
}

// GetResult retrieves the serialized result of a finished task
func (r *EvaluationTaskRepository) GetResult(id int64) (string, error) {
	var result string
	err := r.db.QueryRow(`SELECT result_json FROM evaluation_tasks WHERE id = ?`, id).Scan(&result)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("evaluation task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get evaluation result: %w", err)
	}
	return result, nil
}

// List retrieves evaluation tasks with optional filters
func (r *EvaluationTaskRepository) List(filter models.TaskFilter) ([]*models.EvaluationTask, error) {
	query := `SELECT ` + taskColumns + ` FROM evaluation_tasks WHERE 1=1`

	args := []interface{}{}
	if filter.SpecID != "" {
		query += " AND spec_id = ?"
		args = append(args, filter.SpecID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluation tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.EvaluationTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// UpdateProgress updates the progress of an evaluation task
func (r *EvaluationTaskRepository) UpdateProgress(id int64, progressPercent int) error {
	query := `
		UPDATE evaluation_tasks
		SET progress_percent = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, progressPercent, id)
	if err != nil {
		return fmt.Errorf("failed to update task progress: %w", err)
	}

	return nil
}

// MarkAsRunning marks a task as running
func (r *EvaluationTaskRepository) MarkAsRunning(id int64) error {
	now := time.Now().Unix()
	query := `
		UPDATE evaluation_tasks
		SET status = ?, start_time = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, models.TaskStatusRunning, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	return nil
}

// MarkAsCompleted marks a task as completed with its summary and result
func (r *EvaluationTaskRepository) MarkAsCompleted(id int64, resultSummary, resultJSON string) error {
	now := time.Now().Unix()
	query := `
		UPDATE evaluation_tasks
		SET status = ?, end_time = ?, result_summary = ?, result_json = ?,
			progress_percent = 100, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, models.TaskStatusCompleted, now, resultSummary, resultJSON, id)
	if err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	return nil
}

// MarkAsFailed marks a task as failed with an error message
func (r *EvaluationTaskRepository) MarkAsFailed(id int64, errorMessage string) error {
	now := time.Now().Unix()
	query := `
		UPDATE evaluation_tasks
		SET status = ?, end_time = ?, error_message = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, models.TaskStatusFailed, now, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark task as failed: %w", err)
	}

	return nil
}
