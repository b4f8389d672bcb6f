package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// TaskFilter captures task listing parameters.
type TaskFilter struct {
	Department  *domain.Department
	ComplaintID *string
}

// TaskRepository encapsulates task persistence. Status writes carry their
// audit entry so both rows land atomically: no transition without audit, no
// audit without transition.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task, entry *domain.ActivityLogEntry) error
	UpdateStatus(ctx context.Context, task *domain.Task, entry *domain.ActivityLogEntry) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteByComplaint(ctx context.Context, complaintID string) (int64, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates the postgres-backed repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const insertActivityQuery = `
        INSERT INTO activity_log (id, task_id, ts, changed_by, old_status, new_status, remark)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO tasks (id, complaint_id, department, issue_type, priority, status, sla_hours, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			task.ID,
			task.ComplaintID,
			task.Department,
			task.IssueType,
			task.Priority,
			task.Status,
			task.SLAHours,
			task.CreatedAt,
			task.UpdatedAt,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertActivityQuery,
			entry.ID, entry.TaskID, entry.Timestamp, entry.ChangedBy, entry.OldStatus, entry.NewStatus, entry.Remark)
		return err
	})
}

func (r *taskRepository) UpdateStatus(ctx context.Context, task *domain.Task, entry *domain.ActivityLogEntry) error {
	const query = `UPDATE tasks SET status=$1, updated_at=$2 WHERE id=$3`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, query, task.Status, task.UpdatedAt, task.ID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		_, err = tx.Exec(ctx, insertActivityQuery,
			entry.ID, entry.TaskID, entry.Timestamp, entry.ChangedBy, entry.OldStatus, entry.NewStatus, entry.Remark)
		return err
	})
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
        SELECT id, complaint_id, department, issue_type, priority, status, sla_hours, created_at, updated_at
        FROM tasks WHERE id=$1`
	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.ComplaintID,
		&task.Department,
		&task.IssueType,
		&task.Priority,
		&task.Status,
		&task.SLAHours,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	query := `
        SELECT id, complaint_id, department, issue_type, priority, status, sla_hours, created_at, updated_at
        FROM tasks`
	args := []any{}
	switch {
	case filter.Department != nil:
		query += ` WHERE department=$1`
		args = append(args, *filter.Department)
	case filter.ComplaintID != nil:
		query += ` WHERE complaint_id=$1`
		args = append(args, *filter.ComplaintID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.ComplaintID,
			&task.Department,
			&task.IssueType,
			&task.Priority,
			&task.Status,
			&task.SLAHours,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

// Delete removes the task row only. Activity entries outlive the task.
func (r *taskRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) DeleteByComplaint(ctx context.Context, complaintID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE complaint_id=$1`, complaintID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
