package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ActivityLogRepository reads the append-only audit trail. The only writer
// path is the task repository's transactional create/update; there is no
// mutation API here, and entries survive task deletion.
type ActivityLogRepository interface {
	// List returns every entry, newest first.
	List(ctx context.Context) ([]domain.ActivityLogEntry, error)
	// ListByTask returns one task's entries, newest first. Valid for
	// deleted tasks too.
	ListByTask(ctx context.Context, taskID string) ([]domain.ActivityLogEntry, error)
}

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository builds the postgres-backed reader.
func NewActivityLogRepository(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

const selectActivityColumns = `SELECT id, task_id, ts, changed_by, old_status, new_status, remark FROM activity_log`

func (r *activityLogRepository) List(ctx context.Context) ([]domain.ActivityLogEntry, error) {
	rows, err := r.pool.Query(ctx, selectActivityColumns+` ORDER BY ts DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityEntries(rows)
}

func (r *activityLogRepository) ListByTask(ctx context.Context, taskID string) ([]domain.ActivityLogEntry, error) {
	rows, err := r.pool.Query(ctx, selectActivityColumns+` WHERE task_id=$1 ORDER BY ts DESC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityEntries(rows)
}

func scanActivityEntries(rows pgx.Rows) ([]domain.ActivityLogEntry, error) {
	var result []domain.ActivityLogEntry
	for rows.Next() {
		var entry domain.ActivityLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&entry.Timestamp,
			&entry.ChangedBy,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Remark,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
