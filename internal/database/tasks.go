package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

const taskColumns = `id, user_id, task_date, position, title, description, task_type, duration_minutes,
	platform_name, platform_url, skill_name, completed, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// TaskRepository handles daily task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.TaskDate,
		&t.Position,
		&t.Title,
		&t.Description,
		&t.TaskType,
		&t.DurationMinutes,
		&t.PlatformName,
		&t.PlatformURL,
		&t.SkillName,
		&t.Completed,
		&t.CreatedAt,
	)
	return t, err
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryTasks(ctx context.Context, q queryer, query string, args ...any) ([]models.Task, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer closeRows(rows)

	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// ListTasks returns every task the user ever received
func (r *TaskRepository) ListTasks(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	return queryTasks(ctx, r.db, `
		SELECT `+taskColumns+`
		FROM daily_tasks
		WHERE user_id = $1
		ORDER BY task_date ASC, position ASC
	`, userID)
}

// ListTasksForDate returns one day's batch in batch order
func (r *TaskRepository) ListTasksForDate(ctx context.Context, userID uuid.UUID, date models.Date) ([]models.Task, error) {
	return queryTasks(ctx, r.db, `
		SELECT `+taskColumns+`
		FROM daily_tasks
		WHERE user_id = $1 AND task_date = $2
		ORDER BY position ASC, created_at ASC
	`, userID, date)
}

// ListTasksBetween returns tasks dated within [from, to]
func (r *TaskRepository) ListTasksBetween(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.Task, error) {
	return queryTasks(ctx, r.db, `
		SELECT `+taskColumns+`
		FROM daily_tasks
		WHERE user_id = $1 AND task_date BETWEEN $2 AND $3
		ORDER BY task_date DESC, position ASC
	`, userID, from, to)
}

// InsertBatch claims the (user, date) batch row and inserts the drafts in the
// same transaction. The primary key on daily_task_batches makes the claim
// atomic: a concurrent caller blocks on the conflicting insert, gets zero
// rows affected and reads the winner's tasks instead.
func (r *TaskRepository) InsertBatch(ctx context.Context, userID uuid.UUID, date models.Date, drafts []models.TaskDraft) ([]models.Task, bool, error) {
	if len(drafts) == 0 {
		return nil, false, fmt.Errorf("cannot insert an empty task batch")
	}

	var (
		tasks   []models.Task
		created bool
	)

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO daily_task_batches (user_id, task_date, task_count, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, task_date) DO NOTHING
		`, userID, date, len(drafts), now)
		if err != nil {
			return fmt.Errorf("failed to claim task batch: %w", err)
		}

		claimed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read batch claim result: %w", err)
		}

		if claimed == 0 {
			tasks, err = queryTasks(ctx, tx, `
				SELECT `+taskColumns+`
				FROM daily_tasks
				WHERE user_id = $1 AND task_date = $2
				ORDER BY position ASC, created_at ASC
			`, userID, date)
			return err
		}

		created = true
		tasks = make([]models.Task, 0, len(drafts))
		for i, d := range drafts {
			t := models.Task{
				ID:              uuid.New(),
				UserID:          userID,
				TaskDate:        date,
				Position:        i,
				Title:           d.Title,
				Description:     d.Description,
				TaskType:        d.TaskType,
				DurationMinutes: d.DurationMinutes,
				PlatformName:    nullableString(d.PlatformName),
				PlatformURL:     nullableString(d.PlatformURL),
				SkillName:       nullableString(d.SkillName),
			}

			err := tx.QueryRowContext(ctx, `
				INSERT INTO daily_tasks (id, user_id, task_date, position, title, description, task_type,
					duration_minutes, platform_name, platform_url, skill_name, completed, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, $12, $12)
				RETURNING created_at
			`,
				t.ID, t.UserID, t.TaskDate, t.Position, t.Title, t.Description, t.TaskType,
				t.DurationMinutes, t.PlatformName, t.PlatformURL, t.SkillName, now,
			).Scan(&t.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert task %d of batch: %w", i, err)
			}
			tasks = append(tasks, t)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return tasks, created, nil
}

// UpdateCompletion sets the completed flag, scoped by task and owner
func (r *TaskRepository) UpdateCompletion(ctx context.Context, taskID, userID uuid.UUID, completed bool) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE daily_tasks
		SET completed = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
		RETURNING `+taskColumns,
		completed, time.Now(), taskID, userID,
	)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task completion: %w", err)
	}
	return &t, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
