package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/models/task"
	repo "github.com/awakra/to-do-list/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

const selectColumns = `SELECT
				id,
				user_id,
				description,
				status,
				due_date,
				created_at,
				COALESCE(tags, ''),
				priority
				FROM todos`

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func warnIfSlow(start time.Time, operation string) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", operation),
			zap.Duration("ms", time.Since(start)))
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Description,
		&t.Status,
		&t.DueDate,
		&t.CreatedAt,
		&t.Tags,
		&t.Priority,
	)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		t.DueDate = &d
	}
	return t, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer warnIfSlow(start, "create_task")

	query := `INSERT INTO todos
				(user_id, description, status, due_date, tags, priority)
				VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UserID,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.DueDate,
		taskToCreate.Tags,
		taskToCreate.Priority,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	taskToCreate.CreatedAt = taskToCreate.CreatedAt.UTC()
	return nil
}

// владелец и created_at в UPDATE не попадают
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer warnIfSlow(start, "update_task")

	query := `UPDATE todos
			SET description = $1,
				status = $2,
				due_date = $3,
				tags = NULLIF($4, ''),
				priority = $5
			WHERE id = $6`

	tag, err := s.pool.Exec(ctx, query,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.DueDate,
		taskToUpdate.Tags,
		taskToUpdate.Priority,
		taskToUpdate.ID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow(start, "get_task")

	t, err := scanTask(s.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// полное удаление из БД
func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	defer warnIfSlow(start, "delete_task")

	tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Полное удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("полное удаление: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) queryTasks(ctx context.Context, operation, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow(start, operation)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

func (s *Storage) ListActive(ctx context.Context, owner int64) ([]*task.Task, error) {
	return s.queryTasks(ctx, "list_active", selectColumns+`
				WHERE user_id = $1 AND status != $2
				ORDER BY created_at DESC, id DESC`,
		owner, task.StatusComplete)
}

func (s *Storage) ListCompleted(ctx context.Context, owner int64) ([]*task.Task, error) {
	return s.queryTasks(ctx, "list_completed", selectColumns+`
				WHERE user_id = $1 AND status = $2
				ORDER BY created_at DESC, id DESC`,
		owner, task.StatusComplete)
}

func (s *Storage) ListScheduled(ctx context.Context, owner int64) ([]*task.Task, error) {
	return s.queryTasks(ctx, "list_scheduled", selectColumns+`
				WHERE user_id = $1 AND status != $2 AND due_date IS NOT NULL
				ORDER BY due_date ASC, id ASC`,
		owner, task.StatusComplete)
}

// все задачи pending с дедлайном в [from, to), без учёта владельца
func (s *Storage) GetPendingDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	return s.queryTasks(ctx, "pending_due_between", selectColumns+`
				WHERE status = $1
				AND due_date IS NOT NULL
				AND due_date >= $2
				AND due_date < $3
				ORDER BY due_date ASC, id ASC`,
		task.StatusPending, from, to)
}
