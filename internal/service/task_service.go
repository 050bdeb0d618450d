package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/models/task"
	rep "github.com/awakra/to-do-list/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики.
// Текущий пользователь передаётся явно в каждую операцию.

const resourceTask = "задача"

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func validateTask(t *task.Task) error {
	if t.Description == "" {
		return NewValidationError("description", "не может быть пустым")
	}
	if utf8.RuneCountInString(t.Description) > task.MaxDescriptionLen {
		return NewValidationError("description", fmt.Sprintf("не длиннее %d символов", task.MaxDescriptionLen))
	}
	if utf8.RuneCountInString(t.Tags) > task.MaxTagsLen {
		return NewValidationError("tags", fmt.Sprintf("не длиннее %d символов", task.MaxTagsLen))
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "допустимы pending или complete")
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "допустимы low, medium или high")
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, owner int64, description string, options ...task.TaskOption) (*task.Task, error) {
	opts := append([]task.TaskOption{task.WithDescription(description)}, options...)
	newTask := task.New(owner, description, opts...)

	if err := validateTask(newTask); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.Int64("task_id", newTask.ID),
		zap.Int64("user_id", owner))
	return newTask, nil
}

// loadOwned сначала проверяет существование, затем владельца
func (s *TaskService) loadOwned(ctx context.Context, id, actor int64) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(resourceTask, id)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if t.UserID != actor {
		logger.Warn("Service: Попытка доступа к чужой задаче",
			zap.Int64("target_id", id),
			zap.Int64("actor_id", actor))
		return nil, NewForbidden(resourceTask, id)
	}
	return t, nil
}

func (s *TaskService) save(ctx context.Context, t *task.Task) error {
	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(resourceTask, t.ID)
		}
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, id, actor int64) (*task.Task, error) {
	return s.loadOwned(ctx, id, actor)
}

func (s *TaskService) UpdateTask(ctx context.Context, id, actor int64, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	task.Apply(t, options...)
	if err := validateTask(t); err != nil {
		return nil, err
	}

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// CompleteTask идемпотентна: повторный вызов ничего не записывает
func (s *TaskService) CompleteTask(ctx context.Context, id, actor int64) (*task.Task, error) {
	t, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if t.IsComplete() {
		return t, nil
	}

	t.Status = task.StatusComplete
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) RestoreTask(ctx context.Context, id, actor int64) (*task.Task, error) {
	t, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if !t.IsComplete() {
		return nil, NewBusinessError(CodeNotComplete, "восстановить можно только выполненную задачу",
			ToDetail("id", id),
			ToDetail("status", t.Status))
	}

	t.Status = task.StatusPending
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id, actor int64) error {
	if _, err := s.loadOwned(ctx, id, actor); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(resourceTask, id)
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.Int64("task_id", id))
	return nil
}

func (s *TaskService) ListActive(ctx context.Context, owner int64) ([]*task.Task, error) {
	tasks, err := s.repo.ListActive(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение активных задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) ListCompleted(ctx context.Context, owner int64) (*CompletedHistory, error) {
	tasks, err := s.repo.ListCompleted(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение выполненных задач: %w", err)
	}
	return NewCompletedHistory(tasks), nil
}

func (s *TaskService) CalendarEvents(ctx context.Context, owner int64) ([]Event, error) {
	tasks, err := s.repo.ListScheduled(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение задач для календаря: %w", err)
	}
	return CalendarProjection(tasks), nil
}
