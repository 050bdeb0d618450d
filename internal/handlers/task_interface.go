package handlers

import (
	"context"
	"time"

	"github.com/awakra/to-do-list/internal/models/task"
	"github.com/awakra/to-do-list/internal/models/user"
	"github.com/awakra/to-do-list/internal/service"
)

type TaskService interface {
	CreateTask(ctx context.Context, owner int64, description string, options ...task.TaskOption) (*task.Task, error)
	GetTask(ctx context.Context, id, actor int64) (*task.Task, error)
	UpdateTask(ctx context.Context, id, actor int64, options ...task.TaskOption) (*task.Task, error)
	CompleteTask(ctx context.Context, id, actor int64) (*task.Task, error)
	RestoreTask(ctx context.Context, id, actor int64) (*task.Task, error)
	DeleteTask(ctx context.Context, id, actor int64) error
	ListActive(ctx context.Context, owner int64) ([]*task.Task, error)
	ListCompleted(ctx context.Context, owner int64) (*service.CompletedHistory, error)
	CalendarEvents(ctx context.Context, owner int64) ([]service.Event, error)
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*user.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*user.User, error)
	VerifyResetToken(ctx context.Context, token string) (*user.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type SessionStore interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	Get(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

var (
	_ TaskService = (*service.TaskService)(nil)
	_ AuthService = (*service.AuthService)(nil)
)
