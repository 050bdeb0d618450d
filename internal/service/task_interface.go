package service

import (
	"context"
	"time"

	"github.com/awakra/to-do-list/internal/mailer"
	"github.com/awakra/to-do-list/internal/models/task"
	"github.com/awakra/to-do-list/internal/models/user"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, int64) (*task.Task, error)
	Delete(context.Context, int64) error
	ListActive(ctx context.Context, owner int64) ([]*task.Task, error)
	ListCompleted(ctx context.Context, owner int64) ([]*task.Task, error)
	ListScheduled(ctx context.Context, owner int64) ([]*task.Task, error)
	GetPendingDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error)
}

type UserRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *user.User) error
	GetByID(context.Context, int64) (*user.User, error)
	GetByUsername(context.Context, string) (*user.User, error)
	GetByEmail(context.Context, string) (*user.User, error)
	GetByUsernameOrEmail(context.Context, string) (*user.User, error)
	SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	// ResetPassword срабатывает, только пока сохранён именно этот token
	ResetPassword(ctx context.Context, id int64, token, passwordHash string) error
}

type Mailer interface {
	Send(context.Context, mailer.Message) error
}
