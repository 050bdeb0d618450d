package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/models/user"
	repo "github.com/awakra/to-do-list/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const selectColumns = `SELECT
				id,
				username,
				email,
				password_hash,
				is_admin,
				reset_token,
				reset_token_expiration,
				created_at
				FROM users`

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.ResetToken,
		&u.ResetTokenExpiration,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	if u.ResetTokenExpiration != nil {
		exp := u.ResetTokenExpiration.UTC()
		u.ResetTokenExpiration = &exp
	}
	return u, nil
}

func duplicateField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return "", false
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return "email", true
	default:
		return "username", true
	}
}

func (s *Storage) Create(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()

	query := `INSERT INTO users
				(username, email, password_hash, is_admin)
				VALUES ($1, $2, $3, $4)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		userToCreate.Username,
		userToCreate.Email,
		userToCreate.PasswordHash,
		userToCreate.IsAdmin,
	).Scan(&userToCreate.ID, &userToCreate.CreatedAt)

	if err != nil {
		if field, ok := duplicateField(err); ok {
			logger.Warn("Repository: Нарушение уникальности", zap.String("field", field))
			return &repo.DuplicateError{Field: field}
		}
		logger.Error("Repository: Не удалось добавить пользователя", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление пользователя: %w", err)
	}
	userToCreate.CreatedAt = userToCreate.CreatedAt.UTC()
	return nil
}

func (s *Storage) getOne(ctx context.Context, where string, arg any) (*user.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, selectColumns+" WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.getOne(ctx, "id = $1", id)
}

func (s *Storage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.getOne(ctx, "username = $1", username)
}

func (s *Storage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

func (s *Storage) GetByUsernameOrEmail(ctx context.Context, identifier string) (*user.User, error) {
	return s.getOne(ctx, "username = $1 OR LOWER(email) = LOWER($1) ORDER BY id LIMIT 1", identifier)
}

// токен и срок действия пишутся одним UPDATE, поэтому по отдельности не видны
func (s *Storage) SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET reset_token = $1, reset_token_expiration = $2 WHERE id = $3`,
		token, expiresAt.UTC(), id)
	if err != nil {
		logger.Error("Repository: Не удалось сохранить токен сброса", err)
		return fmt.Errorf("сохранение токена сброса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// условие на reset_token делает смену пароля одноразовой при параллельных запросах
func (s *Storage) ResetPassword(ctx context.Context, id int64, token, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
			SET password_hash = $1,
				reset_token = NULL,
				reset_token_expiration = NULL
			WHERE id = $2 AND reset_token = $3`,
		passwordHash, id, token)
	if err != nil {
		logger.Error("Repository: Не удалось сменить пароль", err)
		return fmt.Errorf("смена пароля: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrStaleToken
	}
	return nil
}
