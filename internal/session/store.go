// Package session хранит серверные сессии в Redis: session_id -> user_id.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/awakra/to-do-list/internal/config"
	"github.com/awakra/to-do-list/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "session:"

var ErrNoSession = errors.New("сессия не найдена или истекла")

type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// NewClient подключается к Redis с повторами, как и к PostgreSQL
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err := backoff.RetryNotify(func() error {
		return client.Ping(ctx).Err()
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("Session: Redis недоступен, повтор", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("подключение к Redis: %w", err)
	}

	logger.Info("Session: Успешное подключение к Redis", zap.String("addr", cfg.Addr))
	return client, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("проверка Redis: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+id, userID, ttl).Err(); err != nil {
		logger.Error("Session: Не удалось создать сессию", err, zap.Int64("user_id", userID))
		return "", fmt.Errorf("создание сессии: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, ErrNoSession
	}

	val, err := s.client.Get(ctx, keyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNoSession
		}
		return 0, fmt.Errorf("чтение сессии: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("повреждённая сессия: %w", err)
	}
	return userID, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("удаление сессии: %w", err)
	}
	return nil
}
