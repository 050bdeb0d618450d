package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/awakra/to-do-list/internal/models/user"
	repo "github.com/awakra/to-do-list/internal/repository"
)

type UserStorage struct {
	storage map[int64]*user.User
	mtx     *sync.RWMutex
	nextID  int64
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[int64]*user.User),
		mtx:     &sync.RWMutex{},
	}
}

func (s *UserStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func clone(u *user.User) *user.User {
	c := *u
	if u.ResetToken != nil {
		token := *u.ResetToken
		c.ResetToken = &token
	}
	if u.ResetTokenExpiration != nil {
		exp := *u.ResetTokenExpiration
		c.ResetTokenExpiration = &exp
	}
	return &c
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	// уникальность проверяется под той же блокировкой, что и вставка
	for _, existing := range s.storage {
		if existing.Username == userToCreate.Username {
			return &repo.DuplicateError{Field: "username"}
		}
		if strings.EqualFold(existing.Email, userToCreate.Email) {
			return &repo.DuplicateError{Field: "email"}
		}
	}

	s.nextID++
	userToCreate.ID = s.nextID
	if userToCreate.CreatedAt.IsZero() {
		userToCreate.CreatedAt = time.Now().UTC()
	}
	s.storage[userToCreate.ID] = clone(userToCreate)
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id int64) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(u), nil
}

// find возвращает совпадение с наименьшим id, как ORDER BY id LIMIT 1 в postgres
func (s *UserStorage) find(match func(*user.User) bool) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var found *user.User
	for _, u := range s.storage {
		if match(u) && (found == nil || u.ID < found.ID) {
			found = u
		}
	}
	if found == nil {
		return nil, repo.ErrNotFound
	}
	return clone(found), nil
}

func (s *UserStorage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.find(func(u *user.User) bool { return u.Username == username })
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.find(func(u *user.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *UserStorage) GetByUsernameOrEmail(ctx context.Context, identifier string) (*user.User, error) {
	return s.find(func(u *user.User) bool {
		return u.Username == identifier || strings.EqualFold(u.Email, identifier)
	})
}

// SetResetToken записывает токен и срок действия одной операцией
func (s *UserStorage) SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}
	exp := expiresAt.UTC()
	u.ResetToken = &token
	u.ResetTokenExpiration = &exp
	return nil
}

// ResetPassword меняет хеш пароля и очищает оба поля токена,
// если у пользователя всё ещё сохранён token
func (s *UserStorage) ResetPassword(ctx context.Context, id int64, token, passwordHash string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u, ok := s.storage[id]
	if !ok || u.ResetToken == nil || *u.ResetToken != token {
		return repo.ErrStaleToken
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiration = nil
	return nil
}
