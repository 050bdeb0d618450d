package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/mailer"
	"github.com/awakra/to-do-list/internal/models/user"
	rep "github.com/awakra/to-do-list/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users      UserRepository
	tokens     *TokenSigner
	mailer     Mailer
	baseURL    string
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users UserRepository, tokens *TokenSigner, mailer Mailer, baseURL string) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		baseURL:    strings.TrimRight(baseURL, "/"),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// WithClock задаёт часы и сервису, и подписчику токенов
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	s.tokens.WithClock(now)
	return s
}

func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

func invalidCredentials() *BusinessError {
	return NewBusinessError(CodeInvalidCredentials, "Неверное имя пользователя или пароль")
}

func tokenInvalid() *BusinessError {
	return NewBusinessError(CodeTokenInvalid, "Ссылка для сброса пароля недействительна или устарела")
}

func validateRegistration(username, email, password string) error {
	if n := utf8.RuneCountInString(username); n < user.MinUsernameLen || n > user.MaxUsernameLen {
		return NewValidationError("username",
			fmt.Sprintf("длина от %d до %d символов", user.MinUsernameLen, user.MaxUsernameLen))
	}
	if email == "" || utf8.RuneCountInString(email) > user.MaxEmailLen {
		return NewValidationError("email", fmt.Sprintf("обязателен и не длиннее %d символов", user.MaxEmailLen))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError("email", "неверный формат адреса")
	}
	if password == "" {
		return NewValidationError("password", "не может быть пустым")
	}
	return nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", NewValidationError("password", "не длиннее 72 байт")
		}
		return "", fmt.Errorf("хеширование пароля: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, NewBusinessError(CodeDuplicateUsername, "Имя пользователя уже занято",
			ToDetail("field", "username"))
	} else if !errors.Is(err, rep.ErrNotFound) {
		return nil, fmt.Errorf("проверка имени пользователя: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, NewBusinessError(CodeDuplicateEmail, "Email уже зарегистрирован",
			ToDetail("field", "email"))
	} else if !errors.Is(err, rep.ErrNotFound) {
		return nil, fmt.Errorf("проверка email: %w", err)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, newUser); err != nil {
		// гонка двух регистраций решается уникальными индексами
		var dup *rep.DuplicateError
		if errors.As(err, &dup) {
			if dup.Field == "email" {
				return nil, NewBusinessError(CodeDuplicateEmail, "Email уже зарегистрирован",
					ToDetail("field", "email"))
			}
			return nil, NewBusinessError(CodeDuplicateUsername, "Имя пользователя уже занято",
				ToDetail("field", "username"))
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.Int64("user_id", newUser.ID))
	return newUser, nil
}

// Authenticate ищет по имени пользователя или email
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*user.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, invalidCredentials()
	}

	u, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.Info("Service: Неудачная попытка входа", zap.Int64("user_id", u.ID))
		return nil, invalidCredentials()
	}
	return u, nil
}

// IssueResetToken сохраняет токен и срок его действия, прежний токен перестаёт работать
func (s *AuthService) IssueResetToken(ctx context.Context, u *user.User) (string, error) {
	token, issuedAt, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", err
	}

	expiresAt := issuedAt.Add(s.tokens.TTL())
	if err := s.users.SetResetToken(ctx, u.ID, token, expiresAt); err != nil {
		return "", fmt.Errorf("сохранение токена сброса: %w", err)
	}

	u.ResetToken = &token
	u.ResetTokenExpiration = &expiresAt
	return token, nil
}

func (s *AuthService) VerifyResetToken(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		logger.Info("Service: Токен сброса отклонён", zap.Error(err))
		return nil, tokenInvalid()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, tokenInvalid()
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	if !u.HasResetToken() || subtle.ConstantTimeCompare([]byte(*u.ResetToken), []byte(token)) != 1 {
		return nil, tokenInvalid()
	}
	if s.now().After(*u.ResetTokenExpiration) {
		return nil, tokenInvalid()
	}
	return u, nil
}

// ConsumeReset меняет пароль и одновременно очищает токен.
// Токен из u должен совпасть с сохранённым, иначе TOKEN_INVALID
func (s *AuthService) ConsumeReset(ctx context.Context, u *user.User, newPassword string) error {
	if newPassword == "" {
		return NewValidationError("password", "не может быть пустым")
	}
	if !u.HasResetToken() {
		return tokenInvalid()
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.ResetPassword(ctx, u.ID, *u.ResetToken, hash); err != nil {
		if errors.Is(err, rep.ErrStaleToken) {
			logger.Info("Service: Токен сброса уже использован", zap.Int64("user_id", u.ID))
			return tokenInvalid()
		}
		return fmt.Errorf("смена пароля: %w", err)
	}

	u.PasswordHash = hash
	u.ResetToken = nil
	u.ResetTokenExpiration = nil
	logger.Info("Service: Пароль изменён", zap.Int64("user_id", u.ID))
	return nil
}

// RequestPasswordReset не сообщает, существует ли email
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return NewValidationError("email", "не может быть пустым")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Сброс пароля для неизвестного email")
			return nil
		}
		return fmt.Errorf("поиск пользователя: %w", err)
	}

	token, err := s.IssueResetToken(ctx, u)
	if err != nil {
		return err
	}

	msg := mailer.ResetPasswordMessage(u, s.baseURL+"/reset_password/"+token, s.tokens.TTL())
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error("Service: Не удалось отправить письмо сброса пароля", err, zap.Int64("user_id", u.ID))
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	u, err := s.VerifyResetToken(ctx, token)
	if err != nil {
		return err
	}
	return s.ConsumeReset(ctx, u, newPassword)
}
