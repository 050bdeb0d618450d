package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenMalformed = errors.New("токен повреждён или подписан другим ключом")
	ErrTokenExpired   = errors.New("срок действия токена истёк")
)

type ResetClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenSigner выпускает подписанные HS256 токены сброса пароля.
// Срок жизни проверяется по iat, поэтому exp в токен не пишется.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	s.now = now
	return s
}

func (s *TokenSigner) TTL() time.Duration {
	return s.ttl
}

// Issue возвращает токен и момент выпуска, округлённый до секунды как в iat
func (s *TokenSigner) Issue(userID int64) (string, time.Time, error) {
	issuedAt := jwt.NewNumericDate(s.now())
	claims := ResetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: issuedAt,
			// jti делает токены одного пользователя в одну секунду разными
			ID: uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("подпись токена: %w", err)
	}
	return signed, issuedAt.Time, nil
}

func (s *TokenSigner) Parse(token string) (*ResetClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &ResetClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if claims.IssuedAt == nil || claims.UserID == 0 {
		return nil, ErrTokenMalformed
	}

	// граница включительна: ровно через ttl токен ещё действует
	if s.now().Sub(claims.IssuedAt.Time) > s.ttl {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
