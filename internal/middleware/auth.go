package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/session"

	"go.uber.org/zap"
)

const SessionCookieName = "session_id"

const userIDKey contextKey = "user_id"

type SessionReader interface {
	Get(ctx context.Context, id string) (int64, error)
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":      code,
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}

// RequireAuth пропускает запрос дальше только с действующей сессией
func RequireAuth(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Требуется вход в систему")
				return
			}

			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Сессия истекла, войдите снова")
					return
				}
				logger.Error("HTTP: Ошибка чтения сессии", err, zap.String("request_id", GetRequestID(r.Context())))
				writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Внутренняя ошибка сервера")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
