package handlers

import (
	"net/http"
	"time"

	"github.com/awakra/to-do-list/internal/handlers/dto"
	"github.com/awakra/to-do-list/internal/logger"
	"github.com/awakra/to-do-list/internal/middleware"
	"github.com/awakra/to-do-list/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const resetRequestedMessage = "Если такой email зарегистрирован, на него отправлена ссылка для сброса пароля"

type CookieConfig struct {
	TTL              time.Duration
	RememberDuration time.Duration
	Secure           bool
}

type AuthHandler struct {
	AuthService AuthService
	Sessions    SessionStore
	Cookies     CookieConfig
}

func NewAuthHandler(authService AuthService, sessions SessionStore, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		AuthService: authService,
		Sessions:    sessions,
		Cookies:     cookies,
	}
}

// без remember cookie живёт до закрытия браузера, сессия в Redis ограничена TTL
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, id string, remember bool) {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = int(h.Cookies.RememberDuration.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func passwordsMismatch(w http.ResponseWriter) {
	err := service.NewValidationError("confirm_password", "пароли не совпадают")
	responseWithJSON(w, http.StatusBadRequest,
		toPayload("error", err.Code),
		toPayload("message", err.Message),
		toPayload("details", err.Details))
}

// Signup POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var request dto.SignupRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Password != request.ConfirmPassword {
		passwordsMismatch(w)
		return
	}

	created, err := h.AuthService.Register(r.Context(), request.Username, request.Email, request.Password)
	if err != nil {
		handleServiceError(w, r, err, "signup")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован", zap.Int64("user_id", created.ID))
	responseWithBody(w, http.StatusCreated, dto.FromUser(created))
}

// Signin POST /signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var request dto.SigninRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := h.AuthService.Authenticate(r.Context(), request.UsernameOrEmail, request.Password)
	if err != nil {
		handleServiceError(w, r, err, "signin")
		return
	}

	ttl := h.Cookies.TTL
	if request.Remember {
		ttl = h.Cookies.RememberDuration
	}
	sessionID, err := h.Sessions.Create(r.Context(), u.ID, ttl)
	if err != nil {
		handleServiceError(w, r, err, "create_session")
		return
	}
	h.setSessionCookie(w, sessionID, request.Remember)

	logger.Info("HTTP_OUT: Вход выполнен", zap.Int64("user_id", u.ID), zap.Bool("remember", request.Remember))
	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}

// Logout GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.Sessions.Delete(r.Context(), cookie.Value); err != nil {
			logger.Error("HTTP: Не удалось удалить сессию", err)
		}
	}
	h.clearSessionCookie(w)
	responseWithJSON(w, http.StatusOK, toPayload("message", "Вы вышли из системы"))
}

// RequestReset POST /reset_password
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var request dto.ResetRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if err := h.AuthService.RequestPasswordReset(r.Context(), request.Email); err != nil {
		handleServiceError(w, r, err, "request_reset")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("message", resetRequestedMessage))
}

// CheckResetToken GET /reset_password/{token}
func (h *AuthHandler) CheckResetToken(w http.ResponseWriter, r *http.Request) {
	if _, err := h.AuthService.VerifyResetToken(r.Context(), chi.URLParam(r, "token")); err != nil {
		handleServiceError(w, r, err, "verify_reset_token")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("valid", true))
}

// ResetPassword POST /reset_password/{token}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var request dto.NewPasswordRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Password != request.ConfirmPassword {
		passwordsMismatch(w)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), chi.URLParam(r, "token"), request.Password); err != nil {
		handleServiceError(w, r, err, "reset_password")
		return
	}

	logger.Info("HTTP_OUT: Пароль сброшен")
	responseWithJSON(w, http.StatusOK, toPayload("message", "Пароль изменён, войдите с новым паролем"))
}
