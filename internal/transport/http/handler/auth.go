package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/frelsi/frelsi-api/internal/application/audit"
	"github.com/frelsi/frelsi-api/internal/application/auth"
	"github.com/frelsi/frelsi-api/internal/domain"
	"github.com/frelsi/frelsi-api/internal/transport/http/middleware"
)

// Limiter admits or rejects a keyed hit, returning a retry-after hint in
// seconds on rejection.
type Limiter interface {
	Admit(key string) (bool, int)
}

type AuthHandler struct {
	service        auth.Service
	requestLimiter Limiter
	verifyLimiter  Limiter
}

func NewAuthHandler(service auth.Service, requestLimiter, verifyLimiter Limiter) *AuthHandler {
	return &AuthHandler{
		service:        service,
		requestLimiter: requestLimiter,
		verifyLimiter:  verifyLimiter,
	}
}

// RequestCode handles POST /api/auth/request-code. The throttle is keyed by
// the requested email, not the client address, so rotating IPs buys nothing.
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var in auth.RequestCodeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Email = strings.TrimSpace(in.Email)

	if ok, retryAfter := h.requestLimiter.Admit("request-code:" + strings.ToLower(in.Email)); !ok {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":      "Trop de tentatives de demande de code. Réessayez dans 15 minutes.",
			"retryAfter": retryAfter,
		})
		return
	}

	res, err := h.service.RequestCode(r.Context(), in, metaFrom(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, "Email is required")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "Unauthorized email address")
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to send authentication code",
				"details": err.Error(),
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Code sent to your email",
		"expiresIn": res.ExpiresIn,
	})
}

// VerifyCode handles POST /api/auth/verify-code.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var in auth.VerifyCodeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	in.Code = strings.TrimSpace(in.Code)

	if ok, retryAfter := h.verifyLimiter.Admit("verify-code:" + strings.ToLower(in.Email)); !ok {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":      "Trop de tentatives de vérification. Réessayez dans 15 minutes.",
			"retryAfter": retryAfter,
		})
		return
	}

	res, err := h.service.VerifyCode(r.Context(), in, metaFrom(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, "Email and code are required")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "Invalid or expired code")
		case errors.Is(err, domain.ErrCodeBlocked):
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":   "Code bloqué après 5 tentatives échouées. Demandez un nouveau code.",
				"blocked": true,
			})
		default:
			writeError(w, http.StatusInternalServerError, "Verification failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   res.Token,
		"user":    map[string]string{"email": res.Email},
	})
}

// Status handles GET /api/auth/status. The endpoint is unauthenticated; it
// only tells clients how to start a session.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": false,
		"message":       "Use /request-code to authenticate",
	})
}

func metaFrom(r *http.Request) audit.Meta {
	return audit.Meta{
		IP:        middleware.RealIP(r),
		UserAgent: r.UserAgent(),
	}
}
