package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frelsi/frelsi-api/internal/application/audit"
	"github.com/frelsi/frelsi-api/internal/application/auth"
	"github.com/frelsi/frelsi-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) RequestCode(ctx context.Context, in auth.RequestCodeInput, meta audit.Meta) (*auth.RequestCodeResult, error) {
	args := m.Called(ctx, in, meta)
	if r, _ := args.Get(0).(*auth.RequestCodeResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) VerifyCode(ctx context.Context, in auth.VerifyCodeInput, meta audit.Meta) (*auth.VerifyCodeResult, error) {
	args := m.Called(ctx, in, meta)
	if r, _ := args.Get(0).(*auth.VerifyCodeResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type allowLimiter struct{ keys []string }

func (l *allowLimiter) Admit(key string) (bool, int) {
	l.keys = append(l.keys, key)
	return true, 0
}

type denyLimiter struct{}

func (denyLimiter) Admit(string) (bool, int) { return false, 900 }

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestCode_Success(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestCode", mock.Anything,
		auth.RequestCodeInput{Email: "admin@example.com"}, mock.Anything).
		Return(&auth.RequestCodeResult{ExpiresIn: 600}, nil)

	limiter := &allowLimiter{}
	h := NewAuthHandler(svc, limiter, limiter)

	rec := postJSON(t, h.RequestCode, "/api/auth/request-code", `{"email":"admin@example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Code sent to your email", body["message"])
	assert.Equal(t, float64(600), body["expiresIn"])
	assert.Equal(t, []string{"request-code:admin@example.com"}, limiter.keys)
}

func TestRequestCode_LimiterKeyIsLowercased(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestCode", mock.Anything, mock.Anything, mock.Anything).
		Return(&auth.RequestCodeResult{ExpiresIn: 600}, nil)

	limiter := &allowLimiter{}
	h := NewAuthHandler(svc, limiter, limiter)

	postJSON(t, h.RequestCode, "/api/auth/request-code", `{"email":"Admin@Example.COM"}`)

	assert.Equal(t, []string{"request-code:admin@example.com"}, limiter.keys)
}

func TestRequestCode_RateLimited(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc, denyLimiter{}, denyLimiter{})

	rec := postJSON(t, h.RequestCode, "/api/auth/request-code", `{"email":"admin@example.com"}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(900), body["retryAfter"])
	assert.Contains(t, body["error"], "Trop de tentatives")
	svc.AssertNotCalled(t, "RequestCode")
}

func TestRequestCode_MissingEmail(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestCode", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrBadRequest)

	h := NewAuthHandler(svc, &allowLimiter{}, &allowLimiter{})
	rec := postJSON(t, h.RequestCode, "/api/auth/request-code", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email is required", decodeBody(t, rec)["error"])
}

func TestRequestCode_UnknownEmail(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestCode", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrForbidden)

	h := NewAuthHandler(svc, &allowLimiter{}, &allowLimiter{})
	rec := postJSON(t, h.RequestCode, "/api/auth/request-code", `{"email":"evil@example.com"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Unauthorized email address", decodeBody(t, rec)["error"])
}

func TestRequestCode_DeliveryFailure(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestCode", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrDelivery)

	h := NewAuthHandler(svc, &allowLimiter{}, &allowLimiter{})
	rec := postJSON(t, h.RequestCode, "/api/auth/request-code", `{"email":"admin@example.com"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Failed to send authentication code", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestVerifyCode_Success(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyCode", mock.Anything,
		auth.VerifyCodeInput{Email: "admin@example.com", Code: "123456"}, mock.Anything).
		Return(&auth.VerifyCodeResult{Token: "jwt-token", Email: "admin@example.com"}, nil)

	h := NewAuthHandler(svc, &allowLimiter{}, &allowLimiter{})
	rec := postJSON(t, h.VerifyCode, "/api/auth/verify-code",
		`{"email":"admin@example.com","code":"123456"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "jwt-token", body["token"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin@example.com", user["email"])
}

func TestVerifyCode_InvalidCode(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyCode", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrUnauthorized)

	h := NewAuthHandler(svc, &allowLimiter{}, &allowLimiter{})
	rec := postJSON(t, h.VerifyCode, "/api/auth/verify-code",
		`{"email":"admin@example.com","code":"000000"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired code", decodeBody(t, rec)["error"])
}

func TestVerifyCode_Blocked(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyCode", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrCodeBlocked)

	h := NewAuthHandler(svc, &allowLimiter{}, &allowLimiter{})
	rec := postJSON(t, h.VerifyCode, "/api/auth/verify-code",
		`{"email":"admin@example.com","code":"000000"}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["blocked"])
	assert.Contains(t, body["error"], "Code bloqué")
}

func TestVerifyCode_RateLimited(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc, denyLimiter{}, denyLimiter{})

	rec := postJSON(t, h.VerifyCode, "/api/auth/verify-code",
		`{"email":"admin@example.com","code":"123456"}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	svc.AssertNotCalled(t, "VerifyCode")
}

func TestStatus(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &allowLimiter{}, &allowLimiter{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	h.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["authenticated"])
}
