package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frelsi/frelsi-api/internal/application/audit"
	"github.com/frelsi/frelsi-api/internal/domain"
	snsinfra "github.com/frelsi/frelsi-api/internal/infrastructure/sns"
	"github.com/frelsi/frelsi-api/internal/pkg/authcode"
	"github.com/frelsi/frelsi-api/internal/pkg/id"
)

type RequestCodeInput struct {
	Email string `json:"email"`
}

type VerifyCodeInput struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type RequestCodeResult struct {
	ExpiresIn int // seconds until the issued code expires
}

type VerifyCodeResult struct {
	Token string
	Email string
}

// CodeStore is the persistence the controller needs for one-time codes.
type CodeStore interface {
	Put(ctx context.Context, c *domain.AuthCode) error
	DeleteAllForEmail(ctx context.Context, email string) error
	FindActive(ctx context.Context, email, code string, now int64) (*domain.AuthCode, error)
	IncrementAttempts(ctx context.Context, email string, now int64) error
	Delete(ctx context.Context, email, codeID string) error
}

// CodeSender delivers a login code to an address.
type CodeSender interface {
	SendAuthCode(ctx context.Context, to, code string, expiry time.Duration) error
}

// TokenSigner mints session tokens after a successful verification.
type TokenSigner interface {
	Sign(email string) (string, error)
}

// Service is the authentication flow controller: it owns the request-code and
// verify-code state machines and orchestrates store, delivery, audit and
// token issuance.
type Service interface {
	RequestCode(ctx context.Context, in RequestCodeInput, meta audit.Meta) (*RequestCodeResult, error)
	VerifyCode(ctx context.Context, in VerifyCodeInput, meta audit.Meta) (*VerifyCodeResult, error)
}

type service struct {
	codes   CodeStore
	sender  CodeSender
	signer  TokenSigner
	sink    audit.Sink
	alerter snsinfra.Alerter // optional; nil disables brute-force alerts

	adminEmail string
	codeExpiry time.Duration
	now        func() time.Time
}

type ServiceDeps struct {
	Codes      CodeStore
	Sender     CodeSender
	Signer     TokenSigner
	Sink       audit.Sink
	Alerter    snsinfra.Alerter
	AdminEmail string
	CodeExpiry time.Duration
	Now        func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		codes:      deps.Codes,
		sender:     deps.Sender,
		signer:     deps.Signer,
		sink:       deps.Sink,
		alerter:    deps.Alerter,
		adminEmail: deps.AdminEmail,
		codeExpiry: deps.CodeExpiry,
		now:        now,
	}
}

// RequestCode issues a fresh one-time code for the admin address and emails
// it. Any previously issued codes for the address are removed first, so at
// most one code is ever active.
func (s *service) RequestCode(ctx context.Context, in RequestCodeInput, meta audit.Meta) (*RequestCodeResult, error) {
	email := in.Email
	if strings.TrimSpace(email) == "" {
		// No email is known yet, nothing useful to audit.
		return nil, fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}

	// Hard allow-list of one identity. Comparison is case-insensitive; the
	// address is stored exactly as received.
	if !strings.EqualFold(email, s.adminEmail) {
		s.sink.Record(ctx, email, domain.ActionRequestCodeFail, meta,
			map[string]any{"error": "unauthorized email address"})
		return nil, fmt.Errorf("unauthorized email address: %w", domain.ErrForbidden)
	}

	code, err := authcode.New()
	if err != nil {
		s.sink.Record(ctx, email, domain.ActionRequestCodeFail, meta,
			map[string]any{"error": err.Error()})
		return nil, err
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.codeExpiry)

	// Delete-then-insert keeps the single-active-code invariant. DynamoDB has
	// no cross-item transaction here; a racing request-code leaves last
	// writer wins, which the verify query tolerates (unexpired, newest
	// first).
	if err := s.codes.DeleteAllForEmail(ctx, email); err != nil {
		s.sink.Record(ctx, email, domain.ActionRequestCodeFail, meta,
			map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("failed to store authentication code: %w", err)
	}
	row := &domain.AuthCode{
		Email:     email,
		CodeID:    id.New(),
		Code:      code,
		ExpiresAt: expiresAt.Unix(),
		Attempts:  0,
		CreatedAt: now.Unix(),
	}
	if err := s.codes.Put(ctx, row); err != nil {
		s.sink.Record(ctx, email, domain.ActionRequestCodeFail, meta,
			map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("failed to store authentication code: %w", err)
	}

	// Delivery failure fails the whole operation. The stored row stays: it
	// will never reach the user, and is superseded by the next request or
	// reaped at expiry.
	if err := s.sender.SendAuthCode(ctx, email, code, s.codeExpiry); err != nil {
		s.sink.Record(ctx, email, domain.ActionRequestCodeFail, meta,
			map[string]any{"error": err.Error()})
		return nil, err
	}

	s.sink.Record(ctx, email, domain.ActionRequestCode, meta, map[string]any{
		"expires_at":     expiresAt.Format(time.RFC3339),
		"expiry_minutes": int(s.codeExpiry.Minutes()),
	})

	return &RequestCodeResult{ExpiresIn: int(s.codeExpiry.Seconds())}, nil
}

// VerifyCode checks a submitted code against the active one and mints a
// session token on success. Per code row: fewer than five failed attempts and
// an unexpired match are required; the row is deleted on success (single-use)
// and retained when blocked.
func (s *service) VerifyCode(ctx context.Context, in VerifyCodeInput, meta audit.Meta) (*VerifyCodeResult, error) {
	if in.Email == "" || in.Code == "" {
		return nil, fmt.Errorf("email and code are required: %w", domain.ErrBadRequest)
	}

	now := s.now().UTC()
	row, err := s.codes.FindActive(ctx, in.Email, in.Code, now.Unix())
	if err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("database error: %w", err)
		}
		// Wrong code, expired code, or no code at all. Whatever code is
		// currently active absorbs the failed attempt: guessing unrelated
		// wrong codes cannot reset the brute-force budget. The response must
		// not reveal whether an active code exists.
		if err := s.codes.IncrementAttempts(ctx, in.Email, now.Unix()); err != nil {
			slog.Warn("failed to increment code attempts", "email", in.Email, "err", err)
		}
		s.sink.Record(ctx, in.Email, domain.ActionVerifyFail, meta,
			map[string]any{"reason": "invalid_or_expired_code"})
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}

	if row.Attempts >= domain.MaxCodeAttempts {
		s.sink.Record(ctx, in.Email, domain.ActionCodeBlocked, meta, map[string]any{
			"attempts": row.Attempts,
			"code_id":  row.CodeID,
		})
		// The row stays in storage: every further verify lands back here
		// until the code expires or a new request-code supersedes it.
		if s.alerter != nil {
			if err := s.alerter.PublishAlert(ctx, "Frelsi login code blocked",
				fmt.Sprintf("Login code for %s blocked after %d failed attempts (ip %s)", in.Email, row.Attempts, meta.IP)); err != nil {
				slog.Warn("failed to publish block alert", "err", err)
			}
		}
		return nil, fmt.Errorf("code blocked after %d failed attempts: %w", row.Attempts, domain.ErrCodeBlocked)
	}

	// Success: consume the row before handing out a token.
	if err := s.codes.Delete(ctx, in.Email, row.CodeID); err != nil {
		return nil, fmt.Errorf("failed to consume authentication code: %w", err)
	}

	token, err := s.signer.Sign(in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.sink.Record(ctx, in.Email, domain.ActionVerifySuccess, meta, map[string]any{
		"code_id":  row.CodeID,
		"attempts": row.Attempts,
	})

	return &VerifyCodeResult{Token: token, Email: in.Email}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
