package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/frelsi/frelsi-api/internal/config"
	"github.com/frelsi/frelsi-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload: the authenticated admin email plus the
// registered issued-at/expiry fields. The token is the only session state the
// server hands out, so verification needs no store lookup.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a process-wide secret.
type Provider struct {
	secret []byte
	expiry time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt signing secret is empty")
	}
	return &Provider{
		secret: []byte(cfg.JWTSecret),
		expiry: time.Duration(cfg.JWTExpiryDays) * 24 * time.Hour,
	}, nil
}

func (p *Provider) Sign(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify parses and validates a token. An expired token returns
// domain.ErrTokenExpired; every other failure (bad signature, malformed,
// wrong algorithm) is a generic verification error.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%v: %w", err, domain.ErrTokenExpired)
		}
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
