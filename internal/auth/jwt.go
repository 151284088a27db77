// Package auth issues and checks HS256 bearer tokens for the single
// tracker owner.
package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bettracker/internal/config"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrBadCredentials = errors.New("bad credentials")
	ErrLoginDisabled  = errors.New("password login disabled")
)

type Claims struct {
	Role string `json:"role"`

	jwt.RegisteredClaims
}

type JWT struct {
	Secret   []byte
	TokenTTL time.Duration
	Issuer   string
}

func FromConfig(cfg config.AuthConfig) JWT {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return JWT{Secret: []byte(cfg.JWTSecret), TokenTTL: ttl, Issuer: cfg.Issuer}
}

func (j JWT) Sign(claims Claims) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.NotBefore == nil {
		claims.NotBefore = jwt.NewNumericDate(now.Add(-5 * time.Second))
	}
	if claims.ExpiresAt == nil {
		expiresAt = now.Add(j.TokenTTL)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	} else {
		expiresAt = claims.ExpiresAt.Time
	}
	if claims.Issuer == "" {
		claims.Issuer = j.Issuer
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expiresAt, nil
}

func (j JWT) Verify(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer))
	if err != nil {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return *c, nil
}

// Login swaps the configured owner password for a token.
func Login(j JWT, configured, given string) (string, time.Time, error) {
	if configured == "" {
		return "", time.Time{}, ErrLoginDisabled
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(given)) != 1 {
		return "", time.Time{}, ErrBadCredentials
	}
	return j.Sign(Claims{
		Role:             "owner",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "owner"},
	})
}
