package auth

import (
	"clinicbook/cmd/internal/utils"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret  = errors.New("token signing key is not configured")
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("expired token")
)

type Claims struct {
	UserID string `json:"uid"`
	// IssuedAtMs keeps millisecond precision so a credential rotation in the
	// same second as issuance still invalidates the token.
	IssuedAtMs int64 `json:"iat_ms"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 identity tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    utils.Clock
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: utils.SystemClock}, nil
}

// WithClock returns a copy of the service reading time from clock.
func (s *TokenService) WithClock(clock utils.Clock) *TokenService {
	cp := *s
	cp.now = clock
	return &cp
}

func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	c := Claims{
		UserID:     userID,
		IssuedAtMs: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify has no side effects. It fails with ErrExpiredToken past expiry and
// ErrMalformedToken for anything else that does not check out.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrMalformedToken
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrMalformedToken
	}

	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || c.UserID == "" {
		return nil, ErrMalformedToken
	}
	if c.IssuedAtMs == 0 && c.IssuedAt != nil {
		c.IssuedAtMs = c.IssuedAt.UnixMilli()
	}
	return c, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
