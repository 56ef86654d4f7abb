package auth

import (
	"clinicbook/cmd/internal/domain/entity"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/gommon/log"
)

// CookieName is the fallback token carrier for browser clients.
const CookieName = "jwt"

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// Identity is what downstream authorization sees of an authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

func (i *Identity) HasRole(roles ...string) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

type Guard struct {
	tokens *TokenService
	users  UserFinder
}

func NewGuard(tokens *TokenService, users UserFinder) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate resolves a raw token to a live identity. Tokens issued
// before the user's last credential rotation are rejected.
func (g *Guard) Authenticate(ctx context.Context, raw string) (*Identity, apierror.ErrorResponse) {
	if raw == "" {
		return nil, apierror.MissingAuthTokenError
	}

	claims, err := g.tokens.Verify(raw)
	if errors.Is(err, ErrExpiredToken) {
		return nil, apierror.ExpiredAuthTokenError
	}
	if err != nil {
		return nil, apierror.InvalidAuthTokenError
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		log.Errorf("failed to load user %s for token: %v", claims.UserID, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.TokenUserGoneError
	}

	if user.PasswordChangedAt != nil && *user.PasswordChangedAt > claims.IssuedAtMs {
		return nil, apierror.StaleAuthTokenError
	}

	if !user.Active {
		return nil, apierror.DeactivatedUserError
	}

	return &Identity{UserID: user.ID, Role: user.Role}, nil
}

// Authorize is a pure role membership check. A nil identity means
// authentication never ran, which is treated as unauthenticated.
func Authorize(identity *Identity, allowed ...string) apierror.ErrorResponse {
	if identity == nil {
		return apierror.MissingAuthTokenError
	}
	if !identity.HasRole(allowed...) {
		return apierror.ForbiddenError
	}
	return nil
}

// TokenFromRequest prefers "Authorization: Bearer <token>" and falls back to
// the jwt cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
