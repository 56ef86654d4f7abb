package routes

import (
	"clinicbook/cmd/internal/auth"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/time/rate"
)

const identityKey = "identity"

var errNoIdentity = errors.New("no authenticated identity on request context")

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*auth.Identity, apierror.ErrorResponse)
}

// Authenticate resolves the caller and stores the identity on the context.
func Authenticate(guard Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, apierr := guard.Authenticate(c.Request().Context(), auth.TokenFromRequest(c.Request()))
			if apierr != nil {
				return c.JSON(apierr.Code(), apierr)
			}
			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// RequireRoles must run after Authenticate.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, _ := c.Get(identityKey).(*auth.Identity)
			if apierr := auth.Authorize(identity, roles...); apierr != nil {
				return c.JSON(apierr.Code(), apierr)
			}
			return next(c)
		}
	}
}

func IdentityFromCtx(c echo.Context) (*auth.Identity, error) {
	identity, ok := c.Get(identityKey).(*auth.Identity)
	if !ok || identity == nil {
		return nil, errNoIdentity
	}
	return identity, nil
}

// RateLimit allows max requests per window for each client IP.
func RateLimit(max int, window time.Duration) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(max) / window.Seconds()),
		Burst:     max,
		ExpiresIn: window,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(apierror.InternalServerError.Code(), apierror.InternalServerError)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			log.Warnf("rate limit exceeded for %s", identifier)
			return c.JSON(apierror.TooManyRequests.Code(), apierror.TooManyRequests)
		},
	})
}

// ErrorHandler renders every unhandled error in the apierror shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apierr apierror.ErrorResponse
	var he *echo.HTTPError
	switch {
	case errors.As(err, &apierr):
	case errors.As(err, &he) && he.Code == http.StatusNotFound:
		apierr = apierror.RouteNotFoundError
	case errors.As(err, &he) && he.Code < http.StatusInternalServerError:
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		apierr = apierror.NewSimple(he.Code, msg)
	default:
		log.Errorf("unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
		apierr = apierror.InternalServerError
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apierr.Code())
		return
	}
	if werr := c.JSON(apierr.Code(), apierr); werr != nil {
		log.Errorf("failed to write error response: %v", werr)
	}
}
