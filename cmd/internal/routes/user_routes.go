package routes

import (
	"clinicbook/cmd/internal/auth"
	"clinicbook/cmd/internal/service"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, req *service.RegisterRequest) (*service.AuthResponse, apierror.ErrorResponse)
	Login(ctx context.Context, req *service.LoginRequest) (*service.AuthResponse, apierror.ErrorResponse)
	GetMe(ctx context.Context, caller *auth.Identity) (*service.UserResponse, apierror.ErrorResponse)
	UpdateProfile(ctx context.Context, caller *auth.Identity, req *service.UpdateProfileRequest) (*service.UserResponse, apierror.ErrorResponse)
	ChangePassword(ctx context.Context, caller *auth.Identity, req *service.ChangePasswordRequest) (*service.AuthResponse, apierror.ErrorResponse)
	ForgotPassword(ctx context.Context, req *service.ForgotPasswordRequest) (*service.ForgotPasswordResponse, apierror.ErrorResponse)
	ResetPassword(ctx context.Context, req *service.ResetPasswordRequest) (*service.AuthResponse, apierror.ErrorResponse)
	GetUsers(ctx context.Context) ([]*service.UserResponse, apierror.ErrorResponse)
	SetActive(ctx context.Context, caller *auth.Identity, id string, req *service.SetActiveRequest) (*service.UserResponse, apierror.ErrorResponse)
}

type DefaultUserRoute struct {
	UserService UserService

	// TokenTTL bounds the auth cookie; SecureCookie is set outside development.
	TokenTTL     time.Duration
	SecureCookie bool
}

func NewUserDefault(userService UserService, tokenTTL time.Duration, secureCookie bool) *DefaultUserRoute {
	return &DefaultUserRoute{UserService: userService, TokenTTL: tokenTTL, SecureCookie: secureCookie}
}

func (u *DefaultUserRoute) Register(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.Register(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return u.withToken(c, http.StatusCreated, resp)
}

func (u *DefaultUserRoute) Login(c echo.Context) error {
	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.Login(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return u.withToken(c, http.StatusOK, resp)
}

func (u *DefaultUserRoute) GetMe(c echo.Context) error {
	caller, err := IdentityFromCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.MissingAuthTokenError)
	}

	user, apierr := u.UserService.GetMe(c.Request().Context(), caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (u *DefaultUserRoute) UpdateProfile(c echo.Context) error {
	var req service.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	caller, err := IdentityFromCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.MissingAuthTokenError)
	}

	user, apierr := u.UserService.UpdateProfile(c.Request().Context(), caller, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (u *DefaultUserRoute) ChangePassword(c echo.Context) error {
	var req service.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	caller, err := IdentityFromCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.MissingAuthTokenError)
	}

	resp, apierr := u.UserService.ChangePassword(c.Request().Context(), caller, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return u.withToken(c, http.StatusOK, resp)
}

func (u *DefaultUserRoute) ForgotPassword(c echo.Context) error {
	var req service.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.ForgotPassword(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (u *DefaultUserRoute) ResetPassword(c echo.Context) error {
	var req service.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.ResetPassword(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return u.withToken(c, http.StatusOK, resp)
}

func (u *DefaultUserRoute) GetUsers(c echo.Context) error {
	users, apierr := u.UserService.GetUsers(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"users": users}
	return c.JSON(http.StatusOK, &resp)
}

func (u *DefaultUserRoute) SetActive(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	var req service.SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	caller, err := IdentityFromCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.MissingAuthTokenError)
	}

	user, apierr := u.UserService.SetActive(c.Request().Context(), caller, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// withToken mirrors the issued token into the fallback cookie.
func (u *DefaultUserRoute) withToken(c echo.Context, status int, resp *service.AuthResponse) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  time.Now().Add(u.TokenTTL),
		HttpOnly: true,
		Secure:   u.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(status, resp)
}
