package service

import (
	"clinicbook/cmd/internal/domain/entity"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, email string) *AuthResponse {
	t.Helper()
	resp, apierr := f.userSvc.Register(context.Background(), &RegisterRequest{
		Name:     "Pat",
		Email:    email,
		Password: "secret123",
	})
	require.Nil(t, apierr)
	return resp
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := register(t, f, " Pat@Example.com ")
	require.Equal(t, "pat@example.com", resp.User.Email)
	require.Equal(t, entity.RolePatient, resp.User.Role)
	require.True(t, resp.User.Active)
	require.NotEmpty(t, resp.Token)

	_, apierr := f.userSvc.Register(ctx, &RegisterRequest{Name: "Other", Email: "PAT@example.com", Password: "secret123"})
	require.Equal(t, apierror.EmailTakenError, apierr)

	_, apierr = f.userSvc.Register(ctx, &RegisterRequest{Name: "Weak", Email: "weak@example.com", Password: "password"})
	require.NotNil(t, apierr)
	require.Equal(t, apierror.KindInvalidInput, apierr.Kind())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := register(t, f, "pat@example.com")

	_, apierr := f.userSvc.Login(ctx, &LoginRequest{Email: "pat@example.com", Password: "wrong123"})
	require.Equal(t, apierror.InvalidCredentialsError, apierr)

	_, apierr = f.userSvc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	require.Equal(t, apierror.InvalidCredentialsError, apierr)

	resp, apierr := f.userSvc.Login(ctx, &LoginRequest{Email: "PAT@example.com", Password: "secret123"})
	require.Nil(t, apierr)
	require.Equal(t, registered.User.ID, resp.User.ID)

	admin := f.admin(t)
	active := false
	_, apierr = f.userSvc.SetActive(ctx, admin, registered.User.ID, &SetActiveRequest{Active: &active})
	require.Nil(t, apierr)

	_, apierr = f.userSvc.Login(ctx, &LoginRequest{Email: "pat@example.com", Password: "secret123"})
	require.Equal(t, apierror.DeactivatedUserError, apierr)

	_, apierr = f.guard.Authenticate(ctx, resp.Token)
	require.Equal(t, apierror.DeactivatedUserError, apierr)
}

func TestChangePasswordRotatesTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := register(t, f, "pat@example.com")

	caller, apierr := f.guard.Authenticate(ctx, old.Token)
	require.Nil(t, apierr)

	f.clock.Advance(time.Second)
	_, apierr = f.userSvc.ChangePassword(ctx, caller, &ChangePasswordRequest{CurrentPassword: "nope1234", NewPassword: "another123"})
	require.Equal(t, apierror.WrongPasswordError, apierr)

	fresh, apierr := f.userSvc.ChangePassword(ctx, caller, &ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another123"})
	require.Nil(t, apierr)

	_, apierr = f.guard.Authenticate(ctx, old.Token)
	require.Equal(t, apierror.StaleAuthTokenError, apierr)

	_, apierr = f.guard.Authenticate(ctx, fresh.Token)
	require.Nil(t, apierr)

	_, apierr = f.userSvc.Login(ctx, &LoginRequest{Email: "pat@example.com", Password: "another123"})
	require.Nil(t, apierr)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := register(t, f, "pat@example.com")
	f.userSvc.ExposeResetToken = true

	_, apierr := f.userSvc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "ghost@example.com"})
	require.Equal(t, apierror.UserEmailNotFoundError, apierr)

	forgot, apierr := f.userSvc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "pat@example.com"})
	require.Nil(t, apierr)
	require.NotEmpty(t, forgot.ResetToken)
	require.Equal(t, []string{"pat@example.com"}, f.notifier.resets)

	f.clock.Advance(time.Minute)
	reset, apierr := f.userSvc.ResetPassword(ctx, &ResetPasswordRequest{Token: forgot.ResetToken, Password: "another123"})
	require.Nil(t, apierr)
	require.NotEmpty(t, reset.Token)

	_, apierr = f.guard.Authenticate(ctx, old.Token)
	require.Equal(t, apierror.StaleAuthTokenError, apierr)

	_, apierr = f.userSvc.ResetPassword(ctx, &ResetPasswordRequest{Token: forgot.ResetToken, Password: "third1234"})
	require.Equal(t, apierror.InvalidResetTokenError, apierr)
}

func TestPasswordResetTokenExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	register(t, f, "pat@example.com")

	forgot, apierr := f.userSvc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "pat@example.com"})
	require.Nil(t, apierr)
	require.Empty(t, forgot.ResetToken)

	f.userSvc.ExposeResetToken = true
	forgot, apierr = f.userSvc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "pat@example.com"})
	require.Nil(t, apierr)

	f.clock.Advance(resetTokenTTL + time.Second)
	_, apierr = f.userSvc.ResetPassword(ctx, &ResetPasswordRequest{Token: forgot.ResetToken, Password: "another123"})
	require.Equal(t, apierror.InvalidResetTokenError, apierr)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pat := register(t, f, "pat@example.com")
	register(t, f, "taken@example.com")
	caller, apierr := f.guard.Authenticate(ctx, pat.Token)
	require.Nil(t, apierr)

	taken := "Taken@example.com"
	_, apierr = f.userSvc.UpdateProfile(ctx, caller, &UpdateProfileRequest{Email: &taken})
	require.Equal(t, apierror.EmailTakenError, apierr)

	name, blank := "Patricia", "  "
	resp, apierr := f.userSvc.UpdateProfile(ctx, caller, &UpdateProfileRequest{Name: &name, Email: &blank})
	require.Nil(t, apierr)
	require.Equal(t, "Patricia", resp.Name)
	require.Equal(t, "pat@example.com", resp.Email)

	same := "PAT@example.com"
	resp, apierr = f.userSvc.UpdateProfile(ctx, caller, &UpdateProfileRequest{Email: &same})
	require.Nil(t, apierr)
	require.Equal(t, "pat@example.com", resp.Email)

	me, apierr := f.userSvc.GetMe(ctx, caller)
	require.Nil(t, apierr)
	require.Equal(t, "Patricia", me.Name)
}

func TestSetActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	pat := f.patient(t, "Pat")

	off := false
	_, apierr := f.userSvc.SetActive(ctx, admin, admin.UserID, &SetActiveRequest{Active: &off})
	require.Equal(t, apierror.SelfDeactivationError, apierr)

	_, apierr = f.userSvc.SetActive(ctx, admin, "missing", &SetActiveRequest{Active: &off})
	require.Equal(t, apierror.UserNotFoundError, apierr)

	_, apierr = f.userSvc.SetActive(ctx, admin, pat.UserID, &SetActiveRequest{})
	require.NotNil(t, apierr)

	resp, apierr := f.userSvc.SetActive(ctx, admin, pat.UserID, &SetActiveRequest{Active: &off})
	require.Nil(t, apierr)
	require.False(t, resp.Active)

	users, apierr := f.userSvc.GetUsers(ctx)
	require.Nil(t, apierr)
	require.Len(t, users, 2)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.Equal(t, apierror.AdminCredentialsMissing, f.userSvc.EnsureAdmin(ctx, "", "secret123"))

	register(t, f, "pat@example.com")
	require.Equal(t, apierror.AdminEmailTakenError, f.userSvc.EnsureAdmin(ctx, "PAT@example.com", "secret123"))

	require.NoError(t, f.userSvc.EnsureAdmin(ctx, "root@clinic.test", "secret123"))
	require.NoError(t, f.userSvc.EnsureAdmin(ctx, "root@clinic.test", "secret123"))
	require.NoError(t, f.userSvc.EnsureAdmin(ctx, "other@clinic.test", "secret123"))
	require.NoError(t, f.userSvc.EnsureAdmin(ctx, "", ""))

	users, err := f.users.FindAll(ctx)
	require.NoError(t, err)
	admins := 0
	for _, u := range users {
		if u.Role == entity.RoleAdmin {
			admins++
		}
	}
	require.Equal(t, 1, admins)

	resp, apierr := f.userSvc.Login(ctx, &LoginRequest{Email: "root@clinic.test", Password: "secret123"})
	require.Nil(t, apierr)
	require.Equal(t, entity.RoleAdmin, resp.User.Role)
}
