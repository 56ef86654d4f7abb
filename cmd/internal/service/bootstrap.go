package service

import (
	"clinicbook/cmd/internal/auth"
	"clinicbook/cmd/internal/domain/entity"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// EnsureAdmin creates the initial administrator unless one already exists.
// It is idempotent and safe to call on every start.
func (u *DefaultUserService) EnsureAdmin(ctx context.Context, email, password string) error {
	admin, err := u.UserRepo.FindFirstByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("look up existing admin: %w", err)
	}
	if admin != nil {
		log.Infof("admin account already present (%s)", admin.Email)
		return nil
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return apierror.AdminCredentialsMissing
	}

	taken, err := u.UserRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check admin email: %w", err)
	}
	if taken {
		return apierror.AdminEmailTakenError
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := u.Now().UnixMilli()
	err = u.UserRepo.Create(ctx, &entity.User{
		ID:           uuid.NewString(),
		Name:         "Super Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Infof("admin account created (%s)", strings.ToLower(email))
	return nil
}
