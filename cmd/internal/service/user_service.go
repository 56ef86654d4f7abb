package service

import (
	"clinicbook/cmd/internal/auth"
	"clinicbook/cmd/internal/domain/entity"
	"clinicbook/cmd/internal/domain/sqlite/repository"
	"clinicbook/cmd/internal/utils"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const resetTokenTTL = 10 * time.Minute

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindFirstByRole(ctx context.Context, role string) (*entity.User, error)
	FindByResetToken(ctx context.Context, hash string, now int64) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Save(ctx context.Context, user *entity.User) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type ResetMailer interface {
	SendPasswordReset(to, name, token string)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64,nospaces,hasletter,hasdigit"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=64"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=80"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=64,nospaces,hasletter,hasdigit"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=64,nospaces,hasletter,hasdigit"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

type DefaultUserService struct {
	UserRepo UserRepository
	Tokens   TokenIssuer
	Mailer   ResetMailer
	Validate *validator.Validate
	Now      utils.Clock

	// ExposeResetToken echoes reset tokens in the API response (development only).
	ExposeResetToken bool
}

func NewUserService(userRepo UserRepository, tokens TokenIssuer, mailer ResetMailer, validate *validator.Validate) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, Tokens: tokens, Mailer: mailer, Validate: validate, Now: utils.SystemClock}
}

func (u *DefaultUserService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return nil, apierror.InternalServerError
	}
	if found {
		return nil, apierror.EmailTakenError
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Errorf("failed to hash password: %v", err)
		return nil, apierror.InternalServerError
	}

	now := u.Now().UnixMilli()
	user := &entity.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         entity.RolePatient,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = u.UserRepo.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apierror.EmailTakenError
	}
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return nil, apierror.InternalServerError
	}
	return u.authResponse(user)
}

func (u *DefaultUserService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.InvalidCredentialsError
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apierror.InvalidCredentialsError
	}
	if !user.Active {
		return nil, apierror.DeactivatedUserError
	}
	return u.authResponse(user)
}

func (u *DefaultUserService) GetMe(ctx context.Context, caller *auth.Identity) (*UserResponse, apierror.ErrorResponse) {
	user, apierr := u.fetchUser(ctx, caller.UserID)
	if apierr != nil {
		return nil, apierr
	}
	return toUserResponse(user), nil
}

func (u *DefaultUserService) UpdateProfile(ctx context.Context, caller *auth.Identity, req *UpdateProfileRequest) (*UserResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	req.Name = utils.OptionalString(req.Name)
	req.Email = utils.OptionalString(req.Email)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, apierr := u.fetchUser(ctx, caller.UserID)
	if apierr != nil {
		return nil, apierr
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		other, err := u.UserRepo.FindByEmail(ctx, *req.Email)
		if err != nil {
			log.Errorf("failed to check email availability for user %s: %v", user.ID, err)
			return nil, apierror.InternalServerError
		}
		if other != nil && other.ID != user.ID {
			return nil, apierror.EmailTakenError
		}
		user.Email = *req.Email
	}

	user.UpdatedAt = u.Now().UnixMilli()
	err := u.UserRepo.Save(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apierror.EmailTakenError
	}
	if err != nil {
		log.Errorf("failed to update profile of user %s: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return toUserResponse(user), nil
}

// ChangePassword rotates the credential, which invalidates every token
// issued before now. The response carries a fresh token.
func (u *DefaultUserService) ChangePassword(ctx context.Context, caller *auth.Identity, req *ChangePasswordRequest) (*AuthResponse, apierror.ErrorResponse) {
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, apierr := u.fetchUser(ctx, caller.UserID)
	if apierr != nil {
		return nil, apierr
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return nil, apierror.WrongPasswordError
	}

	if apierr := u.rotatePassword(ctx, user, req.NewPassword); apierr != nil {
		return nil, apierr
	}
	return u.authResponse(user)
}

func (u *DefaultUserService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) (*ForgotPasswordResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.UserEmailNotFoundError
	}

	raw, hash, err := auth.GenerateResetToken()
	if err != nil {
		log.Errorf("failed to generate reset token: %v", err)
		return nil, apierror.InternalServerError
	}

	expiry := u.Now().Add(resetTokenTTL).UnixMilli()
	user.ResetTokenHash = &hash
	user.ResetTokenExpiry = &expiry
	if err := u.UserRepo.Save(ctx, user); err != nil {
		log.Errorf("failed to store reset token for user %s: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}

	u.Mailer.SendPasswordReset(user.Email, user.Name, raw)

	resp := &ForgotPasswordResponse{Message: "Password reset token sent to email"}
	if u.ExposeResetToken {
		resp.ResetToken = raw
	}
	return resp, nil
}

func (u *DefaultUserService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*AuthResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByResetToken(ctx, auth.HashResetToken(req.Token), u.Now().UnixMilli())
	if err != nil {
		log.Errorf("failed to look up reset token: %v", err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.InvalidResetTokenError
	}

	user.ResetTokenHash = nil
	user.ResetTokenExpiry = nil
	if apierr := u.rotatePassword(ctx, user, req.Password); apierr != nil {
		return nil, apierr
	}
	return u.authResponse(user)
}

func (u *DefaultUserService) GetUsers(ctx context.Context) ([]*UserResponse, apierror.ErrorResponse) {
	users, err := u.UserRepo.FindAll(ctx)
	if err != nil {
		log.Errorf("failed to fetch all users: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)
	}
	return resp, nil
}

// SetActive is the soft (de)activation used instead of deleting accounts.
func (u *DefaultUserService) SetActive(ctx context.Context, caller *auth.Identity, id string, req *SetActiveRequest) (*UserResponse, apierror.ErrorResponse) {
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}
	if id == caller.UserID && !*req.Active {
		return nil, apierror.SelfDeactivationError
	}

	user, apierr := u.fetchUser(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	user.Active = *req.Active
	user.UpdatedAt = u.Now().UnixMilli()
	if err := u.UserRepo.Save(ctx, user); err != nil {
		log.Errorf("failed to update active flag of user %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	log.Infof("user %s active=%t (by %s)", id, user.Active, caller.UserID)
	return toUserResponse(user), nil
}

func (u *DefaultUserService) rotatePassword(ctx context.Context, user *entity.User, password string) apierror.ErrorResponse {
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Errorf("failed to hash password: %v", err)
		return apierror.InternalServerError
	}

	now := u.Now().UnixMilli()
	user.PasswordHash = hash
	user.PasswordChangedAt = &now
	user.UpdatedAt = now
	if err := u.UserRepo.Save(ctx, user); err != nil {
		log.Errorf("failed to update password of user %s: %v", user.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

func (u *DefaultUserService) fetchUser(ctx context.Context, id string) (*entity.User, apierror.ErrorResponse) {
	user, err := u.UserRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.UserNotFoundError
	}
	return user, nil
}

func (u *DefaultUserService) authResponse(user *entity.User) (*AuthResponse, apierror.ErrorResponse) {
	token, err := u.Tokens.Issue(user.ID)
	if err != nil {
		log.Errorf("failed to issue token for user %s: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return &AuthResponse{User: toUserResponse(user), Token: token}, nil
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: utils.FormatEpoch(user.CreatedAt),
		UpdatedAt: utils.FormatEpoch(user.UpdatedAt),
	}
}
