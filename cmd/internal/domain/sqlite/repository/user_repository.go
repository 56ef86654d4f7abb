package repository

import (
	"clinicbook/cmd/internal/domain/entity"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (u *DefaultUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	var users []*entity.User
	if len(ids) == 0 {
		return users, nil
	}
	err := u.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (u *DefaultUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (u *DefaultUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&entity.User{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (u *DefaultUserRepository) FindFirstByRole(ctx context.Context, role string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).Where("role = ?", role).Order("created_at asc").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// FindByResetToken only matches tokens that are still valid at now (epoch millis).
func (u *DefaultUserRepository) FindByResetToken(ctx context.Context, hash string, now int64) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).
		Where("reset_token_hash = ?", hash).
		Where("reset_token_expiry > ?", now).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (u *DefaultUserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User
	err := u.db.WithContext(ctx).Order("created_at asc").Find(&users).Error
	return users, err
}

func (u *DefaultUserRepository) Create(ctx context.Context, user *entity.User) error {
	user.Email = normalizeEmail(user.Email)
	return translate(u.db.WithContext(ctx).Create(user).Error)
}

func (u *DefaultUserRepository) Save(ctx context.Context, user *entity.User) error {
	user.Email = normalizeEmail(user.Email)
	return translate(u.db.WithContext(ctx).Save(user).Error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
