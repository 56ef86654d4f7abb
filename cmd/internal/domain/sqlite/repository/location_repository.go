package repository

import (
	"clinicbook/cmd/internal/domain/entity"
	"context"

	"gorm.io/gorm"
)

type DefaultLocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *DefaultLocationRepository {
	return &DefaultLocationRepository{db: db}
}

func (l *DefaultLocationRepository) FindAll(ctx context.Context) ([]*entity.Location, error) {
	var locs []*entity.Location
	err := l.db.WithContext(ctx).Order("city asc, name asc").Find(&locs).Error
	return locs, err
}

func (l *DefaultLocationRepository) Create(ctx context.Context, loc *entity.Location) error {
	return l.db.WithContext(ctx).Create(loc).Error
}
