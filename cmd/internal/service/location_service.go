package service

import (
	"clinicbook/cmd/internal/domain/entity"
	"clinicbook/cmd/internal/utils"
	"clinicbook/cmd/internal/utils/apierror"
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type LocationRepository interface {
	FindAll(ctx context.Context) ([]*entity.Location, error)
	Create(ctx context.Context, loc *entity.Location) error
}

type LocationRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"required,max=240"`
	City    string `json:"city" validate:"required,max=80"`
}

type LocationResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	CreatedAt string `json:"created_at"`
}

type DefaultLocationService struct {
	LocationRepo LocationRepository
	Validate     *validator.Validate
	Now          utils.Clock
}

func NewLocationService(locationRepo LocationRepository, validate *validator.Validate) *DefaultLocationService {
	return &DefaultLocationService{LocationRepo: locationRepo, Validate: validate, Now: utils.SystemClock}
}

func (l *DefaultLocationService) GetLocations(ctx context.Context) ([]*LocationResponse, apierror.ErrorResponse) {
	locs, err := l.LocationRepo.FindAll(ctx)
	if err != nil {
		log.Errorf("failed to fetch locations: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*LocationResponse, len(locs))
	for i, loc := range locs {
		resp[i] = toLocationResponse(loc)
	}
	return resp, nil
}

func (l *DefaultLocationService) CreateLocation(ctx context.Context, req *LocationRequest) (*LocationResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := l.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	now := l.Now().UnixMilli()
	loc := &entity.Location{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.LocationRepo.Create(ctx, loc); err != nil {
		log.Errorf("failed to save location: %v", err)
		return nil, apierror.InternalServerError
	}
	return toLocationResponse(loc), nil
}

func toLocationResponse(loc *entity.Location) *LocationResponse {
	return &LocationResponse{
		ID:        loc.ID,
		Name:      loc.Name,
		Address:   loc.Address,
		City:      loc.City,
		CreatedAt: utils.FormatEpoch(loc.CreatedAt),
	}
}
