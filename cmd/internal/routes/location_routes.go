package routes

import (
	"clinicbook/cmd/internal/service"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type LocationService interface {
	GetLocations(ctx context.Context) ([]*service.LocationResponse, apierror.ErrorResponse)
	CreateLocation(ctx context.Context, req *service.LocationRequest) (*service.LocationResponse, apierror.ErrorResponse)
}

type DefaultLocationRoute struct {
	LocationService LocationService
}

func NewLocationDefault(locationService LocationService) *DefaultLocationRoute {
	return &DefaultLocationRoute{LocationService: locationService}
}

func (l *DefaultLocationRoute) GetLocations(c echo.Context) error {
	locs, apierr := l.LocationService.GetLocations(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"locations": locs})
}

func (l *DefaultLocationRoute) CreateLocation(c echo.Context) error {
	var req service.LocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	loc, apierr := l.LocationService.CreateLocation(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, echo.Map{"location": loc})
}
