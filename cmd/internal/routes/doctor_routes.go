package routes

import (
	"clinicbook/cmd/internal/service"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type DoctorService interface {
	GetDoctors(ctx context.Context) ([]*service.DoctorResponse, apierror.ErrorResponse)
	GetDoctor(ctx context.Context, id string) (*service.DoctorResponse, apierror.ErrorResponse)
	CreateDoctor(ctx context.Context, req *service.DoctorRequest) (*service.DoctorResponse, apierror.ErrorResponse)
	UpdateDoctor(ctx context.Context, id string, req *service.DoctorRequest) (*service.DoctorResponse, apierror.ErrorResponse)
	DeleteDoctor(ctx context.Context, id string) apierror.ErrorResponse
}

type DefaultDoctorRoute struct {
	DoctorService DoctorService
}

func NewDoctorDefault(doctorService DoctorService) *DefaultDoctorRoute {
	return &DefaultDoctorRoute{DoctorService: doctorService}
}

func (d *DefaultDoctorRoute) GetDoctors(c echo.Context) error {
	docs, apierr := d.DoctorService.GetDoctors(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"results": len(docs), "doctors": docs}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDoctorRoute) GetDoctor(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	doc, apierr := d.DoctorService.GetDoctor(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"doctor": doc})
}

func (d *DefaultDoctorRoute) CreateDoctor(c echo.Context) error {
	var req service.DoctorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	doc, apierr := d.DoctorService.CreateDoctor(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, echo.Map{"doctor": doc})
}

func (d *DefaultDoctorRoute) UpdateDoctor(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	var req service.DoctorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	doc, apierr := d.DoctorService.UpdateDoctor(c.Request().Context(), id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"doctor": doc})
}

func (d *DefaultDoctorRoute) DeleteDoctor(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	if apierr := d.DoctorService.DeleteDoctor(c.Request().Context(), id); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}
