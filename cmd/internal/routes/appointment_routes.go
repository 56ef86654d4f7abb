package routes

import (
	"clinicbook/cmd/internal/auth"
	"clinicbook/cmd/internal/service"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	CreateAppointment(ctx context.Context, req *service.AppointmentRequest, caller *auth.Identity) (*service.AppointmentResponse, apierror.ErrorResponse)
	CancelAppointment(ctx context.Context, id string, caller *auth.Identity) (*service.AppointmentResponse, apierror.ErrorResponse)
	UpdateStatus(ctx context.Context, id string, req *service.StatusRequest, caller *auth.Identity) (*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointment(ctx context.Context, id string, caller *auth.Identity) (*service.AppointmentResponse, apierror.ErrorResponse)
	GetMyAppointments(ctx context.Context, caller *auth.Identity) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAllAppointments(ctx context.Context) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetDoctorAppointments(ctx context.Context, doctorID string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	caller, err := IdentityFromCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.MissingAuthTokenError)
	}

	appt, apierr := a.AppointmentService.CreateAppointment(c.Request().Context(), &req, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, echo.Map{"appointment": appt})
}

func (a *DefaultAppointmentRoute) GetMyAppointments(c echo.Context) error {
	caller, err := IdentityFromCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.MissingAuthTokenError)
	}

	appts, apierr := a.AppointmentService.GetMyAppointments(c.Request().Context(), caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appointmentList(appts))
}

func (a *DefaultAppointmentRoute) GetAllAppointments(c echo.Context) error {
	appts, apierr := a.AppointmentService.GetAllAppointments(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appointmentList(appts))
}

func (a *DefaultAppointmentRoute) GetDoctorAppointments(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	appts, apierr := a.AppointmentService.GetDoctorAppointments(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appointmentList(appts))
}

func (a *DefaultAppointmentRoute) GetAppointment(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	caller, err := IdentityFromCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.MissingAuthTokenError)
	}

	appt, apierr := a.AppointmentService.GetAppointment(c.Request().Context(), id, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": appt})
}

func (a *DefaultAppointmentRoute) CancelAppointment(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	caller, err := IdentityFromCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.MissingAuthTokenError)
	}

	appt, apierr := a.AppointmentService.CancelAppointment(c.Request().Context(), id, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": appt})
}

func (a *DefaultAppointmentRoute) UpdateStatus(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	var req service.StatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	caller, err := IdentityFromCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.MissingAuthTokenError)
	}

	appt, apierr := a.AppointmentService.UpdateStatus(c.Request().Context(), id, &req, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": appt})
}

func appointmentList(appts []*service.AppointmentResponse) *echo.Map {
	return &echo.Map{"results": len(appts), "appointments": appts}
}
