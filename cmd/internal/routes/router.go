package routes

import (
	"clinicbook/cmd/internal/domain/entity"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Users        *DefaultUserRoute
	Doctors      *DefaultDoctorRoute
	Appointments *DefaultAppointmentRoute
	Locations    *DefaultLocationRoute
}

// Register mounts the API. Every protected route declares its own
// authentication and role requirements.
func Register(e *echo.Echo, h *Handlers, guard Authenticator, mw ...echo.MiddlewareFunc) {
	authed := Authenticate(guard)
	adminOnly := RequireRoles(entity.RoleAdmin)
	clinicStaff := RequireRoles(entity.AdminRoles...)

	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api", mw...)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Users.Register)
	authGroup.POST("/login", h.Users.Login)
	authGroup.POST("/forgot-password", h.Users.ForgotPassword)
	authGroup.POST("/reset-password", h.Users.ResetPassword)
	authGroup.GET("/me", h.Users.GetMe, authed)
	authGroup.PUT("/update-profile", h.Users.UpdateProfile, authed)
	authGroup.PUT("/change-password", h.Users.ChangePassword, authed)

	api.GET("/users", h.Users.GetUsers, authed, adminOnly)
	api.PATCH("/users/:id/active", h.Users.SetActive, authed, adminOnly)

	api.GET("/doctors", h.Doctors.GetDoctors)
	api.GET("/doctors/:id", h.Doctors.GetDoctor)
	api.POST("/doctors", h.Doctors.CreateDoctor, authed, adminOnly)
	api.PUT("/doctors/:id", h.Doctors.UpdateDoctor, authed, adminOnly)
	api.DELETE("/doctors/:id", h.Doctors.DeleteDoctor, authed, adminOnly)
	api.GET("/doctors/:id/appointments", h.Appointments.GetDoctorAppointments, authed, adminOnly)

	api.GET("/appointments/all", h.Appointments.GetAllAppointments, authed, clinicStaff)
	api.PATCH("/appointments/:id/status", h.Appointments.UpdateStatus, authed, clinicStaff)
	api.GET("/appointments/my-appointments", h.Appointments.GetMyAppointments, authed)
	api.POST("/appointments", h.Appointments.CreateAppointment, authed)
	api.GET("/appointments/:id", h.Appointments.GetAppointment, authed)
	api.PATCH("/appointments/:id/cancel", h.Appointments.CancelAppointment, authed)

	api.GET("/locations", h.Locations.GetLocations)
	api.POST("/locations", h.Locations.CreateLocation, authed, adminOnly)
}
