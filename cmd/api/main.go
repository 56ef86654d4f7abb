package main

import (
	"clinicbook/cmd/internal/auth"
	"clinicbook/cmd/internal/config"
	"clinicbook/cmd/internal/domain/sqlite"
	"clinicbook/cmd/internal/domain/sqlite/repository"
	sesclient "clinicbook/cmd/internal/integration/aws/ses"
	"clinicbook/cmd/internal/notify"
	"clinicbook/cmd/internal/routes"
	"clinicbook/cmd/internal/service"
	"clinicbook/cmd/internal/utils/validators"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	log.SetLevel(cfg.LogLevel)

	validate := validators.New()

	// Init SQLite
	db, err := sqlite.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		log.Fatal("failed to initialize token service: ", err)
	}

	// Outbound email
	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SESEnabled {
		ses, err := sesclient.InitSESClient(context.Background(), cfg.AWSRegion, cfg.EmailFrom)
		if err != nil {
			log.Fatal("failed to initialize ses client: ", err)
		}
		mailer = ses
	}
	dispatcher := notify.NewDispatcher(mailer, cfg.NotifyTimeout)

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	locationRepo := repository.NewLocationRepository(db)

	// Getting services
	userService := service.NewUserService(userRepo, tokens, dispatcher, validate)
	userService.ExposeResetToken = cfg.IsDevelopment()
	apptService := service.NewAppointmentService(apptRepo, doctorRepo, userRepo, dispatcher, validate, cfg.ClinicLocation)
	doctorService := service.NewDoctorService(doctorRepo, apptService, validate)
	locationService := service.NewLocationService(locationRepo, validate)

	if err := userService.EnsureAdmin(context.Background(), cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
		log.Errorf("admin bootstrap failed, continuing without it: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = routes.ErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORS())
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit("10K"))
	if cfg.IsDevelopment() {
		e.Use(middleware.Logger())
	}

	routes.Register(e, &routes.Handlers{
		Users:        routes.NewUserDefault(userService, tokens.TTL(), !cfg.IsDevelopment()),
		Doctors:      routes.NewDoctorDefault(doctorService),
		Appointments: routes.NewAppointmentDefault(apptService),
		Locations:    routes.NewLocationDefault(locationService),
	}, auth.NewGuard(tokens, userRepo), routes.RateLimit(cfg.RateLimitMax, cfg.RateLimitWindow))

	go func() {
		log.Infof("listening on :%s (%s)", cfg.Port, cfg.AppEnv)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("http shutdown: %v", err)
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.Warnf("pending notifications dropped: %v", err)
	}
	if err := sqlite.Close(db); err != nil {
		log.Errorf("closing database: %v", err)
	}
}
