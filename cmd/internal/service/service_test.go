package service

import (
	"clinicbook/cmd/internal/auth"
	"clinicbook/cmd/internal/domain/entity"
	"clinicbook/cmd/internal/domain/sqlite"
	"clinicbook/cmd/internal/domain/sqlite/repository"
	"clinicbook/cmd/internal/notify"
	"clinicbook/cmd/internal/utils/validators"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) { c.Set(c.Now().Add(d)) }

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	snaps  []notify.Snapshot
	resets []string
}

func (n *recordingNotifier) Notify(event notify.Event, snap notify.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	n.snaps = append(n.snaps, snap)
}

func (n *recordingNotifier) SendPasswordReset(to, _, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, to)
}

func (n *recordingNotifier) Events() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

type fixture struct {
	clock    *fakeClock
	notifier *recordingNotifier
	tokens   *auth.TokenService
	guard    *auth.Guard

	users        *repository.DefaultUserRepository
	doctors      *repository.DefaultDoctorRepository
	appointments *repository.DefaultAppointmentRepository

	userSvc   *DefaultUserService
	apptSvc   *DefaultAppointmentService
	doctorSvc *DefaultDoctorService
	locSvc    *DefaultLocationService
}

// newFixture wires every service against a fresh database. The clock starts
// on Monday 2099-01-05 08:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "clinic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	f := &fixture{
		clock:        &fakeClock{t: time.Date(2099, 1, 5, 8, 0, 0, 0, time.UTC)},
		notifier:     &recordingNotifier{},
		users:        repository.NewUserRepository(db),
		doctors:      repository.NewDoctorRepository(db),
		appointments: repository.NewAppointmentRepository(db),
	}

	tokens, err := auth.NewTokenService("test-secret", 24*time.Hour)
	require.NoError(t, err)
	f.tokens = tokens.WithClock(f.clock.Now)
	f.guard = auth.NewGuard(f.tokens, f.users)

	validate := validators.New()

	f.userSvc = NewUserService(f.users, f.tokens, f.notifier, validate)
	f.userSvc.Now = f.clock.Now

	f.apptSvc = NewAppointmentService(f.appointments, f.doctors, f.users, f.notifier, validate, time.UTC)
	f.apptSvc.Now = f.clock.Now

	f.doctorSvc = NewDoctorService(f.doctors, f.apptSvc, validate)
	f.doctorSvc.Now = f.clock.Now

	f.locSvc = NewLocationService(repository.NewLocationRepository(db), validate)
	f.locSvc.Now = f.clock.Now
	return f
}

// patient stores a user directly, skipping bcrypt.
func (f *fixture) patient(t *testing.T, name string) *auth.Identity {
	t.Helper()
	return f.user(t, name, entity.RolePatient)
}

func (f *fixture) identity(userID string) *auth.Identity {
	return &auth.Identity{UserID: userID, Role: entity.RolePatient}
}

func (f *fixture) admin(t *testing.T) *auth.Identity {
	t.Helper()
	return f.user(t, "Admin", entity.RoleAdmin)
}

func (f *fixture) user(t *testing.T, name, role string) *auth.Identity {
	t.Helper()
	id := uuid.NewString()
	err := f.users.Create(context.Background(), &entity.User{
		ID:           id,
		Name:         name,
		Email:        id[:8] + "@patients.test",
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	})
	require.NoError(t, err)
	return &auth.Identity{UserID: id, Role: role}
}

// doctor works Monday to Saturday, 09:00-17:00.
func (f *fixture) doctor(t *testing.T) *DoctorResponse {
	t.Helper()
	doc, apierr := f.doctorSvc.CreateDoctor(context.Background(), &DoctorRequest{
		Name:           "Dr. House",
		Email:          uuid.NewString()[:8] + "@clinic.test",
		Specialization: "Diagnostics",
		ClinicFee:      50,
		Location:       "Princeton",
		AvailableFrom:  "09:00",
		AvailableTo:    "17:00",
		AvailableDays:  []int{1, 2, 3, 4, 5, 6},
	})
	require.Nil(t, apierr)
	return doc
}

func (f *fixture) book(t *testing.T, caller *auth.Identity, doctorID, date, slot string) *AppointmentResponse {
	t.Helper()
	appt, apierr := f.apptSvc.CreateAppointment(context.Background(), &AppointmentRequest{
		DoctorID:  doctorID,
		Date:      date,
		TimeSlot:  slot,
		VisitType: entity.VisitClinic,
	}, caller)
	require.Nil(t, apierr)
	return appt
}
