package service

import (
	"clinicbook/cmd/internal/auth"
	"clinicbook/cmd/internal/domain/entity"
	"clinicbook/cmd/internal/domain/schedule"
	"clinicbook/cmd/internal/domain/sqlite/repository"
	"clinicbook/cmd/internal/notify"
	"clinicbook/cmd/internal/utils"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const doctorRemovedNote = "Doctor is no longer available in the system"

type AppointmentRepository interface {
	Create(ctx context.Context, appt *entity.Appointment) error
	FindByID(ctx context.Context, id string) (*entity.Appointment, error)
	FindByPatientID(ctx context.Context, patientID string) ([]*entity.Appointment, error)
	FindByDoctorID(ctx context.Context, doctorID string) ([]*entity.Appointment, error)
	FindAll(ctx context.Context) ([]*entity.Appointment, error)
	UpdateStatus(ctx context.Context, id, from, to string, now int64) (bool, error)
}

type Notifier interface {
	Notify(event notify.Event, snap notify.Snapshot)
}

type AppointmentRequest struct {
	DoctorID  string  `json:"doctor" validate:"required"`
	Date      string  `json:"date" validate:"required,isodate"`
	TimeSlot  string  `json:"timeSlot" validate:"required"`
	VisitType string  `json:"type" validate:"required,oneof=clinic home"`
	Symptoms  *string `json:"symptoms" validate:"omitempty,max=1000"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type DoctorSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Specialization string   `json:"specialization"`
	Location       string   `json:"location"`
	ClinicFee      float64  `json:"clinicFee"`
	HomeVisitFee   *float64 `json:"homeVisitFee,omitempty"`
}

type PatientSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AppointmentResponse struct {
	ID        string          `json:"id"`
	DoctorID  string          `json:"doctor_id"`
	PatientID string          `json:"patient_id"`
	Doctor    *DoctorSummary  `json:"doctor,omitempty"`
	Patient   *PatientSummary `json:"patient,omitempty"`
	Date      string          `json:"date"`
	TimeSlot  string          `json:"timeSlot"`
	VisitType string          `json:"type"`
	Status    string          `json:"status"`
	Symptoms  *string         `json:"symptoms,omitempty"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// DefaultAppointmentService owns the appointment lifecycle. Every status
// change goes through a compare-and-set on the stored status, so two
// concurrent writers can never both win.
type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	DoctorRepo      DoctorRepository
	UserRepo        UserRepository
	Notifier        Notifier
	Validate        *validator.Validate
	Location        *time.Location
	Now             utils.Clock
}

func NewAppointmentService(apptRepo AppointmentRepository, doctorRepo DoctorRepository, userRepo UserRepository, notifier Notifier, validate *validator.Validate, loc *time.Location) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		DoctorRepo:      doctorRepo,
		UserRepo:        userRepo,
		Notifier:        notifier,
		Validate:        validate,
		Location:        loc,
		Now:             utils.SystemClock,
	}
}

func (a *DefaultAppointmentService) CreateAppointment(ctx context.Context, req *AppointmentRequest, caller *auth.Identity) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	req.Symptoms = utils.OptionalString(req.Symptoms)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	doctor, err := a.DoctorRepo.FindByID(ctx, req.DoctorID)
	if err != nil {
		log.Errorf("failed to fetch doctor %s: %v", req.DoctorID, err)
		return nil, apierror.InternalServerError
	}
	if doctor == nil {
		return nil, apierror.DoctorNotFoundError
	}

	slot, ok := schedule.ParseSlot(req.TimeSlot)
	if !ok {
		return nil, apierror.InvalidSlotError
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	window, err := schedule.NewWindow(doctor.AvailableFrom, doctor.AvailableTo, doctor.AvailableDays)
	if err != nil {
		log.Errorf("doctor %s has an unusable availability window: %v", doctor.ID, err)
		return nil, apierror.InvalidSlotError
	}
	if !window.Admits(date, slot) {
		return nil, apierror.InvalidSlotError
	}

	now := a.Now()
	if !schedule.SlotStart(date, slot, a.Location).After(now) {
		return nil, apierror.InvalidDateError
	}

	appt := &entity.Appointment{
		ID:        uuid.NewString(),
		DoctorID:  doctor.ID,
		PatientID: caller.UserID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		VisitType: req.VisitType,
		Status:    schedule.StatusPending,
		Symptoms:  req.Symptoms,
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}

	err = a.AppointmentRepo.Create(ctx, appt)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apierror.SlotTakenError
	}
	if err != nil {
		log.Errorf("failed to save appointment: %v", err)
		return nil, apierror.InternalServerError
	}

	patient, err := a.UserRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		log.Warnf("appointment %s booked but patient %s could not be loaded: %v", appt.ID, caller.UserID, err)
	}

	resp := toAppointmentResponse(appt, doctor, patient)
	a.notify(notify.EventCreated, resp)
	return resp, nil
}

// CancelAppointment is the patient-facing cancel. Patients only see their
// own appointments; admins may cancel any.
func (a *DefaultAppointmentService) CancelAppointment(ctx context.Context, id string, caller *auth.Identity) (*AppointmentResponse, apierror.ErrorResponse) {
	appt, apierr := a.fetchVisible(ctx, id, caller)
	if apierr != nil {
		return nil, apierr
	}

	if schedule.IsTerminal(appt.Status) {
		return nil, terminalError(appt.Status)
	}

	start, err := a.slotStart(appt)
	if err != nil {
		log.Errorf("appointment %s has an unreadable slot: %v", appt.ID, err)
		return nil, apierror.InternalServerError
	}
	if !start.After(a.Now()) {
		return nil, apierror.PastAppointmentError
	}

	if apierr := a.transition(ctx, appt, schedule.StatusCancelled); apierr != nil {
		return nil, apierr
	}
	log.Infof("appointment %s cancelled by %s", appt.ID, caller.UserID)

	resp, apierr := a.view(ctx, appt)
	if apierr != nil {
		return nil, apierr
	}
	a.notify(notify.EventCancelled, resp)
	return resp, nil
}

func (a *DefaultAppointmentService) UpdateStatus(ctx context.Context, id string, req *StatusRequest, caller *auth.Identity) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if !schedule.ValidStatus(req.Status) {
		return nil, apierror.InvalidStatusError
	}

	appt, apierr := a.fetch(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	if schedule.IsTerminal(appt.Status) {
		return nil, terminalError(appt.Status)
	}
	if !schedule.CanTransition(appt.Status, req.Status) {
		return nil, apierror.InvalidTransitionError
	}

	from := appt.Status
	if apierr := a.transition(ctx, appt, req.Status); apierr != nil {
		return nil, apierr
	}
	log.Infof("appointment %s: %s -> %s by %s", appt.ID, from, appt.Status, caller.UserID)

	resp, apierr := a.view(ctx, appt)
	if apierr != nil {
		return nil, apierr
	}
	a.notify(notify.Event(appt.Status), resp)
	return resp, nil
}

func (a *DefaultAppointmentService) GetAppointment(ctx context.Context, id string, caller *auth.Identity) (*AppointmentResponse, apierror.ErrorResponse) {
	appt, apierr := a.fetchVisible(ctx, id, caller)
	if apierr != nil {
		return nil, apierr
	}
	return a.view(ctx, appt)
}

func (a *DefaultAppointmentService) GetMyAppointments(ctx context.Context, caller *auth.Identity) ([]*AppointmentResponse, apierror.ErrorResponse) {
	appts, err := a.AppointmentRepo.FindByPatientID(ctx, caller.UserID)
	if err != nil {
		log.Errorf("failed to find appointments for user %s: %v", caller.UserID, err)
		return nil, apierror.InternalServerError
	}
	return a.views(ctx, appts)
}

func (a *DefaultAppointmentService) GetAllAppointments(ctx context.Context) ([]*AppointmentResponse, apierror.ErrorResponse) {
	appts, err := a.AppointmentRepo.FindAll(ctx)
	if err != nil {
		log.Errorf("failed to find all appointments: %v", err)
		return nil, apierror.InternalServerError
	}
	return a.views(ctx, appts)
}

func (a *DefaultAppointmentService) GetDoctorAppointments(ctx context.Context, doctorID string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	doctor, err := a.DoctorRepo.FindByID(ctx, doctorID)
	if err != nil {
		log.Errorf("failed to fetch doctor %s: %v", doctorID, err)
		return nil, apierror.InternalServerError
	}
	if doctor == nil {
		return nil, apierror.DoctorNotFoundError
	}

	appts, err := a.AppointmentRepo.FindByDoctorID(ctx, doctorID)
	if err != nil {
		log.Errorf("failed to find appointments for doctor %s: %v", doctorID, err)
		return nil, apierror.InternalServerError
	}
	return a.views(ctx, appts)
}

// RemoveDoctor cancels the doctor's live appointments and removes the doctor
// in one transaction. Patients are notified once it has committed.
func (a *DefaultAppointmentService) RemoveDoctor(ctx context.Context, doctorID string) apierror.ErrorResponse {
	cancelled, found, err := a.DoctorRepo.DeleteCascade(ctx, doctorID, doctorRemovedNote, a.Now().UnixMilli())
	if err != nil {
		log.Errorf("failed to delete doctor %s: %v", doctorID, err)
		return apierror.InternalServerError
	}
	if !found {
		return apierror.DoctorNotFoundError
	}

	log.Infof("doctor %s removed, %d appointment(s) cancelled", doctorID, len(cancelled))
	if len(cancelled) == 0 {
		return nil
	}

	resps, apierr := a.views(ctx, cancelled)
	if apierr != nil {
		log.Warnf("doctor %s removed but cancellation notices could not be prepared", doctorID)
		return nil
	}
	for _, resp := range resps {
		a.notify(notify.EventCancelled, resp)
	}
	return nil
}

// transition moves appt to status if nobody else has moved it first. On
// success appt reflects the stored row.
func (a *DefaultAppointmentService) transition(ctx context.Context, appt *entity.Appointment, status string) apierror.ErrorResponse {
	now := a.Now().UnixMilli()
	ok, err := a.AppointmentRepo.UpdateStatus(ctx, appt.ID, appt.Status, status, now)
	if err != nil {
		log.Errorf("failed to update status of appointment %s: %v", appt.ID, err)
		return apierror.InternalServerError
	}
	if ok {
		appt.Status = status
		appt.UpdatedAt = now
		return nil
	}

	current, apierr := a.fetch(ctx, appt.ID)
	if apierr != nil {
		return apierr
	}
	if schedule.IsTerminal(current.Status) {
		return terminalError(current.Status)
	}
	return apierror.StaleAppointmentError
}

func (a *DefaultAppointmentService) fetch(ctx context.Context, id string) (*entity.Appointment, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, apierror.AppointmentNotFoundError
	}
	return appt, nil
}

// fetchVisible hides other patients' appointments behind NotFound.
func (a *DefaultAppointmentService) fetchVisible(ctx context.Context, id string, caller *auth.Identity) (*entity.Appointment, apierror.ErrorResponse) {
	appt, apierr := a.fetch(ctx, id)
	if apierr != nil {
		return nil, apierr
	}
	if appt.PatientID != caller.UserID && !caller.HasRole(entity.AdminRoles...) {
		return nil, apierror.AppointmentNotFoundError
	}
	return appt, nil
}

func (a *DefaultAppointmentService) slotStart(appt *entity.Appointment) (time.Time, error) {
	date, err := schedule.ParseDate(appt.Date)
	if err != nil {
		return time.Time{}, err
	}
	slot, ok := schedule.ParseSlot(appt.TimeSlot)
	if !ok {
		return time.Time{}, errors.New("unknown time slot " + appt.TimeSlot)
	}
	return schedule.SlotStart(date, slot, a.Location), nil
}

func (a *DefaultAppointmentService) view(ctx context.Context, appt *entity.Appointment) (*AppointmentResponse, apierror.ErrorResponse) {
	resps, apierr := a.views(ctx, []*entity.Appointment{appt})
	if apierr != nil {
		return nil, apierr
	}
	return resps[0], nil
}

// views joins doctor and patient summaries in two batched lookups. Removed
// doctors still resolve.
func (a *DefaultAppointmentService) views(ctx context.Context, appts []*entity.Appointment) ([]*AppointmentResponse, apierror.ErrorResponse) {
	doctorIDs := make([]string, 0, len(appts))
	patientIDs := make([]string, 0, len(appts))
	for _, appt := range appts {
		doctorIDs = append(doctorIDs, appt.DoctorID)
		patientIDs = append(patientIDs, appt.PatientID)
	}

	doctors, err := a.DoctorRepo.FindByIDs(ctx, doctorIDs)
	if err != nil {
		log.Errorf("failed to fetch doctors for appointments: %v", err)
		return nil, apierror.InternalServerError
	}
	patients, err := a.UserRepo.FindByIDs(ctx, patientIDs)
	if err != nil {
		log.Errorf("failed to fetch patients for appointments: %v", err)
		return nil, apierror.InternalServerError
	}

	doctorByID := make(map[string]*entity.Doctor, len(doctors))
	for _, d := range doctors {
		doctorByID[d.ID] = d
	}
	patientByID := make(map[string]*entity.User, len(patients))
	for _, p := range patients {
		patientByID[p.ID] = p
	}

	resps := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		resps[i] = toAppointmentResponse(appt, doctorByID[appt.DoctorID], patientByID[appt.PatientID])
	}
	return resps, nil
}

func (a *DefaultAppointmentService) notify(event notify.Event, resp *AppointmentResponse) {
	if a.Notifier == nil {
		return
	}
	a.Notifier.Notify(event, toSnapshot(resp))
}

func terminalError(status string) apierror.ErrorResponse {
	if status == schedule.StatusCompleted {
		return apierror.AlreadyCompletedError
	}
	return apierror.AlreadyCancelledError
}

func toSnapshot(resp *AppointmentResponse) notify.Snapshot {
	snap := notify.Snapshot{
		AppointmentID: resp.ID,
		Date:          resp.Date,
		TimeSlot:      resp.TimeSlot,
		VisitType:     resp.VisitType,
		Status:        resp.Status,
	}
	if resp.Symptoms != nil {
		snap.Symptoms = *resp.Symptoms
	}
	if resp.Patient != nil {
		snap.PatientName = resp.Patient.Name
		snap.PatientEmail = resp.Patient.Email
	}
	if resp.Doctor != nil {
		snap.DoctorName = resp.Doctor.Name
		snap.DoctorEmail = resp.Doctor.Email
		snap.DoctorLocation = resp.Doctor.Location
	}
	return snap
}

func toAppointmentResponse(appt *entity.Appointment, doctor *entity.Doctor, patient *entity.User) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:        appt.ID,
		DoctorID:  appt.DoctorID,
		PatientID: appt.PatientID,
		Date:      appt.Date,
		TimeSlot:  appt.TimeSlot,
		VisitType: appt.VisitType,
		Status:    appt.Status,
		Symptoms:  appt.Symptoms,
		Notes:     appt.Notes,
		CreatedAt: utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt: utils.FormatEpoch(appt.UpdatedAt),
	}
	if doctor != nil {
		resp.Doctor = &DoctorSummary{
			ID:             doctor.ID,
			Name:           doctor.Name,
			Email:          doctor.Email,
			Specialization: doctor.Specialization,
			Location:       doctor.Location,
			ClinicFee:      doctor.ClinicFee,
			HomeVisitFee:   doctor.HomeVisitFee,
		}
	}
	if patient != nil {
		resp.Patient = &PatientSummary{ID: patient.ID, Name: patient.Name, Email: patient.Email}
	}
	return resp
}
