package service

import (
	"clinicbook/cmd/internal/domain/entity"
	"clinicbook/cmd/internal/domain/schedule"
	"clinicbook/cmd/internal/domain/sqlite/repository"
	"clinicbook/cmd/internal/utils"
	"clinicbook/cmd/internal/utils/apierror"
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type DoctorRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Doctor, error)
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Doctor, error)
	FindAll(ctx context.Context) ([]*entity.Doctor, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, doc *entity.Doctor) error
	Save(ctx context.Context, doc *entity.Doctor) error
	DeleteCascade(ctx context.Context, id, note string, now int64) ([]*entity.Appointment, bool, error)
}

// DoctorRemover takes a doctor out of service along with their open bookings.
type DoctorRemover interface {
	RemoveDoctor(ctx context.Context, doctorID string) apierror.ErrorResponse
}

type DoctorRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=80"`
	Email          string   `json:"email" validate:"required,email"`
	Specialization string   `json:"specialization" validate:"required,max=80"`
	ClinicFee      float64  `json:"clinicFee" validate:"gte=0"`
	HomeVisitFee   *float64 `json:"homeVisitFee" validate:"omitempty,gte=0"`
	Location       string   `json:"location" validate:"required,max=120"`
	AvailableFrom  string   `json:"availableFrom" validate:"required,clocktime"`
	AvailableTo    string   `json:"availableTo" validate:"required,clocktime"`
	AvailableDays  []int    `json:"availableDays" validate:"required,min=1,max=7,dive,weekday"`
}

type DoctorResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Specialization string   `json:"specialization"`
	ClinicFee      float64  `json:"clinicFee"`
	HomeVisitFee   *float64 `json:"homeVisitFee,omitempty"`
	Location       string   `json:"location"`
	AvailableFrom  string   `json:"availableFrom"`
	AvailableTo    string   `json:"availableTo"`
	AvailableDays  []int    `json:"availableDays"`
	TimeSlots      []string `json:"timeSlots"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type DefaultDoctorService struct {
	DoctorRepo DoctorRepository
	Remover    DoctorRemover
	Validate   *validator.Validate
	Now        utils.Clock
}

func NewDoctorService(doctorRepo DoctorRepository, remover DoctorRemover, validate *validator.Validate) *DefaultDoctorService {
	return &DefaultDoctorService{DoctorRepo: doctorRepo, Remover: remover, Validate: validate, Now: utils.SystemClock}
}

func (d *DefaultDoctorService) GetDoctors(ctx context.Context) ([]*DoctorResponse, apierror.ErrorResponse) {
	docs, err := d.DoctorRepo.FindAll(ctx)
	if err != nil {
		log.Errorf("failed to fetch doctors: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*DoctorResponse, len(docs))
	for i, doc := range docs {
		resp[i] = toDoctorResponse(doc)
	}
	return resp, nil
}

func (d *DefaultDoctorService) GetDoctor(ctx context.Context, id string) (*DoctorResponse, apierror.ErrorResponse) {
	doc, apierr := d.fetch(ctx, id)
	if apierr != nil {
		return nil, apierr
	}
	return toDoctorResponse(doc), nil
}

func (d *DefaultDoctorService) CreateDoctor(ctx context.Context, req *DoctorRequest) (*DoctorResponse, apierror.ErrorResponse) {
	if apierr := d.validate(req); apierr != nil {
		return nil, apierr
	}

	taken, err := d.DoctorRepo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		log.Errorf("failed to check doctor email: %v", err)
		return nil, apierror.InternalServerError
	}
	if taken {
		return nil, apierror.DoctorEmailTakenError
	}

	now := d.Now().UnixMilli()
	doc := &entity.Doctor{ID: uuid.NewString(), CreatedAt: now}
	applyDoctorRequest(doc, req, now)

	err = d.DoctorRepo.Create(ctx, doc)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apierror.DoctorEmailTakenError
	}
	if err != nil {
		log.Errorf("failed to save doctor: %v", err)
		return nil, apierror.InternalServerError
	}
	return toDoctorResponse(doc), nil
}

func (d *DefaultDoctorService) UpdateDoctor(ctx context.Context, id string, req *DoctorRequest) (*DoctorResponse, apierror.ErrorResponse) {
	if apierr := d.validate(req); apierr != nil {
		return nil, apierr
	}

	doc, apierr := d.fetch(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	taken, err := d.DoctorRepo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		log.Errorf("failed to check doctor email: %v", err)
		return nil, apierror.InternalServerError
	}
	if taken {
		return nil, apierror.DoctorEmailTakenError
	}

	applyDoctorRequest(doc, req, d.Now().UnixMilli())
	err = d.DoctorRepo.Save(ctx, doc)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apierror.DoctorEmailTakenError
	}
	if err != nil {
		log.Errorf("failed to update doctor %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toDoctorResponse(doc), nil
}

func (d *DefaultDoctorService) DeleteDoctor(ctx context.Context, id string) apierror.ErrorResponse {
	return d.Remover.RemoveDoctor(ctx, id)
}

func (d *DefaultDoctorService) validate(req *DoctorRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if valerr := d.Validate.Struct(req); valerr != nil {
		return apierror.FromValidationError(valerr)
	}
	if _, err := schedule.NewWindow(req.AvailableFrom, req.AvailableTo, req.AvailableDays); err != nil {
		return apierror.NewSimple(http.StatusBadRequest, "availableTo must be later than availableFrom")
	}
	return nil
}

func (d *DefaultDoctorService) fetch(ctx context.Context, id string) (*entity.Doctor, apierror.ErrorResponse) {
	doc, err := d.DoctorRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch doctor %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if doc == nil {
		return nil, apierror.DoctorNotFoundError
	}
	return doc, nil
}

func applyDoctorRequest(doc *entity.Doctor, req *DoctorRequest, now int64) {
	doc.Name = req.Name
	doc.Email = req.Email
	doc.Specialization = req.Specialization
	doc.ClinicFee = req.ClinicFee
	doc.HomeVisitFee = req.HomeVisitFee
	doc.Location = req.Location
	doc.AvailableFrom = req.AvailableFrom
	doc.AvailableTo = req.AvailableTo
	doc.AvailableDays = req.AvailableDays
	doc.UpdatedAt = now
}

// offeredSlots lists the TimeSlots that fit inside the doctor's daily hours.
func offeredSlots(doc *entity.Doctor) []string {
	window, err := schedule.NewWindow(doc.AvailableFrom, doc.AvailableTo, doc.AvailableDays)
	if err != nil {
		return []string{}
	}
	slots := make([]string, 0, len(schedule.TimeSlots))
	for _, s := range schedule.TimeSlots {
		slot, _ := schedule.ParseSlot(s)
		if slot.From >= window.From && slot.To <= window.To {
			slots = append(slots, s)
		}
	}
	return slots
}

func toDoctorResponse(doc *entity.Doctor) *DoctorResponse {
	return &DoctorResponse{
		ID:             doc.ID,
		Name:           doc.Name,
		Email:          doc.Email,
		Specialization: doc.Specialization,
		ClinicFee:      doc.ClinicFee,
		HomeVisitFee:   doc.HomeVisitFee,
		Location:       doc.Location,
		AvailableFrom:  doc.AvailableFrom,
		AvailableTo:    doc.AvailableTo,
		AvailableDays:  doc.AvailableDays,
		TimeSlots:      offeredSlots(doc),
		CreatedAt:      utils.FormatEpoch(doc.CreatedAt),
		UpdatedAt:      utils.FormatEpoch(doc.UpdatedAt),
	}
}
