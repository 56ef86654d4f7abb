package repository

import (
	"clinicbook/cmd/internal/domain/entity"
	"context"
	"errors"

	"gorm.io/gorm"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

// Create inserts the appointment and, in the same statement, reserves its
// slot. ErrDuplicate means another live appointment already holds it.
func (a *DefaultAppointmentRepository) Create(ctx context.Context, appt *entity.Appointment) error {
	return translate(a.db.WithContext(ctx).Create(appt).Error)
}

func (a *DefaultAppointmentRepository) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

func (a *DefaultAppointmentRepository) FindByPatientID(ctx context.Context, patientID string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("date desc, time_slot desc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindByDoctorID(ctx context.Context, doctorID string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("date asc, time_slot asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindAll(ctx context.Context) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).Order("date desc, time_slot desc").Find(&appts).Error
	return appts, err
}

// UpdateStatus moves the appointment from one status to another only if it
// still holds the expected status. It reports whether the row was changed.
func (a *DefaultAppointmentRepository) UpdateStatus(ctx context.Context, id, from, to string, now int64) (bool, error) {
	res := a.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": now})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}
