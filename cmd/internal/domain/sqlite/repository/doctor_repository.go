package repository

import (
	"clinicbook/cmd/internal/domain/entity"
	"clinicbook/cmd/internal/domain/schedule"
	"context"
	"errors"

	"gorm.io/gorm"
)

type DefaultDoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DefaultDoctorRepository {
	return &DefaultDoctorRepository{db: db}
}

// FindByID only returns bookable (not removed) doctors.
func (d *DefaultDoctorRepository) FindByID(ctx context.Context, id string) (*entity.Doctor, error) {
	var doc entity.Doctor
	err := d.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &doc, err
}

// FindByIDs includes removed doctors so historical appointments still resolve.
func (d *DefaultDoctorRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Doctor, error) {
	var docs []*entity.Doctor
	if len(ids) == 0 {
		return docs, nil
	}
	err := d.db.WithContext(ctx).Unscoped().Where("id IN ?", ids).Find(&docs).Error
	return docs, err
}

func (d *DefaultDoctorRepository) FindAll(ctx context.Context) ([]*entity.Doctor, error) {
	var docs []*entity.Doctor
	err := d.db.WithContext(ctx).Order("name asc").Find(&docs).Error
	return docs, err
}

// ExistsByEmail checks every doctor ever registered, except excludeID.
func (d *DefaultDoctorRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	var count int64
	q := d.db.WithContext(ctx).Unscoped().Model(&entity.Doctor{}).Where("email = ?", normalizeEmail(email))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (d *DefaultDoctorRepository) Create(ctx context.Context, doc *entity.Doctor) error {
	doc.Email = normalizeEmail(doc.Email)
	return translate(d.db.WithContext(ctx).Create(doc).Error)
}

func (d *DefaultDoctorRepository) Save(ctx context.Context, doc *entity.Doctor) error {
	doc.Email = normalizeEmail(doc.Email)
	return translate(d.db.WithContext(ctx).Save(doc).Error)
}

// DeleteCascade cancels every live appointment of the doctor, annotating it
// with note, and then removes the doctor, all in one transaction. It returns
// the appointments it cancelled; found is false when no such doctor exists.
func (d *DefaultDoctorRepository) DeleteCascade(ctx context.Context, id, note string, now int64) (cancelled []*entity.Appointment, found bool, err error) {
	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc entity.Doctor
		if err := tx.First(&doc, "id = ?", id).Error; err != nil {
			return err
		}

		live := tx.Model(&entity.Appointment{}).
			Where("doctor_id = ? AND status IN ?", id, schedule.ActiveStatuses).
			Session(&gorm.Session{})
		if err := live.Find(&cancelled).Error; err != nil {
			return err
		}

		if len(cancelled) > 0 {
			err := live.Updates(map[string]any{
				"status":     schedule.StatusCancelled,
				"notes":      note,
				"updated_at": now,
			}).Error
			if err != nil {
				return err
			}
		}
		return tx.Delete(&doc).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}

	for _, appt := range cancelled {
		appt.Status = schedule.StatusCancelled
		appt.Notes = &note
		appt.UpdatedAt = now
	}
	return cancelled, true, nil
}
