package entity

const (
	RolePatient     = "patient"
	RoleDoctorAdmin = "doctor-admin"
	RoleAdmin       = "admin"
)

// AdminRoles may drive the appointment lifecycle on behalf of the clinic.
var AdminRoles = []string{RoleAdmin, RoleDoctorAdmin}

type User struct {
	ID                string `gorm:"primaryKey;size:36"`
	Name              string `gorm:"not null"`
	Email             string `gorm:"uniqueIndex;not null"` // always stored lower-cased
	PasswordHash      string `gorm:"not null"`
	Role              string `gorm:"size:32;not null;index"`
	Active            bool   `gorm:"not null"`
	PasswordChangedAt *int64
	ResetTokenHash    *string `gorm:"index"`
	ResetTokenExpiry  *int64
	CreatedAt         int64 `gorm:"not null;autoCreateTime:false"`
	UpdatedAt         int64 `gorm:"not null;autoUpdateTime:false"`
}
