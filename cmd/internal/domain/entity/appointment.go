package entity

// Appointment is never physically deleted; cancellation keeps the row and
// releases the slot, since the active-slot index only covers live statuses.
type Appointment struct {
	ID        string `gorm:"primaryKey;size:36"`
	DoctorID  string `gorm:"size:36;not null;index"` // References: doctors(id)
	PatientID string `gorm:"size:36;not null;index"` // References: users(id)
	Date      string `gorm:"size:10;not null"`       // YYYY-MM-DD
	TimeSlot  string `gorm:"size:11;not null"`
	VisitType string `gorm:"size:16;not null"`
	Status    string `gorm:"size:16;not null;index"`
	Symptoms  *string
	Notes     *string
	CreatedAt int64 `gorm:"not null;autoCreateTime:false"`
	UpdatedAt int64 `gorm:"not null;autoUpdateTime:false"`
}

const (
	VisitClinic = "clinic"
	VisitHome   = "home"
)
