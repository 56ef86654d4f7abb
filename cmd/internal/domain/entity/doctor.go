package entity

import "gorm.io/gorm"

type Doctor struct {
	ID             string `gorm:"primaryKey;size:36"`
	Name           string `gorm:"not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	Specialization string `gorm:"not null"`
	ClinicFee      float64
	HomeVisitFee   *float64
	Location       string `gorm:"not null"`
	AvailableFrom  string `gorm:"size:5;not null"` // HH:MM
	AvailableTo    string `gorm:"size:5;not null"` // HH:MM
	AvailableDays  []int  `gorm:"serializer:json;not null"`
	CreatedAt      int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt      int64  `gorm:"not null;autoUpdateTime:false"`

	// Removed doctors stay resolvable for appointment history but can no longer be booked.
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
