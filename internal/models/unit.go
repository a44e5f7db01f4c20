package models

import (
	"time"

	"github.com/google/uuid"
)

type Unit struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"index"`
	UserID     uuid.UUID
	UnitNumber string `gorm:"index"`
	Bedrooms   int
	Bathrooms  int
	SizeSqft   float64
	RentAmount float64
	Status     string `gorm:"index"` // vacant | occupied | maintenance
	CreatedAt  time.Time
}
