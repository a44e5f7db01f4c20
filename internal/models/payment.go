package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID `gorm:"index"`
	UserID          uuid.UUID
	Amount          float64
	PaymentType     string `gorm:"index"` // rent | deposit | maintenance | utility | late_fee | other
	PaymentMethod   string
	PaymentDate     *time.Time
	Status          string `gorm:"index"` // pending | completed | failed | refunded
	ReferenceNumber string
	Description     string
	CreatedAt       time.Time
}
