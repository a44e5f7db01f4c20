package models

import (
	"time"

	"github.com/google/uuid"
)

type Expense struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"index"`
	UserID        uuid.UUID
	Category      string `gorm:"index"`
	Description   string
	Amount        float64
	ExpenseDate   *time.Time
	Vendor        string
	PaymentMethod string
	Status        string `gorm:"index"` // pending | paid | overdue
	CreatedAt     time.Time
}
