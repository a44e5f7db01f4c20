package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"index"`
	UserID      uuid.UUID
	Name        string `gorm:"index"`
	Email       string
	Phone       string
	BuildingID  *uuid.UUID `gorm:"index"`
	Building    string     // building name as imported, kept for rows we could not resolve
	Unit        string
	MoveInDate  *time.Time
	MoveOutDate *time.Time
	MonthlyRent float64
	Status      string `gorm:"index"` // active | moving-out | moved-out
	RentStatus  string // current | late
	Arrears     float64
	CreatedAt   time.Time
}
