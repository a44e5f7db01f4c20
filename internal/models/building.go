package models

import (
	"time"

	"github.com/google/uuid"
)

type Building struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID `gorm:"index"`
	UserID       uuid.UUID
	Name         string `gorm:"index"`
	Address      string
	City         string
	BuildingType string
	TotalUnits   int
	Floors       int
	YearBuilt    int
	Status       string `gorm:"index"` // active | maintenance | archived
	CreatedAt    time.Time
}
