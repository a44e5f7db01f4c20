package repository

import (
	"context"
	"errors"

	"property-ingestion-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordRepository writes committed rows into the five target tables. Each
// call inserts exactly one batch; chunking and fail-fast are the commit
// stage's responsibility.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) InsertTenants(ctx context.Context, batch []models.Tenant) error {
	return r.db.WithContext(ctx).Create(&batch).Error
}

func (r *RecordRepository) InsertBuildings(ctx context.Context, batch []models.Building) error {
	return r.db.WithContext(ctx).Create(&batch).Error
}

func (r *RecordRepository) InsertExpenses(ctx context.Context, batch []models.Expense) error {
	return r.db.WithContext(ctx).Create(&batch).Error
}

func (r *RecordRepository) InsertUnits(ctx context.Context, batch []models.Unit) error {
	return r.db.WithContext(ctx).Create(&batch).Error
}

func (r *RecordRepository) InsertPayments(ctx context.Context, batch []models.Payment) error {
	return r.db.WithContext(ctx).Create(&batch).Error
}

// FindBuildingID resolves a building name to its id within one company.
// Returns nil without error when no building matches.
func (r *RecordRepository) FindBuildingID(ctx context.Context, companyID uuid.UUID, name string) (*uuid.UUID, error) {
	var building models.Building
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND LOWER(name) = LOWER(?)", companyID, name).
		First(&building).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &building.ID, nil
}
