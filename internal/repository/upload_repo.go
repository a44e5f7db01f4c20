package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property-ingestion-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a status transition is requested for a
	// record that is not in the required current state.
	ErrConflict = errors.New("record is not in the required state")
)

type UploadRecordRepository struct {
	db *gorm.DB
}

func NewUploadRecordRepository(db *gorm.DB) *UploadRecordRepository {
	return &UploadRecordRepository{db: db}
}

func (r *UploadRecordRepository) Create(ctx context.Context, record *models.UploadRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *UploadRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UploadRecord, error) {
	var record models.UploadRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkAnalyzing moves a record from uploaded to analyzing. The transition is
// guarded on the current status so a second analysis request for the same
// upload is rejected instead of silently overwriting state.
func (r *UploadRecordRepository) MarkAnalyzing(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.UploadRecord{}).
		Where("id = ? AND status = ?", id, models.UploadStatusUploaded).
		Updates(map[string]any{"status": models.UploadStatusAnalyzing, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("upload %s: %w", id, ErrConflict)
	}
	return nil
}

func (r *UploadRecordRepository) MarkProcessed(ctx context.Context, id uuid.UUID, detectedType string, totalRows int, analysis datatypes.JSON) error {
	return r.transitionFromAnalyzing(ctx, id, map[string]any{
		"status":        models.UploadStatusProcessed,
		"detected_type": detectedType,
		"total_rows":    totalRows,
		"ai_analysis":   analysis,
		"error_message": nil,
		"updated_at":    time.Now(),
	})
}

func (r *UploadRecordRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string, analysis datatypes.JSON) error {
	updates := map[string]any{
		"status":        models.UploadStatusFailed,
		"error_message": message,
		"updated_at":    time.Now(),
	}
	if analysis != nil {
		updates["ai_analysis"] = analysis
	}
	return r.transitionFromAnalyzing(ctx, id, updates)
}

func (r *UploadRecordRepository) transitionFromAnalyzing(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.UploadRecord{}).
		Where("id = ? AND status = ?", id, models.UploadStatusAnalyzing).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("upload %s: %w", id, ErrConflict)
	}
	return nil
}

// SetCommitResult records the outcome of the commit stage. Commit state is
// tracked separately from the analysis state machine, so a processed record
// that failed commit still shows as processed with commit_status commit_failed.
func (r *UploadRecordRepository) SetCommitResult(ctx context.Context, id uuid.UUID, commitStatus string, processedRows int, errorMessage *string) error {
	updates := map[string]any{
		"commit_status":  commitStatus,
		"processed_rows": processedRows,
		"updated_at":     time.Now(),
	}
	if errorMessage != nil {
		updates["error_message"] = *errorMessage
	}
	res := r.db.WithContext(ctx).
		Model(&models.UploadRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListByCompany returns every upload for a company, newest first.
func (r *UploadRecordRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.UploadRecord, error) {
	var records []models.UploadRecord
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
