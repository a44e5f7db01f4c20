package ingestion

import (
	"context"

	"property-ingestion-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UploadStore persists UploadRecord state transitions. Implemented by
// repository.UploadRecordRepository; mocked in tests.
type UploadStore interface {
	Create(ctx context.Context, record *models.UploadRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UploadRecord, error)
	MarkAnalyzing(ctx context.Context, id uuid.UUID) error
	MarkProcessed(ctx context.Context, id uuid.UUID, detectedType string, totalRows int, analysis datatypes.JSON) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string, analysis datatypes.JSON) error
	SetCommitResult(ctx context.Context, id uuid.UUID, commitStatus string, processedRows int, errorMessage *string) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.UploadRecord, error)
}

// RecordWriter inserts committed rows into the target tables, one batch per
// call. Implemented by repository.RecordRepository.
type RecordWriter interface {
	InsertTenants(ctx context.Context, batch []models.Tenant) error
	InsertBuildings(ctx context.Context, batch []models.Building) error
	InsertExpenses(ctx context.Context, batch []models.Expense) error
	InsertUnits(ctx context.Context, batch []models.Unit) error
	InsertPayments(ctx context.Context, batch []models.Payment) error
	FindBuildingID(ctx context.Context, companyID uuid.UUID, name string) (*uuid.UUID, error)
}
