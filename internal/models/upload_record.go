package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Analysis status values for UploadRecord.Status.
const (
	UploadStatusUploaded  = "uploaded"
	UploadStatusAnalyzing = "analyzing"
	UploadStatusProcessed = "processed"
	UploadStatusFailed    = "failed"
)

// Commit status values for UploadRecord.CommitStatus.
const (
	CommitStatusPending   = "pending"
	CommitStatusCommitted = "committed"
	CommitStatusFailed    = "commit_failed"
)

// Schema labels the classifier may assign.
const (
	DataTypeTenants   = "tenants"
	DataTypeBuildings = "buildings"
	DataTypeExpenses  = "expenses"
	DataTypeUnits     = "units"
	DataTypePayments  = "payments"
	DataTypeUnknown   = "unknown"
)

// KnownDataTypes lists the five commit targets, in display order.
var KnownDataTypes = []string{
	DataTypeTenants,
	DataTypeBuildings,
	DataTypeExpenses,
	DataTypeUnits,
	DataTypePayments,
}

func IsKnownDataType(t string) bool {
	for _, k := range KnownDataTypes {
		if k == t {
			return true
		}
	}
	return false
}

type UploadRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"index"`
	UserID        uuid.UUID `gorm:"index"`
	FileName      string
	StoragePath   string
	FileSize      int64
	ContentType   string
	TotalRows     int
	ProcessedRows int
	DetectedType  *string `gorm:"index"`
	Status        string  `gorm:"index"` // uploaded | analyzing | processed | failed
	CommitStatus  string  `gorm:"index"` // pending | committed | commit_failed
	AIAnalysis    datatypes.JSON
	ErrorMessage  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AIAnalysisBlob is the shape serialized into UploadRecord.AIAnalysis.
type AIAnalysisBlob struct {
	Confidence  float64  `json:"confidence"`
	Suggestions []string `json:"suggestions"`
	Errors      []string `json:"errors"`
}
