package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"property-ingestion-backend/internal/cache"
	"property-ingestion-backend/internal/models"
	"property-ingestion-backend/internal/oracle"
	"property-ingestion-backend/internal/parser"
	"property-ingestion-backend/internal/services/schema"
	"property-ingestion-backend/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	// MaxUploadBytes is the intake size ceiling.
	MaxUploadBytes = 10 << 20
	// DefaultBatchSize bounds one insert call during commit.
	DefaultBatchSize = 100
)

var (
	ErrFileTooLarge        = errors.New("file exceeds the 10 MB upload limit")
	ErrUnsupportedFileType = errors.New("only CSV, XLS and XLSX files are supported")
	ErrUnsupportedDataType = errors.New("unsupported data type")
)

// Service owns the upload lifecycle: uploaded -> analyzing -> processed|failed,
// plus the operator-triggered commit stage.
type Service struct {
	uploads   UploadStore
	records   RecordWriter
	oracle    oracle.Client
	store     storage.Store
	cache     cache.Cache
	logger    *zap.Logger
	batchSize int
	maxSample int
}

func NewService(uploads UploadStore, records RecordWriter, oracleClient oracle.Client, store storage.Store, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{
		uploads:   uploads,
		records:   records,
		oracle:    oracleClient,
		store:     store,
		cache:     c,
		logger:    logger,
		batchSize: DefaultBatchSize,
		maxSample: oracle.DefaultMaxSample,
	}
}

type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
	CompanyID   uuid.UUID
	UserID      uuid.UUID
}

// Upload stores the raw file bytes and creates the UploadRecord in state
// uploaded. If the metadata insert fails after the bytes were stored, the
// stored object is removed best-effort so storage does not accumulate orphans.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.UploadRecord, error) {
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrUnsupportedFileType)
	}
	if int64(len(in.Data)) > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if !supportedFileType(in.FileName, in.ContentType) {
		return nil, ErrUnsupportedFileType
	}

	id := uuid.New()
	path := fmt.Sprintf("%s/%s-%s", in.CompanyID, id, filepath.Base(in.FileName))

	location, err := s.store.Save(ctx, path, in.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	record := &models.UploadRecord{
		ID:           id,
		CompanyID:    in.CompanyID,
		UserID:       in.UserID,
		FileName:     in.FileName,
		StoragePath:  path,
		FileSize:     int64(len(in.Data)),
		ContentType:  in.ContentType,
		Status:       models.UploadStatusUploaded,
		CommitStatus: models.CommitStatusPending,
	}
	if err := s.uploads.Create(ctx, record); err != nil {
		if rmErr := s.store.Remove(ctx, path); rmErr != nil {
			s.logger.Warn("failed to clean up stored file after metadata failure",
				zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("failed to create upload record: %w", err)
	}

	s.logger.Info("upload stored",
		zap.String("upload_id", id.String()),
		zap.String("file", in.FileName),
		zap.String("location", location),
		zap.Int("bytes", len(in.Data)))
	return record, nil
}

// AnalysisResult is what the analyze stage hands back to the operator.
type AnalysisResult struct {
	Status         string           `json:"status"`
	DetectedType   string           `json:"detectedType"`
	Confidence     float64          `json:"confidence"`
	TotalRows      int              `json:"totalRows"`
	NormalizedData []map[string]any `json:"normalizedData"`
	Suggestions    []string         `json:"suggestions"`
	Errors         []string         `json:"errors"`
}

// Analyze runs classification for one upload. The record must be in state
// uploaded; anything else is rejected with repository.ErrConflict. Oracle
// failure is not an error: the record moves to failed and the fallback
// result is returned for the operator to inspect.
func (s *Service) Analyze(ctx context.Context, uploadID uuid.UUID) (*AnalysisResult, error) {
	record, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if err := s.uploads.MarkAnalyzing(ctx, uploadID); err != nil {
		return nil, err
	}

	data, err := s.store.Load(ctx, record.StoragePath)
	if err != nil {
		s.fail(ctx, uploadID, fmt.Sprintf("could not read stored file: %v", err), nil)
		return nil, fmt.Errorf("failed to load stored file: %w", err)
	}

	table, err := s.parse(record, data)
	if err != nil {
		s.fail(ctx, uploadID, err.Error(), nil)
		return nil, err
	}

	suggestions := []string{}
	if dups := parser.DuplicateHeaders(table.Headers); len(dups) > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("Duplicate column headers make mapping ambiguous: %s", strings.Join(dups, ", ")))
	}

	result := s.oracle.Classify(ctx, table.Headers, table.Rows, s.maxSample)
	suggestions = append(suggestions, result.Suggestions...)

	if !result.IsUsable() {
		if hint := schema.BestHint(table.Headers).Suggestion(); hint != "" {
			suggestions = append(suggestions, hint)
		}
		blob := analysisBlob(0, suggestions, result.Errors)
		s.fail(ctx, uploadID, "could not classify uploaded data", blob)
		return &AnalysisResult{
			Status:         models.UploadStatusFailed,
			DetectedType:   models.DataTypeUnknown,
			Confidence:     0,
			TotalRows:      table.RowCount(),
			NormalizedData: []map[string]any{},
			Suggestions:    suggestions,
			Errors:         result.Errors,
		}, nil
	}

	normalized := result.NormalizedData
	errs := result.Errors
	if table.RowCount() > len(normalized) {
		normalized, errs = s.normalizeRemainder(ctx, table, result, errs)
	}

	blob := analysisBlob(result.Confidence, suggestions, errs)
	if err := s.uploads.MarkProcessed(ctx, uploadID, result.DetectedType, table.RowCount(), blob); err != nil {
		return nil, err
	}

	s.logger.Info("analysis complete",
		zap.String("upload_id", uploadID.String()),
		zap.String("detected_type", result.DetectedType),
		zap.Float64("confidence", result.Confidence),
		zap.Int("total_rows", table.RowCount()))

	return &AnalysisResult{
		Status:         models.UploadStatusProcessed,
		DetectedType:   result.DetectedType,
		Confidence:     result.Confidence,
		TotalRows:      table.RowCount(),
		NormalizedData: normalized,
		Suggestions:    suggestions,
		Errors:         errs,
	}, nil
}

// normalizeRemainder asks the oracle to transform the full row set against
// the already-confirmed label. On failure the original rows are returned
// unchanged in the generic shape; commit-time validation catches rows that
// never conformed.
func (s *Service) normalizeRemainder(ctx context.Context, table *parser.ParsedTable, result oracle.ClassificationResult, errs []string) ([]map[string]any, []string) {
	normalized, err := s.oracle.NormalizeAll(ctx, table.Headers, table.Rows, result.DetectedType)
	if err == nil {
		return normalized, errs
	}

	s.logger.Warn("bulk normalization failed, returning raw rows",
		zap.String("detected_type", result.DetectedType), zap.Error(err))
	raw := make([]map[string]any, len(table.Rows))
	for i, row := range table.Rows {
		generic := make(map[string]any, len(row))
		for k, v := range row {
			generic[k] = v
		}
		raw[i] = generic
	}
	return raw, append(errs, fmt.Sprintf("bulk normalization failed, rows returned unnormalized: %v", err))
}

// History returns every upload for a company, newest first.
func (s *Service) History(ctx context.Context, companyID uuid.UUID) ([]models.UploadRecord, error) {
	return s.uploads.ListByCompany(ctx, companyID)
}

func (s *Service) parse(record *models.UploadRecord, data []byte) (*parser.ParsedTable, error) {
	if isWorkbook(record.FileName, record.ContentType) {
		return parser.ParseWorkbook(data)
	}
	return parser.Parse(string(data))
}

// fail moves the record to the terminal failed state. A failure to persist
// the transition is logged but not escalated past the original error.
func (s *Service) fail(ctx context.Context, uploadID uuid.UUID, message string, analysis datatypes.JSON) {
	if err := s.uploads.MarkFailed(ctx, uploadID, message, analysis); err != nil {
		s.logger.Error("failed to mark upload as failed",
			zap.String("upload_id", uploadID.String()), zap.Error(err))
	}
}

func analysisBlob(confidence float64, suggestions, errs []string) datatypes.JSON {
	if suggestions == nil {
		suggestions = []string{}
	}
	if errs == nil {
		errs = []string{}
	}
	blob, err := json.Marshal(models.AIAnalysisBlob{
		Confidence:  confidence,
		Suggestions: suggestions,
		Errors:      errs,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(blob)
}

func supportedFileType(fileName, contentType string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".xls", ".xlsx":
		return true
	}
	switch contentType {
	case "text/csv", "application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return true
	}
	return false
}

func isWorkbook(fileName, contentType string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xls", ".xlsx":
		return true
	}
	switch contentType {
	case "application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return true
	}
	return false
}
