package ingestion

import (
	"context"
	"fmt"
	"sync"

	"property-ingestion-backend/internal/models"
	"property-ingestion-backend/internal/oracle"
	"property-ingestion-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// mockUploadStore keeps records in memory and enforces the same transition
// guards as the real repository, recording every observed status.
type mockUploadStore struct {
	mu          sync.Mutex
	records     map[uuid.UUID]*models.UploadRecord
	transitions map[uuid.UUID][]string
	createErr   error
}

func newMockUploadStore() *mockUploadStore {
	return &mockUploadStore{
		records:     make(map[uuid.UUID]*models.UploadRecord),
		transitions: make(map[uuid.UUID][]string),
	}
}

func (m *mockUploadStore) Create(_ context.Context, record *models.UploadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	clone := *record
	m.records[record.ID] = &clone
	m.transitions[record.ID] = append(m.transitions[record.ID], record.Status)
	return nil
}

func (m *mockUploadStore) GetByID(_ context.Context, id uuid.UUID) (*models.UploadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *mockUploadStore) MarkAnalyzing(_ context.Context, id uuid.UUID) error {
	return m.transition(id, models.UploadStatusUploaded, func(r *models.UploadRecord) {
		r.Status = models.UploadStatusAnalyzing
	})
}

func (m *mockUploadStore) MarkProcessed(_ context.Context, id uuid.UUID, detectedType string, totalRows int, analysis datatypes.JSON) error {
	return m.transition(id, models.UploadStatusAnalyzing, func(r *models.UploadRecord) {
		r.Status = models.UploadStatusProcessed
		r.DetectedType = &detectedType
		r.TotalRows = totalRows
		r.AIAnalysis = analysis
		r.ErrorMessage = nil
	})
}

func (m *mockUploadStore) MarkFailed(_ context.Context, id uuid.UUID, message string, analysis datatypes.JSON) error {
	return m.transition(id, models.UploadStatusAnalyzing, func(r *models.UploadRecord) {
		r.Status = models.UploadStatusFailed
		r.ErrorMessage = &message
		if analysis != nil {
			r.AIAnalysis = analysis
		}
	})
}

func (m *mockUploadStore) transition(id uuid.UUID, required string, apply func(*models.UploadRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	if record.Status != required {
		return fmt.Errorf("upload %s: %w", id, repository.ErrConflict)
	}
	apply(record)
	m.transitions[id] = append(m.transitions[id], record.Status)
	return nil
}

func (m *mockUploadStore) SetCommitResult(_ context.Context, id uuid.UUID, commitStatus string, processedRows int, errorMessage *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	record.CommitStatus = commitStatus
	record.ProcessedRows = processedRows
	if errorMessage != nil {
		record.ErrorMessage = errorMessage
	}
	return nil
}

func (m *mockUploadStore) ListByCompany(_ context.Context, companyID uuid.UUID) ([]models.UploadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UploadRecord
	for _, r := range m.records {
		if r.CompanyID == companyID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// mockRecordWriter counts batches per table and can fail a specific batch.
type mockRecordWriter struct {
	tenants   [][]models.Tenant
	buildings [][]models.Building
	expenses  [][]models.Expense
	units     [][]models.Unit
	payments  [][]models.Payment

	failBatch int // 1-based index of the batch that fails; 0 = never
	batchSeen int

	buildingIDs   map[string]uuid.UUID
	buildingCalls int
}

func newMockRecordWriter() *mockRecordWriter {
	return &mockRecordWriter{buildingIDs: make(map[string]uuid.UUID)}
}

func (m *mockRecordWriter) nextBatch() error {
	m.batchSeen++
	if m.failBatch > 0 && m.batchSeen == m.failBatch {
		return fmt.Errorf("insert failed on batch %d", m.batchSeen)
	}
	return nil
}

func (m *mockRecordWriter) InsertTenants(_ context.Context, batch []models.Tenant) error {
	if err := m.nextBatch(); err != nil {
		return err
	}
	m.tenants = append(m.tenants, batch)
	return nil
}

func (m *mockRecordWriter) InsertBuildings(_ context.Context, batch []models.Building) error {
	if err := m.nextBatch(); err != nil {
		return err
	}
	m.buildings = append(m.buildings, batch)
	return nil
}

func (m *mockRecordWriter) InsertExpenses(_ context.Context, batch []models.Expense) error {
	if err := m.nextBatch(); err != nil {
		return err
	}
	m.expenses = append(m.expenses, batch)
	return nil
}

func (m *mockRecordWriter) InsertUnits(_ context.Context, batch []models.Unit) error {
	if err := m.nextBatch(); err != nil {
		return err
	}
	m.units = append(m.units, batch)
	return nil
}

func (m *mockRecordWriter) InsertPayments(_ context.Context, batch []models.Payment) error {
	if err := m.nextBatch(); err != nil {
		return err
	}
	m.payments = append(m.payments, batch)
	return nil
}

func (m *mockRecordWriter) FindBuildingID(_ context.Context, _ uuid.UUID, name string) (*uuid.UUID, error) {
	m.buildingCalls++
	if id, ok := m.buildingIDs[name]; ok {
		return &id, nil
	}
	return nil, nil
}

// mockOracle returns canned results and records what it was asked.
type mockOracle struct {
	result       oracle.ClassificationResult
	normalizeFn  func(headers []string, rows []map[string]string, dataType string) ([]map[string]any, error)
	lastSample   []map[string]string
	classifyCall int
}

func (m *mockOracle) Classify(_ context.Context, _ []string, sampleRows []map[string]string, maxSample int) oracle.ClassificationResult {
	m.classifyCall++
	if maxSample > 0 && len(sampleRows) > maxSample {
		sampleRows = sampleRows[:maxSample]
	}
	m.lastSample = sampleRows
	return m.result
}

func (m *mockOracle) NormalizeAll(_ context.Context, headers []string, rows []map[string]string, dataType string) ([]map[string]any, error) {
	if m.normalizeFn != nil {
		return m.normalizeFn(headers, rows, dataType)
	}
	return nil, fmt.Errorf("normalize not configured")
}
