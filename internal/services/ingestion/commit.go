package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"property-ingestion-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const buildingCacheTTL = 10 * time.Minute

type CommitInput struct {
	UploadID  uuid.UUID
	DataType  string
	Records   []map[string]any
	CompanyID uuid.UUID
	UserID    uuid.UUID
}

type CommitResult struct {
	InsertedCount int      `json:"insertedCount"`
	Errors        []string `json:"errors"`
}

// Commit validates and inserts normalized records into the single target
// table selected by DataType, in batches. The first failing batch stops the
// stage: InsertedCount is a lower bound and later rows were never attempted.
func (s *Service) Commit(ctx context.Context, in CommitInput) (*CommitResult, error) {
	if !models.IsKnownDataType(in.DataType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDataType, in.DataType)
	}
	if _, err := s.uploads.GetByID(ctx, in.UploadID); err != nil {
		return nil, err
	}

	var inserted int
	var errs []string

	switch in.DataType {
	case models.DataTypeTenants:
		rows, convErrs := convertRows(in, "Tenants", toTenant, func(t *models.Tenant) {
			t.ID = uuid.New()
			t.CompanyID = in.CompanyID
			t.UserID = in.UserID
		})
		s.resolveBuildings(ctx, in.CompanyID, rows)
		inserted, errs = commitBatches(ctx, "Tenants", rows, convErrs, s.batchSize, s.records.InsertTenants)
	case models.DataTypeBuildings:
		rows, convErrs := convertRows(in, "Buildings", toBuilding, func(b *models.Building) {
			b.ID = uuid.New()
			b.CompanyID = in.CompanyID
			b.UserID = in.UserID
		})
		inserted, errs = commitBatches(ctx, "Buildings", rows, convErrs, s.batchSize, s.records.InsertBuildings)
	case models.DataTypeExpenses:
		rows, convErrs := convertRows(in, "Expenses", toExpense, func(e *models.Expense) {
			e.ID = uuid.New()
			e.CompanyID = in.CompanyID
			e.UserID = in.UserID
		})
		inserted, errs = commitBatches(ctx, "Expenses", rows, convErrs, s.batchSize, s.records.InsertExpenses)
	case models.DataTypeUnits:
		rows, convErrs := convertRows(in, "Units", toUnit, func(u *models.Unit) {
			u.ID = uuid.New()
			u.CompanyID = in.CompanyID
			u.UserID = in.UserID
		})
		inserted, errs = commitBatches(ctx, "Units", rows, convErrs, s.batchSize, s.records.InsertUnits)
	case models.DataTypePayments:
		rows, convErrs := convertRows(in, "Payments", toPayment, func(p *models.Payment) {
			p.ID = uuid.New()
			p.CompanyID = in.CompanyID
			p.UserID = in.UserID
		})
		inserted, errs = commitBatches(ctx, "Payments", rows, convErrs, s.batchSize, s.records.InsertPayments)
	}

	if len(errs) > 0 {
		msg := strings.Join(errs, "; ")
		if err := s.uploads.SetCommitResult(ctx, in.UploadID, models.CommitStatusFailed, inserted, &msg); err != nil {
			s.logger.Error("failed to persist commit failure", zap.String("upload_id", in.UploadID.String()), zap.Error(err))
		}
	} else {
		if err := s.uploads.SetCommitResult(ctx, in.UploadID, models.CommitStatusCommitted, inserted, nil); err != nil {
			s.logger.Error("failed to persist commit result", zap.String("upload_id", in.UploadID.String()), zap.Error(err))
		}
	}

	s.logger.Info("commit finished",
		zap.String("upload_id", in.UploadID.String()),
		zap.String("data_type", in.DataType),
		zap.Int("inserted", inserted),
		zap.Int("errors", len(errs)))

	if errs == nil {
		errs = []string{}
	}
	return &CommitResult{InsertedCount: inserted, Errors: errs}, nil
}

// convertRows coerces every generic record into the typed model, stamping
// ownership on each. Rows that fail validation are skipped and reported.
func convertRows[T any](in CommitInput, label string, conv func(map[string]any) (T, error), own func(*T)) ([]T, []string) {
	rows := make([]T, 0, len(in.Records))
	var errs []string
	for i, record := range in.Records {
		row, err := conv(record)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s row %d skipped: %v", label, i+1, err))
			continue
		}
		own(&row)
		rows = append(rows, row)
	}
	return rows, errs
}

// commitBatches inserts rows in bounded batches and stops at the first
// failing batch.
func commitBatches[T any](ctx context.Context, label string, rows []T, errs []string, batchSize int, insert func(context.Context, []T) error) (int, []string) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	inserted := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insert(ctx, rows[start:end]); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", label, err))
			break
		}
		inserted += end - start
	}
	return inserted, errs
}

// resolveBuildings fills tenant building ids from building names, memoized
// through the TTL cache. Unresolvable names are left as-is: the imported
// name survives on the tenant row.
func (s *Service) resolveBuildings(ctx context.Context, companyID uuid.UUID, tenants []models.Tenant) {
	for i := range tenants {
		if tenants[i].BuildingID != nil || tenants[i].Building == "" {
			continue
		}
		id := s.lookupBuildingID(ctx, companyID, tenants[i].Building)
		if id != nil {
			tenants[i].BuildingID = id
		}
	}
}

func (s *Service) lookupBuildingID(ctx context.Context, companyID uuid.UUID, name string) *uuid.UUID {
	key := fmt.Sprintf("building:%s:%s", companyID, strings.ToLower(name))

	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		if id, err := uuid.Parse(cached); err == nil {
			return &id
		}
	} else if err != nil {
		s.logger.Warn("building cache read failed", zap.String("key", key), zap.Error(err))
	}

	id, err := s.records.FindBuildingID(ctx, companyID, name)
	if err != nil {
		s.logger.Warn("building lookup failed", zap.String("building", name), zap.Error(err))
		return nil
	}
	if id == nil {
		return nil
	}

	if err := s.cache.Set(ctx, key, id.String(), buildingCacheTTL); err != nil {
		s.logger.Warn("building cache write failed", zap.String("key", key), zap.Error(err))
	}
	return id
}
