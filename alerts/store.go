package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/tenant"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// CreateInput carries everything needed to record one alert
type CreateInput struct {
	AlertType          models.AlertType
	Severity           models.Severity
	Message            string
	SourceModule       string
	CounterpartyName   *string
	InvoiceDocumentID  *uuid.UUID
	ContractDocumentID *uuid.UUID
}

// ListFilter narrows an alert listing. TenantID always comes from the
// context, never from the filter.
type ListFilter struct {
	AlertType *models.AlertType
	Severity  *models.Severity
	Limit     int
	Offset    int
}

// Store is the append-only alert store. Alerts are never updated or
// deleted here; acknowledging them belongs to the API layer above.
type Store struct {
	db *gorm.DB
}

// NewStore creates an alert store on the given database handle
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create persists a new alert for the tenant bound to ctx. When tx is
// non-nil the insert joins that transaction, so batch scans commit or
// roll back their alerts as one unit.
func (s *Store) Create(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Alert, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := tx
	if db == nil {
		db = s.db
	}

	alert := &models.Alert{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		AlertType:          input.AlertType,
		Severity:           input.Severity,
		Message:            input.Message,
		SourceModule:       input.SourceModule,
		CounterpartyName:   input.CounterpartyName,
		InvoiceDocumentID:  input.InvoiceDocumentID,
		ContractDocumentID: input.ContractDocumentID,
		CreatedAt:          time.Now().UTC(),
	}

	if err := db.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	return alert, nil
}

// List returns the tenant's alerts, most recent first
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.Alert, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.AlertType != nil {
		query = query.Where("alert_type = ?", *filter.AlertType)
	}
	if filter.Severity != nil {
		query = query.Where("severity = ?", *filter.Severity)
	}

	var results []models.Alert
	if err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return results, nil
}

// CountSince returns how many alerts of one type reference the given
// invoice document since the cutoff. The overdue scan uses it to avoid
// re-emitting an alert for the same invoice on the same day.
func (s *Store) CountSince(ctx context.Context, tx *gorm.DB, alertType models.AlertType, invoiceDocumentID uuid.UUID, since time.Time) (int64, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return 0, err
	}

	db := tx
	if db == nil {
		db = s.db
	}

	var count int64
	err = db.WithContext(ctx).Model(&models.Alert{}).
		Where("tenant_id = ? AND alert_type = ? AND invoice_document_id = ? AND created_at >= ?",
			tenantID, alertType, invoiceDocumentID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	return count, nil
}
