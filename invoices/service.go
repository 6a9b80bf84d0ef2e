package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/tenant"
)

// ErrInvoiceNotFound is returned when no invoice exists for the document
// id within the tenant's partition
var ErrInvoiceNotFound = errors.New("invoice not found")

// RegisterInput describes an invoice record being registered. Field
// values come from the external extraction pipeline.
type RegisterInput struct {
	FileName         string
	MimeType         string
	UploadedBy       string
	DueDate          *time.Time
	CounterpartyName *string
	PaymentTermsDays *int
}

// Service registers invoice records and their document metadata
type Service struct {
	db *gorm.DB
}

// NewService creates an invoice service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Register creates the document metadata record and the invoice record
// for a newly ingested invoice, in one transaction
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.Invoice, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	doc := models.NewDocument(tenantID, models.DocumentTypeInvoice, input.FileName, input.MimeType,
		input.UploadedBy, models.ClassificationConfidential, models.DefaultRetentionYears)

	invoice := &models.Invoice{
		ID:               uuid.New(),
		TenantID:         tenantID,
		DocumentID:       doc.ID,
		DueDate:          input.DueDate,
		Status:           models.InvoiceStatusOpen,
		CounterpartyName: input.CounterpartyName,
		PaymentTermsDays: input.PaymentTermsDays,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to create invoice document: %w", err)
		}
		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetByDocumentID loads one invoice within the tenant's partition
func (s *Service) GetByDocumentID(ctx context.Context, documentID uuid.UUID) (*models.Invoice, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := s.db.WithContext(ctx).Where("document_id = ? AND tenant_id = ?", documentID, tenantID).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}

	return &invoice, nil
}
