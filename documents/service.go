package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/tenant"
)

// ErrDocumentNotFound is returned when no document exists for the id
// within the tenant's partition
var ErrDocumentNotFound = errors.New("document not found")

// ErrAlreadyDeleted is returned when soft-deleting a document twice.
// The original DeletedAt is never re-stamped.
var ErrAlreadyDeleted = errors.New("document already deleted")

// CreateInput describes a document ingestion request
type CreateInput struct {
	DocumentType   models.DocumentType
	FileName       string
	MimeType       string
	UploadedBy     string
	Classification models.Classification
	RetentionYears int
}

// Service owns the document metadata lifecycle: creation, status
// transitions and soft deletion. It touches nothing but the documents table.
type Service struct {
	db *gorm.DB
}

// NewService creates a document lifecycle service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create ingests a new document metadata record with status uploaded
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Document, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if input.Classification == "" {
		input.Classification = models.ClassificationInternal
	}

	doc := models.NewDocument(tenantID, input.DocumentType, input.FileName, input.MimeType,
		input.UploadedBy, input.Classification, input.RetentionYears)

	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return doc, nil
}

// Get fetches one document within the tenant's partition
func (s *Service) Get(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	if err := s.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", documentID, tenantID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return &doc, nil
}

// MarkProcessed transitions a document to processed and stamps ProcessedAt
func (s *Service) MarkProcessed(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	doc.MarkProcessed()
	if err := s.db.WithContext(ctx).Save(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	return doc, nil
}

// SoftDelete marks a document as deleted without removing the record.
// Deleting an already-deleted document returns ErrAlreadyDeleted and
// leaves the original DeletedAt untouched.
func (s *Service) SoftDelete(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.IsDeleted() {
		return doc, ErrAlreadyDeleted
	}

	doc.SoftDelete()
	if err := s.db.WithContext(ctx).Save(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to soft-delete document: %w", err)
	}

	return doc, nil
}
