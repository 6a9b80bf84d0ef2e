package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType classifies an ingested document
type DocumentType string

const (
	DocumentTypeInvoice      DocumentType = "invoice"
	DocumentTypeContract     DocumentType = "contract"
	DocumentTypeServiceOrder DocumentType = "service_order"
	DocumentTypeOther        DocumentType = "other"
)

// DocumentStatus represents the lifecycle status of a document
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusBooked     DocumentStatus = "booked"
	DocumentStatusArchived   DocumentStatus = "archived"
	DocumentStatusDeleted    DocumentStatus = "deleted"
	DocumentStatusError      DocumentStatus = "error"
)

// Classification is the data-protection classification of a document
type Classification string

const (
	ClassificationPublic       Classification = "public"
	ClassificationInternal     Classification = "internal"
	ClassificationConfidential Classification = "confidential"
)

// DefaultRetentionYears is the statutory bookkeeping retention period
const DefaultRetentionYears = 10

// Document represents the canonical metadata record for any ingested document
type Document struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	TenantID          string         `json:"tenant_id" gorm:"type:varchar(128);not null;index"`
	DocumentType      DocumentType   `json:"document_type" gorm:"type:varchar(32);not null"`
	Status            DocumentStatus `json:"status" gorm:"type:varchar(32);not null;index;default:'uploaded'"`
	FileName          string         `json:"file_name" gorm:"type:varchar(512)"`
	MimeType          string         `json:"mime_type" gorm:"type:varchar(128)"`
	FileSizeBytes     *int64         `json:"file_size_bytes,omitempty"`
	UploadedBy        string         `json:"uploaded_by" gorm:"type:varchar(128)"`
	UploadedAt        time.Time      `json:"uploaded_at" gorm:"not null"`
	ProcessedAt       *time.Time     `json:"processed_at,omitempty"`
	DeletedAt         *time.Time     `json:"deleted_at,omitempty"`
	SourceSystem      string         `json:"source_system" gorm:"type:varchar(128)"`
	ExternalReference *string        `json:"external_reference,omitempty" gorm:"type:varchar(256)"`
	Classification    Classification `json:"classification" gorm:"type:varchar(32);not null;default:'internal'"`
	RetentionUntil    time.Time      `json:"retention_until" gorm:"not null"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TableName returns the table name for the Document model
func (Document) TableName() string {
	return "documents"
}

// NewDocument builds a new document metadata record with status uploaded.
// RetentionUntil is stamped once at creation and never recomputed.
func NewDocument(tenantID string, docType DocumentType, fileName, mimeType, uploadedBy string, classification Classification, retentionYears int) *Document {
	if retentionYears <= 0 {
		retentionYears = DefaultRetentionYears
	}
	now := time.Now().UTC()
	return &Document{
		ID:             uuid.New(),
		TenantID:       tenantID,
		DocumentType:   docType,
		Status:         DocumentStatusUploaded,
		FileName:       fileName,
		MimeType:       mimeType,
		UploadedBy:     uploadedBy,
		UploadedAt:     now,
		SourceSystem:   "sbs-nexus-platform",
		Classification: classification,
		RetentionUntil: now.AddDate(retentionYears, 0, 0),
	}
}

// IsRetentionExpired reports whether the statutory retention period has passed
func (d *Document) IsRetentionExpired() bool {
	return time.Now().UTC().After(d.RetentionUntil)
}

// SoftDelete marks the document as deleted without removing the record.
// Calling it again is a no-op; the original DeletedAt is preserved.
func (d *Document) SoftDelete() {
	if d.Status == DocumentStatusDeleted {
		return
	}
	now := time.Now().UTC()
	d.Status = DocumentStatusDeleted
	d.DeletedAt = &now
}

// MarkProcessed transitions the document to processed and stamps ProcessedAt
func (d *Document) MarkProcessed() {
	now := time.Now().UTC()
	d.Status = DocumentStatusProcessed
	d.ProcessedAt = &now
}

// IsDeleted reports whether the document has been soft-deleted
func (d *Document) IsDeleted() bool {
	return d.Status == DocumentStatusDeleted
}
