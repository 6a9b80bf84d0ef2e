package models

import (
	"testing"
	"time"
)

func TestNewDocumentDefaults(t *testing.T) {
	doc := NewDocument("tenant-a", DocumentTypeInvoice, "rechnung.pdf", "application/pdf", "uploader", ClassificationInternal, 0)

	if doc.ID.String() == "" {
		t.Error("Expected a generated id")
	}
	if doc.TenantID != "tenant-a" {
		t.Errorf("Expected tenant-a, got %s", doc.TenantID)
	}
	if doc.Status != DocumentStatusUploaded {
		t.Errorf("Expected status uploaded, got %s", doc.Status)
	}
	if doc.DeletedAt != nil {
		t.Error("Expected no deletion timestamp on a new document")
	}
}

func TestRetentionDefaultTenYears(t *testing.T) {
	doc := NewDocument("tenant-a", DocumentTypeContract, "vertrag.pdf", "application/pdf", "uploader", ClassificationConfidential, 0)

	retention := doc.RetentionUntil.Sub(doc.UploadedAt)
	if retention < 3650*24*time.Hour {
		t.Errorf("Expected retention of at least 3650 days, got %v", retention)
	}
	if doc.IsRetentionExpired() {
		t.Error("Fresh document must not have expired retention")
	}
}

func TestRetentionExpired(t *testing.T) {
	doc := NewDocument("tenant-a", DocumentTypeOther, "old.pdf", "application/pdf", "uploader", ClassificationPublic, 1)
	doc.RetentionUntil = time.Now().UTC().Add(-time.Hour)

	if !doc.IsRetentionExpired() {
		t.Error("Expected retention to be expired")
	}
}

func TestSoftDeleteStampsOnce(t *testing.T) {
	doc := NewDocument("tenant-a", DocumentTypeInvoice, "a.pdf", "application/pdf", "uploader", ClassificationInternal, 0)

	doc.SoftDelete()
	if doc.Status != DocumentStatusDeleted {
		t.Fatalf("Expected status deleted, got %s", doc.Status)
	}
	if doc.DeletedAt == nil {
		t.Fatal("Expected deletion timestamp")
	}

	first := *doc.DeletedAt
	time.Sleep(5 * time.Millisecond)
	doc.SoftDelete()

	if !doc.DeletedAt.Equal(first) {
		t.Error("Repeat soft delete must not re-stamp DeletedAt")
	}
}

func TestMarkProcessed(t *testing.T) {
	doc := NewDocument("tenant-a", DocumentTypeInvoice, "a.pdf", "application/pdf", "uploader", ClassificationInternal, 0)

	doc.MarkProcessed()
	if doc.Status != DocumentStatusProcessed {
		t.Errorf("Expected status processed, got %s", doc.Status)
	}
	if doc.ProcessedAt == nil {
		t.Error("Expected processed timestamp")
	}
}
