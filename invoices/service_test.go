package invoices

import (
	"errors"
	"testing"
	"time"

	"github.com/sbs-nexus/docrisk/shared/models"
)

func TestRegisterInvoiceCreatesDocument(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := testCtx(t, "tenant-a")

	due := time.Now().UTC().AddDate(0, 0, 30)
	cp := "ACME GmbH"
	invoice, err := svc.Register(ctx, RegisterInput{
		FileName:         "rechnung.pdf",
		MimeType:         "application/pdf",
		UploadedBy:       "uploader",
		DueDate:          &due,
		CounterpartyName: &cp,
		PaymentTermsDays: intPtr(30),
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if invoice.Status != models.InvoiceStatusOpen {
		t.Errorf("Expected status open, got %s", invoice.Status)
	}

	var doc models.Document
	if err := db.Where("id = ?", invoice.DocumentID).First(&doc).Error; err != nil {
		t.Fatalf("Expected document metadata row: %v", err)
	}
	if doc.DocumentType != models.DocumentTypeInvoice {
		t.Errorf("Expected document type invoice, got %s", doc.DocumentType)
	}

	fetched, err := svc.GetByDocumentID(ctx, invoice.DocumentID)
	if err != nil {
		t.Fatalf("GetByDocumentID failed: %v", err)
	}
	if fetched.ID != invoice.ID {
		t.Error("Expected invoice to round-trip by document id")
	}
}

func TestGetByDocumentIDCrossTenantNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctxA := testCtx(t, "tenant-a")
	ctxB := testCtx(t, "tenant-b")

	invoice, err := svc.Register(ctxA, RegisterInput{
		FileName: "rechnung.pdf",
		MimeType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.GetByDocumentID(ctxB, invoice.DocumentID); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("Expected ErrInvoiceNotFound across tenants, got %v", err)
	}
}
