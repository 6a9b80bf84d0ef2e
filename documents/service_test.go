package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sbs-nexus/docrisk/shared/config"
	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/tenant"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := config.MigrateSchema(db); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	return db
}

func testCtx(t *testing.T, tenantID string) context.Context {
	t.Helper()
	ctx, err := tenant.WithTenant(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("Failed to bind tenant: %v", err)
	}
	return ctx
}

func TestCreateAndGetDocument(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := testCtx(t, "tenant-a")

	doc, err := svc.Create(ctx, CreateInput{
		DocumentType: models.DocumentTypeInvoice,
		FileName:     "rechnung.pdf",
		MimeType:     "application/pdf",
		UploadedBy:   "uploader",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if doc.Status != models.DocumentStatusUploaded {
		t.Errorf("Expected status uploaded, got %s", doc.Status)
	}
	if doc.Classification != models.ClassificationInternal {
		t.Errorf("Expected default classification internal, got %s", doc.Classification)
	}

	fetched, err := svc.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.FileName != "rechnung.pdf" {
		t.Errorf("Expected file name to round-trip, got %s", fetched.FileName)
	}
}

func TestGetCrossTenantNotFound(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctxA := testCtx(t, "tenant-a")
	ctxB := testCtx(t, "tenant-b")

	doc, err := svc.Create(ctxA, CreateInput{
		DocumentType: models.DocumentTypeContract,
		FileName:     "vertrag.pdf",
		MimeType:     "application/pdf",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(ctxB, doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Expected ErrDocumentNotFound across tenants, got %v", err)
	}
}

func TestSoftDeletePersistsAndStaysStamped(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := testCtx(t, "tenant-a")

	doc, err := svc.Create(ctx, CreateInput{
		DocumentType: models.DocumentTypeInvoice,
		FileName:     "a.pdf",
		MimeType:     "application/pdf",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := svc.SoftDelete(ctx, doc.ID)
	if err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if deleted.Status != models.DocumentStatusDeleted || deleted.DeletedAt == nil {
		t.Fatal("Expected deleted status and timestamp")
	}
	first := *deleted.DeletedAt

	// Record survives soft delete
	fetched, err := svc.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if !fetched.IsDeleted() {
		t.Error("Expected fetched record to be marked deleted")
	}

	again, err := svc.SoftDelete(ctx, doc.ID)
	if !errors.Is(err, ErrAlreadyDeleted) {
		t.Errorf("Expected ErrAlreadyDeleted, got %v", err)
	}
	if again.DeletedAt == nil || !again.DeletedAt.Equal(first) {
		t.Error("Repeat delete must not alter the original DeletedAt")
	}
}

func TestMarkProcessedPersists(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := testCtx(t, "tenant-a")

	doc, err := svc.Create(ctx, CreateInput{
		DocumentType: models.DocumentTypeServiceOrder,
		FileName:     "auftrag.pdf",
		MimeType:     "application/pdf",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	processed, err := svc.MarkProcessed(ctx, doc.ID)
	if err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	if processed.Status != models.DocumentStatusProcessed || processed.ProcessedAt == nil {
		t.Error("Expected processed status and timestamp")
	}
}

func TestCreateWithoutTenantFails(t *testing.T) {
	svc := NewService(newTestDB(t))

	_, err := svc.Create(context.Background(), CreateInput{
		DocumentType: models.DocumentTypeInvoice, FileName: "a.pdf", MimeType: "application/pdf",
	})
	if !errors.Is(err, tenant.ErrMissingTenant) {
		t.Errorf("Expected ErrMissingTenant, got %v", err)
	}

	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, tenant.ErrMissingTenant) {
		t.Errorf("Expected ErrMissingTenant on Get, got %v", err)
	}
}
