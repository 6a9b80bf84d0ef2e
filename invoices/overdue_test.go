package invoices

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sbs-nexus/docrisk/alerts"
	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/tenant"
)

func timePtr(v time.Time) *time.Time { return &v }

func TestScanOverdueSelectsOnlyPastDueUnsettled(t *testing.T) {
	db := newTestDB(t)
	alertStore := alerts.NewStore(db)
	scanner := NewScanner(db, alertStore, nil)
	ctx := testCtx(t, "tenant-a")

	now := time.Now().UTC()
	seedInvoice(t, db, "tenant-a", timePtr(now.AddDate(0, 0, -3)), models.InvoiceStatusOpen)
	seedInvoice(t, db, "tenant-a", timePtr(now.AddDate(0, 0, -1)), models.InvoiceStatus("uploaded"))
	seedInvoice(t, db, "tenant-a", timePtr(now), models.InvoiceStatusPaid)
	seedInvoice(t, db, "tenant-a", timePtr(now.AddDate(0, 0, 5)), models.InvoiceStatusOpen)
	seedInvoice(t, db, "tenant-a", nil, models.InvoiceStatusOpen)
	seedInvoice(t, db, "tenant-a", timePtr(now.AddDate(0, 0, -2)), models.InvoiceStatusCancelled)

	created, err := scanner.ScanOverdue(ctx)
	if err != nil {
		t.Fatalf("ScanOverdue failed: %v", err)
	}
	if created != 2 {
		t.Fatalf("Expected 2 alerts, got %d", created)
	}

	listed, err := alertStore.List(ctx, alerts.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("Expected 2 stored alerts, got %d", len(listed))
	}
	for _, alert := range listed {
		if alert.AlertType != models.AlertTypeInvoiceOverdue {
			t.Errorf("Expected invoice_overdue, got %s", alert.AlertType)
		}
		if alert.Severity != models.SeverityHigh {
			t.Errorf("Expected severity high, got %s", alert.Severity)
		}
		if alert.InvoiceDocumentID == nil {
			t.Error("Expected alert to reference an invoice document id")
		}
	}
}

func TestScanOverdueMessageIsSelfContained(t *testing.T) {
	db := newTestDB(t)
	alertStore := alerts.NewStore(db)
	scanner := NewScanner(db, alertStore, nil)
	ctx := testCtx(t, "tenant-a")

	due := time.Now().UTC().AddDate(0, 0, -3)
	seedInvoice(t, db, "tenant-a", &due, models.InvoiceStatusOpen)

	if _, err := scanner.ScanOverdue(ctx); err != nil {
		t.Fatalf("ScanOverdue failed: %v", err)
	}

	listed, err := alertStore.List(ctx, alerts.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(listed))
	}

	msg := listed[0].Message
	if !strings.Contains(msg, due.Format("2006-01-02")) {
		t.Errorf("Expected due date in message, got %q", msg)
	}
	if !strings.Contains(msg, "3 days") {
		t.Errorf("Expected days overdue in message, got %q", msg)
	}
	if !strings.Contains(msg, "open") {
		t.Errorf("Expected current status in message, got %q", msg)
	}
}

func TestScanOverdueRerunSameDayCreatesNothing(t *testing.T) {
	db := newTestDB(t)
	scanner := NewScanner(db, alerts.NewStore(db), nil)
	ctx := testCtx(t, "tenant-a")

	due := time.Now().UTC().AddDate(0, 0, -2)
	seedInvoice(t, db, "tenant-a", &due, models.InvoiceStatusOpen)

	first, err := scanner.ScanOverdue(ctx)
	if err != nil {
		t.Fatalf("First scan failed: %v", err)
	}
	if first != 1 {
		t.Fatalf("Expected 1 alert on first scan, got %d", first)
	}

	second, err := scanner.ScanOverdue(ctx)
	if err != nil {
		t.Fatalf("Second scan failed: %v", err)
	}
	if second != 0 {
		t.Errorf("Expected 0 alerts on same-day re-run, got %d", second)
	}
}

func TestScanOverdueIsTenantScoped(t *testing.T) {
	db := newTestDB(t)
	alertStore := alerts.NewStore(db)
	scanner := NewScanner(db, alertStore, nil)
	ctxA := testCtx(t, "tenant-a")
	ctxB := testCtx(t, "tenant-b")

	due := time.Now().UTC().AddDate(0, 0, -1)
	seedInvoice(t, db, "tenant-b", &due, models.InvoiceStatusOpen)

	created, err := scanner.ScanOverdue(ctxA)
	if err != nil {
		t.Fatalf("ScanOverdue failed: %v", err)
	}
	if created != 0 {
		t.Errorf("Tenant a's scan must not pick up tenant b's invoices, got %d", created)
	}

	listedB, err := alertStore.List(ctxB, alerts.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listedB) != 0 {
		t.Errorf("No alerts should exist for tenant b yet, got %d", len(listedB))
	}
}

func TestScanOverdueFailureRollsBackAllAlerts(t *testing.T) {
	db := newTestDB(t)
	alertStore := alerts.NewStore(db)
	scanner := NewScanner(db, alertStore, nil)
	ctx := testCtx(t, "tenant-a")

	now := time.Now().UTC()
	seedInvoice(t, db, "tenant-a", timePtr(now.AddDate(0, 0, -3)), models.InvoiceStatusOpen)
	seedInvoice(t, db, "tenant-a", timePtr(now.AddDate(0, 0, -1)), models.InvoiceStatusOpen)

	// Let the first alert insert through and fail the second one
	insertErr := errors.New("alert insert refused")
	var alertInserts int
	err := db.Callback().Create().Before("gorm:create").Register("refuse_second_alert_insert", func(tx *gorm.DB) {
		if tx.Statement.Table != (models.Alert{}).TableName() {
			return
		}
		alertInserts++
		if alertInserts == 2 {
			tx.AddError(insertErr)
		}
	})
	if err != nil {
		t.Fatalf("Failed to register callback: %v", err)
	}

	if _, err := scanner.ScanOverdue(ctx); !errors.Is(err, insertErr) {
		t.Fatalf("Expected the scan to surface the insert failure, got %v", err)
	}

	// The whole batch rolls back, including the alert that inserted cleanly
	var alertRows int64
	if err := db.Model(&models.Alert{}).Count(&alertRows).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if alertRows != 0 {
		t.Errorf("Expected 0 persisted alerts after a failed scan, got %d", alertRows)
	}
}

func TestScanOverdueWithoutTenantFails(t *testing.T) {
	db := newTestDB(t)
	scanner := NewScanner(db, alerts.NewStore(db), nil)

	_, err := scanner.ScanOverdue(context.Background())
	if !errors.Is(err, tenant.ErrMissingTenant) {
		t.Errorf("Expected ErrMissingTenant, got %v", err)
	}
}
