package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sbs-nexus/docrisk/alerts"
	"github.com/sbs-nexus/docrisk/shared/events"
	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/tenant"
)

// sourceModule tags alerts produced by this package
const sourceModule = "invoice_processing"

// Scanner finds overdue invoices for one tenant and records an alert per
// invoice. The whole scan is a single transaction: either every alert
// commits or none does, and the failure propagates to the caller.
type Scanner struct {
	db        *gorm.DB
	alerts    *alerts.Store
	publisher *events.Publisher
}

// NewScanner creates an overdue invoice scanner. publisher may be nil.
func NewScanner(db *gorm.DB, alertStore *alerts.Store, publisher *events.Publisher) *Scanner {
	return &Scanner{db: db, alerts: alertStore, publisher: publisher}
}

// ScanOverdue emits one invoice_overdue alert for every invoice of the
// tenant whose due date lies before the start of today and whose status
// is neither paid nor cancelled. An invoice already alerted today is
// skipped, so re-running the scan on the same day creates nothing new.
// Returns the number of alerts created.
func (s *Scanner) ScanOverdue(ctx context.Context) (int, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var created []*models.Alert

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overdue []models.Invoice
		err := tx.Where("tenant_id = ? AND due_date IS NOT NULL AND due_date < ? AND status NOT IN ?",
			tenantID, startOfToday, []models.InvoiceStatus{models.InvoiceStatusPaid, models.InvoiceStatusCancelled}).
			Find(&overdue).Error
		if err != nil {
			return fmt.Errorf("failed to query overdue invoices: %w", err)
		}

		for _, inv := range overdue {
			// One alert per invoice per day, even across re-runs
			count, err := s.alerts.CountSince(ctx, tx, models.AlertTypeInvoiceOverdue, inv.DocumentID, startOfToday)
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			due := inv.DueDate.UTC()
			dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
			daysOverdue := int(startOfToday.Sub(dueDay).Hours() / 24)

			invoiceDocID := inv.DocumentID
			alert, err := s.alerts.Create(ctx, tx, alerts.CreateInput{
				AlertType:    models.AlertTypeInvoiceOverdue,
				Severity:     models.SeverityHigh,
				Message: fmt.Sprintf("Invoice %s has been overdue since %s (%d days, current status: %s)",
					inv.DocumentID, dueDay.Format("2006-01-02"), daysOverdue, inv.Status),
				SourceModule:      sourceModule,
				CounterpartyName:  inv.CounterpartyName,
				InvoiceDocumentID: &invoiceDocID,
			})
			if err != nil {
				return err
			}

			created = append(created, alert)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	// Events go out only for committed alerts
	for _, alert := range created {
		if err := s.publisher.PublishAlert(alert); err != nil {
			logrus.WithError(err).Warn("failed to publish invoice_overdue event")
		}
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"alerts_created": len(created),
	}).Info("overdue invoice scan finished")

	return len(created), nil
}
