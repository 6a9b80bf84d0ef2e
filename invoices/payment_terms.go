package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sbs-nexus/docrisk/alerts"
	"github.com/sbs-nexus/docrisk/shared/events"
	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/tenant"
)

// Reconciler compares an invoice's stated payment terms against the most
// recent contract for the same counterparty. It is a point check per
// invoice with no state of its own beyond the alert it may create.
type Reconciler struct {
	db        *gorm.DB
	alerts    *alerts.Store
	publisher *events.Publisher
}

// NewReconciler creates a payment terms reconciler. publisher may be nil.
func NewReconciler(db *gorm.DB, alertStore *alerts.Store, publisher *events.Publisher) *Reconciler {
	return &Reconciler{db: db, alerts: alertStore, publisher: publisher}
}

// CheckPaymentTerms resolves the governing contract and emits a
// payment_terms_mismatch alert when its terms differ from the invoice's.
// No contract, or a contract without terms, is a legitimate no-op.
// Equal uploaded_at timestamps are broken by document_id so the winning
// contract is deterministic.
func (r *Reconciler) CheckPaymentTerms(ctx context.Context, invoice *models.Invoice, counterpartyName string, invoiceTermsDays int) (*models.Alert, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	var contract models.Contract
	err = r.db.WithContext(ctx).
		Where("tenant_id = ? AND counterparty_name = ?", tenantID, counterpartyName).
		Order("uploaded_at DESC, document_id DESC").
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve contract for %s: %w", counterpartyName, err)
	}

	if contract.PaymentTermsDays == nil {
		return nil, nil
	}

	if *contract.PaymentTermsDays == invoiceTermsDays {
		return nil, nil
	}

	invoiceDocID := invoice.DocumentID
	contractDocID := contract.DocumentID
	alert, err := r.alerts.Create(ctx, nil, alerts.CreateInput{
		AlertType:    models.AlertTypePaymentTermsMismatch,
		Severity:     models.SeverityMedium,
		Message:      fmt.Sprintf("Payment terms mismatch for %s: contract %d days, invoice %d days", counterpartyName, *contract.PaymentTermsDays, invoiceTermsDays),
		SourceModule: sourceModule,
		CounterpartyName:   &counterpartyName,
		InvoiceDocumentID:  &invoiceDocID,
		ContractDocumentID: &contractDocID,
	})
	if err != nil {
		return nil, err
	}

	if err := r.publisher.PublishAlert(alert); err != nil {
		logrus.WithError(err).Warn("failed to publish payment_terms_mismatch event")
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id":           tenantID,
		"counterparty":        counterpartyName,
		"contract_terms_days": *contract.PaymentTermsDays,
		"invoice_terms_days":  invoiceTermsDays,
	}).Info("payment terms mismatch detected")

	return alert, nil
}
