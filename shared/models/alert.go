package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertType identifies which check produced an alert
type AlertType string

const (
	AlertTypeContractHighRisk     AlertType = "contract_high_risk"
	AlertTypePaymentTermsMismatch AlertType = "payment_terms_mismatch"
	AlertTypeInvoiceOverdue       AlertType = "invoice_overdue"
)

// Severity grades an alert
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert is one detected risk or inconsistency. Alerts are append-only:
// no update or delete is ever issued against this table from the core.
type Alert struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	TenantID           string     `json:"tenant_id" gorm:"type:varchar(128);not null;index"`
	AlertType          AlertType  `json:"alert_type" gorm:"type:varchar(64);not null;index"`
	Severity           Severity   `json:"severity" gorm:"type:varchar(16);not null"`
	Message            string     `json:"message" gorm:"type:text;not null"`
	SourceModule       string     `json:"source_module" gorm:"type:varchar(128)"`
	CounterpartyName   *string    `json:"counterparty_name,omitempty" gorm:"type:varchar(256)"`
	InvoiceDocumentID  *uuid.UUID `json:"invoice_document_id,omitempty" gorm:"type:uuid;index"`
	ContractDocumentID *uuid.UUID `json:"contract_document_id,omitempty" gorm:"type:uuid"`
	CreatedAt          time.Time  `json:"created_at" gorm:"not null;index"`
}

// TableName returns the table name for the Alert model
func (Alert) TableName() string {
	return "alerts"
}
