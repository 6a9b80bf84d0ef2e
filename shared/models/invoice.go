package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus represents the settlement status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusOpen      InvoiceStatus = "open"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice holds the invoice fields the risk checks operate on.
// Field values are populated by the external extraction pipeline.
type Invoice struct {
	ID               uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	TenantID         string        `json:"tenant_id" gorm:"type:varchar(128);not null;index"`
	DocumentID       uuid.UUID     `json:"document_id" gorm:"type:uuid;not null;uniqueIndex"`
	DueDate          *time.Time    `json:"due_date,omitempty" gorm:"index"`
	Status           InvoiceStatus `json:"status" gorm:"type:varchar(32);not null;index;default:'open'"`
	CounterpartyName *string       `json:"counterparty_name,omitempty" gorm:"type:varchar(256)"`
	PaymentTermsDays *int          `json:"payment_terms_days,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// IsSettled reports whether the invoice no longer needs payment chasing
func (i *Invoice) IsSettled() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled
}
