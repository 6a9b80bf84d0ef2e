package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract holds the contract fields used for payment-terms reconciliation.
// A contract is matched to invoices implicitly by (tenant_id, counterparty_name).
type Contract struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TenantID         string    `json:"tenant_id" gorm:"type:varchar(128);not null;index"`
	DocumentID       uuid.UUID `json:"document_id" gorm:"type:uuid;not null;uniqueIndex"`
	CounterpartyName string    `json:"counterparty_name" gorm:"type:varchar(256);not null;index"`
	PaymentTermsDays *int      `json:"payment_terms_days,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at" gorm:"not null;index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the table name for the Contract model
func (Contract) TableName() string {
	return "contracts"
}
