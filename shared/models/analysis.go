package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RiskLevel grades a detected clause
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// ClauseHit is one detected risk-bearing clause in a contract text.
// Evidence is a pattern tag, never the matched substring, so no contract
// excerpt ends up in long-lived records.
type ClauseHit struct {
	ClauseType string    `json:"clause_type"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Evidence   string    `json:"evidence"`
}

// ContractAnalysis is the persisted result of one contract risk analysis.
// Risk tags and clause hits are stored as JSON text columns.
type ContractAnalysis struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TenantID           string    `json:"tenant_id" gorm:"type:varchar(128);not null;index"`
	ContractID         uuid.UUID `json:"contract_id" gorm:"type:uuid;not null;index"`
	CounterpartyName   *string   `json:"counterparty_name,omitempty" gorm:"type:varchar(256)"`
	ContentFingerprint string    `json:"content_fingerprint" gorm:"type:varchar(128);not null"`
	RiskScore          int       `json:"risk_score" gorm:"not null"`
	RiskTagsJSON       string    `json:"-" gorm:"column:risk_tags;type:text;not null;default:'[]'"`
	ClauseHitsJSON     string    `json:"-" gorm:"column:clause_hits;type:text;not null;default:'[]'"`
	CreatedAt          time.Time `json:"created_at" gorm:"not null"`
}

// TableName returns the table name for the ContractAnalysis model
func (ContractAnalysis) TableName() string {
	return "contract_analyses"
}

// RiskTags decodes the stored risk tag list
func (a *ContractAnalysis) RiskTags() ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(a.RiskTagsJSON), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// ClauseHits decodes the stored clause hit list
func (a *ContractAnalysis) ClauseHits() ([]ClauseHit, error) {
	var hits []ClauseHit
	if err := json.Unmarshal([]byte(a.ClauseHitsJSON), &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// SetRiskTags encodes the risk tag list for storage
func (a *ContractAnalysis) SetRiskTags(tags []string) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	a.RiskTagsJSON = string(data)
	return nil
}

// SetClauseHits encodes the clause hit list for storage
func (a *ContractAnalysis) SetClauseHits(hits []ClauseHit) error {
	data, err := json.Marshal(hits)
	if err != nil {
		return err
	}
	a.ClauseHitsJSON = string(data)
	return nil
}
