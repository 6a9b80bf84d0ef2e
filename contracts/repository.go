package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/tenant"
)

// ErrAnalysisNotFound is returned when no analysis exists for the id
// within the tenant's partition
var ErrAnalysisNotFound = errors.New("contract analysis not found")

// Repository persists and loads contract analyses
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a contract analysis repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save persists an analysis result as a row with JSON tag/hit columns
func (r *Repository) Save(ctx context.Context, result *AnalysisResult, counterpartyName *string) (*models.ContractAnalysis, error) {
	row := &models.ContractAnalysis{
		ID:                 result.AnalysisID,
		TenantID:           result.TenantID,
		ContractID:         result.ContractID,
		CounterpartyName:   counterpartyName,
		ContentFingerprint: result.ContentFingerprint,
		RiskScore:          result.RiskScore,
		CreatedAt:          result.CreatedAt,
	}
	if err := row.SetRiskTags(result.RiskTags); err != nil {
		return nil, fmt.Errorf("failed to encode risk tags: %w", err)
	}
	if err := row.SetClauseHits(result.ClauseHits); err != nil {
		return nil, fmt.Errorf("failed to encode clause hits: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to save contract analysis: %w", err)
	}

	return row, nil
}

// FindByID loads one analysis within the tenant's partition
func (r *Repository) FindByID(ctx context.Context, analysisID uuid.UUID) (*models.ContractAnalysis, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	var row models.ContractAnalysis
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", analysisID, tenantID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to fetch contract analysis: %w", err)
	}

	return &row, nil
}

// FindLatestByContract loads the most recent analysis for a contract,
// or ErrAnalysisNotFound when the contract was never analyzed
func (r *Repository) FindLatestByContract(ctx context.Context, contractID uuid.UUID) (*models.ContractAnalysis, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	var row models.ContractAnalysis
	err = r.db.WithContext(ctx).
		Where("contract_id = ? AND tenant_id = ?", contractID, tenantID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to fetch contract analysis: %w", err)
	}

	return &row, nil
}

// ToResult rebuilds an AnalysisResult from a stored row
func ToResult(row *models.ContractAnalysis) (*AnalysisResult, error) {
	tags, err := row.RiskTags()
	if err != nil {
		return nil, fmt.Errorf("failed to decode risk tags: %w", err)
	}
	hits, err := row.ClauseHits()
	if err != nil {
		return nil, fmt.Errorf("failed to decode clause hits: %w", err)
	}

	return &AnalysisResult{
		AnalysisID:         row.ID,
		TenantID:           row.TenantID,
		ContractID:         row.ContractID,
		ContentFingerprint: row.ContentFingerprint,
		RiskScore:          row.RiskScore,
		RiskTags:           tags,
		ClauseHits:         hits,
		CreatedAt:          row.CreatedAt,
	}, nil
}
