package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sbs-nexus/docrisk/alerts"
	"github.com/sbs-nexus/docrisk/shared/events"
	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/tenant"
	"github.com/sbs-nexus/docrisk/shared/utils"
)

const (
	minContractTextLen = 50
	maxContractTextLen = 100_000
)

// sourceModule tags alerts produced by this package
const sourceModule = "contract_analyzer"

// ErrInvalidContractText rejects empty, too-short or oversized input
// before it reaches the analyzer
var ErrInvalidContractText = errors.New("contract text must be between 50 and 100000 characters")

// AnalyzeInput is a request to analyze one contract's text
type AnalyzeInput struct {
	ContractID       uuid.UUID
	ContractText     string
	CounterpartyName *string
}

// RegisterInput describes a contract document being registered
type RegisterInput struct {
	FileName         string
	MimeType         string
	CounterpartyName string
	PaymentTermsDays *int
	UploadedBy       string
}

// FingerprintCache remembers the last analyzed text fingerprint per
// contract. Get returns "" when nothing is cached.
type FingerprintCache interface {
	Get(tenantID, contractID string) string
	Set(tenantID, contractID, fingerprint string) error
}

// redisFingerprintCache backs the cache with the shared Redis client
type redisFingerprintCache struct{}

func (redisFingerprintCache) Get(tenantID, contractID string) string {
	return utils.GetLastFingerprint(tenantID, contractID)
}

func (redisFingerprintCache) Set(tenantID, contractID, fingerprint string) error {
	return utils.CacheLastFingerprint(tenantID, contractID, fingerprint)
}

// Service orchestrates contract registration and risk analysis, and
// escalates high-risk results into the alert store.
type Service struct {
	db        *gorm.DB
	analyzer  *Analyzer
	repo      *Repository
	alerts    *alerts.Store
	publisher *events.Publisher
	cache     FingerprintCache
}

// NewService creates the contract analysis service. publisher may be nil
// when no event pipeline is wired.
func NewService(db *gorm.DB, alertStore *alerts.Store, publisher *events.Publisher) *Service {
	return &Service{
		db:        db,
		analyzer:  NewAnalyzer(),
		repo:      NewRepository(db),
		alerts:    alertStore,
		publisher: publisher,
		cache:     redisFingerprintCache{},
	}
}

// Register creates the document metadata record and the contract record
// for a newly ingested contract, in one transaction
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.Contract, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	doc := models.NewDocument(tenantID, models.DocumentTypeContract, input.FileName, input.MimeType,
		input.UploadedBy, models.ClassificationConfidential, models.DefaultRetentionYears)
	doc.MarkProcessed()

	contract := &models.Contract{
		ID:               uuid.New(),
		TenantID:         tenantID,
		DocumentID:       doc.ID,
		CounterpartyName: input.CounterpartyName,
		PaymentTermsDays: input.PaymentTermsDays,
		UploadedAt:       doc.UploadedAt,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to create contract document: %w", err)
		}
		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return contract, nil
}

// AnalyzeAndStore analyzes a contract's text, persists the result and
// raises a contract_high_risk alert when the score reaches the threshold.
// When the text fingerprint matches the last analyzed fingerprint for the
// same contract, the stored result is returned and nothing is re-emitted.
func (s *Service) AnalyzeAndStore(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	text := input.ContractText
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < minContractTextLen || n > maxContractTextLen {
		return nil, ErrInvalidContractText
	}

	fingerprint := Fingerprint(text)
	if cached := s.cache.Get(tenantID, input.ContractID.String()); cached == fingerprint {
		if row, err := s.repo.FindLatestByContract(ctx, input.ContractID); err == nil {
			logrus.WithFields(logrus.Fields{
				"tenant_id":   tenantID,
				"contract_id": input.ContractID,
			}).Debug("contract text unchanged, returning stored analysis")
			return ToResult(row)
		}
		// Cache says unchanged but no stored row exists; fall through and analyze
	}

	result := s.analyzer.Analyze(tenantID, input.ContractID, text)

	if _, err := s.repo.Save(ctx, result, input.CounterpartyName); err != nil {
		return nil, err
	}

	if result.RiskScore >= HighRiskThreshold {
		contractDocID := input.ContractID
		alert, err := s.alerts.Create(ctx, nil, alerts.CreateInput{
			AlertType:          models.AlertTypeContractHighRisk,
			Severity:           models.SeverityHigh,
			Message:            fmt.Sprintf("Contract %s analysed with risk score %d", input.ContractID, result.RiskScore),
			SourceModule:       sourceModule,
			CounterpartyName:   input.CounterpartyName,
			ContractDocumentID: &contractDocID,
		})
		if err != nil {
			return nil, err
		}

		if err := s.publisher.PublishAlert(alert); err != nil {
			logrus.WithError(err).Warn("failed to publish contract_high_risk event")
		}

		logrus.WithFields(logrus.Fields{
			"tenant_id":   tenantID,
			"contract_id": input.ContractID,
			"risk_score":  result.RiskScore,
		}).Info("contract flagged as high risk")
	}

	// Cached only once any required escalation has been written; a retry
	// after a failed alert insert must not short-circuit on the fingerprint.
	if err := s.cache.Set(tenantID, input.ContractID.String(), fingerprint); err != nil {
		// Cache failure is non-critical
		logrus.WithError(err).Debug("failed to cache analysis fingerprint")
	}

	return result, nil
}

// GetAnalysis loads one stored analysis within the tenant's partition
func (s *Service) GetAnalysis(ctx context.Context, analysisID uuid.UUID) (*AnalysisResult, error) {
	row, err := s.repo.FindByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return ToResult(row)
}
