package contracts

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sbs-nexus/docrisk/shared/models"
)

// HighRiskThreshold is the score at or above which a contract_high_risk
// alert is raised
const HighRiskThreshold = 60

// maxRiskScore caps the summed clause weights
const maxRiskScore = 100

// ClauseRule describes one detectable risk clause. Patterns cover the
// German and English phrasings seen in ingested contracts.
type ClauseRule struct {
	ClauseType string
	RiskLevel  models.RiskLevel
	Pattern    *regexp.Regexp
	Weight     int
}

// clauseRules is the static rule table. Order is fixed so analysis output
// is deterministic for identical input.
var clauseRules = []ClauseRule{
	{
		ClauseType: "automatic_renewal",
		RiskLevel:  models.RiskLevelMedium,
		Pattern:    regexp.MustCompile(`(?i)(automatische\s+verl[aä]ngerung|automatic\s+renewal)`),
		Weight:     20,
	},
	{
		ClauseType: "unlimited_liability",
		RiskLevel:  models.RiskLevelHigh,
		Pattern:    regexp.MustCompile(`(?i)(unbeschr[aä]nkte\s+haftung|unlimited\s+liability)`),
		Weight:     40,
	},
	{
		ClauseType: "short_termination",
		RiskLevel:  models.RiskLevelHigh,
		Pattern:    regexp.MustCompile(`(?i)(k[üu]ndigungsfrist\s+von\s+weniger\s+als\s+30\s+tagen|termination\s+notice\s+under\s+30\s+days)`),
		Weight:     30,
	},
	{
		ClauseType: "exclusive_jurisdiction",
		RiskLevel:  models.RiskLevelMedium,
		Pattern:    regexp.MustCompile(`(?i)(ausschlie[sß]licher\s+gerichtsstand|exclusive\s+jurisdiction)`),
		Weight:     15,
	},
}

// AnalysisResult is the outcome of analyzing one contract text
type AnalysisResult struct {
	AnalysisID         uuid.UUID          `json:"analysis_id"`
	TenantID           string             `json:"tenant_id"`
	ContractID         uuid.UUID          `json:"contract_id"`
	ContentFingerprint string             `json:"content_fingerprint"`
	RiskScore          int                `json:"risk_score"`
	RiskTags           []string           `json:"risk_tags"`
	ClauseHits         []models.ClauseHit `json:"clause_hits"`
	CreatedAt          time.Time          `json:"created_at"`
}

// Analyzer scans contract text against the clause rule table. It is a
// pure function of (rule table, text): no storage, no failure path.
type Analyzer struct {
	rules []ClauseRule
}

// NewAnalyzer creates an analyzer with the default rule table
func NewAnalyzer() *Analyzer {
	return &Analyzer{rules: clauseRules}
}

// Analyze evaluates every rule against the text and returns the scored
// result. The score is the sum of matched weights, capped at 100; risk
// tags are the sorted, de-duplicated matched clause types. Evidence is a
// pattern tag only, never the matched excerpt.
func (a *Analyzer) Analyze(tenantID string, contractID uuid.UUID, contractText string) *AnalysisResult {
	var hits []models.ClauseHit
	riskScore := 0

	for _, rule := range a.rules {
		if !rule.Pattern.MatchString(contractText) {
			continue
		}

		hits = append(hits, models.ClauseHit{
			ClauseType: rule.ClauseType,
			RiskLevel:  rule.RiskLevel,
			Evidence:   "pattern:" + rule.ClauseType,
		})
		riskScore += rule.Weight
	}

	if riskScore > maxRiskScore {
		riskScore = maxRiskScore
	}

	tagSet := make(map[string]struct{}, len(hits))
	for _, hit := range hits {
		tagSet[hit.ClauseType] = struct{}{}
	}
	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return &AnalysisResult{
		AnalysisID:         uuid.New(),
		TenantID:           tenantID,
		ContractID:         contractID,
		ContentFingerprint: Fingerprint(contractText),
		RiskScore:          riskScore,
		RiskTags:           tags,
		ClauseHits:         hits,
		CreatedAt:          time.Now().UTC(),
	}
}

// Fingerprint returns the stable content hash of a contract text. It lets
// the service detect unchanged text across re-analysis without retaining
// the text itself.
func Fingerprint(contractText string) string {
	sum := sha256.Sum256([]byte(contractText))
	return hex.EncodeToString(sum[:])
}
