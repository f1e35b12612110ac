package advisory

import (
	"encoding/json"
	"fmt"

	"github.com/amlstack/advisor/engine/core"
)

// RoutingDecision is the router's verdict on which specialists to engage.
// It is produced once per query and never mutated.
type RoutingDecision struct {
	PrimaryCategory     core.Category   `json:"primary_category"`
	SecondaryCategories []core.Category `json:"secondary_categories,omitempty"`
	Reasoning           string          `json:"reasoning"`
	KeyAspects          []string        `json:"key_aspects,omitempty"`
}

// Categories returns primary plus secondaries in requested order.
func (r *RoutingDecision) Categories() []core.Category {
	categories := make([]core.Category, 0, 1+len(r.SecondaryCategories))
	categories = append(categories, r.PrimaryCategory)
	categories = append(categories, r.SecondaryCategories...)
	return categories
}

// Validate rejects decisions referencing categories outside the closed set.
func (r *RoutingDecision) Validate() error {
	for _, c := range r.Categories() {
		if !c.IsValid() {
			return core.NewError(
				fmt.Errorf("routing decision references unknown category: %q", c),
				core.ErrCodeUnknownCategory,
				map[string]any{"category": string(c)},
			)
		}
	}
	return nil
}

// SpecialistResult is one specialist's structured analysis. Results are
// independent of each other.
type SpecialistResult struct {
	Category             core.Category `json:"category"`
	KeyFindings          []string      `json:"key_findings"`
	Recommendations      []string      `json:"recommendations"`
	RiskAssessment       string        `json:"risk_assessment"`
	RegulatoryReferences []string      `json:"regulatory_references,omitempty"`
	ConfidenceLevel      string        `json:"confidence_level"`
}

// SynthesizedResult merges all specialist results into one advisory.
type SynthesizedResult struct {
	ExecutiveSummary          string             `json:"executive_summary"`
	DetailedAnalysis          string             `json:"detailed_analysis"`
	ActionableRecommendations []string           `json:"actionable_recommendations"`
	RiskMitigationStrategies  []string           `json:"risk_mitigation_strategies"`
	ComplianceChecklist       []string           `json:"compliance_checklist"`
	NextSteps                 []string           `json:"next_steps"`
	SpecialistResults         []SpecialistResult `json:"specialist_results"`
}

// decodeOutput converts a schema-validated LLM output into a typed value.
func decodeOutput[T any](output core.Output) (*T, error) {
	data, err := json.Marshal(map[string]any(output))
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return &value, nil
}
