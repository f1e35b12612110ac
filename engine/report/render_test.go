package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlstack/advisor/engine/advisory"
	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/report"
)

func sampleAdvice() *advisory.Advice {
	return &advisory.Advice{
		RunID: "run-1",
		Query: "How should we handle repeated cash deposits under the threshold?",
		Decision: &advisory.RoutingDecision{
			PrimaryCategory:     core.CategorySARFiling,
			SecondaryCategories: []core.Category{core.CategoryCDDRedFlags},
			Reasoning:           "The pattern suggests structuring.",
			KeyAspects:          []string{"deposit pattern", "reporting thresholds"},
		},
		Result: &advisory.SynthesizedResult{
			ExecutiveSummary:          "File a SAR and review the customer's risk rating.",
			DetailedAnalysis:          "Deposits just under the threshold across branches match structuring typologies.",
			ActionableRecommendations: []string{"Draft the SAR narrative", "Escalate to the BSA officer"},
			RiskMitigationStrategies:  []string{"Enhanced monitoring for the account"},
			ComplianceChecklist:       []string{"SAR filed within 30 days", "Supporting documentation archived"},
			NextSteps:                 []string{"Review account in 90 days"},
			SpecialistResults: []advisory.SpecialistResult{
				{
					Category:             core.CategorySARFiling,
					KeyFindings:          []string{"Pattern consistent with structuring"},
					Recommendations:      []string{"File within the deadline"},
					RiskAssessment:       "High",
					RegulatoryReferences: []string{"31 CFR 1020.320"},
					ConfidenceLevel:      "High",
				},
				{
					Category:        core.CategoryCDDRedFlags,
					KeyFindings:     []string{"Customer profile inconsistent with activity"},
					Recommendations: []string{"Trigger enhanced due diligence"},
					RiskAssessment:  "Medium",
					ConfidenceLevel: "Medium",
				},
			},
		},
	}
}

func TestRender_ShouldKeepSectionOrderFixed(t *testing.T) {
	markdown, err := report.Render(sampleAdvice())
	require.NoError(t, err)

	sections := []string{
		"# AML Advisory Report",
		"## Executive Summary",
		"## Query Routing",
		"## Detailed Analysis",
		"## Actionable Recommendations",
		"## Risk Mitigation Strategies",
		"## Compliance Checklist",
		"## Next Steps",
		"## Specialist Analyses",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(markdown, section)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
}

func TestRender_ShouldNumberRecommendationsAndSteps(t *testing.T) {
	markdown, err := report.Render(sampleAdvice())
	require.NoError(t, err)
	assert.Contains(t, markdown, "1. Draft the SAR narrative")
	assert.Contains(t, markdown, "2. Escalate to the BSA officer")
	assert.Contains(t, markdown, "1. Review account in 90 days")
	assert.Contains(t, markdown, "- [ ] SAR filed within 30 days")
}

func TestRender_ShouldShowNoneForEmptySecondariesAndReferences(t *testing.T) {
	advice := sampleAdvice()
	advice.Decision.SecondaryCategories = nil
	advice.Result.SpecialistResults = advice.Result.SpecialistResults[1:]
	markdown, err := report.Render(advice)
	require.NoError(t, err)
	assert.Contains(t, markdown, "**Secondary Categories:** None")
	assert.Contains(t, markdown, "- None provided")
}

func TestRender_ShouldTitleSpecialistSections(t *testing.T) {
	markdown, err := report.Render(sampleAdvice())
	require.NoError(t, err)
	assert.Contains(t, markdown, "### Sar Filing")
	assert.Contains(t, markdown, "### Cdd Red Flags")
}

func TestRender_ShouldRejectIncompleteAdvice(t *testing.T) {
	_, err := report.Render(nil)
	require.Error(t, err)
	_, err = report.Render(&advisory.Advice{Decision: &advisory.RoutingDecision{}})
	require.Error(t, err)
}

func TestParse_ShouldRoundTripRenderedReport(t *testing.T) {
	advice := sampleAdvice()
	markdown, err := report.Render(advice)
	require.NoError(t, err)

	parsed, err := report.Parse(markdown)
	require.NoError(t, err)
	assert.Equal(t, advice.Result.ExecutiveSummary, parsed.ExecutiveSummary)
	assert.Equal(t, advice.Result.DetailedAnalysis, parsed.DetailedAnalysis)
	assert.Equal(t, advice.Decision.PrimaryCategory.String(), parsed.PrimaryCategory)
	assert.Equal(t, []string{"cdd_red_flags"}, parsed.SecondaryCategories)
	assert.Equal(t, advice.Decision.Reasoning, parsed.Reasoning)
	assert.Equal(t, advice.Decision.KeyAspects, parsed.KeyAspects)
	assert.Equal(t, advice.Result.ActionableRecommendations, parsed.ActionableRecommendations)
	assert.Equal(t, advice.Result.RiskMitigationStrategies, parsed.RiskMitigationStrategies)
	assert.Equal(t, advice.Result.ComplianceChecklist, parsed.ComplianceChecklist)
	assert.Equal(t, advice.Result.NextSteps, parsed.NextSteps)

	require.Len(t, parsed.Specialists, 2)
	first := parsed.Specialists[0]
	assert.Equal(t, "Sar Filing", first.Title)
	assert.Equal(t, "High", first.ConfidenceLevel)
	assert.Equal(t, "High", first.RiskAssessment)
	assert.Equal(t, []string{"Pattern consistent with structuring"}, first.KeyFindings)
	assert.Equal(t, []string{"31 CFR 1020.320"}, first.RegulatoryReferences)

	second := parsed.Specialists[1]
	assert.Equal(t, "Cdd Red Flags", second.Title)
	assert.Empty(t, second.RegulatoryReferences)
}
