package report

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/amlstack/advisor/engine/advisory"
	"github.com/amlstack/advisor/engine/core"
)

// reportTemplate fixes the section ordering of the advisory report.
// The parser in parse.go depends on this exact layout.
const reportTemplate = `# AML Advisory Report

## Executive Summary

{{ .Result.ExecutiveSummary }}

---

## Query Routing

**Primary Category:** {{ .Decision.PrimaryCategory }}

**Secondary Categories:** {{ if .Decision.SecondaryCategories }}{{ join ", " (toStrings .Decision.SecondaryCategories) }}{{ else }}None{{ end }}

**Routing Reasoning:** {{ .Decision.Reasoning }}

**Key Aspects Analyzed:**
{{- range .Decision.KeyAspects }}
- {{ . }}
{{- end }}

---

## Detailed Analysis

{{ .Result.DetailedAnalysis }}

---

## Actionable Recommendations

{{- range $i, $rec := .Result.ActionableRecommendations }}
{{ add $i 1 }}. {{ $rec }}
{{- end }}

---

## Risk Mitigation Strategies

{{- range .Result.RiskMitigationStrategies }}
- {{ . }}
{{- end }}

---

## Compliance Checklist

{{- range .Result.ComplianceChecklist }}
- [ ] {{ . }}
{{- end }}

---

## Next Steps

{{- range $i, $step := .Result.NextSteps }}
{{ add $i 1 }}. {{ $step }}
{{- end }}

---

## Specialist Analyses

{{- range .Result.SpecialistResults }}

### {{ .Category.Title }}

**Confidence Level:** {{ .ConfidenceLevel }}

**Risk Assessment:** {{ .RiskAssessment }}

**Key Findings:**
{{- range .KeyFindings }}
- {{ . }}
{{- end }}

**Recommendations:**
{{- range .Recommendations }}
- {{ . }}
{{- end }}

**Regulatory References:**
{{- if .RegulatoryReferences }}
{{- range .RegulatoryReferences }}
- {{ . }}
{{- end }}
{{- else }}
- None provided
{{- end }}

---
{{- end }}
`

var compiled = template.Must(
	template.New("report").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{"toStrings": toStrings}).
		Parse(reportTemplate),
)

// Render produces the markdown advisory report with its fixed section
// ordering.
func Render(advice *advisory.Advice) (string, error) {
	if advice == nil || advice.Result == nil || advice.Decision == nil {
		return "", fmt.Errorf("report: advice with decision and result is required")
	}
	var builder strings.Builder
	err := compiled.Execute(&builder, map[string]any{
		"Decision": advice.Decision,
		"Result":   advice.Result,
	})
	if err != nil {
		return "", fmt.Errorf("report: render failed: %w", err)
	}
	return builder.String(), nil
}

func toStrings(values []core.Category) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
