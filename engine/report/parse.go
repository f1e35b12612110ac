package report

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
)

// Parsed is the structural view of a rendered report, used to verify the
// renderer preserves content verbatim.
type Parsed struct {
	ExecutiveSummary          string
	PrimaryCategory           string
	SecondaryCategories       []string
	Reasoning                 string
	KeyAspects                []string
	DetailedAnalysis          string
	ActionableRecommendations []string
	RiskMitigationStrategies  []string
	ComplianceChecklist       []string
	NextSteps                 []string
	Specialists               []ParsedSpecialist
}

// ParsedSpecialist mirrors one specialist section of the report.
type ParsedSpecialist struct {
	Title                string
	ConfidenceLevel      string
	RiskAssessment       string
	KeyFindings          []string
	Recommendations      []string
	RegulatoryReferences []string
}

var numberedItem = regexp.MustCompile(`^\d+\. `)

const (
	sectionSummary         = "Executive Summary"
	sectionRouting         = "Query Routing"
	sectionAnalysis        = "Detailed Analysis"
	sectionRecommendations = "Actionable Recommendations"
	sectionMitigation      = "Risk Mitigation Strategies"
	sectionChecklist       = "Compliance Checklist"
	sectionNextSteps       = "Next Steps"
	sectionSpecialists     = "Specialist Analyses"
)

// Parse re-reads a rendered report into its structural parts. It only
// understands the layout emitted by Render.
func Parse(markdown string) (*Parsed, error) {
	parsed := &Parsed{}
	section := ""
	specialistField := ""
	var freeText []string
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "## "):
			flushFreeText(parsed, section, &freeText)
			section = strings.TrimPrefix(trimmed, "## ")
			specialistField = ""
		case strings.HasPrefix(trimmed, "### "):
			if section == sectionSpecialists {
				parsed.Specialists = append(parsed.Specialists, ParsedSpecialist{
					Title: strings.TrimPrefix(trimmed, "### "),
				})
				specialistField = ""
			}
		case trimmed == "---" || trimmed == "" || strings.HasPrefix(trimmed, "# "):
			// Section separators and the document title carry no content.
		default:
			specialistField = parseLine(parsed, section, specialistField, trimmed, &freeText)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("report: parse failed: %w", err)
	}
	flushFreeText(parsed, section, &freeText)
	return parsed, nil
}

func parseLine(parsed *Parsed, section, specialistField, line string, freeText *[]string) string {
	switch section {
	case sectionSummary, sectionAnalysis:
		*freeText = append(*freeText, line)
	case sectionRouting:
		parseRoutingLine(parsed, line)
	case sectionRecommendations:
		parsed.ActionableRecommendations = append(parsed.ActionableRecommendations, stripNumber(line))
	case sectionMitigation:
		parsed.RiskMitigationStrategies = append(parsed.RiskMitigationStrategies, stripBullet(line))
	case sectionChecklist:
		parsed.ComplianceChecklist = append(parsed.ComplianceChecklist, strings.TrimPrefix(line, "- [ ] "))
	case sectionNextSteps:
		parsed.NextSteps = append(parsed.NextSteps, stripNumber(line))
	case sectionSpecialists:
		return parseSpecialistLine(parsed, specialistField, line)
	}
	return specialistField
}

func parseRoutingLine(parsed *Parsed, line string) {
	switch {
	case strings.HasPrefix(line, "**Primary Category:** "):
		parsed.PrimaryCategory = strings.TrimPrefix(line, "**Primary Category:** ")
	case strings.HasPrefix(line, "**Secondary Categories:** "):
		raw := strings.TrimPrefix(line, "**Secondary Categories:** ")
		if raw != "None" {
			parsed.SecondaryCategories = strings.Split(raw, ", ")
		}
	case strings.HasPrefix(line, "**Routing Reasoning:** "):
		parsed.Reasoning = strings.TrimPrefix(line, "**Routing Reasoning:** ")
	case line == "**Key Aspects Analyzed:**":
		// List header; items follow as bullets.
	case strings.HasPrefix(line, "- "):
		parsed.KeyAspects = append(parsed.KeyAspects, stripBullet(line))
	}
}

func parseSpecialistLine(parsed *Parsed, field, line string) string {
	if len(parsed.Specialists) == 0 {
		return field
	}
	current := &parsed.Specialists[len(parsed.Specialists)-1]
	switch {
	case strings.HasPrefix(line, "**Confidence Level:** "):
		current.ConfidenceLevel = strings.TrimPrefix(line, "**Confidence Level:** ")
		return ""
	case strings.HasPrefix(line, "**Risk Assessment:** "):
		current.RiskAssessment = strings.TrimPrefix(line, "**Risk Assessment:** ")
		return ""
	case line == "**Key Findings:**":
		return "findings"
	case line == "**Recommendations:**":
		return "recommendations"
	case line == "**Regulatory References:**":
		return "references"
	case strings.HasPrefix(line, "- "):
		item := stripBullet(line)
		switch field {
		case "findings":
			current.KeyFindings = append(current.KeyFindings, item)
		case "recommendations":
			current.Recommendations = append(current.Recommendations, item)
		case "references":
			if item != "None provided" {
				current.RegulatoryReferences = append(current.RegulatoryReferences, item)
			}
		}
	}
	return field
}

func flushFreeText(parsed *Parsed, section string, freeText *[]string) {
	if len(*freeText) == 0 {
		return
	}
	text := strings.Join(*freeText, "\n")
	switch section {
	case sectionSummary:
		parsed.ExecutiveSummary = text
	case sectionAnalysis:
		parsed.DetailedAnalysis = text
	}
	*freeText = nil
}

func stripNumber(line string) string {
	return numberedItem.ReplaceAllString(line, "")
}

func stripBullet(line string) string {
	return strings.TrimPrefix(line, "- ")
}
