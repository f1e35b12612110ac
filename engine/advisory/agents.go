package advisory

import (
	"fmt"

	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/llm"
	"github.com/amlstack/advisor/engine/schema"
)

// Generation ceilings per agent role.
const (
	routerMaxTokens      = 8192
	specialistMaxTokens  = 32768
	synthesizerMaxTokens = 32768
)

// Concurrency limits for the network-bound stages. Specialists fan out;
// synthesis is serialized to avoid overloading one model deployment.
const (
	DefaultSpecialistConcurrency  = 3
	DefaultSynthesizerConcurrency = 1
)

// DocumentExcerptLimit bounds how much of each document reaches a
// specialist prompt.
const DocumentExcerptLimit = 5000

// Models binds each pipeline role to a provider configuration.
type Models struct {
	Router      core.ProviderConfig
	Specialist  core.ProviderConfig
	Synthesizer core.ProviderConfig
}

// DefaultModels routes classification to a fast model and analysis to a
// stronger one with high reasoning effort.
func DefaultModels(provider core.ProviderName, apiKey string) Models {
	return Models{
		Router: core.ProviderConfig{
			Provider: provider,
			Model:    "gemini-2.5-flash",
			APIKey:   apiKey,
			Params:   core.PromptParams{MaxTokens: routerMaxTokens},
		},
		Specialist: core.ProviderConfig{
			Provider: provider,
			Model:    "gemini-2.5-pro",
			APIKey:   apiKey,
			Params: core.PromptParams{
				MaxTokens:       specialistMaxTokens,
				ReasoningEffort: core.ReasoningEffortHigh,
			},
		},
		Synthesizer: core.ProviderConfig{
			Provider: provider,
			Model:    "gemini-2.5-pro",
			APIKey:   apiKey,
			Params: core.PromptParams{
				MaxTokens:       synthesizerMaxTokens,
				ReasoningEffort: core.ReasoningEffortHigh,
			},
		},
	}
}

// -----------------------------------------------------------------------------
// Instructions
// -----------------------------------------------------------------------------

const routerInstructions = `You are an expert AML advisor router. Analyze the user's query and determine:
1. The primary AML category it falls under
2. Any secondary categories that should be consulted
3. Key aspects to focus on

Categories:
- cdd_red_flags: Customer Due Diligence red flags and risk indicators
- regulatory_updates: Changes in AML regulations and compliance requirements
- sar_filing: Suspicious Activity Report drafting and filing
- policy_review: AML policy analysis and gap identification
- scenario_testing: Hypothetical scenario analysis and guidance

Be thorough in identifying all relevant categories.`

var specialistInstructions = map[core.Category]string{
	core.CategoryCDDRedFlags: `You are an expert in Customer Due Diligence (CDD) and KYC (Know Your Customer).
Analyze the provided documents and query to identify:
- Red flags and suspicious indicators
- Risk classification factors
- Enhanced due diligence triggers
- Regulatory compliance requirements
- Best practices for customer verification

Provide specific, actionable insights based on current AML standards.`,
	core.CategoryRegulatoryUpdates: `You are an expert in AML regulatory compliance.
Analyze the provided documents and query to identify:
- Recent regulatory changes and updates
- Impact on current processes
- Implementation requirements
- Compliance deadlines
- Jurisdictional considerations

Reference specific regulations (e.g., BSA, FinCEN, FATF guidelines).`,
	core.CategorySARFiling: `You are an expert in Suspicious Activity Report (SAR) filing.
Analyze the provided information to help draft a SAR that:
- Clearly describes suspicious activity
- Includes all required elements
- Meets regulatory standards
- Provides sufficient detail for investigators
- Maintains confidentiality requirements

Follow FinCEN SAR guidelines and best practices.`,
	core.CategoryPolicyReview: `You are an expert in AML policy development and review.
Analyze the provided policy documents to:
- Identify gaps and weaknesses
- Compare against industry standards
- Recommend improvements
- Ensure regulatory alignment
- Suggest implementation strategies

Reference FATF recommendations and industry best practices.`,
	core.CategoryScenarioTesting: `You are an expert in AML scenario analysis and testing.
Analyze the provided scenario to:
- Assess risk levels
- Recommend appropriate actions
- Identify escalation triggers
- Outline documentation requirements
- Consider regulatory obligations

Provide step-by-step guidance for handling the scenario.`,
}

const synthesizerInstructions = `You are a senior AML compliance advisor. Synthesize the analyses from specialist agents into:
1. Executive summary for quick decision-making
2. Detailed analysis combining all specialist insights
3. Prioritized, actionable recommendations
4. Risk mitigation strategies
5. Compliance checklist
6. Clear next steps

Ensure the advice is:
- Practical and implementable
- Compliant with regulations
- Risk-based and proportionate
- Clear and well-structured

Highlight any conflicting recommendations and provide guidance on resolution.`

// -----------------------------------------------------------------------------
// Output schemas
// -----------------------------------------------------------------------------

func categoryEnum() []string {
	categories := core.AllCategories()
	values := make([]string, len(categories))
	for i, c := range categories {
		values[i] = c.String()
	}
	return values
}

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func routingSchema() *schema.Schema {
	return &schema.Schema{
		"type": "object",
		"properties": map[string]any{
			"primary_category":     map[string]any{"type": "string", "enum": categoryEnum()},
			"secondary_categories": map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": categoryEnum()}},
			"reasoning":            map[string]any{"type": "string"},
			"key_aspects":          stringArray(),
		},
		"required":             []string{"primary_category", "reasoning", "key_aspects"},
		"additionalProperties": false,
	}
}

func specialistSchema() *schema.Schema {
	return &schema.Schema{
		"type": "object",
		"properties": map[string]any{
			"category":              map[string]any{"type": "string", "enum": categoryEnum()},
			"key_findings":          stringArray(),
			"recommendations":       stringArray(),
			"risk_assessment":       map[string]any{"type": "string"},
			"regulatory_references": stringArray(),
			"confidence_level":      map[string]any{"type": "string", "enum": []string{"High", "Medium", "Low"}},
		},
		"required":             []string{"key_findings", "recommendations", "risk_assessment", "confidence_level"},
		"additionalProperties": false,
	}
}

func synthesizedSchema() *schema.Schema {
	return &schema.Schema{
		"type": "object",
		"properties": map[string]any{
			"executive_summary":          map[string]any{"type": "string"},
			"detailed_analysis":          map[string]any{"type": "string"},
			"actionable_recommendations": stringArray(),
			"risk_mitigation_strategies": stringArray(),
			"compliance_checklist":       stringArray(),
			"next_steps":                 stringArray(),
		},
		"required": []string{
			"executive_summary",
			"detailed_analysis",
			"actionable_recommendations",
			"risk_mitigation_strategies",
			"compliance_checklist",
			"next_steps",
		},
		"additionalProperties": false,
	}
}

// -----------------------------------------------------------------------------
// Agent specs
// -----------------------------------------------------------------------------

func routerSpec(models *Models) *llm.AgentSpec {
	return &llm.AgentSpec{
		Name:         "AML Query Router",
		Instructions: routerInstructions,
		OutputSchema: routingSchema(),
		Provider:     &models.Router,
	}
}

func specialistSpec(category core.Category, models *Models, searchTool llm.Tool) *llm.AgentSpec {
	spec := &llm.AgentSpec{
		Name:         fmt.Sprintf("AML Specialist: %s", category),
		Instructions: specialistInstructions[category],
		OutputSchema: specialistSchema(),
		Provider:     &models.Specialist,
	}
	if searchTool != nil {
		spec.Tools = []llm.Tool{searchTool}
	}
	return spec
}

func synthesizerSpec(models *Models) *llm.AgentSpec {
	return &llm.AgentSpec{
		Name:         "AML Advisory Synthesizer",
		Instructions: synthesizerInstructions,
		OutputSchema: synthesizedSchema(),
		Provider:     &models.Synthesizer,
	}
}
