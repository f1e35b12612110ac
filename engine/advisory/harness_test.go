package advisory_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amlstack/advisor/engine/advisory"
	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/llm"
)

const (
	routingJSON = `{
		"primary_category": "sar_filing",
		"secondary_categories": ["cdd_red_flags"],
		"reasoning": "query concerns drafting a suspicious activity report",
		"key_aspects": ["filing deadline", "narrative quality"]
	}`
	specialistJSON = `{
		"key_findings": ["structuring pattern across accounts"],
		"recommendations": ["file within 30 days"],
		"risk_assessment": "High",
		"regulatory_references": ["31 CFR 1020.320"],
		"confidence_level": "High"
	}`
	synthesizedJSON = `{
		"executive_summary": "File a SAR and tighten onboarding controls.",
		"detailed_analysis": "The activity matches structuring typologies.",
		"actionable_recommendations": ["Draft the SAR narrative", "Escalate to compliance officer"],
		"risk_mitigation_strategies": ["Enhanced transaction monitoring"],
		"compliance_checklist": ["SAR filed within deadline"],
		"next_steps": ["Schedule review in 90 days"]
	}`
)

// dispatchClient answers router, specialist, and synthesizer calls from
// one fake, keyed off the agent instructions. Safe for concurrent use.
type dispatchClient struct {
	mu sync.Mutex
	// failWhenPromptContains makes matching calls fail.
	failWhenPromptContains []string
	// delay slows every call down so concurrency can be observed.
	delay time.Duration
	// content overrides; empty fields fall back to the canned payloads.
	routingContent     string
	specialistContent  string
	synthesizedContent string

	inFlight      atomic.Int32
	maxInFlight   atomic.Int32
	prompts       []string
	routerCalls   atomic.Int32
	analysisCalls atomic.Int32
}

func (c *dispatchClient) GenerateContent(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	current := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		observed := c.maxInFlight.Load()
		if current <= observed || c.maxInFlight.CompareAndSwap(observed, current) {
			break
		}
	}
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.Lock()
	c.prompts = append(c.prompts, req.SystemPrompt)
	c.mu.Unlock()
	for _, marker := range c.failWhenPromptContains {
		if strings.Contains(req.SystemPrompt, marker) {
			return nil, errors.New("scripted failure")
		}
	}
	switch {
	case strings.Contains(req.SystemPrompt, "advisor router"):
		c.routerCalls.Add(1)
		return &llm.Response{Content: fallback(c.routingContent, routingJSON)}, nil
	case strings.Contains(req.SystemPrompt, "senior AML compliance advisor"):
		return &llm.Response{Content: fallback(c.synthesizedContent, synthesizedJSON)}, nil
	default:
		c.analysisCalls.Add(1)
		return &llm.Response{Content: fallback(c.specialistContent, specialistJSON)}, nil
	}
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func (c *dispatchClient) Close() error { return nil }

func (c *dispatchClient) promptsSeen() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

type dispatchFactory struct {
	client *dispatchClient
	err    error
}

func (f *dispatchFactory) CreateClient(*core.ProviderConfig) (llm.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func testModels() advisory.Models {
	return advisory.DefaultModels(core.ProviderMock, "")
}
