package advisory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlstack/advisor/engine/advisory"
	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/llm"
)

func TestRouter_ShouldClassifyQueryWithOneCall(t *testing.T) {
	client := &dispatchClient{}
	models := testModels()
	router := advisory.NewRouter(llm.NewInvoker(&dispatchFactory{client: client}), &models)

	decision, err := router.Route(context.Background(), "Help me draft a SAR for structuring activity")
	require.NoError(t, err)
	assert.Equal(t, core.CategorySARFiling, decision.PrimaryCategory)
	assert.Equal(t, []core.Category{core.CategoryCDDRedFlags}, decision.SecondaryCategories)
	assert.NotEmpty(t, decision.Reasoning)
	assert.Equal(t, int32(1), client.routerCalls.Load())
	assert.Equal(t, int32(0), client.analysisCalls.Load())
}

func TestRouter_ShouldRejectCategoriesOutsideTheClosedSet(t *testing.T) {
	client := &dispatchClient{routingContent: `{
		"primary_category": "fraud_detection",
		"reasoning": "made up",
		"key_aspects": ["x"]
	}`}
	models := testModels()
	router := advisory.NewRouter(llm.NewInvoker(&dispatchFactory{client: client}), &models)

	_, err := router.Route(context.Background(), "query")
	require.Error(t, err)
}

func TestRouter_ShouldPropagateGenerationFailures(t *testing.T) {
	client := &dispatchClient{failWhenPromptContains: []string{"advisor router"}}
	models := testModels()
	router := advisory.NewRouter(llm.NewInvoker(&dispatchFactory{client: client}), &models)

	_, err := router.Route(context.Background(), "query")
	require.Error(t, err)
}
