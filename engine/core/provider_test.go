package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlstack/advisor/engine/core"
)

func TestProviderConfig_ShouldOverlayNonZeroFieldsOnMerge(t *testing.T) {
	base := &core.ProviderConfig{
		Provider: core.ProviderGoogle,
		Model:    "gemini-2.5-pro",
		APIKey:   "secret",
		Params: core.PromptParams{
			MaxTokens:       32768,
			ReasoningEffort: core.ReasoningEffortHigh,
		},
	}

	err := base.Merge(&core.ProviderConfig{
		Model:  "gemini-2.5-flash",
		APIURL: "http://localhost:9999",
	})
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", base.Model)
	assert.Equal(t, "http://localhost:9999", base.APIURL)
	// Zero fields in the overlay leave the base untouched.
	assert.Equal(t, core.ProviderGoogle, base.Provider)
	assert.Equal(t, "secret", base.APIKey)
	assert.Equal(t, int32(32768), base.Params.MaxTokens)
	assert.Equal(t, core.ReasoningEffortHigh, base.Params.ReasoningEffort)
}

func TestProviderConfig_ShouldIgnoreNilMerge(t *testing.T) {
	base := core.NewProviderConfig(core.ProviderMock, "m", "key")
	require.NoError(t, base.Merge(nil))
	assert.Equal(t, "m", base.Model)
	assert.Equal(t, "key", base.APIKey)
}
