package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlstack/advisor/engine/schema"
)

func personSchema() *schema.Schema {
	return &schema.Schema{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"age":  map[string]any{"type": "integer", "minimum": 0},
		},
		"required":             []string{"name"},
		"additionalProperties": false,
	}
}

func TestSchema_ShouldAcceptConformingValue(t *testing.T) {
	result, err := personSchema().Validate(context.Background(), map[string]any{"name": "Ada", "age": 36})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Valid)
}

func TestSchema_ShouldRejectMissingRequiredField(t *testing.T) {
	_, err := personSchema().Validate(context.Background(), map[string]any{"age": 36})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestSchema_ShouldRejectAdditionalProperties(t *testing.T) {
	_, err := personSchema().Validate(context.Background(), map[string]any{"name": "Ada", "extra": true})
	require.Error(t, err)
}

func TestSchema_ShouldRenderAsJSONString(t *testing.T) {
	rendered := personSchema().String()
	assert.Contains(t, rendered, `"required":["name"]`)
}
