package knowledge

import (
	"fmt"
	"strings"

	"github.com/amlstack/advisor/engine/core"
)

// FallbackCollection is searched when a category has no configured
// collection. Missing configuration is never fatal.
const FallbackCollection = "enwiki_20250520"

// DefaultCollections maps every advisory category to its knowledge
// collection.
func DefaultCollections() map[core.Category]string {
	return map[core.Category]string{
		core.CategoryCDDRedFlags:       "aml_cdd_redflags",
		core.CategoryRegulatoryUpdates: "aml_regulations",
		core.CategorySARFiling:         "aml_sar_guidelines",
		core.CategoryPolicyReview:      "aml_policies",
		core.CategoryScenarioTesting:   "aml_case_studies",
	}
}

// Mapping resolves categories to collection names, applying overrides on
// top of the defaults.
type Mapping struct {
	collections map[core.Category]string
}

func NewMapping() *Mapping {
	return &Mapping{collections: DefaultCollections()}
}

// Override remaps a single category. Unknown categories are rejected; the
// existing mapping is left untouched.
func (m *Mapping) Override(category core.Category, collection string) error {
	if !category.IsValid() {
		return core.NewError(
			fmt.Errorf("unknown advisory category: %q", category),
			core.ErrCodeUnknownCategory,
			map[string]any{"category": string(category)},
		)
	}
	if strings.TrimSpace(collection) == "" {
		return core.NewError(
			fmt.Errorf("collection name must not be empty"),
			core.ErrCodeInvalidConfig,
			map[string]any{"category": string(category)},
		)
	}
	m.collections[category] = strings.TrimSpace(collection)
	return nil
}

// Resolve returns the collection for a category, falling back to
// FallbackCollection when no mapping exists.
func (m *Mapping) Resolve(category core.Category) (string, bool) {
	if collection, ok := m.collections[category]; ok && collection != "" {
		return collection, true
	}
	return FallbackCollection, false
}

// Collections returns a copy of the active category mapping.
func (m *Mapping) Collections() map[core.Category]string {
	return core.CloneMap(m.collections)
}

// ParseOverride parses a "category=collection" pair from the CLI. The
// returned error distinguishes malformed syntax from unknown categories so
// the caller can log an accurate warning.
func ParseOverride(raw string) (core.Category, string, error) {
	category, collection, found := strings.Cut(raw, "=")
	if !found {
		return "", "", fmt.Errorf(
			"invalid collection mapping %q, expected format: category=collection_name", raw)
	}
	parsed, err := core.ParseCategory(category)
	if err != nil {
		return "", "", err
	}
	return parsed, strings.TrimSpace(collection), nil
}
