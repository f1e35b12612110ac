package core

import (
	"fmt"
	"strings"
)

// Category identifies one AML advisory domain. The set is closed: every
// specialist, prompt, and knowledge collection is keyed by it.
type Category string

const (
	CategoryCDDRedFlags       Category = "cdd_red_flags"
	CategoryRegulatoryUpdates Category = "regulatory_updates"
	CategorySARFiling         Category = "sar_filing"
	CategoryPolicyReview      Category = "policy_review"
	CategoryScenarioTesting   Category = "scenario_testing"
)

// AllCategories returns every advisory category in canonical order.
func AllCategories() []Category {
	return []Category{
		CategoryCDDRedFlags,
		CategoryRegulatoryUpdates,
		CategorySARFiling,
		CategoryPolicyReview,
		CategoryScenarioTesting,
	}
}

// ParseCategory converts a raw string into a Category, rejecting unknown
// values with a typed error.
func ParseCategory(raw string) (Category, error) {
	candidate := Category(strings.TrimSpace(strings.ToLower(raw)))
	for _, c := range AllCategories() {
		if c == candidate {
			return c, nil
		}
	}
	return "", NewError(
		fmt.Errorf("unknown advisory category: %q", raw),
		ErrCodeUnknownCategory,
		map[string]any{"category": raw},
	)
}

func (c Category) String() string {
	return string(c)
}

// Title renders the category for report headings, e.g. "Cdd Red Flags".
func (c Category) Title() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// IsValid reports whether the category belongs to the closed set.
func (c Category) IsValid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}
