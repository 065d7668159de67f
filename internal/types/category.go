//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// TargetCategory is the niche a profile is scored against
type TargetCategory string

const (
	// CategoryAIML covers MLOps, LLM fine-tuning and mathematical foundations
	CategoryAIML TargetCategory = "AI_ML"
	// CategoryCybersecurity covers zero trust and cloud-native security
	CategoryCybersecurity TargetCategory = "Cybersecurity"
	// CategoryAIEthics covers bias mitigation and AI governance
	CategoryAIEthics TargetCategory = "AI_Ethics"
)

// TargetCategories lists every supported category in display order.
func TargetCategories() []TargetCategory {
	return []TargetCategory{CategoryAIML, CategoryCybersecurity, CategoryAIEthics}
}

// Valid reports whether c is one of the supported categories.
func (c TargetCategory) Valid() bool {
	for _, known := range TargetCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseTargetCategory resolves s to a supported category, ignoring case.
func ParseTargetCategory(s string) (TargetCategory, error) {
	trimmed := strings.TrimSpace(s)
	for _, known := range TargetCategories() {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown target category %q (expected one of %s, %s, %s)",
		s, CategoryAIML, CategoryCybersecurity, CategoryAIEthics)
}
