//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// ProfileSummary is the subset of a profile kept with a saved scan
type ProfileSummary struct {
	FullName    string `json:"fullName"`
	CurrentRole string `json:"currentRole"`
	URL         string `json:"url"`
}

// ScanRecord is one entry in a user's scan history
type ScanRecord struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	Timestamp      time.Time      `json:"timestamp"`
	TargetCategory TargetCategory `json:"targetNiche"`
	Profile        ProfileSummary `json:"profileSnapshot"`
	OverallScore   float64        `json:"score"`
	CoreScore      float64        `json:"coreScore"`
	AdjacencyScore float64        `json:"adjScore"`
	Narrative      Narrative      `json:"narrative"`
	// Analysis holds the packed "Gap: ... Action Plan: ..." text for older readers.
	Analysis       string       `json:"analysis"`
	SkillBreakdown []SkillScore `json:"skillBreakdown"`
}

// SummarizeProfile returns the summary stored with a scan.
func SummarizeProfile(p *ExtractedProfile) ProfileSummary {
	if p == nil {
		return ProfileSummary{}
	}
	return ProfileSummary{
		FullName:    p.FullName,
		CurrentRole: p.CurrentRole,
		URL:         p.URL,
	}
}
