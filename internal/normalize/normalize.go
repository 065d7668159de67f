// Package normalize bounds a profile to the sizes accepted by the scoring model.
package normalize

import (
	"unicode/utf8"

	"github.com/jonathan/jobfit-analyzer/internal/types"
)

// Field caps, counted in Unicode code points.
const (
	MaxNameLength     = 100
	MaxRoleLength     = 500
	MaxAboutLength    = 3000
	MaxTitleLength    = 200
	MaxCompanyLength  = 200
	MaxDurationLength = 100
	MaxSkillLength    = 100
)

// Prepare clamps profile and pairs it with category.
func Prepare(profile *types.ExtractedProfile, category types.TargetCategory) types.ScoringRequest {
	return types.ScoringRequest{
		Candidate:      Clamp(profile),
		TargetCategory: category,
	}
}

// Clamp returns a copy of profile with every text field cut to its cap.
// Values within budget pass through unchanged, list order is preserved and
// nil lists become empty lists. Clamp is idempotent.
func Clamp(profile *types.ExtractedProfile) types.ExtractedProfile {
	if profile == nil {
		return types.ExtractedProfile{
			Experience: []types.Experience{},
			Skills:     []string{},
		}
	}

	experience := make([]types.Experience, 0, len(profile.Experience))
	for _, exp := range profile.Experience {
		experience = append(experience, types.Experience{
			Title:    Truncate(exp.Title, MaxTitleLength),
			Company:  Truncate(exp.Company, MaxCompanyLength),
			Duration: Truncate(exp.Duration, MaxDurationLength),
		})
	}

	skills := make([]string, 0, len(profile.Skills))
	for _, skill := range profile.Skills {
		skills = append(skills, Truncate(skill, MaxSkillLength))
	}

	return types.ExtractedProfile{
		FullName:         Truncate(profile.FullName, MaxNameLength),
		CurrentRole:      Truncate(profile.CurrentRole, MaxRoleLength),
		About:            Truncate(profile.About, MaxAboutLength),
		Experience:       experience,
		Skills:           skills,
		HasFeaturedMedia: profile.HasFeaturedMedia,
		URL:              profile.URL,
	}
}

// Truncate returns the first limit code points of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
