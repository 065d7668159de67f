// Package types provides type definitions for structured data used throughout the jobfit-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ProfileStorageKey is the key under which the latest extracted profile is persisted.
const ProfileStorageKey = "linkedinProfile"

// ExtractedProfile is the structured record read from a profile page.
// Field names match the persisted record so older stored values still decode.
type ExtractedProfile struct {
	FullName         string       `json:"fullName"`
	CurrentRole      string       `json:"currentRole"`
	About            string       `json:"about"`
	Experience       []Experience `json:"experience"`
	Skills           []string     `json:"skills"`
	HasFeaturedMedia bool         `json:"hasFeaturedMedia"`
	URL              string       `json:"url"`
}

// Experience is a single entry of the experience section
type Experience struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
}

// IsEmpty reports whether no identity or section data was found.
func (p *ExtractedProfile) IsEmpty() bool {
	return p.FullName == "" && p.CurrentRole == "" && p.About == "" &&
		len(p.Experience) == 0 && len(p.Skills) == 0 && !p.HasFeaturedMedia
}
