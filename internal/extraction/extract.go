// Package extraction reads a structured profile out of a profile page snapshot.
package extraction

import (
	"github.com/jonathan/jobfit-analyzer/internal/dom"
	"github.com/jonathan/jobfit-analyzer/internal/logger"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"go.uber.org/zap"
)

// Selectors holds the CSS selectors used to locate each profile field.
// Name selectors are tried in order; the first match wins.
type Selectors struct {
	Name             []string
	Role             string
	AboutAnchor      string
	AboutBody        string
	ExperienceAnchor string
	SkillsAnchor     string
	ListItem         string
	ItemTitle        string
	ItemSubtitle     string
	ItemCaption      string
	FeaturedMedia    string
}

// DefaultSelectors returns the selectors matching the current profile page markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Name:             []string{"h1.text-heading-xlarge", ".text-heading-xlarge"},
		Role:             ".text-body-medium.break-words",
		AboutAnchor:      "#about",
		AboutBody:        ".display-flex.ph5.pv3",
		ExperienceAnchor: "#experience",
		SkillsAnchor:     "#skills",
		ListItem:         ".pvs-list__paged-list-item",
		ItemTitle:        `.t-bold span[aria-hidden="true"]`,
		ItemSubtitle:     `.t-normal span[aria-hidden="true"]`,
		ItemCaption:      `.t-black--light span[aria-hidden="true"]`,
		FeaturedMedia:    ".pv-featured-media",
	}
}

// Extractor turns snapshots into profiles. It never fails: any element that
// cannot be found degrades to its zero value.
type Extractor struct {
	selectors Selectors
	logger    *zap.Logger
}

// New creates an Extractor. A nil logger disables logging.
func New(selectors Selectors, log *zap.Logger) *Extractor {
	return &Extractor{selectors: selectors, logger: logger.OrNop(log)}
}

// Extract reads a profile from snapshot.
func (e *Extractor) Extract(snapshot dom.Snapshot) *types.ExtractedProfile {
	root := snapshot.Root()

	profile := &types.ExtractedProfile{
		FullName:         e.fullName(root),
		CurrentRole:      root.First(e.selectors.Role).Text(),
		About:            root.First(e.selectors.AboutAnchor).Parent().First(e.selectors.AboutBody).Text(),
		Experience:       e.experience(root),
		Skills:           e.skills(root),
		HasFeaturedMedia: root.First(e.selectors.FeaturedMedia).Exists(),
		URL:              snapshot.Location(),
	}

	e.logger.Debug("profile extracted",
		zap.String(logger.FieldProfileURL, profile.URL),
		zap.Bool("has_name", profile.FullName != ""),
		zap.Bool("has_about", profile.About != ""),
		zap.Int("experience_count", len(profile.Experience)),
		zap.Int("skill_count", len(profile.Skills)),
		zap.Bool("has_featured_media", profile.HasFeaturedMedia),
	)

	return profile
}

func (e *Extractor) fullName(root dom.Element) string {
	for _, selector := range e.selectors.Name {
		if el := root.First(selector); el.Exists() {
			return el.Text()
		}
	}
	return ""
}

func (e *Extractor) experience(root dom.Element) []types.Experience {
	section := root.First(e.selectors.ExperienceAnchor).Parent()
	entries := make([]types.Experience, 0)
	for _, item := range section.All(e.selectors.ListItem) {
		title := item.First(e.selectors.ItemTitle).Text()
		if title == "" {
			continue
		}
		entries = append(entries, types.Experience{
			Title:    title,
			Company:  item.First(e.selectors.ItemSubtitle).Text(),
			Duration: item.First(e.selectors.ItemCaption).Text(),
		})
	}
	return entries
}

func (e *Extractor) skills(root dom.Element) []string {
	section := root.First(e.selectors.SkillsAnchor).Parent()
	skills := make([]string, 0)
	for _, item := range section.All(e.selectors.ListItem) {
		if name := item.First(e.selectors.ItemTitle).Text(); name != "" {
			skills = append(skills, name)
		}
	}
	return skills
}
