// Package observability renders profiles, scores and scan history as boxed
// text for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/jobfit-analyzer/internal/normalize"
	"github.com/jonathan/jobfit-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, ellipsize(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// ellipsize shortens s to at most width runes, marking the cut with "...".
func ellipsize(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return normalize.Truncate(s, width-3) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// PrintProfile outputs a human-readable summary of an extracted profile.
func (p *Printer) PrintProfile(profile *types.ExtractedProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", orDash(profile.FullName)))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", orDash(profile.CurrentRole)))
	sb.WriteString(fmt.Sprintf("URL:      %s\n", orDash(profile.URL)))
	if profile.HasFeaturedMedia {
		sb.WriteString("Featured: yes\n")
	}

	if len(profile.Experience) > 0 {
		sb.WriteString("\nExperience:\n")
		count := min(len(profile.Experience), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := profile.Experience[i]
			sb.WriteString(fmt.Sprintf("  • %s", orDash(exp.Title)))
			if exp.Company != "" {
				sb.WriteString(fmt.Sprintf(" @ %s", exp.Company))
			}
			sb.WriteString("\n")
		}
		if len(profile.Experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Experience)-maxItemsToShow))
		}
	}

	if len(profile.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(profile.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", profile.Skills[i]))
		}
		if len(profile.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Skills)-maxItemsToShow))
		}
	}

	p.printBox("EXTRACTED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScore outputs the scores, gap analysis, action plan and per-skill
// breakdown of a scoring result.
func (p *Printer) PrintScore(category types.TargetCategory, result *types.ScoringResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target:     %s\n", category))
	sb.WriteString(fmt.Sprintf("Overall:    %.1f\n", result.OverallScore))
	sb.WriteString(fmt.Sprintf("Core:       %.1f  (weight %.2f)\n", result.CoreScore, result.WeightAlpha))
	sb.WriteString(fmt.Sprintf("Adjacency:  %.1f  (weight %.2f)\n", result.AdjacencyScore, result.WeightBeta))

	if gap := strings.TrimSpace(result.Narrative.GapText); gap != "" {
		sb.WriteString("\nGap:\n")
		for _, line := range wrap(gap, boxWidth-6) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	if len(result.Narrative.ActionSteps) > 0 {
		sb.WriteString("\nAction Plan:\n")
		for i, step := range result.Narrative.ActionSteps {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	if len(result.SkillBreakdown) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(result.SkillBreakdown), maxItemsToShow)
		for i := 0; i < count; i++ {
			s := result.SkillBreakdown[i]
			sb.WriteString(fmt.Sprintf("  %-36s %5.1f\n", ellipsize(s.Skill, 36), s.Score))
		}
		if len(result.SkillBreakdown) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.SkillBreakdown)-maxItemsToShow))
		}
	}

	p.printBox("JOB FIT SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScans outputs a user's scan history, newest first as given.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintScans(scans []types.ScanRecord) {
	if len(scans) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO SAVED SCANS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d saved scans:\n\n", len(scans)))
	for i, s := range scans {
		sb.WriteString(fmt.Sprintf("%s  %-13s %5.1f\n", s.Timestamp.Format("2006-01-02 15:04"), s.TargetCategory, s.OverallScore))
		sb.WriteString(fmt.Sprintf("  %s", orDash(s.Profile.FullName)))
		if s.Profile.CurrentRole != "" {
			sb.WriteString(fmt.Sprintf(" | %s", s.Profile.CurrentRole))
		}
		sb.WriteString("\n")
		if i < len(scans)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SCAN HISTORY", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap splits text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && utf8.RuneCountInString(line.String())+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
