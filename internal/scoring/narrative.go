package scoring

import (
	"strings"

	"github.com/jonathan/jobfit-analyzer/internal/types"
)

const (
	gapPrefix        = "Gap: "
	actionPlanMarker = "Action Plan:"
)

// FormatLegacyNarrative packs a narrative into the single analysis string
// stored by older scan records.
func FormatLegacyNarrative(n types.Narrative) string {
	var sb strings.Builder
	sb.WriteString(gapPrefix)
	sb.WriteString(n.GapText)
	sb.WriteString("\n\n")
	sb.WriteString(actionPlanMarker)
	if len(n.ActionSteps) > 0 {
		sb.WriteString("\n - ")
		sb.WriteString(strings.Join(n.ActionSteps, "\n - "))
	}
	return sb.String()
}

// ParseLegacyNarrative reverses FormatLegacyNarrative. Text without an action
// plan marker becomes the gap text. Bullet markers are stripped from action
// lines and lines left empty are dropped. The round trip is lossy when the gap
// text contains "Action Plan:" or an action step contains a newline.
func ParseLegacyNarrative(text string) types.Narrative {
	gapPart, planPart, _ := strings.Cut(text, actionPlanMarker)

	gap := strings.TrimSpace(gapPart)
	gap = strings.TrimSpace(strings.TrimPrefix(gap, strings.TrimSpace(gapPrefix)))

	steps := make([]string, 0)
	for _, line := range strings.Split(planPart, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if line == "" {
			continue
		}
		steps = append(steps, line)
	}

	return types.Narrative{GapText: gap, ActionSteps: steps}
}
