package scoring

import (
	"context"
	"strings"

	"github.com/jonathan/jobfit-analyzer/internal/prompts"
	"github.com/jonathan/jobfit-analyzer/internal/types"
)

// Offline sub-scores returned by StaticScorer
const (
	StaticCoreScore      = 85
	StaticAdjacencyScore = 70
)

// StaticScorer returns fixed scores without calling any model. It is used for
// offline runs and tests.
type StaticScorer struct{}

// Score returns the fixed offline result for req.
func (StaticScorer) Score(ctx context.Context, req types.ScoringRequest, _ ...types.Attachment) (*types.ScoringResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fail("request cancelled", err)
	}

	skills := req.Candidate.Skills
	if len(skills) > 3 {
		skills = skills[:3]
	}
	gap := prompts.Format(prompts.MustGet(prompts.ScoringFile, "offline-analysis"), map[string]string{
		"Target": string(req.TargetCategory),
		"Skills": strings.Join(skills, ", "),
	})

	return &types.ScoringResult{
		OverallScore:   WeightedScore(StaticCoreScore, StaticAdjacencyScore),
		CoreScore:      StaticCoreScore,
		AdjacencyScore: StaticAdjacencyScore,
		WeightAlpha:    WeightAlpha,
		WeightBeta:     WeightBeta,
		Narrative: types.Narrative{
			GapText:     gap,
			ActionSteps: []string{},
		},
		SkillBreakdown: []types.SkillScore{},
	}, nil
}
