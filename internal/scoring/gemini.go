package scoring

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/jobfit-analyzer/internal/llm"
	"github.com/jonathan/jobfit-analyzer/internal/logger"
	"github.com/jonathan/jobfit-analyzer/internal/prompts"
	"github.com/jonathan/jobfit-analyzer/internal/schemas"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"go.uber.org/zap"
)

// GeminiOption configures a GeminiScorer
type GeminiOption func(*GeminiScorer)

// WithPolicy sets how the overall score is reconciled with the sub-scores.
func WithPolicy(p ScorePolicy) GeminiOption {
	return func(s *GeminiScorer) { s.policy = p }
}

// WithTolerance sets the accepted gap between reported and weighted scores.
func WithTolerance(t float64) GeminiOption {
	return func(s *GeminiScorer) { s.tolerance = t }
}

// WithLogger sets the scorer's logger.
func WithLogger(l *zap.Logger) GeminiOption {
	return func(s *GeminiScorer) { s.logger = logger.OrNop(l) }
}

// GeminiScorer scores profiles with a single structured model call per request.
// It does not retry.
type GeminiScorer struct {
	client    llm.Client
	tier      llm.ModelTier
	policy    ScorePolicy
	tolerance float64
	logger    *zap.Logger
}

// NewGeminiScorer creates a scorer backed by client.
func NewGeminiScorer(client llm.Client, opts ...GeminiOption) *GeminiScorer {
	s := &GeminiScorer{
		client:    client,
		tier:      llm.TierAdvanced,
		policy:    PolicyTrustUpstream,
		tolerance: DefaultTolerance,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.WithFields(s.logger, logger.CommonFields(string(llm.ProviderGemini), client.GetModel(s.tier))...)
	return s
}

// Score sends req and images to the model and validates the answer.
func (s *GeminiScorer) Score(ctx context.Context, req types.ScoringRequest, images ...types.Attachment) (*types.ScoringResult, error) {
	structured, err := buildRequest(req, images)
	if err != nil {
		return nil, err
	}
	structured.Tier = s.tier

	s.logger.Debug("sending scoring request",
		zap.String(logger.FieldTarget, string(req.TargetCategory)),
		zap.String(logger.FieldProfileURL, req.Candidate.URL),
		zap.Int("image_count", len(images)),
	)

	raw, err := s.client.GenerateStructured(ctx, structured)
	if err != nil {
		return nil, fail("model call failed", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fail("empty response from model", nil)
	}
	if err := schemas.Validate(schemas.ScoringResponse, []byte(raw)); err != nil {
		s.logger.Debug("invalid scoring response", zap.String("response", logger.TruncateForLog(raw, 500)))
		return nil, fail("response does not match schema", err)
	}

	var resp response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fail("failed to decode response", err)
	}

	return s.toResult(&resp), nil
}

func (s *GeminiScorer) toResult(resp *response) *types.ScoringResult {
	core := ClampScore(resp.CoreScore)
	adj := ClampScore(resp.AdjScore)
	weighted := WeightedScore(core, adj)
	overall := ClampScore(resp.OverallScore)

	if diff := math.Abs(overall - weighted); diff > s.tolerance {
		s.logger.Warn("model overall score diverges from weighted sub-scores",
			zap.Float64("reported", resp.OverallScore),
			zap.Float64("weighted", weighted),
			zap.Float64("difference", diff),
			zap.String("policy", string(s.policy)),
		)
	}
	if s.policy == PolicyRecompute {
		overall = ClampScore(weighted)
	}

	breakdown := make([]types.SkillScore, 0, len(resp.SkillBreakdown))
	for _, sk := range resp.SkillBreakdown {
		breakdown = append(breakdown, types.SkillScore{Skill: sk.Skill, Score: ClampScore(sk.Score)})
	}
	steps := make([]string, 0, len(resp.ActionPlan))
	for _, step := range resp.ActionPlan {
		if step = strings.TrimSpace(step); step != "" {
			steps = append(steps, step)
		}
	}

	return &types.ScoringResult{
		OverallScore:   overall,
		CoreScore:      core,
		AdjacencyScore: adj,
		WeightAlpha:    WeightAlpha,
		WeightBeta:     WeightBeta,
		Narrative: types.Narrative{
			GapText:     strings.TrimSpace(resp.GapAnalysis),
			ActionSteps: steps,
		},
		SkillBreakdown: breakdown,
	}
}

// buildRequest assembles the model call for req: the rubric as system
// instruction, the target and profile as text parts, then the images.
func buildRequest(req types.ScoringRequest, images []types.Attachment) (*llm.StructuredRequest, error) {
	profileJSON, err := json.Marshal(req.Candidate)
	if err != nil {
		return nil, fail("failed to encode profile", err)
	}

	system, err := prompts.Render(prompts.ScoringFile, "system", map[string]string{
		"Alpha": strconv.FormatFloat(WeightAlpha, 'f', 2, 64),
		"Beta":  strconv.FormatFloat(WeightBeta, 'f', 2, 64),
	})
	if err != nil {
		return nil, fail("failed to load rubric", err)
	}
	targetPart, err := prompts.Render(prompts.ScoringFile, "target-part", map[string]string{"Target": string(req.TargetCategory)})
	if err != nil {
		return nil, fail("failed to load prompt", err)
	}
	profilePart, err := prompts.Render(prompts.ScoringFile, "profile-part", map[string]string{"Profile": string(profileJSON)})
	if err != nil {
		return nil, fail("failed to load prompt", err)
	}

	blobs := make([]llm.Blob, 0, len(images))
	for _, img := range images {
		blobs = append(blobs, llm.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	temperature := llm.DefaultTemperature
	return &llm.StructuredRequest{
		SystemInstruction: system,
		Parts:             []string{targetPart, profilePart},
		Blobs:             blobs,
		Temperature:       &temperature,
		Schema:            ResponseSchema(),
	}, nil
}
