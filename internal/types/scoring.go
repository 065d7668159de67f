//nolint:revive // types is a standard Go package name pattern
package types

// ScoringRequest is the size-bounded payload sent to the scoring model
type ScoringRequest struct {
	Candidate      ExtractedProfile `json:"candidate"`
	TargetCategory TargetCategory   `json:"targetNiche"`
}

// ScoringResult is the outcome of one scoring call.
// OverallScore is expected to be close to WeightAlpha*CoreScore + WeightBeta*AdjacencyScore
// but that relationship is checked, not assumed.
type ScoringResult struct {
	OverallScore   float64      `json:"score" validate:"gte=0,lte=100"`
	CoreScore      float64      `json:"coreScore" validate:"gte=0,lte=100"`
	AdjacencyScore float64      `json:"adjScore" validate:"gte=0,lte=100"`
	WeightAlpha    float64      `json:"alpha"`
	WeightBeta     float64      `json:"beta"`
	Narrative      Narrative    `json:"narrative"`
	SkillBreakdown []SkillScore `json:"skillBreakdown" validate:"dive"`
}

// WeightedScore returns alpha*core + beta*adjacency.
func (r *ScoringResult) WeightedScore() float64 {
	return r.WeightAlpha*r.CoreScore + r.WeightBeta*r.AdjacencyScore
}

// Narrative is the human-readable part of a result
type Narrative struct {
	GapText     string   `json:"gapText"`
	ActionSteps []string `json:"actionSteps"`
}

// SkillScore is the per-skill score reported by the model
type SkillScore struct {
	Skill string  `json:"skill"`
	Score float64 `json:"score" validate:"gte=0,lte=100"`
}

// Attachment is inline binary data sent alongside a scoring request
type Attachment struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}
