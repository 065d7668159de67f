package scoring

import "github.com/jonathan/jobfit-analyzer/internal/llm"

// response is the raw JSON object the model is asked to produce
type response struct {
	OverallScore   float64      `json:"overall_score"`
	CoreScore      float64      `json:"coreScore"`
	AdjScore       float64      `json:"adjScore"`
	SkillBreakdown []skillScore `json:"skill_breakdown"`
	GapAnalysis    string       `json:"gap_analysis"`
	ActionPlan     []string     `json:"action_plan"`
}

type skillScore struct {
	Skill string  `json:"skill"`
	Score float64 `json:"score"`
}

// ResponseSchema describes response for the model's structured output mode.
func ResponseSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"overall_score": {Type: llm.TypeNumber, Description: "The final S_JF value (0-100)"},
			"coreScore":     {Type: llm.TypeNumber, Description: "The S_core value (0-100)"},
			"adjScore":      {Type: llm.TypeNumber, Description: "The S_adj value (0-100)"},
			"skill_breakdown": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"skill": {Type: llm.TypeString},
						"score": {Type: llm.TypeNumber},
					},
				},
			},
			"gap_analysis": {Type: llm.TypeString, Description: "What the user is missing for the target role"},
			"action_plan": {
				Type:        llm.TypeArray,
				Items:       &llm.Schema{Type: llm.TypeString},
				Description: "3 immediate actionable steps to improve the score",
			},
		},
		Required: []string{"overall_score", "coreScore", "adjScore", "skill_breakdown", "gap_analysis", "action_plan"},
	}
}
