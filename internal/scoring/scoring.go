// Package scoring asks a generative model to grade a profile against the
// job-fit rubric and turns its answer into a ScoringResult.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/jobfit-analyzer/internal/types"
)

// Rubric weights. The overall score is WeightAlpha*core + WeightBeta*adjacency.
const (
	WeightAlpha = 0.70
	WeightBeta  = 0.30
)

// DefaultTolerance is the largest accepted gap between the model's overall
// score and the locally weighted score before it is reported.
const DefaultTolerance = 1.0

// ErrScoringFailed is returned, wrapped, for every failed scoring attempt.
var ErrScoringFailed = errors.New("scoring failed")

// Scorer grades a normalized profile.
type Scorer interface {
	Score(ctx context.Context, req types.ScoringRequest, images ...types.Attachment) (*types.ScoringResult, error)
}

// Error describes why a scoring attempt failed. It matches ErrScoringFailed
// with errors.Is.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrScoringFailed, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrScoringFailed, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrScoringFailed.
func (e *Error) Is(target error) bool {
	return target == ErrScoringFailed
}

func fail(message string, cause error) error {
	return &Error{Message: message, Cause: cause}
}

// ScorePolicy decides which overall score is reported when the model's value
// disagrees with the weighted sum of its own sub-scores.
type ScorePolicy string

const (
	// PolicyTrustUpstream keeps the model's overall score and logs divergence
	PolicyTrustUpstream ScorePolicy = "trust"
	// PolicyRecompute replaces the overall score with the weighted sum
	PolicyRecompute ScorePolicy = "recompute"
)

// ParsePolicy resolves a policy name; the empty string means PolicyTrustUpstream.
func ParsePolicy(s string) (ScorePolicy, error) {
	switch ScorePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyTrustUpstream:
		return PolicyTrustUpstream, nil
	case PolicyRecompute:
		return PolicyRecompute, nil
	default:
		return "", fmt.Errorf("unknown score policy %q (expected %s or %s)", s, PolicyTrustUpstream, PolicyRecompute)
	}
}

// WeightedScore returns WeightAlpha*core + WeightBeta*adjacency.
func WeightedScore(core, adjacency float64) float64 {
	return WeightAlpha*core + WeightBeta*adjacency
}

// ClampScore limits v to [0, 100].
func ClampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
