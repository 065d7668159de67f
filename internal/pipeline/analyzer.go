// Package pipeline ties extraction, the profile store, scoring and scan
// history together.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit-analyzer/internal/dom"
	"github.com/jonathan/jobfit-analyzer/internal/extraction"
	"github.com/jonathan/jobfit-analyzer/internal/logger"
	"github.com/jonathan/jobfit-analyzer/internal/metrics"
	"github.com/jonathan/jobfit-analyzer/internal/normalize"
	"github.com/jonathan/jobfit-analyzer/internal/scoring"
	"github.com/jonathan/jobfit-analyzer/internal/store"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"go.uber.org/zap"
)

var (
	// ErrNoProfile is returned by Analyze when nothing has been captured yet.
	ErrNoProfile = errors.New("no profile captured")
	// ErrNotSignedIn is returned by Save without a user.
	ErrNotSignedIn = errors.New("not logged in")
	// ErrNoSink is returned by Save when scan history is not configured.
	ErrNoSink = errors.New("scan history is not configured")
)

// Step names reported through ProgressEvent.
const (
	StepCapture = "capture"
	StepAnalyze = "analyze"
	StepSave    = "save"
)

// ProgressEvent represents a progress update during a pipeline step
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// ScanSink appends scans to a user's history.
type ScanSink interface {
	AppendScan(ctx context.Context, scan *types.ScanRecord) error
}

// Analyzer runs the capture, analyze and save steps. Sink, Metrics, Logger
// and OnProgress are optional.
type Analyzer struct {
	Extractor  *extraction.Extractor
	Store      store.ProfileStore
	Scorer     scoring.Scorer
	Sink       ScanSink
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	OnProgress ProgressCallback

	now func() time.Time
}

func (a *Analyzer) log() *zap.Logger {
	return logger.OrNop(a.Logger)
}

func (a *Analyzer) progress(step, message string, content any) {
	if a.OnProgress != nil {
		a.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

func (a *Analyzer) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now().UTC()
}

// Capture extracts a profile from snapshot and stores it as the current record.
func (a *Analyzer) Capture(ctx context.Context, snapshot dom.Snapshot) (*types.ExtractedProfile, error) {
	extractor := a.Extractor
	if extractor == nil {
		extractor = extraction.New(extraction.DefaultSelectors(), a.Logger)
	}

	profile := extractor.Extract(snapshot)
	if err := a.Store.Put(ctx, profile); err != nil {
		a.Metrics.ObserveExtraction(err, false)
		return nil, fmt.Errorf("failed to store profile: %w", err)
	}
	a.Metrics.ObserveExtraction(nil, profile.IsEmpty())

	a.log().Info("profile captured",
		zap.String(logger.FieldProfileURL, profile.URL),
		zap.String("full_name", profile.FullName),
		zap.Int("experience", len(profile.Experience)),
		zap.Int("skills", len(profile.Skills)))
	a.progress(StepCapture, "profile captured", profile)
	return profile, nil
}

// Current returns the stored profile, or ErrNoProfile.
func (a *Analyzer) Current(ctx context.Context) (*types.ExtractedProfile, error) {
	profile, err := a.Store.Get(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// Analyze scores the stored profile against category. It makes exactly one
// scoring call and never retries.
func (a *Analyzer) Analyze(ctx context.Context, category types.TargetCategory, images ...types.Attachment) (*types.ExtractedProfile, *types.ScoringResult, error) {
	if !category.Valid() {
		return nil, nil, fmt.Errorf("invalid target category %q", category)
	}

	profile, err := a.Current(ctx)
	if err != nil {
		return nil, nil, err
	}

	req := normalize.Prepare(profile, category)
	a.progress(StepAnalyze, "scoring profile", nil)

	started := time.Now()
	result, err := a.Scorer.Score(ctx, req, images...)
	a.Metrics.ObserveScoring(started, err)
	if err != nil {
		a.log().Warn("scoring failed", zap.String(logger.FieldTarget, string(category)), zap.Error(err))
		return profile, nil, err
	}

	a.log().Info("profile scored",
		zap.String(logger.FieldTarget, string(category)),
		zap.Float64("score", result.OverallScore),
		zap.Duration("elapsed", time.Since(started)))
	a.progress(StepAnalyze, "profile scored", result)
	return profile, result, nil
}

// Save appends a scan for userID. It requires a signed-in user and a sink.
func (a *Analyzer) Save(ctx context.Context, userID uuid.UUID, category types.TargetCategory, profile *types.ExtractedProfile, result *types.ScoringResult) (*types.ScanRecord, error) {
	if userID == uuid.Nil {
		return nil, ErrNotSignedIn
	}
	if a.Sink == nil {
		return nil, ErrNoSink
	}
	if result == nil {
		return nil, errors.New("no scoring result to save")
	}

	scan := NewScanRecord(userID, category, profile, result, a.clock())
	if err := a.Sink.AppendScan(ctx, scan); err != nil {
		return nil, fmt.Errorf("failed to save scan: %w", err)
	}
	a.Metrics.ObserveScanSaved()

	a.log().Info("scan saved", zap.String("scan_id", scan.ID.String()), zap.String("user_id", userID.String()))
	a.progress(StepSave, "scan saved", scan)
	return scan, nil
}

// NewScanRecord builds the history entry for one scoring result.
func NewScanRecord(userID uuid.UUID, category types.TargetCategory, profile *types.ExtractedProfile, result *types.ScoringResult, at time.Time) *types.ScanRecord {
	return &types.ScanRecord{
		ID:             uuid.New(),
		UserID:         userID,
		Timestamp:      at,
		TargetCategory: category,
		Profile:        types.SummarizeProfile(profile),
		OverallScore:   result.OverallScore,
		CoreScore:      result.CoreScore,
		AdjacencyScore: result.AdjacencyScore,
		Narrative:      result.Narrative,
		Analysis:       scoring.FormatLegacyNarrative(result.Narrative),
		SkillBreakdown: result.SkillBreakdown,
	}
}
