package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/jobfit-analyzer/internal/db"
	"github.com/jonathan/jobfit-analyzer/internal/dom"
	"github.com/jonathan/jobfit-analyzer/internal/fetch"
	"github.com/jonathan/jobfit-analyzer/internal/logger"
	"github.com/jonathan/jobfit-analyzer/internal/scoring"
	"github.com/jonathan/jobfit-analyzer/internal/server/middleware"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"go.uber.org/zap"
)

// CaptureRequest is the body of POST /profiles. Without HTML the page is fetched.
type CaptureRequest struct {
	URL  string `json:"url" validate:"required,url"`
	HTML string `json:"html"`
}

// ScoreRequest is the body of POST /score. Images are data URIs.
type ScoreRequest struct {
	TargetCategory string   `json:"target_category" validate:"required"`
	Images         []string `json:"images" validate:"max=4"`
}

// SaveScanRequest is the body of POST /scans.
type SaveScanRequest struct {
	TargetCategory string               `json:"target_category" validate:"required"`
	Result         *types.ScoringResult `json:"result" validate:"required"`
}

// rubricResult copies the submitted result with the rubric weights in place of
// the client's.
func (r *SaveScanRequest) rubricResult() *types.ScoringResult {
	result := *r.Result
	result.WeightAlpha = scoring.WeightAlpha
	result.WeightBeta = scoring.WeightBeta
	return &result
}

func (s *Server) handleCaptureProfile(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if !decodeAndValidate(w, r, s.validator, &req) {
		return
	}
	if !fetch.IsProfileURL(req.URL) {
		writeError(w, http.StatusBadRequest, "not a profile page")
		return
	}
	req.URL = fetch.CanonicalProfileURL(req.URL)

	var (
		snap dom.Snapshot
		err  error
	)
	if req.HTML != "" {
		snap, err = dom.FromHTML(req.HTML, req.URL)
	} else {
		snap, err = s.fetch(r.Context(), req.URL)
	}
	if err != nil {
		s.logger.Warn("failed to load page", zap.String(logger.FieldProfileURL, req.URL), zap.Error(err))
		writeError(w, http.StatusBadRequest, "failed to load page")
		return
	}

	profile, err := s.analyzer.Capture(r.Context(), snap)
	if err != nil {
		s.fail(w, "capture failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleCurrentProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.analyzer.Current(r.Context())
	if err != nil {
		s.fail(w, "failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeAndValidate(w, r, s.validator, &req) {
		return
	}
	category, err := types.ParseTargetCategory(req.TargetCategory)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	images := scoring.ParseDataURIs(req.Images)
	_, result, err := s.analyzer.Analyze(r.Context(), category, images...)
	if err != nil {
		s.fail(w, "scoring failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSaveScan(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		middleware.Unauthorized(w)
		return
	}

	var req SaveScanRequest
	if !decodeAndValidate(w, r, s.validator, &req) {
		return
	}
	category, err := types.ParseTargetCategory(req.TargetCategory)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := s.analyzer.Current(r.Context())
	if err != nil {
		s.fail(w, "failed to load profile", err)
		return
	}

	scan, err := s.analyzer.Save(r.Context(), userID, category, profile, req.rubricResult())
	if err != nil {
		s.fail(w, "failed to save scan", err)
		return
	}
	writeJSON(w, http.StatusCreated, scan)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		middleware.Unauthorized(w)
		return
	}
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, msgNoHistory)
		return
	}

	limit := db.DefaultScanLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	scans, err := s.history.ListScans(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, "failed to list scans", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": scans, "count": len(scans)})
}
