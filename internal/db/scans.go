package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit-analyzer/internal/scoring"
	"github.com/jonathan/jobfit-analyzer/internal/types"
)

// scanRow mirrors one row of the scans table
type scanRow struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CreatedAt      time.Time
	TargetCategory string
	FullName       string
	RoleTitle      string
	ProfileURL     string
	OverallScore   float64
	CoreScore      float64
	AdjScore       float64
	GapText        string
	ActionSteps    []byte
	Analysis       string
	SkillBreakdown []byte
}

func newScanRow(scan *types.ScanRecord) (*scanRow, error) {
	steps := scan.Narrative.ActionSteps
	if steps == nil {
		steps = []string{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action steps: %w", err)
	}

	breakdown := scan.SkillBreakdown
	if breakdown == nil {
		breakdown = []types.SkillScore{}
	}
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skill breakdown: %w", err)
	}

	analysis := scan.Analysis
	if analysis == "" {
		analysis = scoring.FormatLegacyNarrative(scan.Narrative)
	}

	return &scanRow{
		ID:             scan.ID,
		UserID:         scan.UserID,
		CreatedAt:      scan.Timestamp,
		TargetCategory: string(scan.TargetCategory),
		FullName:       scan.Profile.FullName,
		RoleTitle:      scan.Profile.CurrentRole,
		ProfileURL:     scan.Profile.URL,
		OverallScore:   scan.OverallScore,
		CoreScore:      scan.CoreScore,
		AdjScore:       scan.AdjacencyScore,
		GapText:        scan.Narrative.GapText,
		ActionSteps:    stepsJSON,
		Analysis:       analysis,
		SkillBreakdown: breakdownJSON,
	}, nil
}

// record converts the row back into a ScanRecord. Rows written before the
// narrative was stored in its own columns are decoded from the packed analysis.
func (r *scanRow) record() (types.ScanRecord, error) {
	rec := types.ScanRecord{
		ID:             r.ID,
		UserID:         r.UserID,
		Timestamp:      r.CreatedAt,
		TargetCategory: types.TargetCategory(r.TargetCategory),
		Profile: types.ProfileSummary{
			FullName:    r.FullName,
			CurrentRole: r.RoleTitle,
			URL:         r.ProfileURL,
		},
		OverallScore:   r.OverallScore,
		CoreScore:      r.CoreScore,
		AdjacencyScore: r.AdjScore,
		Analysis:       r.Analysis,
		SkillBreakdown: []types.SkillScore{},
	}

	if len(r.SkillBreakdown) > 0 {
		if err := json.Unmarshal(r.SkillBreakdown, &rec.SkillBreakdown); err != nil {
			return rec, fmt.Errorf("failed to decode skill breakdown of scan %s: %w", r.ID, err)
		}
	}

	if strings.TrimSpace(r.GapText) == "" && strings.TrimSpace(r.Analysis) != "" {
		rec.Narrative = scoring.ParseLegacyNarrative(r.Analysis)
		return rec, nil
	}

	rec.Narrative = types.Narrative{GapText: r.GapText, ActionSteps: []string{}}
	if len(r.ActionSteps) > 0 {
		if err := json.Unmarshal(r.ActionSteps, &rec.Narrative.ActionSteps); err != nil {
			return rec, fmt.Errorf("failed to decode action steps of scan %s: %w", r.ID, err)
		}
	}
	return rec, nil
}

// AppendScan inserts a scan. Scans are never updated.
func (db *DB) AppendScan(ctx context.Context, scan *types.ScanRecord) error {
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	if scan.Timestamp.IsZero() {
		scan.Timestamp = time.Now().UTC()
	}
	row, err := newScanRow(scan)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO scans (id, user_id, created_at, target_category, full_name, role_title, profile_url,
		                    overall_score, core_score, adj_score, gap_text, action_steps, analysis, skill_breakdown)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		row.ID, row.UserID, row.CreatedAt, row.TargetCategory, row.FullName, row.RoleTitle, row.ProfileURL,
		row.OverallScore, row.CoreScore, row.AdjScore, row.GapText, row.ActionSteps, row.Analysis, row.SkillBreakdown,
	)
	if err != nil {
		return fmt.Errorf("failed to append scan: %w", err)
	}
	return nil
}

// ListScans returns a user's scans, newest first
func (db *DB) ListScans(ctx context.Context, userID uuid.UUID, limit int) ([]types.ScanRecord, error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, created_at, target_category, full_name, role_title, profile_url,
		        overall_score, core_score, adj_score, gap_text, action_steps, analysis, skill_breakdown
		 FROM scans WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := []types.ScanRecord{}
	for rows.Next() {
		var r scanRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.CreatedAt, &r.TargetCategory, &r.FullName, &r.RoleTitle, &r.ProfileURL,
			&r.OverallScore, &r.CoreScore, &r.AdjScore, &r.GapText, &r.ActionSteps, &r.Analysis, &r.SkillBreakdown); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		scans = append(scans, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans: %w", err)
	}
	return scans, nil
}
