package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit-analyzer/internal/db"
	"github.com/jonathan/jobfit-analyzer/internal/schemas"
	"github.com/jonathan/jobfit-analyzer/internal/scoring"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	target      string
	images      []string
	mock        bool
	policy      string
	save        bool
	userID      string
	profileFile string
}

// scoreOutput is the --json result of the score command.
type scoreOutput struct {
	Profile *types.ExtractedProfile `json:"profile"`
	Result  *types.ScoringResult    `json:"result"`
	Scan    *types.ScanRecord       `json:"scan,omitempty"`
}

func newScoreCmd(a *app) *cobra.Command {
	var opts scoreOptions

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score the current profile against a target category",
		Long: "Score the stored profile (or --profile-file) against a target category with one model call. " +
			"--save appends the result to the user's scan history.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runScore(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "Target category: AI_ML, Cybersecurity or AI_Ethics (default from config)")
	cmd.Flags().StringArrayVar(&opts.images, "image", nil, "Image file sent with the request (repeatable)")
	cmd.Flags().BoolVar(&opts.mock, "mock", false, "Use fixed offline scores instead of calling the model")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "Overall score policy: trust or recompute (default from config)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the scan to the history database")
	cmd.Flags().StringVar(&opts.userID, "user-id", "", "User ID the saved scan belongs to (default from config)")
	cmd.Flags().StringVar(&opts.profileFile, "profile-file", "", "Profile JSON to store and score instead of the current record")
	return cmd
}

func (a *app) runScore(ctx context.Context, opts scoreOptions) error {
	category, err := a.resolveCategory(opts.target)
	if err != nil {
		return err
	}
	policyName := opts.policy
	if policyName == "" {
		policyName = a.cfg.ScorePolicy
	}
	policy, err := scoring.ParsePolicy(policyName)
	if err != nil {
		return err
	}
	userID, err := a.resolveUserID(opts.userID)
	if err != nil {
		return err
	}
	if opts.save && a.cfg.DatabaseURL == "" {
		return fmt.Errorf("--save requires a database URL (set DATABASE_URL or database_url)")
	}

	images, err := scoring.LoadImages(ctx, opts.images)
	if err != nil {
		return err
	}

	s, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	if opts.profileFile != "" {
		profile, err := readProfileFile(opts.profileFile)
		if err != nil {
			return err
		}
		if err := s.Put(ctx, profile); err != nil {
			return fmt.Errorf("failed to store profile: %w", err)
		}
	}

	scorer, closeScorer, err := a.newScorer(ctx, opts.mock, policy)
	if err != nil {
		return err
	}
	defer func() { _ = closeScorer() }()

	analyzer := a.newAnalyzer(s)
	analyzer.Scorer = scorer

	profile, result, err := analyzer.Analyze(ctx, category, images...)
	if err != nil {
		return err
	}

	out := scoreOutput{Profile: profile, Result: result}
	if opts.save {
		database, err := db.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		analyzer.Sink = database

		scan, err := analyzer.Save(ctx, userID, category, profile, result)
		if err != nil {
			return err
		}
		out.Scan = scan
	}

	if a.jsonOutput {
		return a.writeJSON(out)
	}
	a.printer().PrintScore(category, result)
	if out.Scan != nil {
		_, _ = fmt.Fprintf(a.out, "Saved scan %s\n", out.Scan.ID)
	}
	return nil
}

func (a *app) resolveCategory(flag string) (types.TargetCategory, error) {
	if flag != "" {
		return types.ParseTargetCategory(flag)
	}
	return a.cfg.Category()
}

func (a *app) resolveUserID(flag string) (uuid.UUID, error) {
	if flag == "" {
		return a.cfg.ParsedUserID()
	}
	id, err := uuid.Parse(flag)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user-id: %w", err)
	}
	return id, nil
}

// readProfileFile loads a profile record after checking it against the
// profile schema.
func readProfileFile(path string) (*types.ExtractedProfile, error) {
	if err := schemas.ValidateFile(schemas.Profile, path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var profile types.ExtractedProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}
