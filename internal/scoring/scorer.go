package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/ai"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/jobs"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/metering"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/profile"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

//go:embed prompt.md
var promptTemplate string

//go:embed schema.json
var scoreSchema string

const (
	defaultConcurrency = 5
	defaultRatePerSec  = 2
	defaultMaxLogLen   = 200
)

// Config bounds the scoring fan-out toward the model API.
type Config struct {
	// Concurrency caps in-flight scoring calls.
	Concurrency int
	// RequestsPerSecond throttles calls across all workers.
	RequestsPerSecond float64
	// MaxLogLength truncates prompt/response previews in debug logs.
	MaxLogLength int
}

// Scorer computes match scores for jobs against a candidate profile.
type Scorer struct {
	completer   ai.Completer
	meter       metering.Meter
	logger      *zap.Logger
	limiter     *rate.Limiter
	concurrency int
	maxLogLen   int
}

func NewScorer(completer ai.Completer, meter metering.Meter, cfg *Config, logger *zap.Logger) *Scorer {
	if cfg == nil {
		cfg = &Config{}
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRatePerSec
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLen
	}

	return &Scorer{
		completer:   completer,
		meter:       meter,
		logger:      logger,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		concurrency: concurrency,
		maxLogLen:   maxLogLen,
	}
}

// scoreResponse is the wire shape of the model's answer. Scores arrive as
// JSON numbers and are rounded and clamped into integer dimension scores.
type scoreResponse struct {
	SkillsMatch     wireDimension `json:"skills_match"`
	ExperienceMatch wireDimension `json:"experience_match"`
	LocationMatch   wireDimension `json:"location_match"`
	CompanyFit      wireDimension `json:"company_fit"`
}

type wireDimension struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

func (w wireDimension) dimension() DimensionScore {
	return DimensionScore{
		Score:       int(math.Round(w.Score)),
		Explanation: strings.TrimSpace(w.Explanation),
	}
}

// Score evaluates one job against the profile with a single combined call
// covering all four dimensions. Callers decide what a failure means; the
// pipeline substitutes the fallback score.
func (s *Scorer) Score(ctx context.Context, job jobs.Job, p *profile.CandidateProfile) (*MatchScore, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	prompt, err := buildPrompt(job, p)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("job scoring request",
		zap.String("position", job.Position),
		zap.String("company", job.Company),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("job scoring response",
		zap.String("position", job.Position),
		zap.String("response_preview", util.TruncateForLog(raw, s.maxLogLen)),
	)

	var resp scoreResponse
	if err := ai.DecodeStructured(raw, scoreSchema, &resp); err != nil {
		return nil, err
	}

	score := &MatchScore{
		SkillsMatch:     resp.SkillsMatch.dimension(),
		ExperienceMatch: resp.ExperienceMatch.dimension(),
		LocationMatch:   resp.LocationMatch.dimension(),
		CompanyFit:      resp.CompanyFit.dimension(),
	}
	score.clamp()

	return score, nil
}

// ScoreAll scores every job concurrently, bounded by the configured limit.
// Failures are isolated per job: a failed call yields the fallback score and
// never aborts the run. One job_score event is charged per attempt, fallback
// included, since the billable effort was spent either way. Result order
// matches input order regardless of completion order.
func (s *Scorer) ScoreAll(ctx context.Context, list []jobs.Job, p *profile.CandidateProfile) []*ScoredJob {
	results := make([]*ScoredJob, len(list))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for i, job := range list {
		g.Go(func() error {
			score, err := s.Score(ctx, job, p)
			if err != nil {
				s.logger.Warn("job scoring failed, applying fallback score",
					zap.String("position", job.Position),
					zap.String("company", job.Company),
					zap.Error(err),
				)
				score = Fallback()
			}

			s.meter.Emit(ctx, metering.EventJobScore)

			results[i] = &ScoredJob{
				Job:        job,
				MatchScore: score.Weighted(),
				Details:    score,
			}

			s.logger.Info("job scored",
				zap.String("position", job.Position),
				zap.String("company", job.Company),
				zap.Int("match_score", results[i].MatchScore),
			)

			return nil
		})
	}

	// Workers never return errors; failures became fallback scores above.
	_ = g.Wait()

	return results
}

func buildPrompt(job jobs.Job, p *profile.CandidateProfile) (string, error) {
	experience := "Not specified"
	if p.YearsOfExperience != nil {
		experience = fmt.Sprintf("%g", *p.YearsOfExperience)
	}

	profilePayload := map[string]any{
		"desired_role":         p.DesiredRole,
		"skills":               p.Skills,
		"years_of_experience":  experience,
		"location_preference":  p.LocationPreference,
		"work_mode_preference": p.WorkModePreference,
	}

	profileJSON, err := json.MarshalIndent(profilePayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", string(jobJSON))
	return prompt, nil
}
