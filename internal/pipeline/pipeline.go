// Package pipeline orchestrates a full search run: resume analysis, job
// retrieval, normalization, scoring and ranking.
package pipeline

import (
	"context"
	"fmt"

	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/apify"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/jobs"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/metering"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/profile"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/ranking"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/scoring"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analyzer extracts a candidate profile from resume text.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText string) (*profile.CandidateProfile, error)
}

// Fetcher retrieves raw postings from one job source.
type Fetcher interface {
	FetchJobs(ctx context.Context, source string, q *apify.Query) ([]jobs.RawPosting, error)
}

// Scorer scores jobs against the candidate profile.
type Scorer interface {
	ScoreAll(ctx context.Context, list []jobs.Job, p *profile.CandidateProfile) []*scoring.ScoredJob
}

// Approver is asked for confirmation before the billable scoring phase. A nil
// approver means scoring proceeds unconditionally.
type Approver interface {
	Approve(ctx context.Context, jobCount int) (bool, error)
}

// Deps aggregates everything a run needs.
type Deps struct {
	Analyzer Analyzer
	Fetcher  Fetcher
	Scorer   Scorer
	Meter    metering.Meter
	Approver Approver
	Logger   *zap.Logger
}

// step describes one collection stage, mirrored into the log.
type step struct {
	Initial int
	Dropped int
	Left    int
}

// Pipeline runs searches end to end.
type Pipeline struct {
	deps Deps
}

func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Run executes one search. A source that fails contributes zero jobs but
// never fails the run; an unparseable resume does, since nothing downstream
// can work without a profile. Declining the scoring approval returns
// ErrAborted.
func (p *Pipeline) Run(ctx context.Context, resumeText string, prefs *SearchPreferences) (*ResultEnvelope, error) {
	if prefs == nil {
		prefs = &SearchPreferences{}
	}

	candidate, err := p.deps.Analyzer.Analyze(ctx, resumeText)
	if err != nil {
		return nil, fmt.Errorf("analyze resume: %w", err)
	}

	// The work mode is a search setting, not a resume fact.
	if prefs.WorkMode != "" {
		candidate.WorkModePreference = prefs.WorkMode
	}

	query := p.buildQuery(candidate, prefs)

	collected := p.collect(ctx, query)
	deduped := p.prepare(collected)

	envelope := &ResultEnvelope{
		Query: QueryEcho{
			ResumeSummary: candidate,
			SearchParameters: SearchParameters{
				Keywords:  query.Keywords,
				Location:  query.Location,
				WorkMode:  query.WorkMode,
				Radius:    query.Radius,
				MinSalary: query.MinSalary,
				Sources:   jobs.Sources,
			},
		},
		Results: []*scoring.ScoredJob{},
	}

	if len(deduped) == 0 {
		p.deps.Logger.Warn("no jobs found for query", zap.String("keywords", query.Keywords))
		envelope.Statistics = ranking.Aggregate(nil, candidate.Skills)
		p.deps.Meter.Emit(ctx, metering.EventResultsSummary)
		return envelope, nil
	}

	if p.deps.Approver != nil {
		ok, err := p.deps.Approver.Approve(ctx, len(deduped))
		if err != nil {
			return nil, fmt.Errorf("scoring approval: %w", err)
		}
		if !ok {
			return nil, ErrAborted
		}
	}

	scored := p.deps.Scorer.ScoreAll(ctx, deduped, candidate)

	envelope.Results = ranking.Rank(scored)
	envelope.Statistics = ranking.Aggregate(scored, candidate.Skills)

	p.deps.Meter.Emit(ctx, metering.EventResultsSummary)

	p.deps.Logger.Info("search complete",
		zap.Int("jobs_found", envelope.Statistics.TotalJobsFound),
		zap.Int("results", len(envelope.Results)),
		zap.Float64("average_match_score", envelope.Statistics.AverageMatchScore),
	)

	return envelope, nil
}

func (p *Pipeline) buildQuery(candidate *profile.CandidateProfile, prefs *SearchPreferences) *apify.Query {
	location := prefs.Location
	if location == "" {
		location = candidate.LocationPreference
	}

	return &apify.Query{
		Keywords:  candidate.SearchKeywords(),
		Location:  location,
		WorkMode:  candidate.WorkModePreference,
		Radius:    prefs.Radius,
		MinSalary: prefs.MinSalary,
	}
}

// collect fans out to every source concurrently. Per-source failures are
// logged and yield zero postings; results are concatenated in the fixed
// source order so later dedup is deterministic.
func (p *Pipeline) collect(ctx context.Context, query *apify.Query) []jobs.RawPosting {
	perSource := make([][]jobs.RawPosting, len(jobs.Sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range jobs.Sources {
		g.Go(func() error {
			postings, err := p.deps.Fetcher.FetchJobs(gctx, source, query)
			if err != nil {
				p.deps.Logger.Warn("job source failed",
					zap.String("source", source),
					zap.Error(err),
				)
				return nil
			}
			perSource[i] = postings
			return nil
		})
	}
	// Workers swallow their errors above.
	_ = g.Wait()

	var collected []jobs.RawPosting
	for _, postings := range perSource {
		collected = append(collected, postings...)
	}

	return collected
}

// prepare normalizes the raw postings, drops incomplete ones and collapses
// duplicates, logging each stage.
func (p *Pipeline) prepare(collected []jobs.RawPosting) []jobs.Job {
	normalized := make([]jobs.Job, 0, len(collected))
	for _, raw := range collected {
		job := jobs.Normalize(raw)
		if job.Incomplete() {
			continue
		}
		normalized = append(normalized, job)
	}
	p.logStep("normalize", step{
		Initial: len(collected),
		Dropped: len(collected) - len(normalized),
		Left:    len(normalized),
	})

	deduped := jobs.Deduplicate(normalized)
	p.logStep("deduplicate", step{
		Initial: len(normalized),
		Dropped: len(normalized) - len(deduped),
		Left:    len(deduped),
	})

	return deduped
}

func (p *Pipeline) logStep(name string, info step) {
	p.deps.Logger.Info("collection step",
		zap.String("name", name),
		zap.Int("initial", info.Initial),
		zap.Int("dropped", info.Dropped),
		zap.Int("left", info.Left),
	)
}
