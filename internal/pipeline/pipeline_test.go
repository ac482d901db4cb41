package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/apify"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/jobs"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/metering"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/profile"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnalyzer struct {
	profile *profile.CandidateProfile
	err     error
}

func (s *stubAnalyzer) Analyze(context.Context, string) (*profile.CandidateProfile, error) {
	return s.profile, s.err
}

type stubFetcher struct {
	mu       sync.Mutex
	postings map[string][]jobs.RawPosting
	errs     map[string]error
	calls    []string
	lastQ    *apify.Query
}

func (s *stubFetcher) FetchJobs(_ context.Context, source string, q *apify.Query) ([]jobs.RawPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, source)
	s.lastQ = q
	if err := s.errs[source]; err != nil {
		return nil, err
	}
	// Mirror the real fetcher's contract: each posting is stamped with the
	// source tag (see internal/apify/sources.go).
	postings := make([]jobs.RawPosting, len(s.postings[source]))
	copy(postings, s.postings[source])
	for i := range postings {
		postings[i].Source = source
	}
	return postings, nil
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubScorer struct {
	mu     sync.Mutex
	scored []jobs.Job
}

func (s *stubScorer) ScoreAll(_ context.Context, list []jobs.Job, _ *profile.CandidateProfile) []*scoring.ScoredJob {
	s.mu.Lock()
	s.scored = list
	s.mu.Unlock()

	results := make([]*scoring.ScoredJob, len(list))
	for i, job := range list {
		results[i] = &scoring.ScoredJob{Job: job, MatchScore: 80, Details: scoring.Fallback()}
	}
	return results
}

type stubApprover struct {
	approve bool
	err     error
	asked   int
	count   int
}

func (s *stubApprover) Approve(_ context.Context, jobCount int) (bool, error) {
	s.asked++
	s.count = jobCount
	return s.approve, s.err
}

type recordingMeter struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingMeter) Emit(_ context.Context, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingMeter) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func candidate() *profile.CandidateProfile {
	return &profile.CandidateProfile{
		DesiredRole:        "Backend Engineer | Platform",
		Skills:             []string{"Go", "PostgreSQL"},
		LocationPreference: "Berlin",
		WorkModePreference: profile.WorkModeAny,
	}
}

func posting(title, company, location string) jobs.RawPosting {
	return jobs.RawPosting{Title: title, Company: company, Location: location}
}

func newTestPipeline(analyzer Analyzer, fetcher Fetcher, scorer Scorer, meter metering.Meter, approver Approver) *Pipeline {
	return New(Deps{
		Analyzer: analyzer,
		Fetcher:  fetcher,
		Scorer:   scorer,
		Meter:    meter,
		Approver: approver,
		Logger:   zap.NewNop(),
	})
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{postings: map[string][]jobs.RawPosting{
		jobs.SourceLinkedIn: {posting("Go Developer", "Acme", "Berlin")},
		jobs.SourceIndeed:   {posting("SRE", "Globex", "Munich")},
	}}
	meter := &recordingMeter{}
	scorer := &stubScorer{}

	p := newTestPipeline(&stubAnalyzer{profile: candidate()}, fetcher, scorer, meter, nil)

	envelope, err := p.Run(context.Background(), "resume text", &SearchPreferences{WorkMode: profile.WorkModeRemote})
	require.NoError(t, err)

	require.Len(t, envelope.Results, 2)
	assert.Equal(t, 2, envelope.Statistics.TotalJobsFound)
	assert.Equal(t, 80.0, envelope.Statistics.AverageMatchScore)
	assert.Equal(t, 1, meter.count(metering.EventResultsSummary))

	// The search keyword is the first segment of the desired role, lowercased.
	assert.Equal(t, "backend engineer", envelope.Query.SearchParameters.Keywords)
	// The configured work mode overrides whatever the resume implied.
	assert.Equal(t, profile.WorkModeRemote, envelope.Query.ResumeSummary.WorkModePreference)
	// No explicit location preference, so the resume's one is used.
	assert.Equal(t, "Berlin", envelope.Query.SearchParameters.Location)

	assert.Equal(t, 2, fetcher.callCount())
}

func TestRunAnalyzerFailureAbortsBeforeFetch(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	p := newTestPipeline(&stubAnalyzer{err: errors.New("model unavailable")}, fetcher, &stubScorer{}, metering.Nop{}, nil)

	_, err := p.Run(context.Background(), "resume text", nil)
	require.Error(t, err)
	assert.Zero(t, fetcher.callCount())
}

func TestRunSingleSourceFailure(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		postings: map[string][]jobs.RawPosting{
			jobs.SourceIndeed: {posting("Go Developer", "Acme", "Berlin")},
		},
		errs: map[string]error{jobs.SourceLinkedIn: errors.New("actor timeout")},
	}

	p := newTestPipeline(&stubAnalyzer{profile: candidate()}, fetcher, &stubScorer{}, metering.Nop{}, nil)

	envelope, err := p.Run(context.Background(), "resume text", nil)
	require.NoError(t, err)
	require.Len(t, envelope.Results, 1)
	assert.Equal(t, "Go Developer", envelope.Results[0].Position)
}

func TestRunAllSourcesFailYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{errs: map[string]error{
		jobs.SourceLinkedIn: errors.New("down"),
		jobs.SourceIndeed:   errors.New("down"),
	}}
	meter := &recordingMeter{}
	approver := &stubApprover{approve: true}

	p := newTestPipeline(&stubAnalyzer{profile: candidate()}, fetcher, &stubScorer{}, meter, approver)

	envelope, err := p.Run(context.Background(), "resume text", nil)
	require.NoError(t, err)

	assert.Empty(t, envelope.Results)
	assert.Equal(t, 0, envelope.Statistics.TotalJobsFound)
	assert.Equal(t, 0.0, envelope.Statistics.AverageMatchScore)
	// Nothing to score, so no approval prompt either.
	assert.Zero(t, approver.asked)
	// The summary is still produced and charged.
	assert.Equal(t, 1, meter.count(metering.EventResultsSummary))
}

func TestRunDeduplicatesAcrossSources(t *testing.T) {
	t.Parallel()

	linkedin := posting("Go Developer", "Acme", "Berlin")
	linkedin.Description = "from linkedin"
	indeed := posting("go developer", "ACME", "berlin")
	indeed.Description = "from indeed"

	fetcher := &stubFetcher{postings: map[string][]jobs.RawPosting{
		jobs.SourceLinkedIn: {linkedin},
		jobs.SourceIndeed:   {indeed},
	}}
	scorer := &stubScorer{}

	p := newTestPipeline(&stubAnalyzer{profile: candidate()}, fetcher, scorer, metering.Nop{}, nil)

	envelope, err := p.Run(context.Background(), "resume text", nil)
	require.NoError(t, err)

	require.Len(t, envelope.Results, 1)
	// LinkedIn is fetched first, so its copy wins the identity collision.
	assert.Equal(t, "from linkedin", envelope.Results[0].Description)
	assert.Equal(t, jobs.SourceLinkedIn, envelope.Results[0].Job.Source)
}

func TestRunDropsIncompletePostings(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{postings: map[string][]jobs.RawPosting{
		jobs.SourceLinkedIn: {
			posting("Go Developer", "Acme", "Berlin"),
			posting("", "Acme", "Berlin"),
			posting("Orphan Role", "", ""),
		},
	}}
	scorer := &stubScorer{}

	p := newTestPipeline(&stubAnalyzer{profile: candidate()}, fetcher, scorer, metering.Nop{}, nil)

	envelope, err := p.Run(context.Background(), "resume text", nil)
	require.NoError(t, err)
	require.Len(t, envelope.Results, 1)
	assert.Equal(t, "Go Developer", envelope.Results[0].Position)
}

func TestRunApproverDeclines(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{postings: map[string][]jobs.RawPosting{
		jobs.SourceLinkedIn: {posting("Go Developer", "Acme", "Berlin")},
	}}
	meter := &recordingMeter{}
	approver := &stubApprover{approve: false}

	p := newTestPipeline(&stubAnalyzer{profile: candidate()}, fetcher, &stubScorer{}, meter, approver)

	_, err := p.Run(context.Background(), "resume text", nil)
	require.ErrorIs(t, err, ErrAborted)

	assert.Equal(t, 1, approver.asked)
	assert.Equal(t, 1, approver.count)
	assert.Zero(t, meter.count(metering.EventResultsSummary))
}

func TestRunEnvelopeShape(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{postings: map[string][]jobs.RawPosting{
		jobs.SourceLinkedIn: {
			{Title: "Go Developer", Company: "Acme", Location: "Berlin", Description: "We use Go and PostgreSQL."},
		},
	}}

	p := newTestPipeline(&stubAnalyzer{profile: candidate()}, fetcher, &stubScorer{}, metering.Nop{}, nil)

	envelope, err := p.Run(context.Background(), "resume text", nil)
	require.NoError(t, err)

	data, err := json.Marshal(envelope)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	query, ok := decoded["query"].(map[string]any)
	require.True(t, ok)

	// The profile is nested under resumeSummary, not flattened into query.
	summary, ok := query["resumeSummary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer | Platform", summary["desired_role"])
	require.Contains(t, query, "searchParameters")

	stats, ok := decoded["statistics"].(map[string]any)
	require.True(t, ok)

	// Top skills are plain names, most demanded first.
	assert.Equal(t, []any{"Go", "PostgreSQL"}, stats["topSkillsRequested"])
}

func TestRunExplicitLocationOverridesProfile(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{postings: map[string][]jobs.RawPosting{
		jobs.SourceLinkedIn: {posting("Go Developer", "Acme", "Austin")},
	}}

	p := newTestPipeline(&stubAnalyzer{profile: candidate()}, fetcher, &stubScorer{}, metering.Nop{}, nil)

	envelope, err := p.Run(context.Background(), "resume text", &SearchPreferences{Location: "Austin, TX"})
	require.NoError(t, err)
	assert.Equal(t, "Austin, TX", envelope.Query.SearchParameters.Location)
	assert.Equal(t, "Austin, TX", fetcher.lastQ.Location)
}
