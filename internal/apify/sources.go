package apify

import (
	"context"
	"fmt"

	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/jobs"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// Scraper actor IDs on the Apify platform.
const (
	actorLinkedIn = "apimaestro/linkedin-jobs-scraper-api"
	actorIndeed   = "misceres/indeed-scraper"
)

// PostingsPerSource caps how many raw postings are accepted from each source.
const PostingsPerSource = 10

// Query carries the search parameters derived from the candidate profile and
// the configured preferences.
type Query struct {
	Keywords  string
	Location  string
	WorkMode  string
	Radius    int
	MinSalary int
}

type actorRunner interface {
	RunActorSync(ctx context.Context, actorID string, input any) ([]map[string]any, error)
}

// Fetcher retrieves raw job postings from the scraper actors.
type Fetcher struct {
	runner actorRunner
	logger *zap.Logger
}

func NewFetcher(client *Client, logger *zap.Logger) *Fetcher {
	return &Fetcher{runner: client, logger: logger}
}

// FetchJobs runs the scraper actor for the given source and returns at most
// PostingsPerSource raw postings, each stamped with the source tag.
func (f *Fetcher) FetchJobs(ctx context.Context, source string, q *Query) ([]jobs.RawPosting, error) {
	actorID, input, err := runInput(source, q)
	if err != nil {
		return nil, err
	}

	items, err := f.runner.RunActorSync(ctx, actorID, input)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", source, err)
	}

	if len(items) > PostingsPerSource {
		items = items[:PostingsPerSource]
	}

	var postings []jobs.RawPosting
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &postings,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode %s postings: %w", source, err)
	}

	for i := range postings {
		postings[i].Source = source
	}

	f.logger.Info("retrieved postings",
		zap.String("source", source),
		zap.Int("count", len(postings)),
	)

	return postings, nil
}

func runInput(source string, q *Query) (string, map[string]any, error) {
	switch source {
	case jobs.SourceLinkedIn:
		location := q.Location
		if location == "" {
			location = "United States"
		}
		return actorLinkedIn, map[string]any{
			"keywords":    q.Keywords,
			"location":    location,
			"page_number": 1,
			"sort":        "relevant",
			"limit":       PostingsPerSource,
		}, nil
	case jobs.SourceIndeed:
		return actorIndeed, map[string]any{
			"position":             q.Keywords,
			"country":              "US",
			"location":             q.Location,
			"maxItems":             PostingsPerSource,
			"parseCompanyDetails":  false,
			"saveOnlyUniqueItems":  true,
			"followApplyRedirects": false,
			"maxConcurrency":       5,
		}, nil
	default:
		return "", nil, fmt.Errorf("unknown job source: %s", source)
	}
}
