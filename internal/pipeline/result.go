package pipeline

import (
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/profile"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/ranking"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/scoring"
)

// SearchPreferences carries the user-supplied search settings. Location falls
// back to the resume's location preference when empty.
type SearchPreferences struct {
	Location  string `mapstructure:"location"`
	WorkMode  string `mapstructure:"work-mode"`
	Radius    int    `mapstructure:"radius"`
	MinSalary int    `mapstructure:"min-salary"`
}

// QueryEcho reflects the extracted profile and the effective search
// parameters back to the caller so results are interpretable on their own.
type QueryEcho struct {
	ResumeSummary    *profile.CandidateProfile `json:"resumeSummary"`
	SearchParameters SearchParameters          `json:"searchParameters"`
}

// SearchParameters is the query as it was actually sent to the job sources.
type SearchParameters struct {
	Keywords  string   `json:"keywords"`
	Location  string   `json:"location"`
	WorkMode  string   `json:"workMode"`
	Radius    int      `json:"radius,omitempty"`
	MinSalary int      `json:"minSalary,omitempty"`
	Sources   []string `json:"sources"`
}

// ResultEnvelope is the complete output of one search run.
type ResultEnvelope struct {
	Query      QueryEcho            `json:"query"`
	Results    []*scoring.ScoredJob `json:"results"`
	Statistics *ranking.Statistics  `json:"statistics"`
}
