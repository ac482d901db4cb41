package scoring

import (
	"math"

	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/jobs"
)

// Weights for the final match score. They must sum to exactly 1.00; the
// weighted total is always derived from these four coefficients.
const (
	weightSkills     = 0.30
	weightExperience = 0.25
	weightLocation   = 0.25
	weightCompany    = 0.20
)

// FallbackScore is the neutral-positive score applied to every dimension when
// a job's scoring call fails.
const FallbackScore = 70

const fallbackExplanation = "Fallback score applied because detailed scoring was unavailable for this job."

// DimensionScore is a single 0-100 sub-score with its natural-language
// explanation.
type DimensionScore struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// MatchScore holds the four weighted sub-scores for one job.
type MatchScore struct {
	SkillsMatch     DimensionScore `json:"skills_match"`
	ExperienceMatch DimensionScore `json:"experience_match"`
	LocationMatch   DimensionScore `json:"location_match"`
	CompanyFit      DimensionScore `json:"company_fit"`
}

// Weighted combines the sub-scores into the final 0-100 match score, rounded
// to the nearest integer.
func (m *MatchScore) Weighted() int {
	total := weightSkills*float64(m.SkillsMatch.Score) +
		weightExperience*float64(m.ExperienceMatch.Score) +
		weightLocation*float64(m.LocationMatch.Score) +
		weightCompany*float64(m.CompanyFit.Score)

	return int(math.Round(total))
}

func (m *MatchScore) clamp() {
	for _, d := range []*DimensionScore{&m.SkillsMatch, &m.ExperienceMatch, &m.LocationMatch, &m.CompanyFit} {
		if d.Score < 0 {
			d.Score = 0
		}
		if d.Score > 100 {
			d.Score = 100
		}
	}
}

// Fallback returns the neutral score used when a scoring call fails. Its
// explanations say so; otherwise it is indistinguishable in shape from a
// genuine score.
func Fallback() *MatchScore {
	d := DimensionScore{Score: FallbackScore, Explanation: fallbackExplanation}
	return &MatchScore{
		SkillsMatch:     d,
		ExperienceMatch: d,
		LocationMatch:   d,
		CompanyFit:      d,
	}
}

// ScoredJob is a normalized job with its match score attached. The score is
// computed once and never recomputed.
type ScoredJob struct {
	jobs.Job
	MatchScore int         `json:"matchScore"`
	Details    *MatchScore `json:"matchDetails"`
}
