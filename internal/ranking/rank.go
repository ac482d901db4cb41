// Package ranking orders scored jobs and summarizes a search run.
package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/scoring"
)

const (
	// TopResults is how many of the highest-scoring jobs a run returns.
	TopResults = 10
	// TopSkills is how many in-demand skills the statistics report.
	TopSkills = 5
)

// Statistics summarizes a completed search run. TopSkillsRequested lists the
// skill names only, most demanded first.
type Statistics struct {
	TotalJobsFound     int      `json:"totalJobsFound"`
	AverageMatchScore  float64  `json:"averageMatchScore"`
	TopSkillsRequested []string `json:"topSkillsRequested"`
	Timestamp          string   `json:"timestamp"`
}

// Rank returns the top results sorted by match score, highest first. The sort
// is stable so jobs with equal scores keep their collection order. The input
// slice is left untouched.
func Rank(scored []*scoring.ScoredJob) []*scoring.ScoredJob {
	ranked := make([]*scoring.ScoredJob, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	if len(ranked) > TopResults {
		ranked = ranked[:TopResults]
	}

	return ranked
}

// Aggregate computes run statistics over every scored job, not only the
// returned top slice. Skill demand counts case-insensitive substring
// occurrences of each profile skill across job descriptions; ties keep the
// profile's skill order.
func Aggregate(scored []*scoring.ScoredJob, skills []string) *Statistics {
	stats := &Statistics{
		TotalJobsFound:     len(scored),
		TopSkillsRequested: topSkills(scored, skills),
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
	}

	if len(scored) > 0 {
		sum := 0
		for _, s := range scored {
			sum += s.MatchScore
		}
		avg := float64(sum) / float64(len(scored))
		stats.AverageMatchScore = math.Round(avg*10) / 10
	}

	return stats
}

type skillCount struct {
	skill string
	count int
}

func topSkills(scored []*scoring.ScoredJob, skills []string) []string {
	descriptions := make([]string, 0, len(scored))
	for _, s := range scored {
		descriptions = append(descriptions, strings.ToLower(s.Description))
	}

	counts := make([]skillCount, 0, len(skills))
	for _, skill := range skills {
		needle := strings.ToLower(strings.TrimSpace(skill))
		if needle == "" {
			continue
		}

		n := 0
		for _, desc := range descriptions {
			if strings.Contains(desc, needle) {
				n++
			}
		}
		if n > 0 {
			counts = append(counts, skillCount{skill: skill, count: n})
		}
	}

	// Stable keeps the profile's skill order for equal counts.
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	if len(counts) > TopSkills {
		counts = counts[:TopSkills]
	}

	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.skill
	}

	return names
}
