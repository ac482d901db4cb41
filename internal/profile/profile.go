package profile

import "strings"

// Work mode preferences accepted by the search configuration.
const (
	WorkModeRemote = "Remote"
	WorkModeHybrid = "Hybrid"
	WorkModeOnSite = "On-site"
	WorkModeAny    = "Any"
)

// WorkModes lists every accepted work mode preference.
var WorkModes = []string{WorkModeRemote, WorkModeHybrid, WorkModeOnSite, WorkModeAny}

// Education describes the candidate's most relevant degree. Every field is
// optional; the extraction model leaves unknown fields empty.
type Education struct {
	Degree         string `json:"degree,omitempty"`
	Institution    string `json:"institution,omitempty"`
	Location       string `json:"location,omitempty"`
	GraduationDate string `json:"graduation_date,omitempty"`
}

// CandidateProfile is the structured summary extracted from the resume. It is
// created once per run and never mutated after extraction, except for the
// work mode preference which comes from the search configuration.
type CandidateProfile struct {
	DesiredRole        string     `json:"desired_role"`
	Skills             []string   `json:"skills"`
	YearsOfExperience  *float64   `json:"years_of_experience,omitempty"`
	Education          *Education `json:"education,omitempty"`
	LocationPreference string     `json:"location_preference"`
	WorkModePreference string     `json:"work_mode_preference"`
}

// SearchKeywords derives the job search keywords from the desired role. Roles
// written as "Backend Engineer | Platform" keep only the first segment.
func (p *CandidateProfile) SearchKeywords() string {
	role := strings.TrimSpace(p.DesiredRole)
	if idx := strings.Index(role, "|"); idx != -1 {
		role = strings.TrimSpace(role[:idx])
	}
	return strings.ToLower(role)
}

// ValidWorkMode reports whether the given preference is one of the accepted modes.
func ValidWorkMode(mode string) bool {
	for _, m := range WorkModes {
		if m == mode {
			return true
		}
	}
	return false
}
