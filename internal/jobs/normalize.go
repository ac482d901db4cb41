package jobs

// MaxDescriptionLength bounds normalized descriptions to keep scoring
// prompts cheap and fast. Truncation is rune-safe but makes no attempt to
// preserve word boundaries.
const MaxDescriptionLength = 1000

// Normalize maps a raw posting into the canonical job shape. It is total:
// missing fields become empty strings, never an error.
func Normalize(raw RawPosting) Job {
	description := firstNonEmpty(raw.Description, raw.JobDescription, raw.CompanyInfo.CompanyDescription)

	return Job{
		Position:       firstNonEmpty(raw.Title, raw.PositionName, raw.Name),
		Company:        firstNonEmpty(raw.Company, raw.CompanyName),
		Location:       firstNonEmpty(raw.Location, raw.Place),
		Description:    truncate(description, MaxDescriptionLength),
		ApplicationURL: firstNonEmpty(raw.ApplyURL, raw.ApplicationLink, raw.URL),
		Source:         raw.Source,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
