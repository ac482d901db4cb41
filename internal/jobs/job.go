package jobs

// Job sources. The same opening frequently appears on both platforms, which
// is why the dedup identity key deliberately ignores the source.
const (
	SourceLinkedIn = "LinkedIn"
	SourceIndeed   = "Indeed"
)

// Sources lists the fan-out order for retrieval. Dedup keeps the first
// occurrence of an opening, so this order decides which source wins.
var Sources = []string{SourceLinkedIn, SourceIndeed}

// RawPosting is one item as returned by a scraper actor. The two sources
// spell the same fields differently; the union of spellings lives here and
// Normalize picks the first populated one. Source is stamped by the fetcher,
// everything else comes from the dataset item.
type RawPosting struct {
	Title           string `json:"title,omitempty"`
	PositionName    string `json:"positionName,omitempty"`
	Name            string `json:"name,omitempty"`
	Company         string `json:"company,omitempty"`
	CompanyName     string `json:"companyName,omitempty"`
	Location        string `json:"location,omitempty"`
	Place           string `json:"place,omitempty"`
	Description     string `json:"description,omitempty"`
	JobDescription  string `json:"jobDescription,omitempty"`
	URL             string `json:"url,omitempty"`
	ApplyURL        string `json:"applyUrl,omitempty"`
	ApplicationLink string `json:"applicationLink,omitempty"`
	CompanyInfo     struct {
		CompanyDescription string `json:"companyDescription,omitempty"`
	} `json:"companyInfo,omitempty"`
	Source string `json:"source,omitempty"`
}

// Job is the canonical internal posting shape shared by every stage after
// normalization.
type Job struct {
	Position       string `json:"position"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	Description    string `json:"description"`
	ApplicationURL string `json:"applicationUrl"`
	Source         string `json:"source"`
}

// Incomplete reports whether the posting lacks the fields required to be
// useful downstream. Such postings are dropped during collection.
func (j Job) Incomplete() bool {
	return j.Position == "" || j.Company == ""
}
