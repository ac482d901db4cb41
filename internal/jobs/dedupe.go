package jobs

import "strings"

// Deduplicate collapses postings that refer to the same real opening across
// sources. The first occurrence of an identity key wins and input order is
// preserved, so output is deterministic for a fixed retrieval order.
func Deduplicate(list []Job) []Job {
	seen := make(map[string]struct{}, len(list))
	result := make([]Job, 0, len(list))

	for _, job := range list {
		key := identityKey(job)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, job)
	}

	return result
}

// identityKey builds the case-insensitive (position, company, location)
// composite. The source is not part of the key: cross-platform postings for
// the same role must collide.
func identityKey(j Job) string {
	parts := []string{j.Position, j.Company, j.Location}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}
