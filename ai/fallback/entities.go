package fallback

import "regexp"

// Entity extraction patterns. Deliberately shallow; they trade recall
// for zero dependencies and full determinism.
var (
	peoplePattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
	orgPattern    = regexp.MustCompile(`\b[A-Z][a-zA-Z ]+ (?:Inc|Corp|LLC|Ltd|Company|Corporation|Group|Partners)\b`)
	datePattern   = regexp.MustCompile(`\b(?:\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}[/-]\d{1,2}[/-]\d{1,2}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4})\b`)
	moneyPattern  = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d{2})?(?:\s*(?:million|billion|thousand))?|\b\d+(?:\.\d+)?\s*(?:million|billion|thousand)\b`)
	pctPattern    = regexp.MustCompile(`\d+(?:\.\d+)?%`)
	techPattern   = regexp.MustCompile(`(?i)\b(?:Python|Java|JavaScript|Go|React|Angular|Vue|Docker|Kubernetes|AWS|Azure|GCP|SQL|NoSQL|API|REST|GraphQL)\b`)
)

const maxEntitiesPerKind = 10

// uniqueMatches returns the first maxEntitiesPerKind distinct matches
// in document order. Document order keeps the output deterministic.
func uniqueMatches(pattern *regexp.Regexp, text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range pattern.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if len(out) == maxEntitiesPerKind {
			break
		}
	}
	return out
}
