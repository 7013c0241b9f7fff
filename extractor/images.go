package extractor

import "regexp"

// Patterns that disqualify an image candidate: SVG placeholders, spacer
// and tracking-pixel names, and known analytics/conversion-tracker hosts.
// This is a denylist; anything not matching passes.
var imageDenylist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.svg$`),
	regexp.MustCompile(`(?i)spacer|blank|pixel|1x1|tracking`),
	regexp.MustCompile(`(?i)facebook\.com/tr`),
	regexp.MustCompile(`(?i)google-analytics`),
	regexp.MustCompile(`(?i)googletagmanager`),
}

// ResolveImage resolves a candidate image URL against the page URL and
// validates it. Returns nil for an empty candidate or one matching the
// denylist. A candidate that fails URL resolution is checked as-is rather
// than failing the record.
func ResolveImage(candidate string, baseURL string) *string {
	if candidate == "" {
		return nil
	}

	full := resolveRef(candidate, baseURL)
	for _, re := range imageDenylist {
		if re.MatchString(full) {
			return nil
		}
	}
	return &full
}
