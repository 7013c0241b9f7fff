// Package normalizer turns loose user input into fetchable absolute URLs.
package normalizer

import (
	"regexp"
	"strings"
)

var (
	tldSuffixRe = regexp.MustCompile(`\.[a-z]{2,}$`)
	bareWordRe  = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	inputSepRe  = regexp.MustCompile(`[\n,]`)
)

// Normalize rewrites a raw string into an absolute URL. Rules are applied
// in order, first match wins:
//  1. empty after trimming -> ""
//  2. already http:// or https:// -> unchanged
//  3. www. prefix -> https:// prepended
//  4. TLD-like suffix (".io", ".com", ...) -> https://www. prepended
//  5. bare word without a dot -> wrapped as https://www.<word>.com
//  6. anything else -> https://www. prepended
//
// Pure string transform, no network access, never panics. The only input
// that yields "" is one that trims to empty.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return s
	case strings.HasPrefix(lower, "www."):
		return "https://" + s
	case tldSuffixRe.MatchString(lower):
		return "https://www." + s
	case bareWordRe.MatchString(s):
		return "https://www." + s + ".com"
	default:
		return "https://www." + s
	}
}

// SplitInput splits free-form user input on newlines and commas,
// trimming each entry and dropping empties.
func SplitInput(raw string) []string {
	var out []string
	for _, part := range inputSepRe.Split(raw, -1) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
