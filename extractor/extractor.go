// Package extractor builds metadata records from raw HTML using ordered
// fallback chains over OpenGraph properties, twitter/meta tags and
// document structure.
package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/linkpeek/linkpeek/types"
	"go.uber.org/zap"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 300
	paragraphSnippet  = 200
)

// Extractor turns fetched HTML into a MetadataRecord. The selector-based
// document queries sit behind this interface so the parser library can be
// swapped without touching callers.
type Extractor interface {
	Extract(pageURL string, html string) types.MetadataRecord
}

type htmlExtractor struct{}

// New creates the goquery/opengraph-backed extractor.
func New() Extractor {
	return &htmlExtractor{}
}

// Extract is a pure transform over already-fetched HTML. Malformed markup
// degrades to field defaults, it never fails the record.
func (e *htmlExtractor) Extract(pageURL string, html string) types.MetadataRecord {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(strings.NewReader(html)); err != nil {
		zap.S().Debugw("opengraph parse failed, relying on selector fallbacks",
			"url", pageURL, "error", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		zap.S().Warnw("document parse failed, extracting with defaults",
			"url", pageURL, "error", err)
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}

	title := firstNonEmpty(
		og.Title,
		metaContent(doc, `meta[name="twitter:title"]`, `meta[name="title"]`),
		elementText(doc, "title"),
		elementText(doc, "h1"),
	)
	if title == "" {
		title = "No title found"
	}

	description := firstNonEmpty(
		og.Description,
		metaContent(doc, `meta[name="twitter:description"]`, `meta[name="description"]`),
		truncate(elementText(doc, "p"), paragraphSnippet),
	)

	image := ResolveImage(imageCandidate(og, doc), pageURL)

	siteName := firstNonEmpty(og.SiteName, metaContent(doc, `meta[name="application-name"]`))
	if siteName == "" {
		siteName = hostName(pageURL)
	}

	favicon := resolveRef(faviconCandidate(doc), pageURL)

	pageType := og.Type
	if pageType == "" {
		pageType = "website"
	}

	return types.MetadataRecord{
		URL:         pageURL,
		Title:       truncateEllipsis(title, maxTitleLen),
		Description: truncateEllipsis(description, maxDescriptionLen),
		Image:       image,
		SiteName:    siteName,
		Favicon:     &favicon,
		Type:        pageType,
		Success:     true,
	}
}

// imageCandidate picks the raw image source before resolution/validation:
// og:image, then twitter meta tags, then the first in-document <img> whose
// src mentions neither "logo" nor "icon".
func imageCandidate(og *opengraph.OpenGraph, doc *goquery.Document) string {
	if len(og.Images) > 0 && og.Images[0].URL != "" {
		return og.Images[0].URL
	}
	if src := metaContent(doc, `meta[name="twitter:image"]`, `meta[name="twitter:image:src"]`); src != "" {
		return src
	}

	candidate := ""
	doc.Find("img").EachWithBreak(func(i int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src != "" && !strings.Contains(src, "logo") && !strings.Contains(src, "icon") {
			candidate = src
			return false
		}
		return true
	})
	return candidate
}

// faviconCandidate returns the favicon href with the conventional default.
func faviconCandidate(doc *goquery.Document) string {
	href := strings.TrimSpace(doc.Find(`link[rel="icon"]`).First().AttrOr("href", ""))
	if href == "" {
		href = strings.TrimSpace(doc.Find(`link[rel="shortcut icon"]`).First().AttrOr("href", ""))
	}
	if href == "" {
		href = "/favicon.ico"
	}
	return href
}

// metaContent returns the first non-empty content attribute among the
// given selectors, in priority order.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v := strings.TrimSpace(doc.Find(sel).First().AttrOr("content", "")); v != "" {
			return v
		}
	}
	return ""
}

// elementText returns the trimmed text of the first matching element.
func elementText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// hostName extracts the hostname of a URL with any leading "www." removed.
func hostName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// resolveRef resolves ref against base. Resolution never fails the record:
// on parse failure the input is returned unchanged.
func resolveRef(ref string, base string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	resolved, err := baseURL.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}

// truncate cuts s to at most n runes, no marker.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// truncateEllipsis cuts s to n runes plus a trailing "...".
func truncateEllipsis(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
