package probe

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
)

// Classify runs the markup checks on a fetched page. Checks short-circuit in
// order: noindex, link presence, then the rel attribute of the first match.
func Classify(doc *goquery.Document, reference string) domain.Status {
	// Any meta element counts, not only name="robots".
	if doc.Find(`meta[content*="noindex"]`).Length() > 0 {
		return domain.Noindex
	}

	key := ReferenceKey(reference)
	anchor := doc.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		return strings.Contains(href, key)
	}).First()
	if anchor.Length() == 0 {
		return domain.LinkNotFound
	}

	if rel, ok := anchor.Attr("rel"); ok && hasToken(rel, "nofollow") {
		return domain.LinkFoundNofollow
	}
	return domain.LinkFoundDofollow
}

// ReferenceKey is the substring looked for in anchor hrefs: the reference URL
// with a leading "https:" and any trailing slashes removed. An "http:" prefix
// is left in place.
func ReferenceKey(reference string) string {
	return strings.TrimRight(strings.TrimPrefix(strings.TrimSpace(reference), "https:"), "/")
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}
