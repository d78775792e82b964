// Package extract turns rendered bestseller pages into raw listing records,
// one extractor per bookstore. Extraction is tolerant by design: a broken
// item is skipped, a missing optional field stays empty, and each field is
// resolved through an ordered chain of selectors so minor markup drift does
// not zero out a whole run.
package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bookapp/pkg/domain"
)

// UnknownAuthor is recorded when a listing carries no author element. The
// title alone still identifies the book well enough for search.
const UnknownAuthor = "저자 미상"

// DefaultMaxListings bounds how many rows are taken from one page.
const DefaultMaxListings = 20

// Listing is one bestseller row as extracted, before normalization.
type Listing struct {
	Title       string
	Author      string
	Genre       string
	Description string
	Rating      *float64
	ImageURL    string
	Rank        int
	Category    string
}

// Extractor parses one source's rendered listing page.
type Extractor interface {
	Source() domain.Source
	Extract(doc *goquery.Document) []Listing
}

var registry = map[domain.Source]Extractor{
	domain.SourceKyobo:   &kyoboExtractor{},
	domain.SourceAladdin: &aladdinExtractor{},
	domain.SourceMillie:  &millieExtractor{},
}

// For returns the extractor registered for a source.
func For(src domain.Source) (Extractor, bool) {
	e, ok := registry[src]
	return e, ok
}

// genreMap folds site genre labels into the canonical vocabulary used by the
// catalog. Unmapped labels fall back to 종합.
var genreMap = map[string]string{
	"소설":   "소설",
	"자기계발": "자기계발",
	"경제":   "경제/경영",
	"경영":   "경제/경영",
	"역사":   "역사/문화",
	"과학":   "과학",
	"에세이":  "에세이",
	"시":    "시/에세이",
	"아동":   "아동",
	"청소년":  "청소년",
}

const genreFallback = "종합"

func canonicalGenre(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return genreFallback
	}
	if mapped, ok := genreMap[label]; ok {
		return mapped
	}
	return genreFallback
}

// firstText returns the trimmed text of the first selector in the chain that
// matches a non-empty element.
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		text := strings.TrimSpace(sel.Find(s).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// firstAttr returns the named attribute from the first selector in the chain
// that matches an element carrying it.
func firstAttr(sel *goquery.Selection, attr string, selectors ...string) string {
	for _, s := range selectors {
		if val, ok := sel.Find(s).First().Attr(attr); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

func skipItem(src domain.Source, rank int, reason string) {
	slog.Debug("listing item skipped", "source", string(src), "rank", rank, "reason", reason)
}
