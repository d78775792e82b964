package extract

import (
	"github.com/PuerkitoBio/goquery"

	"bookapp/pkg/domain"
)

// millieExtractor parses the Millie bookstore bestseller list. The v3 site
// renders everything client-side and renames classes between releases, so
// item matching is deliberately loose: iterate list elements and keep the
// ones a title can be pulled out of.
type millieExtractor struct{}

func (e *millieExtractor) Source() domain.Source { return domain.SourceMillie }

func (e *millieExtractor) Extract(doc *goquery.Document) []Listing {
	listings := make([]Listing, 0, DefaultMaxListings)
	doc.Find("li").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if len(listings) >= DefaultMaxListings {
			return false
		}
		title := firstText(item, ".title", ".book-title", "p.title", "strong")
		if title == "" {
			return true
		}
		author := firstText(item, ".author", ".book-author", "p.author", "span.author")
		if author == "" {
			author = UnknownAuthor
		}
		listings = append(listings, Listing{
			Title:    title,
			Author:   author,
			Genre:    genreFallback,
			ImageURL: firstAttr(item, "src", "img"),
			Rank:     len(listings) + 1,
			Category: "베스트셀러",
		})
		return true
	})
	return listings
}
