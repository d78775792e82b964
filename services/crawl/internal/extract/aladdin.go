package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bookapp/pkg/domain"
)

// aladdinExtractor parses the Aladin weekly bestseller page. Aladin is the
// only source that exposes ratings and blurbs on the list page itself.
type aladdinExtractor struct{}

func (e *aladdinExtractor) Source() domain.Source { return domain.SourceAladdin }

func (e *aladdinExtractor) Extract(doc *goquery.Document) []Listing {
	items := doc.Find("div.ss_book_box")

	listings := make([]Listing, 0, DefaultMaxListings)
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if len(listings) >= DefaultMaxListings {
			return false
		}
		rank := i + 1
		title := firstText(item, "a.bo3", ".ss_book_list a.bo3", "b.bo3")
		if title == "" {
			skipItem(domain.SourceAladdin, rank, "missing title")
			return true
		}
		author := firstText(item, "span.ss_f_g2_3", "li > a.nbo1")
		if author == "" {
			author = UnknownAuthor
		} else {
			// The author span also carries publisher and date after a pipe.
			author = strings.TrimSpace(strings.Split(author, " |")[0])
		}
		listings = append(listings, Listing{
			Title:       title,
			Author:      author,
			Genre:       genreFallback,
			Description: firstText(item, "div.ss_f_g2_2", ".ss_book_list .ss_f_g2"),
			Rating:      parseRating(firstText(item, "span.CoverStarBasic", "span.star_score")),
			ImageURL:    firstAttr(item, "src", "img"),
			Rank:        rank,
			Category:    "주간 베스트",
		})
		return true
	})
	return listings
}

func parseRating(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	rating, err := strconv.ParseFloat(text, 64)
	if err != nil || rating < 0 || rating > 5 {
		return nil
	}
	return &rating
}
