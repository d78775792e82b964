package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bookapp/pkg/domain"
)

// kyoboExtractor parses the Kyobo Book Centre overall bestseller list.
type kyoboExtractor struct{}

func (e *kyoboExtractor) Source() domain.Source { return domain.SourceKyobo }

func (e *kyoboExtractor) Extract(doc *goquery.Document) []Listing {
	items := doc.Find("ul.list_type01 li.list_item")
	if items.Length() == 0 {
		items = doc.Find("ul.prod_list li.prod_item")
	}

	listings := make([]Listing, 0, DefaultMaxListings)
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if len(listings) >= DefaultMaxListings {
			return false
		}
		rank := i + 1
		title := firstText(item, ".title strong", ".prod_name", "a.prod_info")
		if title == "" {
			skipItem(domain.SourceKyobo, rank, "missing title")
			return true
		}
		author := firstText(item, ".author", ".prod_author", ".auth")
		if author == "" {
			author = UnknownAuthor
		} else {
			// "지음" suffixes the author name on kyobo listings.
			author = strings.TrimSpace(strings.Split(author, " 지음")[0])
		}
		listings = append(listings, Listing{
			Title:    title,
			Author:   author,
			Genre:    canonicalGenre(firstText(item, ".category", ".prod_category")),
			ImageURL: firstAttr(item, "src", "img"),
			Rank:     rank,
			Category: "종합 베스트셀러",
		})
		return true
	})
	return listings
}
