package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"bookapp/pkg/domain"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestForCoversAllSources(t *testing.T) {
	for _, src := range domain.AllSources {
		e, ok := For(src)
		if !ok {
			t.Fatalf("no extractor registered for %q", src)
		}
		if e.Source() != src {
			t.Fatalf("extractor source = %q, want %q", e.Source(), src)
		}
	}
	if _, ok := For(domain.Source("yes24")); ok {
		t.Fatal("unexpected extractor for unknown source")
	}
}

func TestKyoboExtract(t *testing.T) {
	doc := docFromHTML(t, `
		<ul class="list_type01">
			<li class="list_item">
				<div class="title"><strong>세이노의 가르침</strong></div>
				<div class="author">세이노 지음</div>
				<div class="category">자기계발</div>
				<img src="https://img.kyobo/1.jpg"/>
			</li>
			<li class="list_item">
				<div class="title"><strong>불편한 편의점</strong></div>
				<div class="author">김호연 지음</div>
				<div class="category">소설</div>
			</li>
		</ul>`)

	listings := (&kyoboExtractor{}).Extract(doc)
	if len(listings) != 2 {
		t.Fatalf("len(listings) = %d, want 2", len(listings))
	}
	first := listings[0]
	if first.Title != "세이노의 가르침" || first.Author != "세이노" {
		t.Fatalf("first listing = %+v", first)
	}
	if first.Genre != "자기계발" {
		t.Fatalf("genre = %q, want mapped 자기계발", first.Genre)
	}
	if first.ImageURL != "https://img.kyobo/1.jpg" {
		t.Fatalf("imageURL = %q", first.ImageURL)
	}
	if first.Rank != 1 || listings[1].Rank != 2 {
		t.Fatalf("ranks = %d, %d; want 1, 2", first.Rank, listings[1].Rank)
	}
}

func TestKyoboExtractSkipsItemWithoutTitle(t *testing.T) {
	doc := docFromHTML(t, `
		<ul class="list_type01">
			<li class="list_item"><div class="author">익명 지음</div></li>
			<li class="list_item">
				<div class="title"><strong>역행자</strong></div>
				<div class="author">자청 지음</div>
			</li>
		</ul>`)

	listings := (&kyoboExtractor{}).Extract(doc)
	if len(listings) != 1 || listings[0].Title != "역행자" {
		t.Fatalf("listings = %+v, want only 역행자", listings)
	}
}

func TestKyoboExtractFallbackSelectors(t *testing.T) {
	// Primary list markup absent; redesigned prod_* classes still present.
	doc := docFromHTML(t, `
		<ul class="prod_list">
			<li class="prod_item">
				<div class="prod_name">도둑맞은 집중력</div>
				<div class="prod_author">요한 하리 지음</div>
			</li>
		</ul>`)

	listings := (&kyoboExtractor{}).Extract(doc)
	if len(listings) != 1 {
		t.Fatalf("len(listings) = %d, want 1 via fallback selectors", len(listings))
	}
	if listings[0].Title != "도둑맞은 집중력" {
		t.Fatalf("title = %q", listings[0].Title)
	}
	if listings[0].Author != "요한 하리" {
		t.Fatalf("author = %q", listings[0].Author)
	}
}

func TestKyoboExtractUnmappedGenreFallsBack(t *testing.T) {
	doc := docFromHTML(t, `
		<ul class="list_type01">
			<li class="list_item">
				<div class="title"><strong>어떤 책</strong></div>
				<div class="author">저자 지음</div>
				<div class="category">만화</div>
			</li>
		</ul>`)

	listings := (&kyoboExtractor{}).Extract(doc)
	if len(listings) != 1 || listings[0].Genre != "종합" {
		t.Fatalf("genre = %q, want 종합 fallback", listings[0].Genre)
	}
}

func TestAladdinExtract(t *testing.T) {
	doc := docFromHTML(t, `
		<div class="ss_book_box">
			<a class="bo3">트렌드 코리아 2026</a>
			<span class="ss_f_g2_3">김난도 | 미래의창 | 2025년 10월</span>
			<span class="CoverStarBasic">4.5</span>
			<div class="ss_f_g2_2">한 해의 소비 트렌드 전망</div>
			<img src="https://img.aladin/2.jpg"/>
		</div>
		<div class="ss_book_box">
			<a class="bo3">물고기는 존재하지 않는다</a>
			<span class="ss_f_g2_3">룰루 밀러 | 곰출판</span>
		</div>`)

	listings := (&aladdinExtractor{}).Extract(doc)
	if len(listings) != 2 {
		t.Fatalf("len(listings) = %d, want 2", len(listings))
	}
	first := listings[0]
	if first.Author != "김난도" {
		t.Fatalf("author = %q, want publisher stripped", first.Author)
	}
	if first.Rating == nil || *first.Rating != 4.5 {
		t.Fatalf("rating = %v, want 4.5", first.Rating)
	}
	if first.Description != "한 해의 소비 트렌드 전망" {
		t.Fatalf("description = %q", first.Description)
	}
	if listings[1].Rating != nil {
		t.Fatalf("second rating = %v, want nil when absent", listings[1].Rating)
	}
	if first.Category != "주간 베스트" {
		t.Fatalf("category = %q", first.Category)
	}
}

func TestParseRatingRejectsMalformed(t *testing.T) {
	cases := []string{"", "별점", "9.9", "-1"}
	for _, c := range cases {
		if got := parseRating(c); got != nil {
			t.Fatalf("parseRating(%q) = %v, want nil", c, got)
		}
	}
}

func TestMillieExtract(t *testing.T) {
	doc := docFromHTML(t, `
		<ul>
			<li><p class="title">달러구트 꿈 백화점</p><p class="author">이미예</p><img src="https://img.millie/3.jpg"/></li>
			<li><div class="nav">메뉴 항목</div></li>
			<li><strong>미드나잇 라이브러리</strong></li>
		</ul>`)

	listings := (&millieExtractor{}).Extract(doc)
	if len(listings) != 2 {
		t.Fatalf("len(listings) = %d, want 2 (nav item has no title)", len(listings))
	}
	if listings[0].Title != "달러구트 꿈 백화점" || listings[0].Author != "이미예" {
		t.Fatalf("first = %+v", listings[0])
	}
	// strong is the loosest title fallback.
	if listings[1].Title != "미드나잇 라이브러리" {
		t.Fatalf("title = %q, want fallback selector match", listings[1].Title)
	}
	if listings[1].Author != UnknownAuthor {
		t.Fatalf("author = %q, want sentinel for missing author", listings[1].Author)
	}
	// Ranks follow kept items, not raw DOM position.
	if listings[1].Rank != 2 {
		t.Fatalf("rank = %d, want 2", listings[1].Rank)
	}
}

func TestMillieExtractCapsListings(t *testing.T) {
	var b strings.Builder
	b.WriteString("<ul>")
	for i := 0; i < 30; i++ {
		b.WriteString(`<li><p class="title">책</p></li>`)
	}
	b.WriteString("</ul>")

	listings := (&millieExtractor{}).Extract(docFromHTML(t, b.String()))
	if len(listings) != DefaultMaxListings {
		t.Fatalf("len(listings) = %d, want cap %d", len(listings), DefaultMaxListings)
	}
}

func TestExtractEmptyDocumentYieldsNothing(t *testing.T) {
	doc := docFromHTML(t, "<html><body></body></html>")
	for _, src := range domain.AllSources {
		e, _ := For(src)
		if got := e.Extract(doc); len(got) != 0 {
			t.Fatalf("%s: extracted %d listings from empty page", src, len(got))
		}
	}
}
