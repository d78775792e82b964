package app

import (
	"testing"

	"bookapp/pkg/domain"
	"bookapp/services/crawl/internal/extract"
)

func TestNormalizeAppliesSourceCoverColor(t *testing.T) {
	cases := []struct {
		src  domain.Source
		want string
	}{
		{domain.SourceKyobo, "#C4956A"},
		{domain.SourceMillie, "#7BA08A"},
		{domain.SourceAladdin, "#5B8FA8"},
	}
	for _, c := range cases {
		got := normalize(c.src, extract.Listing{Title: "t", Author: "a", Rank: 1})
		if got.CoverColor != c.want {
			t.Fatalf("%s cover color = %q, want %q", c.src, got.CoverColor, c.want)
		}
	}
}

func TestNormalizeTrimsAndPassesFieldsThrough(t *testing.T) {
	rating := 4.1
	got := normalize(domain.SourceAladdin, extract.Listing{
		Title:       "  트렌드 코리아 2026 ",
		Author:      " 김난도",
		Genre:       "경제/경영 ",
		Description: " 긴 설명 전체가 그대로 저장된다 ",
		Rating:      &rating,
		ImageURL:    " https://img.aladin/2.jpg ",
		Rank:        7,
		Category:    "주간 베스트",
	})

	if got.Title != "트렌드 코리아 2026" || got.Author != "김난도" {
		t.Fatalf("identity fields not trimmed: %+v", got)
	}
	if got.Description != "긴 설명 전체가 그대로 저장된다" {
		t.Fatalf("description = %q, want full text stored", got.Description)
	}
	if got.Rating == nil || *got.Rating != 4.1 {
		t.Fatalf("rating = %v", got.Rating)
	}
	if got.Rank != 7 || got.Category != "주간 베스트" {
		t.Fatalf("rank/category = %d/%q", got.Rank, got.Category)
	}
}
