package domain

import (
	"testing"
	"time"
)

func TestMergeEntryPreservesFieldsWhenListingIsSparse(t *testing.T) {
	rating := 4.5
	existing := CatalogEntry{
		Title:       "불편한 편의점",
		Author:      "김호연",
		Description: "골목의 작은 편의점에서 벌어지는 이야기",
		Rating:      &rating,
	}
	now := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	merged := MergeEntry(existing, Listing{Title: "불편한 편의점", Author: "김호연"}, now)

	if merged.Rating == nil || *merged.Rating != 4.5 {
		t.Fatalf("rating = %v, want 4.5 preserved", merged.Rating)
	}
	if merged.Description != existing.Description {
		t.Fatalf("description = %q, want preserved", merged.Description)
	}
	if merged.CrawledAt == nil || !merged.CrawledAt.Equal(now) {
		t.Fatalf("crawledAt = %v, want bumped to %v", merged.CrawledAt, now)
	}
}

func TestMergeEntryOverwritesSuppliedFields(t *testing.T) {
	oldRating := 3.0
	newRating := 4.8
	existing := CatalogEntry{Title: "t", Author: "a", Description: "old", Rating: &oldRating}

	merged := MergeEntry(existing, Listing{
		Title:       "t",
		Author:      "a",
		Description: "fresh description",
		Rating:      &newRating,
	}, time.Now())

	if merged.Description != "fresh description" {
		t.Fatalf("description = %q, want overwritten", merged.Description)
	}
	if merged.Rating == nil || *merged.Rating != 4.8 {
		t.Fatalf("rating = %v, want 4.8", merged.Rating)
	}
}

func TestSourceValid(t *testing.T) {
	for _, s := range AllSources {
		if !s.Valid() {
			t.Fatalf("source %q should be valid", s)
		}
	}
	if Source("yes24").Valid() {
		t.Fatal("unknown source should not be valid")
	}
}
