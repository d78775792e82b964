package domain

import "time"

// NewEntry builds a catalog entry from a listing on first sighting.
func NewEntry(l Listing, now time.Time) CatalogEntry {
	crawled := now
	return CatalogEntry{
		Title:       l.Title,
		Author:      l.Author,
		Genre:       l.Genre,
		Description: l.Description,
		CoverColor:  l.CoverColor,
		Rating:      l.Rating,
		ImageURL:    l.ImageURL,
		CrawledAt:   &crawled,
	}
}

// MergeEntry folds a fresh listing into an existing entry. The crawl
// timestamp is always bumped; description and rating are overwritten only
// when the listing actually supplies them, so a sparse listing never blanks
// fields an earlier run filled in.
func MergeEntry(existing CatalogEntry, l Listing, now time.Time) CatalogEntry {
	crawled := now
	existing.CrawledAt = &crawled
	if l.Description != "" {
		existing.Description = l.Description
	}
	if l.Rating != nil {
		existing.Rating = l.Rating
	}
	return existing
}
