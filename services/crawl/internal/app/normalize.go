package app

import (
	"strings"

	"bookapp/pkg/domain"
	"bookapp/services/crawl/internal/extract"
)

// Per-source cover colors used as a display hint when a listing carries no
// cover art of its own.
var sourceColors = map[domain.Source]string{
	domain.SourceKyobo:   "#C4956A",
	domain.SourceMillie:  "#7BA08A",
	domain.SourceAladdin: "#5B8FA8",
}

const defaultCoverColor = "#5B8FA8"

// normalize maps a raw extracted listing into the canonical shape the upsert
// engine consumes. Pure: no I/O, malformed input passes through trimmed but
// otherwise unchanged. The full description is stored; display truncation
// is left to consumers.
func normalize(src domain.Source, raw extract.Listing) domain.Listing {
	color, ok := sourceColors[src]
	if !ok {
		color = defaultCoverColor
	}
	return domain.Listing{
		Title:       strings.TrimSpace(raw.Title),
		Author:      strings.TrimSpace(raw.Author),
		Genre:       strings.TrimSpace(raw.Genre),
		Description: strings.TrimSpace(raw.Description),
		CoverColor:  color,
		Rating:      raw.Rating,
		ImageURL:    strings.TrimSpace(raw.ImageURL),
		Rank:        raw.Rank,
		Category:    strings.TrimSpace(raw.Category),
	}
}
