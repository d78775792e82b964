package store

import (
	"time"

	"bookapp/pkg/domain"
)

// Store defines persistence operations for the bestseller catalog and the
// crawl run audit log.
type Store interface {
	// catalog
	GetEntryByIdentity(title, author string) (domain.CatalogEntry, bool, error)
	ListEntries() ([]domain.CatalogEntry, error)
	EntryCount() (int64, error)
	ListRankingsByEntry(bookID uint) ([]domain.RankingRecord, error)

	// IngestListings resolves each listing against the catalog by
	// (title, author), creates or merges the entry, and appends one ranking
	// record per listing. The whole batch commits or rolls back as one
	// transaction; the returned count is the number of rankings written.
	IngestListings(source domain.Source, listings []domain.Listing, observedAt time.Time) (int, error)

	// runs
	CreateRun(run domain.RunRecord) (domain.RunRecord, error)
	FinishRun(id uint, status domain.RunStatus, booksFound int, errMsg string, finishedAt time.Time) error
	ListRecentRuns(limit int) ([]domain.RunRecord, error)

	// SweepOrphanedRuns marks runs still flagged running from a previous
	// process life as errored. Returns the number of runs swept.
	SweepOrphanedRuns(startedBefore time.Time) (int64, error)
}
