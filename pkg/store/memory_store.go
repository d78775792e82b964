package store

import (
	"sort"
	"sync"
	"time"

	"bookapp/pkg/domain"
)

// MemoryStore keeps catalog and run state in-process. Used by tests and as a
// stand-in when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[uint]domain.CatalogEntry
	identity map[[2]string]uint // (title, author) -> entry ID
	rankings []domain.RankingRecord
	runs     map[uint]domain.RunRecord

	nextEntryID   uint
	nextRankingID uint
	nextRunID     uint
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[uint]domain.CatalogEntry),
		identity: make(map[[2]string]uint),
		runs:     make(map[uint]domain.RunRecord),
	}
}

// GetEntryByIdentity looks up an entry by exact (title, author).
func (m *MemoryStore) GetEntryByIdentity(title, author string) (domain.CatalogEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.identity[[2]string{title, author}]
	if !ok {
		return domain.CatalogEntry{}, false, nil
	}
	return m.entries[id], true, nil
}

// ListEntries returns entries ordered by ID (insertion order).
func (m *MemoryStore) ListEntries() ([]domain.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.CatalogEntry, 0, len(m.entries))
	for _, e := range m.entries {
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// EntryCount returns the number of entries.
func (m *MemoryStore) EntryCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.entries)), nil
}

// ListRankingsByEntry returns rankings for an entry, newest first.
func (m *MemoryStore) ListRankingsByEntry(bookID uint) ([]domain.RankingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.RankingRecord
	for _, r := range m.rankings {
		if r.BookID == bookID {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].RankedAt.After(res[j].RankedAt) })
	return res, nil
}

// RankingCount returns the total number of ranking records.
func (m *MemoryStore) RankingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rankings)
}

// IngestListings applies the batch to staged copies and swaps them in only
// when every listing lands, matching the transactional all-or-nothing
// behavior of the database store.
func (m *MemoryStore) IngestListings(source domain.Source, listings []domain.Listing, observedAt time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stagedEntries := make(map[uint]domain.CatalogEntry, len(m.entries))
	for id, e := range m.entries {
		stagedEntries[id] = e
	}
	stagedIdentity := make(map[[2]string]uint, len(m.identity))
	for k, v := range m.identity {
		stagedIdentity[k] = v
	}
	stagedRankings := append([]domain.RankingRecord(nil), m.rankings...)
	nextEntryID, nextRankingID := m.nextEntryID, m.nextRankingID

	saved := 0
	for _, listing := range listings {
		key := [2]string{listing.Title, listing.Author}
		id, ok := stagedIdentity[key]
		if !ok {
			nextEntryID++
			id = nextEntryID
			entry := domain.NewEntry(listing, observedAt)
			entry.ID = id
			entry.CreatedAt = observedAt
			entry.UpdatedAt = observedAt
			stagedEntries[id] = entry
			stagedIdentity[key] = id
		} else {
			merged := domain.MergeEntry(stagedEntries[id], listing, observedAt)
			merged.UpdatedAt = observedAt
			stagedEntries[id] = merged
		}
		nextRankingID++
		stagedRankings = append(stagedRankings, domain.RankingRecord{
			ID:       nextRankingID,
			BookID:   id,
			Source:   source,
			Category: listing.Category,
			Rank:     listing.Rank,
			RankedAt: observedAt,
		})
		saved++
	}

	m.entries = stagedEntries
	m.identity = stagedIdentity
	m.rankings = stagedRankings
	m.nextEntryID, m.nextRankingID = nextEntryID, nextRankingID
	return saved, nil
}

// CreateRun records a new run and assigns its ID.
func (m *MemoryStore) CreateRun(run domain.RunRecord) (domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRunID++
	run.ID = m.nextRunID
	m.runs[run.ID] = run
	return run, nil
}

// FinishRun applies the terminal transition of a run.
func (m *MemoryStore) FinishRun(id uint, status domain.RunStatus, booksFound int, errMsg string, finishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil
	}
	run.Status = status
	run.BooksFound = booksFound
	run.ErrorMessage = errMsg
	finished := finishedAt.UTC()
	run.FinishedAt = &finished
	m.runs[id] = run
	return nil
}

// ListRecentRuns returns runs, most recently started first.
func (m *MemoryStore) ListRecentRuns(limit int) ([]domain.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	res := make([]domain.RunRecord, 0, len(m.runs))
	for _, r := range m.runs {
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].StartedAt.Equal(res[j].StartedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].StartedAt.After(res[j].StartedAt)
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// SweepOrphanedRuns errors out stale running runs.
func (m *MemoryStore) SweepOrphanedRuns(startedBefore time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var swept int64
	now := time.Now().UTC()
	for id, run := range m.runs {
		if run.Status == domain.RunRunning && run.StartedAt.Before(startedBefore) {
			run.Status = domain.RunError
			run.ErrorMessage = "abandoned: process terminated before completion"
			finished := now
			run.FinishedAt = &finished
			m.runs[id] = run
			swept++
		}
	}
	return swept, nil
}
