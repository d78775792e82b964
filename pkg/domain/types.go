package domain

import "time"

// Source identifies one external bookstore whose bestseller page is crawled.
type Source string

const (
	SourceKyobo   Source = "kyobo"
	SourceAladdin Source = "aladdin"
	SourceMillie  Source = "millie"
)

// AllSources is the fixed crawl order for a full pass.
var AllSources = []Source{SourceKyobo, SourceAladdin, SourceMillie}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceKyobo, SourceAladdin, SourceMillie:
		return true
	}
	return false
}

type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunDone    RunStatus = "done"
	RunError   RunStatus = "error"
)

// CatalogEntry is the canonical, deduplicated book record. Identity is the
// exact (Title, Author) pair; the pipeline never deletes entries.
type CatalogEntry struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Genre       string     `json:"genre,omitempty"`
	Description string     `json:"description,omitempty"`
	CoverColor  string     `json:"coverColor"`
	Rating      *float64   `json:"rating,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	CrawledAt   *time.Time `json:"crawledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// RankingRecord is one timestamped (source, rank, category) observation for a
// catalog entry. Append-only: history is a time series, not current state.
type RankingRecord struct {
	ID       uint      `json:"id"`
	BookID   uint      `json:"bookId"`
	Source   Source    `json:"source"`
	Category string    `json:"category,omitempty"`
	Rank     int       `json:"rank"`
	RankedAt time.Time `json:"rankedAt"`
}

// RunRecord is the audit record of one pipeline execution against one source.
// It is created in the running state before any fetch work and makes exactly
// one transition to done or error.
type RunRecord struct {
	ID           uint       `json:"id"`
	Source       Source     `json:"source"`
	Status       RunStatus  `json:"status"`
	BooksFound   int        `json:"booksFound"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

// Listing is one normalized bestseller row, ready for upsert.
type Listing struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Genre       string   `json:"genre,omitempty"`
	Description string   `json:"description,omitempty"`
	CoverColor  string   `json:"coverColor,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Rank        int      `json:"rank"`
	Category    string   `json:"category,omitempty"`
}
