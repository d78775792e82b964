package store

import "time"

// GORM models used for persistence.
type BookModel struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:300;not null;uniqueIndex:idx_books_identity,priority:1"`
	Author      string `gorm:"size:200;not null;uniqueIndex:idx_books_identity,priority:2"`
	Genre       string `gorm:"size:100"`
	Description string `gorm:"type:text"`
	CoverColor  string `gorm:"size:20"`
	Rating      *float64
	ImageURL    string `gorm:"size:500"`
	CrawledAt   *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type BookRankingModel struct {
	ID       uint      `gorm:"primaryKey"`
	BookID   uint      `gorm:"not null;index;constraint:OnDelete:CASCADE"`
	Book     BookModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	Source   string    `gorm:"size:50;not null;index"`
	Category string    `gorm:"size:100"`
	Rank     int       `gorm:"not null"`
	RankedAt time.Time `gorm:"not null;index"`
}

type CrawlRunModel struct {
	ID           uint       `gorm:"primaryKey"`
	Source       string     `gorm:"size:50;not null"`
	Status       string     `gorm:"size:20;not null"`
	BooksFound   int        `gorm:"not null;default:0"`
	ErrorMessage string     `gorm:"type:text"`
	StartedAt    time.Time  `gorm:"not null;index"`
	FinishedAt   *time.Time
}
