package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookapp/pkg/domain"
)

const migrateLockID int64 = 52180418

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&BookModel{}, &BookRankingModel{}, &CrawlRunModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// GetEntryByIdentity looks up a catalog entry by exact (title, author).
func (s *GormStore) GetEntryByIdentity(title, author string) (domain.CatalogEntry, bool, error) {
	var model BookModel
	if err := s.db.Where("title = ? AND author = ?", title, author).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.CatalogEntry{}, false, nil
		}
		return domain.CatalogEntry{}, false, err
	}
	return entryFromModel(model), true, nil
}

// ListEntries returns all catalog entries ordered by created_at.
func (s *GormStore) ListEntries() ([]domain.CatalogEntry, error) {
	var models []BookModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.CatalogEntry, 0, len(models))
	for _, m := range models {
		res = append(res, entryFromModel(m))
	}
	return res, nil
}

// EntryCount returns the number of catalog entries.
func (s *GormStore) EntryCount() (int64, error) {
	var count int64
	if err := s.db.Model(&BookModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListRankingsByEntry returns ranking history for one entry, newest first.
func (s *GormStore) ListRankingsByEntry(bookID uint) ([]domain.RankingRecord, error) {
	var models []BookRankingModel
	if err := s.db.Where("book_id = ?", bookID).Order("ranked_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.RankingRecord, 0, len(models))
	for _, m := range models {
		res = append(res, rankingFromModel(m))
	}
	return res, nil
}

// IngestListings upserts a run's listings and appends their rankings in one
// transaction. The entry write always lands before its ranking write.
func (s *GormStore) IngestListings(source domain.Source, listings []domain.Listing, observedAt time.Time) (int, error) {
	saved := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, listing := range listings {
			var model BookModel
			err := tx.Where("title = ? AND author = ?", listing.Title, listing.Author).First(&model).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				model = entryToModel(domain.NewEntry(listing, observedAt))
				if err := tx.Create(&model).Error; err != nil {
					return fmt.Errorf("create entry %q: %w", listing.Title, err)
				}
			case err != nil:
				return fmt.Errorf("find entry %q: %w", listing.Title, err)
			default:
				merged := domain.MergeEntry(entryFromModel(model), listing, observedAt)
				updated := entryToModel(merged)
				updated.ID = model.ID
				if err := tx.Model(&BookModel{}).Where("id = ?", model.ID).Updates(map[string]any{
					"description": updated.Description,
					"rating":      updated.Rating,
					"crawled_at":  updated.CrawledAt,
					"updated_at":  time.Now().UTC(),
				}).Error; err != nil {
					return fmt.Errorf("update entry %q: %w", listing.Title, err)
				}
				model = updated
			}
			ranking := BookRankingModel{
				BookID:   model.ID,
				Source:   string(source),
				Category: listing.Category,
				Rank:     listing.Rank,
				RankedAt: observedAt,
			}
			if err := tx.Create(&ranking).Error; err != nil {
				return fmt.Errorf("append ranking for %q: %w", listing.Title, err)
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

// CreateRun persists a new run record and returns it with its assigned ID.
func (s *GormStore) CreateRun(run domain.RunRecord) (domain.RunRecord, error) {
	model := runToModel(run)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.RunRecord{}, err
	}
	return runFromModel(model), nil
}

// FinishRun applies the single terminal transition of a run.
func (s *GormStore) FinishRun(id uint, status domain.RunStatus, booksFound int, errMsg string, finishedAt time.Time) error {
	return s.db.Model(&CrawlRunModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        string(status),
			"books_found":   booksFound,
			"error_message": errMsg,
			"finished_at":   finishedAt.UTC(),
		}).Error
}

// ListRecentRuns returns run records, most recent first.
func (s *GormStore) ListRecentRuns(limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []CrawlRunModel
	if err := s.db.Order("started_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.RunRecord, 0, len(models))
	for _, m := range models {
		res = append(res, runFromModel(m))
	}
	return res, nil
}

// SweepOrphanedRuns errors out runs a dead process left in the running state.
func (s *GormStore) SweepOrphanedRuns(startedBefore time.Time) (int64, error) {
	res := s.db.Model(&CrawlRunModel{}).
		Where("status = ? AND started_at < ?", string(domain.RunRunning), startedBefore).
		Updates(map[string]any{
			"status":        string(domain.RunError),
			"error_message": "abandoned: process terminated before completion",
			"finished_at":   time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func entryToModel(e domain.CatalogEntry) BookModel {
	return BookModel{
		ID:          e.ID,
		Title:       e.Title,
		Author:      e.Author,
		Genre:       e.Genre,
		Description: e.Description,
		CoverColor:  e.CoverColor,
		Rating:      e.Rating,
		ImageURL:    e.ImageURL,
		CrawledAt:   e.CrawledAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func entryFromModel(m BookModel) domain.CatalogEntry {
	return domain.CatalogEntry{
		ID:          m.ID,
		Title:       m.Title,
		Author:      m.Author,
		Genre:       m.Genre,
		Description: m.Description,
		CoverColor:  m.CoverColor,
		Rating:      m.Rating,
		ImageURL:    m.ImageURL,
		CrawledAt:   m.CrawledAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func rankingFromModel(m BookRankingModel) domain.RankingRecord {
	return domain.RankingRecord{
		ID:       m.ID,
		BookID:   m.BookID,
		Source:   domain.Source(m.Source),
		Category: m.Category,
		Rank:     m.Rank,
		RankedAt: m.RankedAt,
	}
}

func runToModel(r domain.RunRecord) CrawlRunModel {
	return CrawlRunModel{
		ID:           r.ID,
		Source:       string(r.Source),
		Status:       string(r.Status),
		BooksFound:   r.BooksFound,
		ErrorMessage: r.ErrorMessage,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
	}
}

func runFromModel(m CrawlRunModel) domain.RunRecord {
	return domain.RunRecord{
		ID:           m.ID,
		Source:       domain.Source(m.Source),
		Status:       domain.RunStatus(m.Status),
		BooksFound:   m.BooksFound,
		ErrorMessage: m.ErrorMessage,
		StartedAt:    m.StartedAt,
		FinishedAt:   m.FinishedAt,
	}
}
