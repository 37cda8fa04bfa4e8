package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"school_journal/internal/common"
	"school_journal/internal/domain/model"
	"school_journal/internal/domain/repository"
	"school_journal/internal/platform/cache"
)

type JournalService struct {
	journalRepo repository.JournalRepository
	db          *sql.DB // for transactions
	feedCache   *cache.FeedCache
	log         *zap.Logger
}

func NewJournalService(journalRepo repository.JournalRepository, db *sql.DB, feedCache *cache.FeedCache, log *zap.Logger) *JournalService {
	return &JournalService{
		journalRepo: journalRepo,
		db:          db,
		feedCache:   feedCache,
		log:         log,
	}
}

type CreateJournalRequest struct {
	Description string
	PublishedAt *time.Time
	StudentIDs  []string
	Attachment  *model.Attachment
}

// Create inserts the journal row and its student assignments in one
// transaction: a failed assignment insert rolls the journal back too.
func (s *JournalService) Create(ctx context.Context, creatorID string, req CreateJournalRequest) (string, error) {
	journal := &model.Journal{
		ID:          uuid.NewString(),
		Description: req.Description,
		PublishedAt: req.PublishedAt,
		CreatedByID: creatorID,
	}
	if req.Attachment != nil {
		journal.AttachmentType = &req.Attachment.Type
		journal.AttachmentPath = &req.Attachment.Path
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // rollback if not committed

	if err := s.journalRepo.Create(ctx, tx, journal); err != nil {
		return "", common.Errorf("failed to create journal: %w", err)
	}
	if len(req.StudentIDs) > 0 {
		if err := s.journalRepo.AddStudents(ctx, tx, journal.ID, req.StudentIDs); err != nil {
			return "", common.Errorf("failed to assign students: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", common.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateFeed(ctx, creatorID)
	return journal.ID, nil
}

// Update touches only description and published_at, scoped to the
// creator. Zero affected rows (unknown id or someone else's journal)
// is success: the caller cannot tell the two apart.
func (s *JournalService) Update(ctx context.Context, id, creatorID, description string, publishedAt *time.Time) error {
	affected, err := s.journalRepo.Update(ctx, id, creatorID, description, publishedAt)
	if err != nil {
		return common.Errorf("failed to update journal: %w", err)
	}
	if affected == 0 {
		s.log.Debug("journal update affected no rows", zap.String("journal_id", id), zap.String("creator_id", creatorID))
	}
	s.invalidateFeed(ctx, creatorID)
	return nil
}

func (s *JournalService) Delete(ctx context.Context, id, creatorID string) error {
	affected, err := s.journalRepo.Delete(ctx, id, creatorID)
	if err != nil {
		return common.Errorf("failed to delete journal: %w", err)
	}
	if affected == 0 {
		s.log.Debug("journal delete affected no rows", zap.String("journal_id", id), zap.String("creator_id", creatorID))
	}
	s.invalidateFeed(ctx, creatorID)
	return nil
}

// Publish flips is_published unconditionally: a journal already
// published, or with published_at still in the future, is accepted.
func (s *JournalService) Publish(ctx context.Context, id, creatorID string) error {
	affected, err := s.journalRepo.Publish(ctx, id, creatorID)
	if err != nil {
		return common.Errorf("failed to publish journal: %w", err)
	}
	if affected == 0 {
		s.log.Debug("journal publish affected no rows", zap.String("journal_id", id), zap.String("creator_id", creatorID))
	}
	s.invalidateFeed(ctx, creatorID)
	return nil
}

// Feed returns every journal the caller created when the caller is a
// teacher, and otherwise the assigned journals that are published with
// published_at in the past. Visibility is computed against the clock
// at query time, so a future-dated journal shows up on its own once
// the time passes.
func (s *JournalService) Feed(ctx context.Context, userID, role string) ([]model.Journal, error) {
	if role == model.RoleTeacher {
		if s.feedCache != nil {
			if journals, ok := s.feedCache.Get(ctx, userID); ok {
				return journals, nil
			}
		}
		journals, err := s.journalRepo.ListByCreator(ctx, userID)
		if err != nil {
			return nil, common.Errorf("failed to load teacher feed: %w", err)
		}
		if s.feedCache != nil {
			if err := s.feedCache.Set(ctx, userID, journals); err != nil {
				s.log.Warn("failed to cache teacher feed", zap.Error(err))
			}
		}
		return journals, nil
	}

	journals, err := s.journalRepo.ListVisibleToStudent(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, common.Errorf("failed to load student feed: %w", err)
	}
	return journals, nil
}

func (s *JournalService) invalidateFeed(ctx context.Context, creatorID string) {
	if s.feedCache == nil {
		return
	}
	if err := s.feedCache.Invalidate(ctx, creatorID); err != nil {
		s.log.Warn("failed to invalidate feed cache", zap.Error(err), zap.String("creator_id", creatorID))
	}
}
