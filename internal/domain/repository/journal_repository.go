package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"school_journal/internal/domain/model"
)

// JournalRepository persists journals and their student assignments.
// Mutating operations are scoped to (id, creator) in a single statement
// and return the affected-row count: an id owned by someone else
// affects zero rows and is not an error.
type JournalRepository interface {
	Create(ctx context.Context, tx *sql.Tx, journal *model.Journal) error
	AddStudents(ctx context.Context, tx *sql.Tx, journalID string, studentIDs []string) error
	Update(ctx context.Context, id, creatorID, description string, publishedAt *time.Time) (int64, error)
	Delete(ctx context.Context, id, creatorID string) (int64, error)
	Publish(ctx context.Context, id, creatorID string) (int64, error)
	ListByCreator(ctx context.Context, creatorID string) ([]model.Journal, error)
	ListVisibleToStudent(ctx context.Context, studentID string, now time.Time) ([]model.Journal, error)
}

type pgJournalRepository struct {
	db *sql.DB
}

func NewPgJournalRepository(db *sql.DB) JournalRepository {
	return &pgJournalRepository{db: db}
}

func (r *pgJournalRepository) Create(ctx context.Context, tx *sql.Tx, j *model.Journal) error {
	query := `INSERT INTO journals (id, description, attachment_type, attachment_path, published_at, created_by, is_published)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, j.ID, j.Description, j.AttachmentType, j.AttachmentPath, j.PublishedAt, j.CreatedByID, j.IsPublished)
	} else {
		_, err = r.db.ExecContext(ctx, query, j.ID, j.Description, j.AttachmentType, j.AttachmentPath, j.PublishedAt, j.CreatedByID, j.IsPublished)
	}
	if err != nil {
		return fmt.Errorf("pgJournalRepository.Create: %w", err)
	}
	return nil
}

func (r *pgJournalRepository) AddStudents(ctx context.Context, tx *sql.Tx, journalID string, studentIDs []string) error {
	query := `INSERT INTO journal_students (journal_id, student_id) VALUES ($1, $2)`

	for _, studentID := range studentIDs {
		var err error
		if tx != nil {
			_, err = tx.ExecContext(ctx, query, journalID, studentID)
		} else {
			_, err = r.db.ExecContext(ctx, query, journalID, studentID)
		}
		if err != nil {
			return fmt.Errorf("pgJournalRepository.AddStudents: %w", err)
		}
	}
	return nil
}

func (r *pgJournalRepository) Update(ctx context.Context, id, creatorID, description string, publishedAt *time.Time) (int64, error) {
	query := `UPDATE journals SET description = $1, published_at = $2, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3 AND created_by = $4`
	res, err := r.db.ExecContext(ctx, query, description, publishedAt, id, creatorID)
	if err != nil {
		return 0, fmt.Errorf("pgJournalRepository.Update: %w", err)
	}
	return res.RowsAffected()
}

func (r *pgJournalRepository) Delete(ctx context.Context, id, creatorID string) (int64, error) {
	query := `DELETE FROM journals WHERE id = $1 AND created_by = $2`
	res, err := r.db.ExecContext(ctx, query, id, creatorID)
	if err != nil {
		return 0, fmt.Errorf("pgJournalRepository.Delete: %w", err)
	}
	return res.RowsAffected()
}

func (r *pgJournalRepository) Publish(ctx context.Context, id, creatorID string) (int64, error) {
	query := `UPDATE journals SET is_published = TRUE, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 AND created_by = $2`
	res, err := r.db.ExecContext(ctx, query, id, creatorID)
	if err != nil {
		return 0, fmt.Errorf("pgJournalRepository.Publish: %w", err)
	}
	return res.RowsAffected()
}

func (r *pgJournalRepository) ListByCreator(ctx context.Context, creatorID string) ([]model.Journal, error) {
	query := `SELECT id, description, attachment_type, attachment_path, published_at, created_by, is_published, created_at, updated_at
	          FROM journals WHERE created_by = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("pgJournalRepository.ListByCreator: %w", err)
	}
	defer rows.Close()
	return scanJournals(rows)
}

func (r *pgJournalRepository) ListVisibleToStudent(ctx context.Context, studentID string, now time.Time) ([]model.Journal, error) {
	query := `SELECT j.id, j.description, j.attachment_type, j.attachment_path, j.published_at, j.created_by, j.is_published, j.created_at, j.updated_at
	          FROM journals j
	          JOIN journal_students js ON js.journal_id = j.id
	          WHERE js.student_id = $1 AND j.is_published = TRUE AND j.published_at <= $2
	          ORDER BY j.published_at DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID, now)
	if err != nil {
		return nil, fmt.Errorf("pgJournalRepository.ListVisibleToStudent: %w", err)
	}
	defer rows.Close()
	return scanJournals(rows)
}

func scanJournals(rows *sql.Rows) ([]model.Journal, error) {
	journals := []model.Journal{}
	for rows.Next() {
		var j model.Journal
		if err := rows.Scan(
			&j.ID, &j.Description, &j.AttachmentType, &j.AttachmentPath,
			&j.PublishedAt, &j.CreatedByID, &j.IsPublished, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		journals = append(journals, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal rows: %w", err)
	}
	return journals, nil
}
