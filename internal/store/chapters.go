package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tundeajayi/coinshelf/internal/models"
)

var (
	ErrChapterNotFound = errors.New("chapter not found")
	ErrNovelNotFound   = errors.New("novel not found")
)

func (s *PostgresStore) GetChapterPricing(ctx context.Context, chapterId string) (*models.Chapter, error) {
	query := `
			SELECT c.id, c.novel_id, c.title, c.price, c.is_paid, COALESCE(c.chapter_number, 0), c.is_draft, c.is_public, c.is_lock, n.author_id
			FROM chapters c
			JOIN novels n ON (n.id = c.novel_id)
			WHERE c.id = $1;
	`

	var chapter models.Chapter

	err := s.DB.QueryRowContext(ctx, query, chapterId).Scan(
		&chapter.Id,
		&chapter.Novel_id,
		&chapter.Title,
		&chapter.Price,
		&chapter.Is_paid,
		&chapter.Chapter_number,
		&chapter.Is_draft,
		&chapter.Is_public,
		&chapter.Is_lock,
		&chapter.Author_id,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrChapterNotFound
		}

		return nil, fmt.Errorf("error scanning chapter: %v", err)
	}

	return &chapter, nil
}

func (s *PostgresStore) GetNovel(ctx context.Context, novelId string) (*models.Novel, error) {
	query := `
			SELECT id, author_id, title, price, is_paid, total_chapters, completed
			FROM novels
			WHERE id = $1;
	`

	var novel models.Novel

	err := s.DB.QueryRowContext(ctx, query, novelId).Scan(
		&novel.Id,
		&novel.Author_id,
		&novel.Title,
		&novel.Price,
		&novel.Is_paid,
		&novel.Total_chapters,
		&novel.Completed,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNovelNotFound
		}

		return nil, fmt.Errorf("error scanning novel: %v", err)
	}

	return &novel, nil
}

// GetDueChapters lists chapters whose release time has passed but are
// not yet public, ordered so the release sweep can walk them novel by
// novel in schedule order.
func (s *PostgresStore) GetDueChapters(ctx context.Context, now time.Time) ([]models.Chapter, error) {
	query := `
			SELECT c.id, c.novel_id, c.title, c.price, c.is_paid, c.scheduled_at, n.author_id
			FROM chapters c
			JOIN novels n ON (n.id = c.novel_id)
			WHERE c.scheduled_at IS NOT NULL
				AND c.scheduled_at <= $1
				AND c.is_draft = false
				AND c.is_public = false
			ORDER BY c.novel_id, c.scheduled_at, c.id;
	`

	rows, err := s.DB.QueryContext(ctx, query, now)

	if err != nil {
		return nil, fmt.Errorf("error querying due chapters: %v", err)
	}

	defer rows.Close()

	var chapters []models.Chapter

	for rows.Next() {
		var chapter models.Chapter

		err := rows.Scan(
			&chapter.Id,
			&chapter.Novel_id,
			&chapter.Title,
			&chapter.Price,
			&chapter.Is_paid,
			&chapter.Scheduled_at,
			&chapter.Author_id,
		)

		if err != nil {
			return nil, fmt.Errorf("error scanning due chapter: %v", err)
		}

		chapters = append(chapters, chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due chapters: %v", err)
	}

	return chapters, nil
}

func (s *PostgresStore) GetMaxChapterNumber(ctx context.Context, novelId string) (int, error) {
	query := `
			SELECT COALESCE(MAX(chapter_number), 0)
			FROM chapters
			WHERE novel_id = $1 AND is_public = true;
	`

	var max int

	if err := s.DB.QueryRowContext(ctx, query, novelId).Scan(&max); err != nil {
		return 0, fmt.Errorf("error querying max chapter number: %v", err)
	}

	return max, nil
}

// PublishChapter assigns the final chapter number and flips the
// chapter public. The is_public = false guard makes a re-run of the
// sweep a no-op for chapters promoted by an earlier partial sweep.
func (s *PostgresStore) PublishChapter(ctx context.Context, chapterId string, number int) (bool, error) {
	query := `
			UPDATE chapters
			SET chapter_number = $2, is_public = true, is_lock = false
			WHERE id = $1 AND is_public = false;
	`

	res, err := s.DB.ExecContext(ctx, query, chapterId, number)

	if err != nil {
		return false, fmt.Errorf("error publishing chapter: %v", err)
	}

	rows, err := res.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %v", err)
	}

	return rows == 1, nil
}

// RecomputeNovelPricing re-derives the novel's price and chapter count
// from its published chapters. is_paid latches on the first paid
// published chapter and never turns back off.
func (s *PostgresStore) RecomputeNovelPricing(ctx context.Context, novelId string) error {
	query := `
			UPDATE novels
			SET price = (SELECT COALESCE(SUM(price), 0) FROM chapters WHERE novel_id = $1 AND is_public = true AND is_paid = true),
				total_chapters = (SELECT COUNT(*) FROM chapters WHERE novel_id = $1 AND is_public = true),
				is_paid = is_paid OR EXISTS (SELECT 1 FROM chapters WHERE novel_id = $1 AND is_public = true AND is_paid = true)
			WHERE id = $1;
	`

	_, err := s.DB.ExecContext(ctx, query, novelId)

	if err != nil {
		return fmt.Errorf("error recomputing novel pricing: %v", err)
	}

	return nil
}
