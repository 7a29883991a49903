package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/tundeajayi/coinshelf/internal/models"
)

// AddOwnedChapter records per-chapter ownership with set-union
// semantics in a single statement. The @> guard keeps the append
// idempotent: a retry or a concurrent duplicate purchase matches no
// row and reports false, it never lists the chapter twice. A record
// that is already full is left untouched.
func (s *PostgresStore) AddOwnedChapter(ctx context.Context, userId string, novelId string, chapterId string) (bool, error) {
	query := `
			INSERT INTO entitlements (user_id, novel_id, chapter_ids)
			VALUES ($1, $2, ARRAY[$3]::TEXT[])
			ON CONFLICT (user_id, novel_id) DO UPDATE
			SET chapter_ids = array_append(entitlements.chapter_ids, $3),
				updated_at = now()
			WHERE NOT entitlements.is_full
				AND NOT entitlements.chapter_ids @> ARRAY[$3]::TEXT[];
	`

	res, err := s.DB.ExecContext(ctx, query, userId, novelId, chapterId)

	if err != nil {
		return false, fmt.Errorf("error adding owned chapter: %v", err)
	}

	rows, err := res.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %v", err)
	}

	return rows == 1, nil
}

// GrantFullOwnership upgrades (or creates) the record to full
// ownership, snapshotting the novel's chapter count at purchase time.
// The NOT is_full guard reports false for a record that is already
// full, so a duplicate full purchase is never charged.
func (s *PostgresStore) GrantFullOwnership(ctx context.Context, userId string, novelId string, chapterCount int) (bool, error) {
	query := `
			INSERT INTO entitlements (user_id, novel_id, is_full, full_chapter_count)
			VALUES ($1, $2, true, $3)
			ON CONFLICT (user_id, novel_id) DO UPDATE
			SET is_full = true,
				full_chapter_count = $3,
				updated_at = now()
			WHERE NOT entitlements.is_full;
	`

	res, err := s.DB.ExecContext(ctx, query, userId, novelId, chapterCount)

	if err != nil {
		return false, fmt.Errorf("error granting full ownership: %v", err)
	}

	rows, err := res.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %v", err)
	}

	return rows == 1, nil
}

// GetEntitlement returns nil when no record exists; a missing record
// just means the user owns nothing in this novel.
func (s *PostgresStore) GetEntitlement(ctx context.Context, userId string, novelId string) (*models.EntitlementRecord, error) {
	query := `
			SELECT user_id, novel_id, is_full, chapter_ids, full_chapter_count, created_at, updated_at
			FROM entitlements
			WHERE user_id = $1 AND novel_id = $2;
	`

	var record models.EntitlementRecord

	err := s.DB.QueryRowContext(ctx, query, userId, novelId).Scan(
		&record.User_id,
		&record.Novel_id,
		&record.Is_full,
		pq.Array(&record.Chapter_ids),
		&record.Full_chapter_count,
		&record.Created_at,
		&record.Updated_at,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("error scanning entitlement: %v", err)
	}

	return &record, nil
}
