package store

import (
	"context"
	"fmt"

	"github.com/tundeajayi/coinshelf/internal/models"
)

// InsertAuthorEarning appends the audit row for a revenue split. The
// unique index on source_ledger_id is the idempotency key: a retried
// split hits ON CONFLICT DO NOTHING and reports false, and the caller
// must then skip the wallet credit.
func (s *PostgresStore) InsertAuthorEarning(ctx context.Context, earning *models.AuthorEarning) (bool, error) {
	query := `
			INSERT INTO author_earnings (id, author_id, novel_id, chapter_id, amount, type, source_ledger_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (source_ledger_id) DO NOTHING;
	`

	res, err := s.DB.ExecContext(ctx, query,
		earning.Id,
		earning.Author_id,
		earning.Novel_id,
		nullString(earning.Chapter_id),
		earning.Amount,
		earning.Type,
		earning.Source_ledger_id,
	)

	if err != nil {
		return false, fmt.Errorf("error inserting author earning: %v", err)
	}

	rows, err := res.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %v", err)
	}

	return rows == 1, nil
}
