package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tundeajayi/coinshelf/internal/models"
)

var ErrLedgerEntryNotFound = errors.New("ledger entry not found")

func (s *PostgresStore) InsertLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	query := `
			INSERT INTO ledger_entries (id, requester_id, novel_id, chapter_id, type, amount, status, provider_ref, created_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`

	_, err := s.DB.ExecContext(ctx, query,
		entry.Id,
		entry.Requester_id,
		nullString(entry.Novel_id),
		nullString(entry.Chapter_id),
		entry.Type,
		entry.Amount,
		entry.Status,
		nullString(entry.Provider_ref),
		entry.Created_at,
		entry.Completed_at,
	)

	if err != nil {
		return fmt.Errorf("error inserting ledger entry: %v", err)
	}

	return nil
}

// TransitionLedgerEntry moves a pending entry to completed or
// cancelled. The status = 'pending' guard makes completed and
// cancelled terminal: a second transition matches no row and reports
// false instead of rewriting history.
func (s *PostgresStore) TransitionLedgerEntry(ctx context.Context, id string, status string) (bool, error) {
	query := `
			UPDATE ledger_entries
			SET status = $2,
				completed_at = CASE WHEN $2 = 'completed' THEN now() ELSE completed_at END
			WHERE id = $1 AND status = 'pending';
	`

	res, err := s.DB.ExecContext(ctx, query, id, status)

	if err != nil {
		return false, fmt.Errorf("error transitioning ledger entry: %v", err)
	}

	rows, err := res.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %v", err)
	}

	return rows == 1, nil
}

// SettleTopUp completes a pending top-up and credits the buyer's
// wallet in a single statement. Keeping both updates in one statement
// means a failed credit leaves the entry pending too, so a webhook
// redelivery settles the payment instead of hitting the terminal
// guard and being dismissed as a replay.
func (s *PostgresStore) SettleTopUp(ctx context.Context, id string) (bool, error) {
	query := `
			WITH settled AS (
				UPDATE ledger_entries
				SET status = 'completed', completed_at = now()
				WHERE id = $1 AND status = 'pending'
				RETURNING requester_id, amount
			)
			UPDATE users
			SET coins = coins + settled.amount
			FROM settled
			WHERE users.id = settled.requester_id;
	`

	res, err := s.DB.ExecContext(ctx, query, id)

	if err != nil {
		return false, fmt.Errorf("error settling top-up: %v", err)
	}

	rows, err := res.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %v", err)
	}

	return rows == 1, nil
}

func (s *PostgresStore) SetLedgerProviderRef(ctx context.Context, id string, ref string) error {
	query := `
			UPDATE ledger_entries
			SET provider_ref = $2
			WHERE id = $1 AND status = 'pending';
	`

	_, err := s.DB.ExecContext(ctx, query, id, ref)

	if err != nil {
		return fmt.Errorf("error setting provider ref: %v", err)
	}

	return nil
}

func (s *PostgresStore) GetLedgerEntry(ctx context.Context, id string) (*models.LedgerEntry, error) {
	query := `
			SELECT id, requester_id, novel_id, chapter_id, type, amount, status, provider_ref, created_at, completed_at
			FROM ledger_entries
			WHERE id = $1;
	`

	entry, err := scanLedgerEntry(s.DB.QueryRowContext(ctx, query, id))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLedgerEntryNotFound
		}

		return nil, fmt.Errorf("error scanning ledger entry: %v", err)
	}

	return entry, nil
}

func (s *PostgresStore) GetLedgerEntries(ctx context.Context, requesterId string) ([]models.LedgerEntry, error) {
	query := `
			SELECT id, requester_id, novel_id, chapter_id, type, amount, status, provider_ref, created_at, completed_at
			FROM ledger_entries
			WHERE requester_id = $1
			ORDER BY created_at DESC;
	`

	rows, err := s.DB.QueryContext(ctx, query, requesterId)

	if err != nil {
		return nil, fmt.Errorf("error querying ledger entries: %v", err)
	}

	defer rows.Close()

	var entries []models.LedgerEntry

	for rows.Next() {
		entry, err := scanLedgerEntry(rows)

		if err != nil {
			return nil, fmt.Errorf("error scanning ledger entry: %v", err)
		}

		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %v", err)
	}

	return entries, nil
}

func (s *PostgresStore) GetExpiredPendingEntries(ctx context.Context, olderThan time.Time) ([]models.LedgerEntry, error) {
	query := `
			SELECT id, requester_id, novel_id, chapter_id, type, amount, status, provider_ref, created_at, completed_at
			FROM ledger_entries
			WHERE status = 'pending' AND created_at < $1
			ORDER BY created_at;
	`

	rows, err := s.DB.QueryContext(ctx, query, olderThan)

	if err != nil {
		return nil, fmt.Errorf("error querying expired pending entries: %v", err)
	}

	defer rows.Close()

	var entries []models.LedgerEntry

	for rows.Next() {
		entry, err := scanLedgerEntry(rows)

		if err != nil {
			return nil, fmt.Errorf("error scanning ledger entry: %v", err)
		}

		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expired pending entries: %v", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedgerEntry(row rowScanner) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	var novelId, chapterId, providerRef sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&entry.Id,
		&entry.Requester_id,
		&novelId,
		&chapterId,
		&entry.Type,
		&entry.Amount,
		&entry.Status,
		&providerRef,
		&entry.Created_at,
		&completedAt,
	)

	if err != nil {
		return nil, err
	}

	entry.Novel_id = novelId.String
	entry.Chapter_id = chapterId.String
	entry.Provider_ref = providerRef.String

	if completedAt.Valid {
		entry.Completed_at = &completedAt.Time
	}

	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
