package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")

// DebitCoins takes amount off the user's balance in a single statement.
// The coins >= amount guard means an insufficient balance simply
// matches no row; the balance is never read back and re-written.
func (s *PostgresStore) DebitCoins(ctx context.Context, userId string, amount int) (bool, error) {
	query := `
			UPDATE users
			SET coins = coins - $1
			WHERE id = $2 AND coins >= $1;
	`

	res, err := s.DB.ExecContext(ctx, query, amount, userId)

	if err != nil {
		return false, fmt.Errorf("error debiting coins: %v", err)
	}

	rows, err := res.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %v", err)
	}

	return rows == 1, nil
}

func (s *PostgresStore) CreditCoins(ctx context.Context, userId string, amount int) error {
	query := `
			UPDATE users
			SET coins = coins + $1
			WHERE id = $2;
	`

	res, err := s.DB.ExecContext(ctx, query, amount, userId)

	if err != nil {
		return fmt.Errorf("error crediting coins: %v", err)
	}

	rows, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("error reading rows affected: %v", err)
	}

	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (s *PostgresStore) GetCoinBalance(ctx context.Context, userId string) (int, error) {
	query := `
			SELECT coins FROM users WHERE id = $1;
	`

	var coins int

	if err := s.DB.QueryRowContext(ctx, query, userId).Scan(&coins); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrUserNotFound
		}

		return 0, fmt.Errorf("error querying coin balance: %v", err)
	}

	return coins, nil
}
