package store

import (
	"context"
	"fmt"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		coins INT NOT NULL DEFAULT 0 CHECK (coins >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS novels (
		id TEXT PRIMARY KEY,
		author_id UUID NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		price INT NOT NULL DEFAULT 0,
		is_paid BOOLEAN NOT NULL DEFAULT false,
		total_chapters INT NOT NULL DEFAULT 0,
		completed BOOLEAN NOT NULL DEFAULT false
	);

	CREATE TABLE IF NOT EXISTS chapters (
		id TEXT PRIMARY KEY,
		novel_id TEXT NOT NULL REFERENCES novels (id),
		title TEXT NOT NULL DEFAULT '',
		price INT NOT NULL DEFAULT 0,
		is_paid BOOLEAN NOT NULL DEFAULT false,
		chapter_number INT,
		scheduled_at TIMESTAMPTZ,
		is_draft BOOLEAN NOT NULL DEFAULT true,
		is_public BOOLEAN NOT NULL DEFAULT false,
		is_lock BOOLEAN NOT NULL DEFAULT true
	);

	CREATE INDEX IF NOT EXISTS chapters_due_idx
		ON chapters (scheduled_at)
		WHERE is_draft = false AND is_public = false;

	CREATE TABLE IF NOT EXISTS ledger_entries (
		id UUID PRIMARY KEY,
		requester_id UUID NOT NULL,
		novel_id TEXT,
		chapter_id TEXT,
		type TEXT NOT NULL CHECK (type IN ('top_up', 'buy_chapter', 'buy_novel', 'withdraw_coin')),
		amount INT NOT NULL CHECK (amount > 0),
		status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'cancelled')),
		provider_ref TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS ledger_entries_status_idx ON ledger_entries (status, created_at);
	CREATE INDEX IF NOT EXISTS ledger_entries_requester_idx ON ledger_entries (requester_id, created_at);

	CREATE TABLE IF NOT EXISTS entitlements (
		user_id UUID NOT NULL,
		novel_id TEXT NOT NULL,
		is_full BOOLEAN NOT NULL DEFAULT false,
		chapter_ids TEXT[] NOT NULL DEFAULT '{}',
		full_chapter_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, novel_id)
	);

	CREATE INDEX IF NOT EXISTS entitlements_novel_idx ON entitlements (novel_id);

	CREATE TABLE IF NOT EXISTS author_earnings (
		id UUID PRIMARY KEY,
		author_id UUID NOT NULL,
		novel_id TEXT NOT NULL,
		chapter_id TEXT,
		amount INT NOT NULL CHECK (amount > 0),
		type TEXT NOT NULL,
		source_ledger_id UUID NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id SERIAL PRIMARY KEY,
		user_id UUID NOT NULL,
		novel_id TEXT NOT NULL,
		chapter_id TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, chapter_id)
	);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error applying schema: %v", err)
	}

	return nil
}
