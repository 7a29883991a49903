package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/tundeajayi/coinshelf/internal/models"
)

type Store interface {
	DebitCoins(ctx context.Context, userId string, amount int) (bool, error)
	CreditCoins(ctx context.Context, userId string, amount int) error
	GetCoinBalance(ctx context.Context, userId string) (int, error)

	InsertLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error
	TransitionLedgerEntry(ctx context.Context, id string, status string) (bool, error)
	SettleTopUp(ctx context.Context, id string) (bool, error)
	SetLedgerProviderRef(ctx context.Context, id string, ref string) error
	GetLedgerEntry(ctx context.Context, id string) (*models.LedgerEntry, error)
	GetLedgerEntries(ctx context.Context, requesterId string) ([]models.LedgerEntry, error)
	GetExpiredPendingEntries(ctx context.Context, olderThan time.Time) ([]models.LedgerEntry, error)

	AddOwnedChapter(ctx context.Context, userId string, novelId string, chapterId string) (bool, error)
	GrantFullOwnership(ctx context.Context, userId string, novelId string, chapterCount int) (bool, error)
	GetEntitlement(ctx context.Context, userId string, novelId string) (*models.EntitlementRecord, error)

	InsertAuthorEarning(ctx context.Context, earning *models.AuthorEarning) (bool, error)

	GetChapterPricing(ctx context.Context, chapterId string) (*models.Chapter, error)
	GetNovel(ctx context.Context, novelId string) (*models.Novel, error)
	GetDueChapters(ctx context.Context, now time.Time) ([]models.Chapter, error)
	GetMaxChapterNumber(ctx context.Context, novelId string) (int, error)
	PublishChapter(ctx context.Context, chapterId string, number int) (bool, error)
	RecomputeNovelPricing(ctx context.Context, novelId string) error
}

type PostgresStore struct {
	*sql.DB
}

func NewPostgresStore(conn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", conn)

	if err != nil {
		return nil, fmt.Errorf("error connecting to db: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging db: %v", err)
	}

	return &PostgresStore{
		DB: db,
	}, nil
}
