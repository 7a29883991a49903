package api

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tundeajayi/coinshelf/internal/config"
	"github.com/tundeajayi/coinshelf/internal/models"
	"github.com/tundeajayi/coinshelf/internal/notify"
	"github.com/tundeajayi/coinshelf/internal/payment"
	"github.com/tundeajayi/coinshelf/internal/service"
	"github.com/tundeajayi/coinshelf/internal/store"
)

const testUser = "3b241101-e2bb-4255-8caf-4136c566a962"

type testLogger struct{}

func (l *testLogger) Info(msg string, args ...any)  {}
func (l *testLogger) Warn(msg string, args ...any)  {}
func (l *testLogger) Error(msg string, args ...any) {}

type testProvider struct {
	createCheckoutFunc func(ctx context.Context, orderId string, userId string, coins int, unitAmount int) (string, string, error)
	cancelFunc         func(ctx context.Context, ref string) error
}

func (p *testProvider) CreateCheckout(ctx context.Context, orderId string, userId string, coins int, unitAmount int) (string, string, error) {
	if p.createCheckoutFunc != nil {
		return p.createCheckoutFunc(ctx, orderId, userId, coins, unitAmount)
	}
	return "http://mock-checkout.com", "cs_test_123", nil
}

func (p *testProvider) Cancel(ctx context.Context, ref string) error {
	if p.cancelFunc != nil {
		return p.cancelFunc(ctx, ref)
	}
	return nil
}

// newTestRouter wires real services around the fakes so handler tests
// exercise the full routing, decoding and status mapping.
func newTestRouter(s store.Store, p payment.Provider) *chi.Mux {
	logger := &testLogger{}
	splitter := service.NewRevenueSplitter(s, logger)
	purchases := service.NewPurchaseService(s, splitter, notify.NoopNotifier{}, logger)
	topups := service.NewTopUpService(s, p, logger)

	router := chi.NewRouter()
	api := New(router, logger, s, purchases, topups, &config.Config{Stripe_webhook_secret: "whsec_test"})
	api.RegisterRoutes()

	return router
}

type testStore struct {
	debitCoinsFunc               func(ctx context.Context, userId string, amount int) (bool, error)
	creditCoinsFunc              func(ctx context.Context, userId string, amount int) error
	getCoinBalanceFunc           func(ctx context.Context, userId string) (int, error)
	insertLedgerEntryFunc        func(ctx context.Context, entry *models.LedgerEntry) error
	transitionLedgerEntryFunc    func(ctx context.Context, id string, status string) (bool, error)
	settleTopUpFunc              func(ctx context.Context, id string) (bool, error)
	setLedgerProviderRefFunc     func(ctx context.Context, id string, ref string) error
	getLedgerEntryFunc           func(ctx context.Context, id string) (*models.LedgerEntry, error)
	getLedgerEntriesFunc         func(ctx context.Context, requesterId string) ([]models.LedgerEntry, error)
	getExpiredPendingEntriesFunc func(ctx context.Context, olderThan time.Time) ([]models.LedgerEntry, error)
	addOwnedChapterFunc          func(ctx context.Context, userId string, novelId string, chapterId string) (bool, error)
	grantFullOwnershipFunc       func(ctx context.Context, userId string, novelId string, chapterCount int) (bool, error)
	getEntitlementFunc           func(ctx context.Context, userId string, novelId string) (*models.EntitlementRecord, error)
	insertAuthorEarningFunc      func(ctx context.Context, earning *models.AuthorEarning) (bool, error)
	getChapterPricingFunc        func(ctx context.Context, chapterId string) (*models.Chapter, error)
	getNovelFunc                 func(ctx context.Context, novelId string) (*models.Novel, error)
	getDueChaptersFunc           func(ctx context.Context, now time.Time) ([]models.Chapter, error)
	getMaxChapterNumberFunc      func(ctx context.Context, novelId string) (int, error)
	publishChapterFunc           func(ctx context.Context, chapterId string, number int) (bool, error)
	recomputeNovelPricingFunc    func(ctx context.Context, novelId string) error
}

func (s *testStore) DebitCoins(ctx context.Context, userId string, amount int) (bool, error) {
	if s.debitCoinsFunc != nil {
		return s.debitCoinsFunc(ctx, userId, amount)
	}
	return true, nil
}

func (s *testStore) CreditCoins(ctx context.Context, userId string, amount int) error {
	if s.creditCoinsFunc != nil {
		return s.creditCoinsFunc(ctx, userId, amount)
	}
	return nil
}

func (s *testStore) GetCoinBalance(ctx context.Context, userId string) (int, error) {
	if s.getCoinBalanceFunc != nil {
		return s.getCoinBalanceFunc(ctx, userId)
	}
	return 0, nil
}

func (s *testStore) InsertLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if s.insertLedgerEntryFunc != nil {
		return s.insertLedgerEntryFunc(ctx, entry)
	}
	return nil
}

func (s *testStore) TransitionLedgerEntry(ctx context.Context, id string, status string) (bool, error) {
	if s.transitionLedgerEntryFunc != nil {
		return s.transitionLedgerEntryFunc(ctx, id, status)
	}
	return true, nil
}

func (s *testStore) SettleTopUp(ctx context.Context, id string) (bool, error) {
	if s.settleTopUpFunc != nil {
		return s.settleTopUpFunc(ctx, id)
	}
	return true, nil
}

func (s *testStore) SetLedgerProviderRef(ctx context.Context, id string, ref string) error {
	if s.setLedgerProviderRefFunc != nil {
		return s.setLedgerProviderRefFunc(ctx, id, ref)
	}
	return nil
}

func (s *testStore) GetLedgerEntry(ctx context.Context, id string) (*models.LedgerEntry, error) {
	if s.getLedgerEntryFunc != nil {
		return s.getLedgerEntryFunc(ctx, id)
	}
	return &models.LedgerEntry{}, nil
}

func (s *testStore) GetLedgerEntries(ctx context.Context, requesterId string) ([]models.LedgerEntry, error) {
	if s.getLedgerEntriesFunc != nil {
		return s.getLedgerEntriesFunc(ctx, requesterId)
	}
	return []models.LedgerEntry{}, nil
}

func (s *testStore) GetExpiredPendingEntries(ctx context.Context, olderThan time.Time) ([]models.LedgerEntry, error) {
	if s.getExpiredPendingEntriesFunc != nil {
		return s.getExpiredPendingEntriesFunc(ctx, olderThan)
	}
	return []models.LedgerEntry{}, nil
}

func (s *testStore) AddOwnedChapter(ctx context.Context, userId string, novelId string, chapterId string) (bool, error) {
	if s.addOwnedChapterFunc != nil {
		return s.addOwnedChapterFunc(ctx, userId, novelId, chapterId)
	}
	return true, nil
}

func (s *testStore) GrantFullOwnership(ctx context.Context, userId string, novelId string, chapterCount int) (bool, error) {
	if s.grantFullOwnershipFunc != nil {
		return s.grantFullOwnershipFunc(ctx, userId, novelId, chapterCount)
	}
	return true, nil
}

func (s *testStore) GetEntitlement(ctx context.Context, userId string, novelId string) (*models.EntitlementRecord, error) {
	if s.getEntitlementFunc != nil {
		return s.getEntitlementFunc(ctx, userId, novelId)
	}
	return nil, nil
}

func (s *testStore) InsertAuthorEarning(ctx context.Context, earning *models.AuthorEarning) (bool, error) {
	if s.insertAuthorEarningFunc != nil {
		return s.insertAuthorEarningFunc(ctx, earning)
	}
	return true, nil
}

func (s *testStore) GetChapterPricing(ctx context.Context, chapterId string) (*models.Chapter, error) {
	if s.getChapterPricingFunc != nil {
		return s.getChapterPricingFunc(ctx, chapterId)
	}
	return &models.Chapter{}, nil
}

func (s *testStore) GetNovel(ctx context.Context, novelId string) (*models.Novel, error) {
	if s.getNovelFunc != nil {
		return s.getNovelFunc(ctx, novelId)
	}
	return &models.Novel{}, nil
}

func (s *testStore) GetDueChapters(ctx context.Context, now time.Time) ([]models.Chapter, error) {
	if s.getDueChaptersFunc != nil {
		return s.getDueChaptersFunc(ctx, now)
	}
	return []models.Chapter{}, nil
}

func (s *testStore) GetMaxChapterNumber(ctx context.Context, novelId string) (int, error) {
	if s.getMaxChapterNumberFunc != nil {
		return s.getMaxChapterNumberFunc(ctx, novelId)
	}
	return 0, nil
}

func (s *testStore) PublishChapter(ctx context.Context, chapterId string, number int) (bool, error) {
	if s.publishChapterFunc != nil {
		return s.publishChapterFunc(ctx, chapterId, number)
	}
	return true, nil
}

func (s *testStore) RecomputeNovelPricing(ctx context.Context, novelId string) error {
	if s.recomputeNovelPricingFunc != nil {
		return s.recomputeNovelPricingFunc(ctx, novelId)
	}
	return nil
}
