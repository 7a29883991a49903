package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/tundeajayi/coinshelf/internal/logger"
	"github.com/tundeajayi/coinshelf/internal/metrics"
	"github.com/tundeajayi/coinshelf/internal/models"
	"github.com/tundeajayi/coinshelf/internal/notify"
	"github.com/tundeajayi/coinshelf/internal/store"
)

type PurchaseService struct {
	store    store.Store
	splitter *RevenueSplitter
	notifier notify.Notifier
	logger   logger.Logger
}

func NewPurchaseService(store store.Store, splitter *RevenueSplitter, notifier notify.Notifier, logger logger.Logger) *PurchaseService {
	return &PurchaseService{
		store:    store,
		splitter: splitter,
		notifier: notifier,
		logger:   logger,
	}
}

// BuyChapter debits the reader, records ownership and splits the
// revenue to the author. No lock is held anywhere: the entitlement
// pre-check is only a fast path, and the set-union append is the real
// atomicity boundary. When two concurrent buys race past the check,
// one append reports "not added" and that caller's debit is credited
// straight back, so the wallet is only ever charged once per chapter.
func (s *PurchaseService) BuyChapter(ctx context.Context, userId string, novelId string, chapterId string) (*models.LedgerEntry, error) {
	requester, err := uuid.Parse(userId)

	if err != nil {
		return nil, fmt.Errorf("error parsing user id: %v", err)
	}

	chapter, err := s.store.GetChapterPricing(ctx, chapterId)

	if err != nil {
		return nil, err
	}

	if chapter.Novel_id != novelId {
		return nil, store.ErrChapterNotFound
	}

	if !chapter.Is_public {
		return nil, ErrNotPurchasable
	}

	if !chapter.Is_paid || chapter.Price <= 0 {
		return nil, ErrNotPurchasable
	}

	if chapter.Author_id == userId {
		return nil, ErrAlreadyOwned
	}

	record, err := s.store.GetEntitlement(ctx, userId, novelId)

	if err != nil {
		return nil, err
	}

	if record != nil && (record.Is_full || slices.Contains(record.Chapter_ids, chapterId)) {
		return nil, ErrAlreadyOwned
	}

	debited, err := s.store.DebitCoins(ctx, userId, chapter.Price)

	if err != nil {
		return nil, err
	}

	if !debited {
		return nil, ErrInsufficientFunds
	}

	added, err := s.store.AddOwnedChapter(ctx, userId, novelId, chapterId)

	if err != nil {
		s.refund(ctx, userId, chapter.Price, "BuyChapter")
		return nil, err
	}

	if !added {
		// Lost a race with an identical purchase; give the coins back.
		s.refund(ctx, userId, chapter.Price, "BuyChapter")
		return nil, ErrAlreadyOwned
	}

	entry := &models.LedgerEntry{
		Id:           uuid.New(),
		Requester_id: requester,
		Novel_id:     novelId,
		Chapter_id:   chapterId,
		Type:         models.LedgerTypeBuyChapter,
		Amount:       chapter.Price,
		Status:       models.LedgerStatusCompleted,
		Created_at:   time.Now(),
	}
	now := entry.Created_at
	entry.Completed_at = &now

	// The purchase is effective from here on: the coins are spent and
	// ownership is granted. A failed ledger write or split is an audit
	// gap to chase down, not a failed purchase.
	if err := s.store.InsertLedgerEntry(ctx, entry); err != nil {
		s.logger.Error(fmt.Sprintf("error recording purchase ledger entry: %v", err), "service", "BuyChapter", "ledger_id", entry.Id.String())
	}

	if err := s.splitter.Split(ctx, entry, chapter.Author_id); err != nil {
		s.logger.Error(fmt.Sprintf("error splitting revenue: %v", err), "service", "BuyChapter", "ledger_id", entry.Id.String())
	}

	metrics.PurchasesTotal.WithLabelValues(models.LedgerTypeBuyChapter).Inc()
	metrics.CoinsDebitedTotal.Add(float64(chapter.Price))

	if err := s.notifier.ChapterPurchased(ctx, userId, novelId, chapterId); err != nil {
		s.logger.Warn(fmt.Sprintf("error publishing purchase event: %v", err), "service", "BuyChapter")
	}

	return entry, nil
}

// BuyNovel grants full ownership of a completed novel at its derived
// price, snapshotting the chapter count at purchase time. Full
// ownership is permanent once granted; chapters added to the novel
// later are covered too.
func (s *PurchaseService) BuyNovel(ctx context.Context, userId string, novelId string) (*models.LedgerEntry, error) {
	requester, err := uuid.Parse(userId)

	if err != nil {
		return nil, fmt.Errorf("error parsing user id: %v", err)
	}

	novel, err := s.store.GetNovel(ctx, novelId)

	if err != nil {
		return nil, err
	}

	if !novel.Completed {
		return nil, ErrNotPurchasable
	}

	if !novel.Is_paid || novel.Price <= 0 {
		return nil, ErrNotPurchasable
	}

	if novel.Author_id == userId {
		return nil, ErrAlreadyOwned
	}

	record, err := s.store.GetEntitlement(ctx, userId, novelId)

	if err != nil {
		return nil, err
	}

	if record != nil && record.Is_full {
		return nil, ErrAlreadyOwned
	}

	debited, err := s.store.DebitCoins(ctx, userId, novel.Price)

	if err != nil {
		return nil, err
	}

	if !debited {
		return nil, ErrInsufficientFunds
	}

	granted, err := s.store.GrantFullOwnership(ctx, userId, novelId, novel.Total_chapters)

	if err != nil {
		s.refund(ctx, userId, novel.Price, "BuyNovel")
		return nil, err
	}

	if !granted {
		s.refund(ctx, userId, novel.Price, "BuyNovel")
		return nil, ErrAlreadyOwned
	}

	entry := &models.LedgerEntry{
		Id:           uuid.New(),
		Requester_id: requester,
		Novel_id:     novelId,
		Type:         models.LedgerTypeBuyNovel,
		Amount:       novel.Price,
		Status:       models.LedgerStatusCompleted,
		Created_at:   time.Now(),
	}
	now := entry.Created_at
	entry.Completed_at = &now

	// Same as BuyChapter: full ownership is already granted, so write
	// failures past this point are logged instead of failing the call.
	if err := s.store.InsertLedgerEntry(ctx, entry); err != nil {
		s.logger.Error(fmt.Sprintf("error recording purchase ledger entry: %v", err), "service", "BuyNovel", "ledger_id", entry.Id.String())
	}

	if err := s.splitter.Split(ctx, entry, novel.Author_id); err != nil {
		s.logger.Error(fmt.Sprintf("error splitting revenue: %v", err), "service", "BuyNovel", "ledger_id", entry.Id.String())
	}

	metrics.PurchasesTotal.WithLabelValues(models.LedgerTypeBuyNovel).Inc()
	metrics.CoinsDebitedTotal.Add(float64(novel.Price))

	return entry, nil
}

// HasAccess reports whether the user may read the chapter. Free
// chapters never need an entitlement record and an author always has
// implicit access to their own novel.
func (s *PurchaseService) HasAccess(ctx context.Context, userId string, novelId string, chapterId string) (bool, error) {
	chapter, err := s.store.GetChapterPricing(ctx, chapterId)

	if err != nil {
		return false, err
	}

	if chapter.Novel_id != novelId {
		return false, store.ErrChapterNotFound
	}

	if !chapter.Is_paid || chapter.Price <= 0 {
		return true, nil
	}

	if chapter.Author_id == userId {
		return true, nil
	}

	record, err := s.store.GetEntitlement(ctx, userId, novelId)

	if err != nil {
		return false, err
	}

	if record == nil {
		return false, nil
	}

	return record.Is_full || slices.Contains(record.Chapter_ids, chapterId), nil
}

// Withdraw takes coins out of the user's wallet and records the
// movement. The payout itself happens outside this service.
func (s *PurchaseService) Withdraw(ctx context.Context, userId string, amount int) (*models.LedgerEntry, error) {
	requester, err := uuid.Parse(userId)

	if err != nil {
		return nil, fmt.Errorf("error parsing user id: %v", err)
	}

	debited, err := s.store.DebitCoins(ctx, userId, amount)

	if err != nil {
		return nil, err
	}

	if !debited {
		return nil, ErrInsufficientFunds
	}

	entry := &models.LedgerEntry{
		Id:           uuid.New(),
		Requester_id: requester,
		Type:         models.LedgerTypeWithdrawCoin,
		Amount:       amount,
		Status:       models.LedgerStatusCompleted,
		Created_at:   time.Now(),
	}
	now := entry.Created_at
	entry.Completed_at = &now

	if err := s.store.InsertLedgerEntry(ctx, entry); err != nil {
		return nil, err
	}

	metrics.PurchasesTotal.WithLabelValues(models.LedgerTypeWithdrawCoin).Inc()
	metrics.CoinsDebitedTotal.Add(float64(amount))

	return entry, nil
}

func (s *PurchaseService) refund(ctx context.Context, userId string, amount int, op string) {
	if err := s.store.CreditCoins(ctx, userId, amount); err != nil {
		s.logger.Error(fmt.Sprintf("error refunding debit: %v", err), "service", op, "user_id", userId, "amount", amount)
		return
	}

	metrics.CoinsCreditedTotal.Add(float64(amount))
}
