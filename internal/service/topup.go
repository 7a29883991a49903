package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tundeajayi/coinshelf/internal/logger"
	"github.com/tundeajayi/coinshelf/internal/metrics"
	"github.com/tundeajayi/coinshelf/internal/models"
	"github.com/tundeajayi/coinshelf/internal/payment"
	"github.com/tundeajayi/coinshelf/internal/store"
)

type TopUpPlan struct {
	Coins  int
	Amount int // checkout price in cents
}

var TopUpPlans = map[string]TopUpPlan{
	"coins_20":  {Coins: 20, Amount: 199},
	"coins_50":  {Coins: 50, Amount: 499},
	"coins_120": {Coins: 120, Amount: 999},
}

type TopUpService struct {
	store    store.Store
	provider payment.Provider
	logger   logger.Logger
}

func NewTopUpService(store store.Store, provider payment.Provider, logger logger.Logger) *TopUpService {
	return &TopUpService{
		store:    store,
		provider: provider,
		logger:   logger,
	}
}

// Create opens a pending ledger entry and a provider checkout for it.
// The ledger id is the order reference the provider echoes back on the
// webhook; the provider's own session id is kept so the expiry reaper
// can cancel a checkout nobody ever paid.
func (s *TopUpService) Create(ctx context.Context, userId string, planId string) (*models.LedgerEntry, string, error) {
	requester, err := uuid.Parse(userId)

	if err != nil {
		return nil, "", fmt.Errorf("error parsing user id: %v", err)
	}

	plan, ok := TopUpPlans[planId]

	if !ok {
		return nil, "", ErrUnknownPlan
	}

	entry := &models.LedgerEntry{
		Id:           uuid.New(),
		Requester_id: requester,
		Type:         models.LedgerTypeTopUp,
		Amount:       plan.Coins,
		Status:       models.LedgerStatusPending,
		Created_at:   time.Now(),
	}

	if err := s.store.InsertLedgerEntry(ctx, entry); err != nil {
		return nil, "", err
	}

	url, ref, err := s.provider.CreateCheckout(ctx, entry.Id.String(), userId, plan.Coins, plan.Amount)

	if err != nil {
		// Nothing was paid yet, so the entry can be closed out
		// immediately instead of waiting for the reaper.
		if _, terr := s.store.TransitionLedgerEntry(ctx, entry.Id.String(), models.LedgerStatusCancelled); terr != nil {
			s.logger.Error(fmt.Sprintf("error cancelling entry after checkout failure: %v", terr), "service", "CreateTopUp")
		}

		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if err := s.store.SetLedgerProviderRef(ctx, entry.Id.String(), ref); err != nil {
		return nil, "", err
	}

	entry.Provider_ref = ref

	return entry, url, nil
}

// Complete settles a paid top-up. The transition and the wallet
// credit happen in one store statement: a failed settlement leaves the
// entry pending so the provider's redelivery can claim the payment,
// and a second delivery after a successful one trips the pending-only
// guard and gets ErrConflict instead of crediting twice.
func (s *TopUpService) Complete(ctx context.Context, orderId string) error {
	entry, err := s.store.GetLedgerEntry(ctx, orderId)

	if err != nil {
		return err
	}

	if entry.Type != models.LedgerTypeTopUp {
		return ErrConflict
	}

	settled, err := s.store.SettleTopUp(ctx, orderId)

	if err != nil {
		return err
	}

	if !settled {
		return ErrConflict
	}

	metrics.PurchasesTotal.WithLabelValues(models.LedgerTypeTopUp).Inc()
	metrics.CoinsCreditedTotal.Add(float64(entry.Amount))

	return nil
}

// Cancel closes out a top-up the provider reported as abandoned.
func (s *TopUpService) Cancel(ctx context.Context, orderId string) error {
	transitioned, err := s.store.TransitionLedgerEntry(ctx, orderId, models.LedgerStatusCancelled)

	if err != nil {
		return err
	}

	if !transitioned {
		return ErrConflict
	}

	return nil
}
