package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/tundeajayi/coinshelf/internal/logger"
	"github.com/tundeajayi/coinshelf/internal/metrics"
	"github.com/tundeajayi/coinshelf/internal/models"
	"github.com/tundeajayi/coinshelf/internal/payment"
	"github.com/tundeajayi/coinshelf/internal/store"
)

// ExpiryReaper cancels payment attempts stuck in pending past the
// timeout. A ledger entry is only marked cancelled after the provider
// confirms the checkout is dead; if the provider call fails the entry
// stays pending and the next sweep tries again, so a payment the
// provider later completes is never discarded on this side.
type ExpiryReaper struct {
	store    store.Store
	provider payment.Provider
	logger   logger.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewExpiryReaper(store store.Store, provider payment.Provider, logger logger.Logger, interval time.Duration, timeout time.Duration) *ExpiryReaper {
	return &ExpiryReaper{
		store:    store,
		provider: provider,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (w *ExpiryReaper) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go w.run(ctx)
}

func (w *ExpiryReaper) Stop() {
	if w.cancel == nil {
		return
	}

	w.cancel()
	<-w.done
}

func (w *ExpiryReaper) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.Error(fmt.Sprintf("error running reaper sweep: %v", err), "worker", "reaper")
			}
		}
	}
}

func (w *ExpiryReaper) Sweep(ctx context.Context) error {
	entries, err := w.store.GetExpiredPendingEntries(ctx, w.now().Add(-w.timeout))

	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := w.reap(ctx, entry); err != nil {
			w.logger.Error(fmt.Sprintf("error reaping entry: %v", err), "worker", "reaper", "ledger_id", entry.Id.String())
			metrics.SweepFailuresTotal.WithLabelValues("reaper").Inc()
		}
	}

	return nil
}

func (w *ExpiryReaper) reap(ctx context.Context, entry models.LedgerEntry) error {
	if entry.Provider_ref != "" {
		if err := w.provider.Cancel(ctx, entry.Provider_ref); err != nil {
			return err
		}
	}

	transitioned, err := w.store.TransitionLedgerEntry(ctx, entry.Id.String(), models.LedgerStatusCancelled)

	if err != nil {
		return err
	}

	if transitioned {
		metrics.LedgerReapedTotal.Inc()
		w.logger.Info("cancelled expired ledger entry", "worker", "reaper", "ledger_id", entry.Id.String())
	}

	return nil
}
