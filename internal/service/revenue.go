package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tundeajayi/coinshelf/internal/logger"
	"github.com/tundeajayi/coinshelf/internal/metrics"
	"github.com/tundeajayi/coinshelf/internal/models"
	"github.com/tundeajayi/coinshelf/internal/store"
)

// RevenueSplitter credits the author's wallet from a completed
// purchase ledger row and leaves an audit trail. The earning row's
// unique source_ledger_id makes Split safe to retry: only the call
// that actually inserts the row performs the credit.
type RevenueSplitter struct {
	store  store.Store
	logger logger.Logger
}

func NewRevenueSplitter(store store.Store, logger logger.Logger) *RevenueSplitter {
	return &RevenueSplitter{
		store:  store,
		logger: logger,
	}
}

func (s *RevenueSplitter) Split(ctx context.Context, entry *models.LedgerEntry, authorId string) error {
	author, err := uuid.Parse(authorId)

	if err != nil {
		return fmt.Errorf("error parsing author id: %v", err)
	}

	inserted, err := s.store.InsertAuthorEarning(ctx, &models.AuthorEarning{
		Id:               uuid.New(),
		Author_id:        author,
		Novel_id:         entry.Novel_id,
		Chapter_id:       entry.Chapter_id,
		Amount:           entry.Amount,
		Type:             entry.Type,
		Source_ledger_id: entry.Id,
	})

	if err != nil {
		return err
	}

	if !inserted {
		s.logger.Warn("revenue already split for ledger entry", "service", "Split", "ledger_id", entry.Id.String())
		return nil
	}

	if err := s.store.CreditCoins(ctx, authorId, entry.Amount); err != nil {
		return fmt.Errorf("error crediting author: %v", err)
	}

	metrics.CoinsCreditedTotal.Add(float64(entry.Amount))

	return nil
}
