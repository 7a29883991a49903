package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinshelf_purchases_total",
		Help: "Completed purchases by ledger type.",
	}, []string{"type"})

	CoinsDebitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinshelf_coins_debited_total",
		Help: "Coins debited from reader wallets.",
	})

	CoinsCreditedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinshelf_coins_credited_total",
		Help: "Coins credited to wallets (top-ups, author earnings, refunds).",
	})

	ChaptersPromotedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinshelf_chapters_promoted_total",
		Help: "Chapters promoted to public by the release sweep.",
	})

	LedgerReapedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinshelf_ledger_reaped_total",
		Help: "Pending ledger entries cancelled by the expiry reaper.",
	})

	SweepFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinshelf_sweep_failures_total",
		Help: "Per-item failures inside background sweeps.",
	}, []string{"worker"})
)
