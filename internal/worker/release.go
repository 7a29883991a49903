package worker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tundeajayi/coinshelf/internal/logger"
	"github.com/tundeajayi/coinshelf/internal/metrics"
	"github.com/tundeajayi/coinshelf/internal/models"
	"github.com/tundeajayi/coinshelf/internal/notify"
	"github.com/tundeajayi/coinshelf/internal/store"
)

// ReleaseScheduler promotes scheduled chapters to public once a day,
// shortly after local midnight. Chapter numbers are only assigned
// here, at the moment a chapter goes public, so drafts can be
// reordered freely and numbering stays contiguous per novel.
type ReleaseScheduler struct {
	store    store.Store
	notifier notify.Notifier
	logger   logger.Logger
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewReleaseScheduler(store store.Store, notifier notify.Notifier, logger logger.Logger) *ReleaseScheduler {
	return &ReleaseScheduler{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (w *ReleaseScheduler) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go w.run(ctx)
}

func (w *ReleaseScheduler) Stop() {
	if w.cancel == nil {
		return
	}

	w.cancel()
	<-w.done
}

func (w *ReleaseScheduler) run(ctx context.Context) {
	defer close(w.done)

	for {
		timer := time.NewTimer(w.untilNextSweep())

		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case <-timer.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.Error(fmt.Sprintf("error running release sweep: %v", err), "worker", "release")
			}
		}
	}
}

// untilNextSweep waits for the next local midnight plus up to two
// minutes of jitter, so restarts don't stampede the database at 00:00.
func (w *ReleaseScheduler) untilNextSweep() time.Duration {
	now := w.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	jitter := time.Duration(rand.Int63n(int64(2 * time.Minute)))

	return midnight.Sub(now) + jitter
}

// Sweep promotes every due chapter. Each novel is handled in
// isolation: one novel failing mid-way is logged and retried on the
// next sweep, while the rest of the batch still goes out. Re-running
// the sweep is safe because promotion skips chapters that are already
// public.
func (w *ReleaseScheduler) Sweep(ctx context.Context) error {
	due, err := w.store.GetDueChapters(ctx, w.now())

	if err != nil {
		return err
	}

	if len(due) == 0 {
		return nil
	}

	grouped := groupByNovel(due)

	for _, group := range grouped {
		if err := w.promoteNovel(ctx, group.novelId, group.chapters); err != nil {
			w.logger.Error(fmt.Sprintf("error promoting novel: %v", err), "worker", "release", "novel_id", group.novelId)
			metrics.SweepFailuresTotal.WithLabelValues("release").Inc()
		}
	}

	return nil
}

func (w *ReleaseScheduler) promoteNovel(ctx context.Context, novelId string, chapters []models.Chapter) error {
	next, err := w.store.GetMaxChapterNumber(ctx, novelId)

	if err != nil {
		return err
	}

	for _, chapter := range chapters {
		next++

		published, err := w.store.PublishChapter(ctx, chapter.Id, next)

		if err != nil {
			return err
		}

		if !published {
			// Already public from an earlier partial sweep; its
			// number was assigned back then, don't burn a new one.
			next--
			continue
		}

		metrics.ChaptersPromotedTotal.Inc()

		if err := w.notifier.ChapterReleased(ctx, novelId, chapter.Id, next); err != nil {
			w.logger.Warn(fmt.Sprintf("error publishing release event: %v", err), "worker", "release")
		}
	}

	return w.store.RecomputeNovelPricing(ctx, novelId)
}

type novelGroup struct {
	novelId  string
	chapters []models.Chapter
}

// groupByNovel splits the due list into per-novel groups, preserving
// the store's scheduled_at ordering within each group.
func groupByNovel(chapters []models.Chapter) []novelGroup {
	var groups []novelGroup
	index := map[string]int{}

	for _, chapter := range chapters {
		i, ok := index[chapter.Novel_id]

		if !ok {
			i = len(groups)
			index[chapter.Novel_id] = i
			groups = append(groups, novelGroup{novelId: chapter.Novel_id})
		}

		groups[i].chapters = append(groups[i].chapters, chapter)
	}

	return groups
}
