package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/tundeajayi/coinshelf/internal/config"
	"github.com/tundeajayi/coinshelf/internal/logger"
	"github.com/tundeajayi/coinshelf/internal/service"
	"github.com/tundeajayi/coinshelf/internal/store"
)

type Api struct {
	router    *chi.Mux
	logger    logger.Logger
	store     store.Store
	purchases *service.PurchaseService
	topups    *service.TopUpService
	config    *config.Config
}

func New(
	router *chi.Mux,
	logger logger.Logger,
	store store.Store,
	purchases *service.PurchaseService,
	topups *service.TopUpService,
	config *config.Config,
) *Api {
	return &Api{
		router:    router,
		logger:    logger,
		store:     store,
		purchases: purchases,
		topups:    topups,
		config:    config,
	}
}

func (a *Api) RegisterRoutes() {
	a.router.Route("/api/v1", func(r chi.Router) {
		r.Use(a.LoggingMiddleware)

		r.Post("/webhook", a.HandleWebHook)

		r.Group(func(r chi.Router) {
			r.Use(a.RequireUser)

			r.Route("/coins", func(r chi.Router) {
				r.Post("/", a.HandleTopUp)
				r.Post("/withdraw", a.HandleWithdraw)
			})

			r.Get("/ledger", a.HandleGetLedger)

			r.Route("/novels/{novelId}", func(r chi.Router) {
				r.Post("/purchase", a.HandleBuyNovel)

				r.Route("/chapters/{chapterId}", func(r chi.Router) {
					r.Post("/purchase", a.HandleBuyChapter)
					r.Get("/access", a.HandleHasAccess)
				})
			})
		})
	})
}
