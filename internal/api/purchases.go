package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tundeajayi/coinshelf/internal/models"
	"github.com/tundeajayi/coinshelf/internal/service"
	"github.com/tundeajayi/coinshelf/internal/store"
)

// HandleBuyChapter godoc
//
//	@Summary		Buy a chapter
//	@Description	Spend coins to own a single chapter
//	@Tags			purchases
//	@Param			novelId		path		string	true	"novel id"
//	@Param			chapterId	path		string	true	"chapter id"
//	@Failure		402			{object}	models.ErrorResponse
//	@Failure		404			{object}	models.ErrorResponse
//	@Failure		409			{object}	models.ErrorResponse
//	@Failure		422			{object}	models.ErrorResponse
//	@Success		200			{object}	models.HandlePurchaseResponse
//	@Router			/novels/{novelId}/chapters/{chapterId}/purchase [post]
func (a *Api) HandleBuyChapter(w http.ResponseWriter, r *http.Request) {
	user := requesterId(r)
	novelId := chi.URLParam(r, "novelId")
	chapterId := chi.URLParam(r, "chapterId")

	entry, err := a.purchases.BuyChapter(r.Context(), user, novelId, chapterId)

	if err != nil {
		a.respondPurchaseError(w, err, "HandleBuyChapter")
		return
	}

	respondWithSuccess(w, http.StatusOK, &models.HandlePurchaseResponse{Ledger_id: entry.Id.String(), Amount: entry.Amount})
}

// HandleBuyNovel godoc
//
//	@Summary		Buy a full novel
//	@Description	Spend coins to own every chapter of a completed novel
//	@Tags			purchases
//	@Param			novelId	path		string	true	"novel id"
//	@Failure		402		{object}	models.ErrorResponse
//	@Failure		404		{object}	models.ErrorResponse
//	@Failure		409		{object}	models.ErrorResponse
//	@Failure		422		{object}	models.ErrorResponse
//	@Success		200		{object}	models.HandlePurchaseResponse
//	@Router			/novels/{novelId}/purchase [post]
func (a *Api) HandleBuyNovel(w http.ResponseWriter, r *http.Request) {
	user := requesterId(r)
	novelId := chi.URLParam(r, "novelId")

	entry, err := a.purchases.BuyNovel(r.Context(), user, novelId)

	if err != nil {
		a.respondPurchaseError(w, err, "HandleBuyNovel")
		return
	}

	respondWithSuccess(w, http.StatusOK, &models.HandlePurchaseResponse{Ledger_id: entry.Id.String(), Amount: entry.Amount})
}

// HandleHasAccess godoc
//
//	@Summary		Check chapter access
//	@Description	Whether the caller may read the chapter
//	@Tags			purchases
//	@Param			novelId		path		string	true	"novel id"
//	@Param			chapterId	path		string	true	"chapter id"
//	@Failure		404			{object}	models.ErrorResponse
//	@Success		200			{object}	models.HandleHasAccessResponse
//	@Router			/novels/{novelId}/chapters/{chapterId}/access [get]
func (a *Api) HandleHasAccess(w http.ResponseWriter, r *http.Request) {
	user := requesterId(r)
	novelId := chi.URLParam(r, "novelId")
	chapterId := chi.URLParam(r, "chapterId")

	access, err := a.purchases.HasAccess(r.Context(), user, novelId, chapterId)

	if err != nil {
		if errors.Is(err, store.ErrChapterNotFound) {
			a.logger.Warn("chapter not found", "service", "HandleHasAccess")
			respondWithError(w, http.StatusNotFound, err)
			return
		}

		a.logger.Error(err.Error(), "service", "HandleHasAccess")
		respondWithError(w, http.StatusInternalServerError, err)
		return
	}

	respondWithSuccess(w, http.StatusOK, &models.HandleHasAccessResponse{Access: access})
}

func (a *Api) respondPurchaseError(w http.ResponseWriter, err error, handler string) {
	switch {
	case errors.Is(err, store.ErrChapterNotFound), errors.Is(err, store.ErrNovelNotFound), errors.Is(err, store.ErrUserNotFound):
		a.logger.Warn(err.Error(), "service", handler)
		respondWithError(w, http.StatusNotFound, err)

	case errors.Is(err, service.ErrInsufficientFunds):
		a.logger.Warn(err.Error(), "service", handler)
		respondWithError(w, http.StatusPaymentRequired, err)

	case errors.Is(err, service.ErrAlreadyOwned):
		a.logger.Warn(err.Error(), "service", handler)
		respondWithError(w, http.StatusConflict, err)

	case errors.Is(err, service.ErrNotPurchasable):
		a.logger.Warn(err.Error(), "service", handler)
		respondWithError(w, http.StatusUnprocessableEntity, err)

	default:
		a.logger.Error(err.Error(), "service", handler)
		respondWithError(w, http.StatusInternalServerError, err)
	}
}
