package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tundeajayi/coinshelf/internal/models"
	"github.com/tundeajayi/coinshelf/internal/service"
)

// HandleTopUp godoc
//
//	@Summary		Buy coins
//	@Description	Buy a coin plan, returns the provider checkout url
//	@Tags			coins
//	@Param			plan_id	body		models.HandleTopUpParams	true	"plan_id"
//	@Failure		400		{object}	models.ErrorResponse
//	@Failure		404		{object}	models.ErrorResponse
//	@Failure		502		{object}	models.ErrorResponse
//	@Success		200		{object}	models.HandleTopUpResponse
//	@Router			/coins [post]
func (a *Api) HandleTopUp(w http.ResponseWriter, r *http.Request) {
	user := requesterId(r)
	var params models.HandleTopUpParams

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleTopUp")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(&params); err != nil {
		a.logger.Warn(fmt.Sprintf("error validating fields: %v", err), "service", "HandleTopUp")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error validating fields: %v", err))
		return
	}

	entry, url, err := a.topups.Create(r.Context(), user, params.Plan_id)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan):
			a.logger.Warn("coin plan not found", "service", "HandleTopUp")
			respondWithError(w, http.StatusNotFound, err)

		case errors.Is(err, service.ErrUpstream):
			a.logger.Error(err.Error(), "service", "HandleTopUp")
			respondWithError(w, http.StatusBadGateway, err)

		default:
			a.logger.Error(err.Error(), "service", "HandleTopUp")
			respondWithError(w, http.StatusInternalServerError, err)
		}

		return
	}

	respondWithSuccess(w, http.StatusOK, &models.HandleTopUpResponse{Url: url, Order_id: entry.Id.String()})
}

// HandleWithdraw godoc
//
//	@Summary		Withdraw coins
//	@Description	Move coins out of the wallet into an external payout
//	@Tags			coins
//	@Param			amount	body		models.HandleWithdrawParams	true	"amount"
//	@Failure		400		{object}	models.ErrorResponse
//	@Failure		402		{object}	models.ErrorResponse
//	@Success		200		{object}	models.HandlePurchaseResponse
//	@Router			/coins/withdraw [post]
func (a *Api) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	user := requesterId(r)
	var params models.HandleWithdrawParams

	if err := decodeJson(r, &params); err != nil {
		a.logger.Warn(err.Error(), "service", "HandleWithdraw")
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(&params); err != nil {
		a.logger.Warn(fmt.Sprintf("error validating fields: %v", err), "service", "HandleWithdraw")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error validating fields: %v", err))
		return
	}

	entry, err := a.purchases.Withdraw(r.Context(), user, params.Amount)

	if err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			a.logger.Warn("insufficient balance for withdrawal", "service", "HandleWithdraw")
			respondWithError(w, http.StatusPaymentRequired, err)
			return
		}

		a.logger.Error(err.Error(), "service", "HandleWithdraw")
		respondWithError(w, http.StatusInternalServerError, err)
		return
	}

	respondWithSuccess(w, http.StatusOK, &models.HandlePurchaseResponse{Ledger_id: entry.Id.String(), Amount: entry.Amount})
}

// HandleGetLedger godoc
//
//	@Summary		Get own ledger
//	@Description	List the caller's money movements, newest first
//	@Tags			coins
//	@Failure		500	{object}	models.ErrorResponse
//	@Success		200	{object}	models.HandleGetLedgerResponse
//	@Router			/ledger [get]
func (a *Api) HandleGetLedger(w http.ResponseWriter, r *http.Request) {
	user := requesterId(r)

	entries, err := a.store.GetLedgerEntries(r.Context(), user)

	if err != nil {
		a.logger.Error(err.Error(), "service", "HandleGetLedger")
		respondWithError(w, http.StatusInternalServerError, err)
		return
	}

	response := models.HandleGetLedgerResponse{Entries: []models.HandleGetLedgerResponseEntry{}}

	for _, entry := range entries {
		response.Entries = append(response.Entries, models.HandleGetLedgerResponseEntry{
			Id:           entry.Id.String(),
			Type:         entry.Type,
			Amount:       entry.Amount,
			Status:       entry.Status,
			Novel_id:     entry.Novel_id,
			Chapter_id:   entry.Chapter_id,
			Created_at:   entry.Created_at,
			Completed_at: entry.Completed_at,
		})
	}

	respondWithSuccess(w, http.StatusOK, &response)
}
