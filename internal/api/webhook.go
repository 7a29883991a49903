package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tundeajayi/coinshelf/internal/service"
	"github.com/tundeajayi/coinshelf/internal/store"
)

// HandleWebHook maps provider checkout outcomes onto ledger
// transitions. Stripe redelivers events until it sees a 2xx, so a
// transition that already happened (ErrConflict) is acknowledged
// rather than errored, and the pending-only guard in the store keeps
// the replayed credit from happening twice.
func (a *Api) HandleWebHook(w http.ResponseWriter, r *http.Request) {
	const MaxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	payload, err := io.ReadAll(r.Body)

	if err != nil {
		a.logger.Error(fmt.Sprintf("error reading payload: %v", err), "service", "HandleWebHook")
		respondWithError(w, http.StatusServiceUnavailable, fmt.Errorf("error reading payload: %v", err))
		return
	}

	signatureHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, signatureHeader, a.config.Stripe_webhook_secret)

	if err != nil {
		a.logger.Warn(fmt.Sprintf("error verifying webhook signature: %v", err), "service", "HandleWebHook")
		respondWithError(w, http.StatusBadRequest, fmt.Errorf("error verifying webhook signature: %v", err))
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession

		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			a.logger.Error(fmt.Sprintf("error unmarshalling event data: %v", err), "service", "HandleWebHook")
			respondWithError(w, http.StatusInternalServerError, fmt.Errorf("error unmarshalling event data: %v", err))
			return
		}

		orderId := session.Metadata["order_id"]

		if err := a.topups.Complete(r.Context(), orderId); err != nil {
			switch {
			case errors.Is(err, service.ErrConflict):
				a.logger.Info("ignoring replayed checkout event", "service", "HandleWebHook", "order_id", orderId)

			case errors.Is(err, store.ErrLedgerEntryNotFound):
				// Not ours to settle; an error response would only
				// make the provider redeliver it forever.
				a.logger.Warn("checkout event for unknown order", "service", "HandleWebHook", "order_id", orderId)

			default:
				a.logger.Error(err.Error(), "service", "HandleWebHook")
				respondWithError(w, http.StatusInternalServerError, err)
				return
			}
		}

	case "checkout.session.expired":
		var session stripe.CheckoutSession

		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			a.logger.Error(fmt.Sprintf("error unmarshalling event data: %v", err), "service", "HandleWebHook")
			respondWithError(w, http.StatusInternalServerError, fmt.Errorf("error unmarshalling event data: %v", err))
			return
		}

		orderId := session.Metadata["order_id"]

		if err := a.topups.Cancel(r.Context(), orderId); err != nil && !errors.Is(err, service.ErrConflict) {
			a.logger.Error(err.Error(), "service", "HandleWebHook")
			respondWithError(w, http.StatusInternalServerError, err)
			return
		}
	}

	respondWithSuccess(w, http.StatusOK, nil)
}
