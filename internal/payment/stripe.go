package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

type StripeProvider struct {
	host string
}

func NewStripeProvider(key string, host string) *StripeProvider {
	stripe.Key = key

	return &StripeProvider{
		host: host,
	}
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, orderId string, userId string, coins int, unitAmount int) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(int64(unitAmount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%d coins", coins)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.host + "/healthz"), //TODO: put a better url here when there's a frontend
		CancelURL:  stripe.String(p.host + "/healthz"), //TODO: put a better url here when there's a frontend
		Metadata: map[string]string{
			"order_id": orderId,
			"user_id":  userId,
			"coins":    strconv.Itoa(coins),
		},
	}
	params.Context = ctx

	s, err := session.New(params)

	if err != nil {
		return "", "", fmt.Errorf("error creating stripe session: %v", err)
	}

	return s.URL, s.ID, nil
}

// Cancel expires the checkout session. Stripe rejects expiring a
// session that already completed, which is exactly what the reaper
// needs: the ledger row is only marked cancelled once the provider
// confirms nobody can still pay against it.
func (p *StripeProvider) Cancel(ctx context.Context, ref string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx

	if _, err := session.Expire(ref, params); err != nil {
		// Expire also fails on a session that is already expired,
		// e.g. when an earlier sweep expired it but crashed before
		// the ledger transition. That session is just as dead.
		getParams := &stripe.CheckoutSessionParams{}
		getParams.Context = ctx

		if s, gerr := session.Get(ref, getParams); gerr == nil && s.Status == stripe.CheckoutSessionStatusExpired {
			return nil
		}

		return fmt.Errorf("error expiring stripe session: %v", err)
	}

	return nil
}
