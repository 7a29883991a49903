package payment

import "context"

// Provider is the boundary to the external payment gateway. orderId is
// the ledger entry id; the returned ref is the provider's own handle,
// needed later to cancel a checkout that never completed.
type Provider interface {
	CreateCheckout(ctx context.Context, orderId string, userId string, coins int, unitAmount int) (url string, ref string, err error)
	Cancel(ctx context.Context, ref string) error
}
