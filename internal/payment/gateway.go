// Package payment defines the checkout-session boundary with the payment provider.
package payment

import "context"

// Status is the provider-reported payment state of a checkout session.
type Status string

const (
	// StatusUnpaid indicates the session has not been paid yet.
	StatusUnpaid Status = "unpaid"
	// StatusPaid indicates the payment completed.
	StatusPaid Status = "paid"
)

// CheckoutParams describes a checkout session to create with the provider.
type CheckoutParams struct {
	// AmountCents is the price in the smallest currency unit.
	AmountCents int64
	// Currency is the ISO currency code, for example "usd".
	Currency string
	// ProductName is the line-item description shown to the buyer.
	ProductName string
	// BuyerEmail pre-fills the checkout form; the provider-verified buyer
	// identity on the completed session is authoritative, not this value.
	BuyerEmail string
	// Metadata is opaque key/value state echoed back on retrieval.
	Metadata map[string]string
	// SuccessURL and CancelURL are the post-checkout redirect targets.
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the provider's view of a session.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus Status
	// AmountCents is the charged total in the smallest currency unit.
	AmountCents int64
	// BuyerEmail is the provider-verified email of whoever completed payment.
	BuyerEmail string
	Metadata   map[string]string
}

// Gateway creates checkout sessions and reports their payment state.
// Implementations must not retry on their own; retry is a caller concern.
type Gateway interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, id string) (CheckoutSession, error)
}
