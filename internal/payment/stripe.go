package payment

import (
	"context"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
)

// StripeGateway implements Gateway over Stripe Checkout.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a gateway using the given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

// Name identifies the provider.
func (g *StripeGateway) Name() string { return "stripe" }

// CreateCheckoutSession creates a single-line-item payment session.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(params.Currency),
					UnitAmount: stripe.Int64(params.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(params.BuyerEmail),
		SuccessURL:    stripe.String(params.SuccessURL),
		CancelURL:     stripe.String(params.CancelURL),
	}
	for key, value := range params.Metadata {
		sessionParams.AddMetadata(key, value)
	}

	created, err := g.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return CheckoutSession{}, apperrors.Wrap(apperrors.CodeGatewayUnavailable, "create checkout session", err)
	}
	return fromStripeSession(created), nil
}

// RetrieveCheckoutSession fetches the current state of a session by id.
func (g *StripeGateway) RetrieveCheckoutSession(ctx context.Context, id string) (CheckoutSession, error) {
	retrieved, err := g.api.CheckoutSessions.Get(id, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return CheckoutSession{}, apperrors.Wrap(apperrors.CodeGatewayUnavailable, "retrieve checkout session", err)
	}
	return fromStripeSession(retrieved), nil
}

func fromStripeSession(s *stripe.CheckoutSession) CheckoutSession {
	session := CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: Status(s.PaymentStatus),
		AmountCents:   s.AmountTotal,
		Metadata:      s.Metadata,
	}
	// CustomerDetails is only populated once the buyer has interacted with
	// checkout; the email there is the provider-verified identity.
	if s.CustomerDetails != nil {
		session.BuyerEmail = s.CustomerDetails.Email
	}
	return session
}
