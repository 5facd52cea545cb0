package payment

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/platform/id"
)

// StubGateway is an in-memory gateway for development and tests.
// Sessions start unpaid; MarkPaid simulates the buyer completing checkout.
type StubGateway struct {
	baseURL string

	mu       sync.Mutex
	sessions map[string]CheckoutSession
}

// NewStubGateway creates a stub gateway issuing pay URLs under baseURL.
func NewStubGateway(baseURL string) *StubGateway {
	return &StubGateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		sessions: make(map[string]CheckoutSession),
	}
}

// Name identifies the provider.
func (g *StubGateway) Name() string { return "stub" }

// CreateCheckoutSession records an unpaid session and returns its pay URL.
func (g *StubGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error) {
	sessionID, err := id.NewID()
	if err != nil {
		return CheckoutSession{}, apperrors.Wrap(apperrors.CodeGatewayUnavailable, "generate stub session id", err)
	}

	metadata := make(map[string]string, len(params.Metadata))
	for key, value := range params.Metadata {
		metadata[key] = value
	}
	session := CheckoutSession{
		ID:            "stub_" + sessionID,
		URL:           g.baseURL + "/pay/stub?session_id=stub_" + sessionID,
		PaymentStatus: StatusUnpaid,
		AmountCents:   params.AmountCents,
		BuyerEmail:    params.BuyerEmail,
		Metadata:      metadata,
	}

	g.mu.Lock()
	g.sessions[session.ID] = session
	g.mu.Unlock()
	return session, nil
}

// RetrieveCheckoutSession returns the recorded session state.
func (g *StubGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error) {
	g.mu.Lock()
	session, ok := g.sessions[sessionID]
	g.mu.Unlock()
	if !ok {
		return CheckoutSession{}, apperrors.New(apperrors.CodeGatewayUnavailable, "stub session not found")
	}
	return session, nil
}

// MarkPaid flips a session to paid as the given buyer.
func (g *StubGateway) MarkPaid(sessionID, buyerEmail string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[sessionID]
	if !ok {
		return false
	}
	session.PaymentStatus = StatusPaid
	if strings.TrimSpace(buyerEmail) != "" {
		session.BuyerEmail = buyerEmail
	}
	g.sessions[sessionID] = session
	return true
}
