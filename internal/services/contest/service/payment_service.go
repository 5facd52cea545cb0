package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nextchamp/nextchamp/internal/payment"
	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/contest"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
	"github.com/nextchamp/nextchamp/internal/telemetry"
)

// MetadataContestID is the session metadata key carrying the contest id
// through the payment provider and back.
const MetadataContestID = "contestId"

// PaymentService reconciles provider checkout sessions into contest
// participant admissions.
type PaymentService struct {
	gateway    payment.Gateway
	store      storage.ContestStore
	emitter    *telemetry.Emitter
	successURL string
	cancelURL  string
	clock      func() time.Time
}

// NewPaymentService creates a payment reconciliation service.
//
// The emitter may be nil; reconciliation then runs without operational
// telemetry.
func NewPaymentService(gateway payment.Gateway, store storage.ContestStore, emitter *telemetry.Emitter, cfg payment.Config) *PaymentService {
	return &PaymentService{
		gateway:    gateway,
		store:      store,
		emitter:    emitter,
		successURL: cfg.SuccessURL(),
		cancelURL:  cfg.CancelURL(),
		clock:      time.Now,
	}
}

// CreateSessionInput describes a checkout session to open with the provider.
type CreateSessionInput struct {
	ContestID        string
	Price            float64
	ParticipantEmail string
	ProductName      string
}

// CreateSession opens a provider checkout session for a contest entry fee.
//
// The price converts to the smallest currency unit with round-half-up so a
// price of 9.99 charges exactly 999. The contest id rides along as session
// metadata; no local state is written until reconciliation.
func (s *PaymentService) CreateSession(ctx context.Context, input CreateSessionInput) (payment.CheckoutSession, error) {
	if strings.TrimSpace(input.ContestID) == "" {
		return payment.CheckoutSession{}, apperrors.New(apperrors.CodeGatewaySessionMalformed, "contest id is required")
	}
	if input.Price <= 0 {
		return payment.CheckoutSession{}, apperrors.New(apperrors.CodeContestInvalidPrice, "contest price must be positive")
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		AmountCents: int64(math.Round(input.Price * 100)),
		Currency:    "usd",
		ProductName: input.ProductName,
		BuyerEmail:  input.ParticipantEmail,
		Metadata:    map[string]string{MetadataContestID: input.ContestID},
		SuccessURL:  s.successURL,
		CancelURL:   s.cancelURL,
	})
	if err != nil {
		return payment.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return session, nil
}

// ReconcileResult reports the effect of one reconciliation pass.
type ReconcileResult struct {
	Outcome   Outcome
	ContestID string
	Email     string
}

// Reconcile turns a completed checkout session into a participant admission.
//
// Repeats for the same session converge: the first paid reconciliation admits
// the buyer, every later one reports OutcomeAlreadyParticipant without
// writing. An unpaid session never mutates anything.
func (s *PaymentService) Reconcile(ctx context.Context, sessionID string) (ReconcileResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return ReconcileResult{}, apperrors.New(apperrors.CodeGatewaySessionMalformed, "session id is required")
	}

	session, err := s.gateway.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return ReconcileResult{}, apperrors.Wrap(apperrors.CodeGatewayUnavailable, "retrieve checkout session", err)
	}

	if session.PaymentStatus != payment.StatusPaid {
		s.emit(ctx, "payment.not_paid", telemetry.SeverityInfo, "", session)
		return ReconcileResult{Outcome: OutcomeNotPaid}, nil
	}

	contestID := strings.TrimSpace(session.Metadata[MetadataContestID])
	if contestID == "" {
		return ReconcileResult{}, apperrors.New(apperrors.CodeGatewaySessionMalformed, "session metadata is missing the contest id")
	}
	email := strings.TrimSpace(session.BuyerEmail)
	if email == "" {
		return ReconcileResult{}, apperrors.New(apperrors.CodeGatewaySessionMalformed, "session is missing the buyer email")
	}

	err = s.store.AdmitPaidParticipant(ctx, contestID, contest.Participant{
		Email:     email,
		PaymentAt: s.clock().UTC(),
	})
	switch {
	case err == nil:
		s.emit(ctx, "payment.reconciled", telemetry.SeverityInfo, contestID, session)
		return ReconcileResult{Outcome: OutcomeAdmitted, ContestID: contestID, Email: email}, nil
	case errors.Is(err, storage.ErrParticipantExists):
		s.emit(ctx, "payment.already_participant", telemetry.SeverityInfo, contestID, session)
		return ReconcileResult{Outcome: OutcomeAlreadyParticipant, ContestID: contestID, Email: email}, nil
	case errors.Is(err, storage.ErrNotFound):
		s.emit(ctx, "payment.contest_missing", telemetry.SeverityWarn, contestID, session)
		return ReconcileResult{}, err
	default:
		return ReconcileResult{}, fmt.Errorf("reconcile session %s: %w", sessionID, err)
	}
}

func (s *PaymentService) emit(ctx context.Context, eventName string, severity telemetry.Severity, contestID string, session payment.CheckoutSession) {
	attributes := map[string]any{
		"provider":       s.gateway.Name(),
		"payment_status": string(session.PaymentStatus),
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		attributes["trace_id"] = sc.TraceID().String()
		attributes["span_id"] = sc.SpanID().String()
	}
	if err := s.emitter.Emit(ctx, storage.TelemetryEvent{
		EventName:  eventName,
		Severity:   string(severity),
		ContestID:  contestID,
		SessionID:  session.ID,
		Email:      session.BuyerEmail,
		Attributes: attributes,
	}); err != nil {
		// Telemetry never fails the reconciliation itself.
		log.Printf("telemetry emit %s: %v", eventName, err)
	}
}
