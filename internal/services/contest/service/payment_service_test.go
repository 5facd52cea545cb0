package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nextchamp/nextchamp/internal/payment"
	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/contest"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
	"github.com/nextchamp/nextchamp/internal/telemetry"
)

func newTestPaymentService(store storage.ContestStore, gateway payment.Gateway, emitter *telemetry.Emitter) *PaymentService {
	svc := NewPaymentService(gateway, store, emitter, payment.Config{SiteDomain: "http://localhost:3000"})
	svc.clock = func() time.Time {
		return time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func seedPaidSession(t *testing.T, gateway *payment.StubGateway, contestID, buyer string, price float64) payment.CheckoutSession {
	t.Helper()
	session, err := gateway.CreateCheckoutSession(context.Background(), payment.CheckoutParams{
		AmountCents: int64(price * 100),
		Currency:    "usd",
		ProductName: "entry",
		BuyerEmail:  buyer,
		Metadata:    map[string]string{MetadataContestID: contestID},
	})
	if err != nil {
		t.Fatalf("create stub session: %v", err)
	}
	if !gateway.MarkPaid(session.ID, buyer) {
		t.Fatalf("mark session %s paid", session.ID)
	}
	return session
}

func TestCreateSessionConvertsPriceToCents(t *testing.T) {
	store := newFakeStore()
	gateway := payment.NewStubGateway("http://localhost:3000")
	svc := newTestPaymentService(store, gateway, nil)

	session, err := svc.CreateSession(context.Background(), CreateSessionInput{
		ContestID:        "c-1",
		Price:            10,
		ParticipantEmail: "bob@example.com",
		ProductName:      "Logo Sprint entry",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.URL == "" {
		t.Fatal("session URL empty")
	}
	if session.Metadata[MetadataContestID] != "c-1" {
		t.Fatalf("metadata contest id = %q, want c-1", session.Metadata[MetadataContestID])
	}
	if session.AmountCents != 1000 {
		t.Fatalf("amount = %d cents, want 1000 for a price of 10", session.AmountCents)
	}

	// Fractional prices round half-up into cents.
	fractional, err := svc.CreateSession(context.Background(), CreateSessionInput{
		ContestID: "c-1", Price: 9.994, ParticipantEmail: "bob@example.com",
	})
	if err != nil {
		t.Fatalf("create fractional session: %v", err)
	}
	if fractional.AmountCents != 999 {
		t.Fatalf("amount = %d cents, want 999 for a price of 9.994", fractional.AmountCents)
	}

	_, err = svc.CreateSession(context.Background(), CreateSessionInput{ContestID: "c-1"})
	if apperrors.CodeOf(err) != apperrors.CodeContestInvalidPrice {
		t.Fatalf("zero price code = %q, want CONTEST_INVALID_PRICE", apperrors.CodeOf(err))
	}
}

func TestReconcilePaidSessionAdmitsBuyer(t *testing.T) {
	store := newFakeStore()
	gateway := payment.NewStubGateway("http://localhost:3000")
	svc := newTestPaymentService(store, gateway, telemetry.NewEmitter(store))

	contestSvc := newTestContestService(store)
	created := seedServiceContest(t, store, contestSvc, "Logo Sprint", "design")
	session := seedPaidSession(t, gateway, created.ID, "bob@example.com", 10)

	result, err := svc.Reconcile(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Outcome != OutcomeAdmitted {
		t.Fatalf("outcome = %q, want admitted", result.Outcome)
	}
	if result.Email != "bob@example.com" || result.ContestID != created.ID {
		t.Fatalf("result = %+v, want bob admitted to %s", result, created.ID)
	}

	got, err := store.GetContest(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get contest: %v", err)
	}
	if got.PaymentStatus != contest.PaymentStatusPaid {
		t.Fatalf("payment_status = %q, want paid", got.PaymentStatus)
	}
	if len(got.Participants) != 1 || got.Participants[0].Email != "bob@example.com" {
		t.Fatalf("participants = %+v, want one seat for bob", got.Participants)
	}
	if got.Participants[0].PaymentAt.IsZero() {
		t.Fatal("payment_at not stamped")
	}

	// The second pass for the same session is a successful no-op.
	repeat, err := svc.Reconcile(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("repeat reconcile: %v", err)
	}
	if repeat.Outcome != OutcomeAlreadyParticipant {
		t.Fatalf("repeat outcome = %q, want already_participant", repeat.Outcome)
	}
	got, _ = store.GetContest(context.Background(), created.ID)
	if len(got.Participants) != 1 {
		t.Fatalf("participants = %d, want still 1", len(got.Participants))
	}

	if len(store.events) != 2 {
		t.Fatalf("telemetry events = %d, want 2", len(store.events))
	}
	if store.events[0].EventName != "payment.reconciled" {
		t.Fatalf("first event = %q, want payment.reconciled", store.events[0].EventName)
	}
}

func TestReconcileUnpaidSessionNeverMutates(t *testing.T) {
	store := newFakeStore()
	gateway := payment.NewStubGateway("http://localhost:3000")
	svc := newTestPaymentService(store, gateway, nil)

	contestSvc := newTestContestService(store)
	created := seedServiceContest(t, store, contestSvc, "Logo Sprint", "design")
	session, err := gateway.CreateCheckoutSession(context.Background(), payment.CheckoutParams{
		AmountCents: 1000,
		BuyerEmail:  "bob@example.com",
		Metadata:    map[string]string{MetadataContestID: created.ID},
	})
	if err != nil {
		t.Fatalf("create stub session: %v", err)
	}

	result, err := svc.Reconcile(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("reconcile unpaid: %v", err)
	}
	if result.Outcome != OutcomeNotPaid {
		t.Fatalf("outcome = %q, want not_paid", result.Outcome)
	}

	got, _ := store.GetContest(context.Background(), created.ID)
	if got.PaymentStatus != contest.PaymentStatusUnpaid || len(got.Participants) != 0 {
		t.Fatalf("unpaid reconcile mutated contest: %+v", got)
	}
}

func TestReconcileGatewayFailure(t *testing.T) {
	store := newFakeStore()
	gateway := payment.NewStubGateway("http://localhost:3000")
	svc := newTestPaymentService(store, gateway, nil)

	_, err := svc.Reconcile(context.Background(), "stub_missing")
	if apperrors.CodeOf(err) != apperrors.CodeGatewayUnavailable {
		t.Fatalf("code = %q, want GATEWAY_UNAVAILABLE", apperrors.CodeOf(err))
	}
}

func TestReconcileMissingContestAbandons(t *testing.T) {
	store := newFakeStore()
	gateway := payment.NewStubGateway("http://localhost:3000")
	svc := newTestPaymentService(store, gateway, nil)

	session := seedPaidSession(t, gateway, "missing-contest", "bob@example.com", 10)
	_, err := svc.Reconcile(context.Background(), session.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReconcileConcurrentCallsConverge(t *testing.T) {
	store := newFakeStore()
	gateway := payment.NewStubGateway("http://localhost:3000")
	svc := newTestPaymentService(store, gateway, nil)

	contestSvc := newTestContestService(store)
	created := seedServiceContest(t, store, contestSvc, "Logo Sprint", "design")
	session := seedPaidSession(t, gateway, created.ID, "bob@example.com", 10)

	const calls = 8
	var wg sync.WaitGroup
	outcomes := make([]Outcome, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			result, err := svc.Reconcile(context.Background(), session.ID)
			if err != nil {
				t.Errorf("reconcile %d: %v", slot, err)
				return
			}
			outcomes[slot] = result.Outcome
		}(i)
	}
	wg.Wait()

	var admitted int
	for _, outcome := range outcomes {
		if outcome == OutcomeAdmitted {
			admitted++
		}
	}
	if admitted != 1 {
		t.Fatalf("admitted = %d, want exactly 1", admitted)
	}
	got, _ := store.GetContest(context.Background(), created.ID)
	if len(got.Participants) != 1 {
		t.Fatalf("participants = %d, want 1 seat", len(got.Participants))
	}
}
