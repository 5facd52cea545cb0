package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/user"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
)

func newTestUserService(store storage.UserStore) *UserService {
	svc := NewUserService(store)
	svc.clock = func() time.Time {
		return time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	}
	svc.idGenerator = func() (string, error) { return "user-1", nil }
	return svc
}

func TestSignupDefaultsRoleAndIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestUserService(store)

	created, outcome, err := svc.Signup(context.Background(), user.SignupInput{Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Fatalf("outcome = %q, want created", outcome)
	}
	if created.Role != user.DefaultRole {
		t.Fatalf("role = %q, want %q", created.Role, user.DefaultRole)
	}

	// A second signup for the same email returns the existing account.
	repeat, outcome, err := svc.Signup(context.Background(), user.SignupInput{Email: "alice@example.com", Role: "admin"})
	if err != nil {
		t.Fatalf("repeat signup: %v", err)
	}
	if outcome != OutcomeAlreadyExists {
		t.Fatalf("outcome = %q, want already_exists", outcome)
	}
	if repeat.ID != created.ID || repeat.Role != user.DefaultRole {
		t.Fatalf("repeat = %+v, want untouched original %+v", repeat, created)
	}

	_, _, err = svc.Signup(context.Background(), user.SignupInput{})
	if apperrors.CodeOf(err) != apperrors.CodeUserEmailEmpty {
		t.Fatalf("empty email code = %q, want USER_EMAIL_EMPTY", apperrors.CodeOf(err))
	}
}

func TestSetRole(t *testing.T) {
	store := newFakeStore()
	svc := newTestUserService(store)

	created, _, err := svc.Signup(context.Background(), user.SignupInput{Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.SetRole(context.Background(), created.ID, "admin"); err != nil {
		t.Fatalf("set role: %v", err)
	}
	got, err := store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Role != "admin" {
		t.Fatalf("role = %q, want admin", got.Role)
	}

	if err := svc.SetRole(context.Background(), created.ID, "  "); apperrors.CodeOf(err) != apperrors.CodeUserRoleEmpty {
		t.Fatalf("blank role code = %q, want USER_ROLE_EMPTY", apperrors.CodeOf(err))
	}
	if err := svc.SetRole(context.Background(), "missing", "admin"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}
}

func TestListUsersFilter(t *testing.T) {
	store := newFakeStore()
	svc := newTestUserService(store)
	next := 0
	svc.idGenerator = func() (string, error) {
		next++
		return []string{"user-1", "user-2"}[next-1], nil
	}

	if _, _, err := svc.Signup(context.Background(), user.SignupInput{Email: "alice@example.com"}); err != nil {
		t.Fatalf("signup alice: %v", err)
	}
	if _, _, err := svc.Signup(context.Background(), user.SignupInput{Email: "bob@example.com"}); err != nil {
		t.Fatalf("signup bob: %v", err)
	}

	all, err := svc.ListUsers(context.Background(), "")
	if err != nil || len(all) != 2 {
		t.Fatalf("all users = (%d, %v), want 2", len(all), err)
	}
	only, err := svc.ListUsers(context.Background(), "bob@example.com")
	if err != nil || len(only) != 1 || only[0].Email != "bob@example.com" {
		t.Fatalf("filtered users = (%v, %v), want bob only", only, err)
	}
}
