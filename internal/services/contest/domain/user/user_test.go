package user

import (
	"testing"
	"time"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
)

func TestCreateDefaultsRole(t *testing.T) {
	fixedTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created, err := Create(SignupInput{Email: " a@x.com "},
		func() time.Time { return fixedTime },
		func() (string, error) { return "user-1", nil })
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Email != "a@x.com" {
		t.Fatalf("expected trimmed email, got %q", created.Email)
	}
	if created.Role != DefaultRole {
		t.Fatalf("expected default role, got %q", created.Role)
	}
	if created.CreatedAt != fixedTime {
		t.Fatalf("expected created at %v, got %v", fixedTime, created.CreatedAt)
	}
}

func TestCreateKeepsExplicitRole(t *testing.T) {
	created, err := Create(SignupInput{Email: "a@x.com", Role: "organizer"}, nil, nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Role != "organizer" {
		t.Fatalf("expected organizer role, got %q", created.Role)
	}
}

func TestCreateRequiresEmail(t *testing.T) {
	_, err := Create(SignupInput{Email: "  "}, nil, nil)
	if apperrors.CodeOf(err) != apperrors.CodeUserEmailEmpty {
		t.Fatalf("expected CodeUserEmailEmpty, got %v", err)
	}
}
