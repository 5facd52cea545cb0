// Package contest holds the contest domain model and its creation rules.
package contest

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/platform/id"
)

// PaymentStatus tracks whether any reconciled payment has landed on a contest.
type PaymentStatus string

const (
	// PaymentStatusUnpaid is the initial state of every contest.
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	// PaymentStatusPaid is set by payment reconciliation and never reverts.
	PaymentStatusPaid PaymentStatus = "paid"
)

// WinnerStatus tracks whether a winner has been declared.
type WinnerStatus string

const (
	// WinnerStatusUndeclared is the initial state of every contest.
	WinnerStatusUndeclared WinnerStatus = "undeclared"
	// WinnerStatusDeclared is set by the first winner declaration.
	WinnerStatusDeclared WinnerStatus = "declared"
)

// StatusPending is the status assigned at creation. Organizers may later set
// any label they like; status is deliberately not a closed enum.
const StatusPending = "pending"

// Participant is a contest-scoped record of one paying entrant.
// It is created exactly once per (contest, email) by payment reconciliation
// and later mutated in place by task submission.
type Participant struct {
	Email     string
	PaymentAt time.Time
	Task      string
	Name      string
	Image     string
}

// WinnerRecord is one appended winner declaration. Multiple records per
// contest are allowed (ties or multiple prize tiers).
type WinnerRecord struct {
	Email      string
	Name       string
	Prize      string
	DeclaredAt time.Time
}

// Contest is a competition owning participants, payment state, and winners.
type Contest struct {
	ID            string
	CreatorEmail  string
	Title         string
	Type          string
	Price         float64
	Status        string
	PaymentStatus PaymentStatus
	Participants  []Participant
	Winners       []WinnerRecord
	WinnerStatus  WinnerStatus
	CreatedAt     time.Time
	UpdatedTime   *time.Time
}

// HasParticipant reports whether email already holds a participant seat.
func (c Contest) HasParticipant(email string) bool {
	for _, p := range c.Participants {
		if p.Email == email {
			return true
		}
	}
	return false
}

// CreateInput describes the fields needed to create a contest.
type CreateInput struct {
	CreatorEmail string
	Title        string
	Type         string
	Price        float64
}

// Create builds a new pending contest with a generated ID and timestamps.
func Create(input CreateInput, now func() time.Time, idGenerator func() (string, error)) (Contest, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return Contest{}, err
	}

	contestID, err := idGenerator()
	if err != nil {
		return Contest{}, fmt.Errorf("generate contest id: %w", err)
	}

	return Contest{
		ID:            contestID,
		CreatorEmail:  normalized.CreatorEmail,
		Title:         normalized.Title,
		Type:          normalized.Type,
		Price:         normalized.Price,
		Status:        StatusPending,
		PaymentStatus: PaymentStatusUnpaid,
		WinnerStatus:  WinnerStatusUndeclared,
		CreatedAt:     now().UTC(),
	}, nil
}

// NormalizeCreateInput trims and validates contest creation input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.CreatorEmail = strings.TrimSpace(input.CreatorEmail)
	input.Title = strings.TrimSpace(input.Title)
	input.Type = strings.TrimSpace(input.Type)
	if input.Title == "" {
		return CreateInput{}, apperrors.New(apperrors.CodeContestTitleEmpty, "contest title is required")
	}
	if input.Type == "" {
		return CreateInput{}, apperrors.New(apperrors.CodeContestTypeEmpty, "contest type is required")
	}
	if input.Price <= 0 {
		return CreateInput{}, apperrors.New(apperrors.CodeContestInvalidPrice, "contest price must be positive")
	}
	return input, nil
}
