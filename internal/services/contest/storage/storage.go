// Package storage defines the persistence boundary for the contest service.
package storage

import (
	"context"
	"time"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/contest"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/user"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity" states
// and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrParticipantExists indicates an admission tried to insert a second
// participant row for the same (contest, email) pair. The lifecycle and
// reconciliation engines treat it as an idempotent no-op, not a failure.
var ErrParticipantExists = apperrors.New(apperrors.CodeParticipantExists, "participant already exists in contest")

// ContestFilter constrains ListContests. Zero values mean "unconstrained".
type ContestFilter struct {
	// CreatorEmail restricts results to one creator (exact match).
	CreatorEmail string
	// Search matches a case-insensitive substring of title or type (OR).
	Search string
	// Limit caps the result count after filtering when positive.
	Limit int
}

// ContestPatch carries the optional fields of a generic contest update.
// Nil fields are left untouched; the store stamps updatedTime on apply.
type ContestPatch struct {
	CreatorEmail *string
	Title        *string
	Type         *string
	Price        *float64
	Status       *string
	// Email is the participant-admission marker carried by update payloads;
	// the lifecycle engine checks membership against it before applying.
	Email string
}

// ContestStore owns contest lifecycle persistence and the transactional
// participant-admission invariant.
type ContestStore interface {
	PutContest(ctx context.Context, c contest.Contest) error
	GetContest(ctx context.Context, id string) (contest.Contest, error)
	// ListContests returns contests matching the filter, newest first.
	ListContests(ctx context.Context, filter ContestFilter) ([]contest.Contest, error)
	// ListContestsByParticipant returns contests where email holds a seat.
	ListContestsByParticipant(ctx context.Context, email string) ([]contest.Contest, error)
	// DeleteContest removes a contest and reports how many rows were
	// affected. Deleting an absent id succeeds with zero affected.
	DeleteContest(ctx context.Context, id string) (int64, error)
	// UpdateContest applies non-nil patch fields and stamps updatedTime.
	UpdateContest(ctx context.Context, id string, patch ContestPatch, updatedAt time.Time) error
	// SetContestStatus overwrites the status label as-is.
	SetContestStatus(ctx context.Context, id string, status string) error
	// AppendWinner marks the contest declared and appends the record.
	AppendWinner(ctx context.Context, id string, record contest.WinnerRecord) error
	// HasParticipant reports whether email holds a seat in the contest.
	HasParticipant(ctx context.Context, contestID, email string) (bool, error)
	// AdmitPaidParticipant atomically marks the contest paid and inserts the
	// participant inside one transaction. Returns ErrNotFound when the
	// contest is missing and ErrParticipantExists when the seat is taken;
	// neither leaves a partial write.
	AdmitPaidParticipant(ctx context.Context, contestID string, p contest.Participant) error
	// UpdateParticipantTask updates task, name, and image on one seat,
	// leaving email and paymentAt untouched.
	UpdateParticipantTask(ctx context.Context, contestID, email, task, name, image string) error
}

// UserStore owns user account persistence keyed by email.
type UserStore interface {
	PutUser(ctx context.Context, u user.User) error
	// GetUserByEmail returns ErrNotFound when no account exists.
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	// ListUsers returns all users, or the one matching email when set.
	ListUsers(ctx context.Context, email string) ([]user.User, error)
	// SetUserRole overwrites the role of the user with the given id.
	SetUserRole(ctx context.Context, id, role string) error
}

// TelemetryEvent captures operational observations emitted during
// payment reconciliation and other state transitions.
type TelemetryEvent struct {
	Timestamp  time.Time
	EventName  string
	Severity   string
	ContestID  string
	SessionID  string
	Email      string
	Attributes map[string]any
}

// TelemetryStore persists operational telemetry records for audits.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}

// Store is a composite interface for all persistence concerns.
type Store interface {
	ContestStore
	UserStore
	TelemetryStore
	Close() error
}
