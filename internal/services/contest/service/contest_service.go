package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/platform/id"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/contest"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
)

// ContestService owns the contest lifecycle: creation, lookup, updates,
// winner declaration, and task submission.
type ContestService struct {
	store       storage.ContestStore
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewContestService creates a contest lifecycle service.
func NewContestService(store storage.ContestStore) *ContestService {
	return &ContestService{
		store:       store,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// CreateContest validates the draft and persists a new pending contest.
func (s *ContestService) CreateContest(ctx context.Context, input contest.CreateInput) (contest.Contest, error) {
	created, err := contest.Create(input, s.clock, s.idGenerator)
	if err != nil {
		return contest.Contest{}, err
	}
	if err := s.store.PutContest(ctx, created); err != nil {
		return contest.Contest{}, fmt.Errorf("create contest: %w", err)
	}
	return created, nil
}

// GetContest loads one contest by id.
func (s *ContestService) GetContest(ctx context.Context, contestID string) (contest.Contest, error) {
	return s.store.GetContest(ctx, contestID)
}

// ListContests returns contests matching the filter, newest first.
func (s *ContestService) ListContests(ctx context.Context, filter storage.ContestFilter) ([]contest.Contest, error) {
	return s.store.ListContests(ctx, filter)
}

// DeleteContest removes a contest and reports how many records were removed.
// Deleting an absent id succeeds with a zero count.
func (s *ContestService) DeleteContest(ctx context.Context, contestID string) (int64, error) {
	return s.store.DeleteContest(ctx, contestID)
}

// UpdateContest applies a generic patch to a contest.
//
// The update payload doubles as the participant-admission surface of the
// public API: when the patch carries an email that already holds a seat, the
// call is a successful no-op reporting OutcomeAlreadyAdded and nothing is
// written.
func (s *ContestService) UpdateContest(ctx context.Context, contestID string, patch storage.ContestPatch) (Outcome, error) {
	existing, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return "", err
	}
	if email := strings.TrimSpace(patch.Email); email != "" && existing.HasParticipant(email) {
		return OutcomeAlreadyAdded, nil
	}
	if err := s.store.UpdateContest(ctx, contestID, patch, s.clock().UTC()); err != nil {
		return "", err
	}
	return OutcomeUpdated, nil
}

// SetStatus overwrites the contest status label as-is. Status is an open
// string; callers decide the vocabulary.
func (s *ContestService) SetStatus(ctx context.Context, contestID, status string) error {
	return s.store.SetContestStatus(ctx, contestID, status)
}

// WinnerInput carries the caller-supplied winner declaration fields.
type WinnerInput struct {
	Email string
	Name  string
	Prize string
}

// DeclareResult reports a winner declaration.
type DeclareResult struct {
	Contest contest.Contest
	// Redeclared is true when a winner had already been declared; the new
	// record is appended either way and history is never overwritten.
	Redeclared bool
}

// DeclareWinner marks the contest declared and appends the winner record.
func (s *ContestService) DeclareWinner(ctx context.Context, contestID string, input WinnerInput) (DeclareResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	input.Prize = strings.TrimSpace(input.Prize)
	if input.Email == "" && input.Name == "" && input.Prize == "" {
		return DeclareResult{}, apperrors.New(apperrors.CodeWinnerRecordEmpty, "winner record is required")
	}

	existing, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return DeclareResult{}, err
	}
	redeclared := existing.WinnerStatus == contest.WinnerStatusDeclared

	record := contest.WinnerRecord{
		Email:      input.Email,
		Name:       input.Name,
		Prize:      input.Prize,
		DeclaredAt: s.clock().UTC(),
	}
	if err := s.store.AppendWinner(ctx, contestID, record); err != nil {
		return DeclareResult{}, err
	}

	updated, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return DeclareResult{}, err
	}
	return DeclareResult{Contest: updated, Redeclared: redeclared}, nil
}

// SubmitTask records a participant's task submission in place.
//
// Email identifies the seat; task, name, and image are overwritten together.
// Membership is required: submissions from non-participants are rejected.
func (s *ContestService) SubmitTask(ctx context.Context, contestID, email, task, name, image string) (contest.Contest, error) {
	email = strings.TrimSpace(email)
	task = strings.TrimSpace(task)
	name = strings.TrimSpace(name)
	if email == "" {
		return contest.Contest{}, apperrors.New(apperrors.CodeTaskEmailEmpty, "participant email is required")
	}
	if task == "" {
		return contest.Contest{}, apperrors.New(apperrors.CodeTaskEmpty, "task is required")
	}
	if name == "" {
		return contest.Contest{}, apperrors.New(apperrors.CodeTaskNameEmpty, "participant name is required")
	}

	err := s.store.UpdateParticipantTask(ctx, contestID, email, task, name, image)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return contest.Contest{}, apperrors.New(apperrors.CodeTaskParticipantMissing, "participant not found in contest")
		}
		return contest.Contest{}, fmt.Errorf("submit task: %w", err)
	}
	return s.store.GetContest(ctx, contestID)
}

// MyContests returns the contests created by the given principal.
func (s *ContestService) MyContests(ctx context.Context, creatorEmail string) ([]contest.Contest, error) {
	return s.store.ListContests(ctx, storage.ContestFilter{CreatorEmail: creatorEmail})
}

// MyParticipation returns the contests where the given email holds a seat.
func (s *ContestService) MyParticipation(ctx context.Context, email string) ([]contest.Contest, error) {
	return s.store.ListContestsByParticipant(ctx, email)
}
