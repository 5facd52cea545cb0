package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nextchamp/nextchamp/internal/services/contest/domain/contest"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/user"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
)

// fakeStore is an in-memory storage.Store mirroring the SQLite store's
// observable semantics, including the transactional admission guard.
type fakeStore struct {
	mu       sync.Mutex
	contests map[string]contest.Contest
	users    map[string]user.User
	events   []storage.TelemetryEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contests: make(map[string]contest.Contest),
		users:    make(map[string]user.User),
	}
}

func (f *fakeStore) PutContest(_ context.Context, c contest.Contest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contests[c.ID] = c
	return nil
}

func (f *fakeStore) GetContest(_ context.Context, id string) (contest.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contests[id]
	if !ok {
		return contest.Contest{}, storage.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListContests(_ context.Context, filter storage.ContestFilter) ([]contest.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []contest.Contest
	for _, c := range f.contests {
		if filter.CreatorEmail != "" && c.CreatorEmail != filter.CreatorEmail {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(c.Title), needle) &&
				!strings.Contains(strings.ToLower(c.Type), needle) {
				continue
			}
		}
		results = append(results, c)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

func (f *fakeStore) ListContestsByParticipant(_ context.Context, email string) ([]contest.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []contest.Contest
	for _, c := range f.contests {
		if c.HasParticipant(email) {
			results = append(results, c)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (f *fakeStore) DeleteContest(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contests[id]; !ok {
		return 0, nil
	}
	delete(f.contests, id)
	return 1, nil
}

func (f *fakeStore) UpdateContest(_ context.Context, id string, patch storage.ContestPatch, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contests[id]
	if !ok {
		return storage.ErrNotFound
	}
	if patch.CreatorEmail != nil {
		c.CreatorEmail = *patch.CreatorEmail
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Type != nil {
		c.Type = *patch.Type
	}
	if patch.Price != nil {
		c.Price = *patch.Price
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	c.UpdatedTime = &updatedAt
	f.contests[id] = c
	return nil
}

func (f *fakeStore) SetContestStatus(_ context.Context, id string, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contests[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.Status = status
	f.contests[id] = c
	return nil
}

func (f *fakeStore) AppendWinner(_ context.Context, id string, record contest.WinnerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contests[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.WinnerStatus = contest.WinnerStatusDeclared
	c.Winners = append(c.Winners, record)
	f.contests[id] = c
	return nil
}

func (f *fakeStore) HasParticipant(_ context.Context, contestID, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contests[contestID]
	if !ok {
		return false, nil
	}
	return c.HasParticipant(email), nil
}

func (f *fakeStore) AdmitPaidParticipant(_ context.Context, contestID string, p contest.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contests[contestID]
	if !ok {
		return storage.ErrNotFound
	}
	if c.HasParticipant(p.Email) {
		return storage.ErrParticipantExists
	}
	c.PaymentStatus = contest.PaymentStatusPaid
	c.Participants = append(c.Participants, p)
	f.contests[contestID] = c
	return nil
}

func (f *fakeStore) UpdateParticipantTask(_ context.Context, contestID, email, task, name, image string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contests[contestID]
	if !ok {
		return storage.ErrNotFound
	}
	for i := range c.Participants {
		if c.Participants[i].Email == email {
			c.Participants[i].Task = task
			c.Participants[i].Name = name
			c.Participants[i].Image = image
			f.contests[contestID] = c
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) PutUser(_ context.Context, u user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, storage.ErrNotFound
}

func (f *fakeStore) ListUsers(_ context.Context, email string) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []user.User
	for _, u := range f.users {
		if email != "" && u.Email != email {
			continue
		}
		results = append(results, u)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results, nil
}

func (f *fakeStore) SetUserRole(_ context.Context, id, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Role = role
	f.users[id] = u
	return nil
}

func (f *fakeStore) AppendTelemetryEvent(_ context.Context, evt storage.TelemetryEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeStore) Close() error { return nil }
