package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nextchamp/nextchamp/internal/services/contest/domain/contest"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
)

const contestColumns = `id, creator_email, title, type, price, status, payment_status, winner_status, created_at, updated_time`

// PutContest persists a contest row. Participants and winners are owned by
// their admission and declaration operations and are not written here.
func (s *Store) PutContest(ctx context.Context, c contest.Contest) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO contests (`+contestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			creator_email = excluded.creator_email,
			title = excluded.title,
			type = excluded.type,
			price = excluded.price,
			status = excluded.status,
			payment_status = excluded.payment_status,
			winner_status = excluded.winner_status,
			updated_time = excluded.updated_time`,
		c.ID, c.CreatorEmail, c.Title, c.Type, c.Price, c.Status,
		string(c.PaymentStatus), string(c.WinnerStatus),
		toMillis(c.CreatedAt), toNullMillis(c.UpdatedTime),
	)
	if err != nil {
		return fmt.Errorf("put contest: %w", err)
	}
	return nil
}

// GetContest loads one contest with its participants and winners.
func (s *Store) GetContest(ctx context.Context, id string) (contest.Contest, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+contestColumns+` FROM contests WHERE id = ?`, id)
	loaded, err := scanContest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contest.Contest{}, storage.ErrNotFound
		}
		return contest.Contest{}, fmt.Errorf("get contest: %w", err)
	}
	if err := s.attachMembership(ctx, &loaded); err != nil {
		return contest.Contest{}, err
	}
	return loaded, nil
}

// ListContests returns contests matching the filter, newest first.
func (s *Store) ListContests(ctx context.Context, filter storage.ContestFilter) ([]contest.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests`
	var clauses []string
	var args []any
	if filter.CreatorEmail != "" {
		clauses = append(clauses, "creator_email = ?")
		args = append(args, filter.CreatorEmail)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		clauses = append(clauses, "(LOWER(title) LIKE ? OR LOWER(type) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return s.queryContests(ctx, query, args...)
}

// ListContestsByParticipant returns contests where email holds a seat.
func (s *Store) ListContestsByParticipant(ctx context.Context, email string) ([]contest.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests
		WHERE id IN (SELECT contest_id FROM contest_participants WHERE email = ?)
		ORDER BY created_at DESC, id`
	return s.queryContests(ctx, query, email)
}

// DeleteContest removes a contest and reports affected rows. Participants and
// winners cascade with the contest row.
func (s *Store) DeleteContest(ctx context.Context, id string) (int64, error) {
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM contests WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete contest: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete contest rows affected: %w", err)
	}
	return affected, nil
}

// UpdateContest applies non-nil patch fields and stamps updated_time.
func (s *Store) UpdateContest(ctx context.Context, id string, patch storage.ContestPatch, updatedAt time.Time) error {
	sets := []string{"updated_time = ?"}
	args := []any{toMillis(updatedAt)}
	if patch.CreatorEmail != nil {
		sets = append(sets, "creator_email = ?")
		args = append(args, *patch.CreatorEmail)
	}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *patch.Type)
	}
	if patch.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	args = append(args, id)

	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE contests SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update contest: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update contest rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetContestStatus overwrites the status label without touching other state.
func (s *Store) SetContestStatus(ctx context.Context, id string, status string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE contests SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set contest status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set contest status rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AppendWinner marks the contest declared and appends the winner record in
// one transaction so the flag and the record never drift apart.
func (s *Store) AppendWinner(ctx context.Context, id string, record contest.WinnerRecord) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append winner: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`UPDATE contests SET winner_status = ? WHERE id = ?`,
		string(contest.WinnerStatusDeclared), id)
	if err != nil {
		return fmt.Errorf("set winner status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set winner status rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO contest_winners (contest_id, email, name, prize, declared_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, record.Email, record.Name, record.Prize, toMillis(record.DeclaredAt),
	); err != nil {
		return fmt.Errorf("append winner record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append winner: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContest(row rowScanner) (contest.Contest, error) {
	var c contest.Contest
	var paymentStatus, winnerStatus string
	var createdAt int64
	var updatedTime sql.NullInt64
	if err := row.Scan(
		&c.ID, &c.CreatorEmail, &c.Title, &c.Type, &c.Price, &c.Status,
		&paymentStatus, &winnerStatus, &createdAt, &updatedTime,
	); err != nil {
		return contest.Contest{}, err
	}
	c.PaymentStatus = contest.PaymentStatus(paymentStatus)
	c.WinnerStatus = contest.WinnerStatus(winnerStatus)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedTime = fromNullMillis(updatedTime)
	return c, nil
}

func (s *Store) queryContests(ctx context.Context, query string, args ...any) ([]contest.Contest, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	defer rows.Close()

	var contests []contest.Contest
	for rows.Next() {
		loaded, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contest: %w", err)
		}
		contests = append(contests, loaded)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contests: %w", err)
	}

	for i := range contests {
		if err := s.attachMembership(ctx, &contests[i]); err != nil {
			return nil, err
		}
	}
	return contests, nil
}

// attachMembership loads the participant seats and winner records of a contest.
func (s *Store) attachMembership(ctx context.Context, c *contest.Contest) error {
	participants, err := s.listParticipants(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Participants = participants

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT email, name, prize, declared_at FROM contest_winners
		WHERE contest_id = ? ORDER BY id`, c.ID)
	if err != nil {
		return fmt.Errorf("list winners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record contest.WinnerRecord
		var declaredAt int64
		if err := rows.Scan(&record.Email, &record.Name, &record.Prize, &declaredAt); err != nil {
			return fmt.Errorf("scan winner: %w", err)
		}
		record.DeclaredAt = fromMillis(declaredAt)
		c.Winners = append(c.Winners, record)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate winners: %w", err)
	}
	return nil
}
