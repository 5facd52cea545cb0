package sqlite

import (
	"context"
	"fmt"

	"github.com/nextchamp/nextchamp/internal/services/contest/domain/contest"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
)

// HasParticipant reports whether email already holds a seat in the contest.
func (s *Store) HasParticipant(ctx context.Context, contestID, email string) (bool, error) {
	var count int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contest_participants WHERE contest_id = ? AND email = ?`,
		contestID, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return count > 0, nil
}

// AdmitPaidParticipant inserts the participant seat and marks the contest paid
// inside one transaction. The membership check and the insert share the same
// transaction, and the primary key on (contest_id, email) backstops any race
// between concurrent admissions for the same buyer.
func (s *Store) AdmitPaidParticipant(ctx context.Context, contestID string, p contest.Participant) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin admission: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contests WHERE id = ?`, contestID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check contest: %w", err)
	}
	if exists == 0 {
		return storage.ErrNotFound
	}

	var seated int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contest_participants WHERE contest_id = ? AND email = ?`,
		contestID, p.Email).Scan(&seated)
	if err != nil {
		return fmt.Errorf("check seat: %w", err)
	}
	if seated > 0 {
		return storage.ErrParticipantExists
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO contest_participants (contest_id, email, payment_at, task, name, image)
		VALUES (?, ?, ?, ?, ?, ?)`,
		contestID, p.Email, toMillis(p.PaymentAt), p.Task, p.Name, p.Image,
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrParticipantExists
		}
		return fmt.Errorf("insert participant: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE contests SET payment_status = ? WHERE id = ?`,
		string(contest.PaymentStatusPaid), contestID,
	); err != nil {
		return fmt.Errorf("mark contest paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrParticipantExists
		}
		return fmt.Errorf("commit admission: %w", err)
	}
	return nil
}

// UpdateParticipantTask overwrites task, name, and image on one seat. Email
// and paymentAt are owned by admission and never change here.
func (s *Store) UpdateParticipantTask(ctx context.Context, contestID, email, task, name, image string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE contest_participants SET task = ?, name = ?, image = ?
		WHERE contest_id = ? AND email = ?`,
		task, name, image, contestID, email)
	if err != nil {
		return fmt.Errorf("update participant task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update participant task rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// listParticipants loads all seats of a contest in admission order.
func (s *Store) listParticipants(ctx context.Context, contestID string) ([]contest.Participant, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT email, payment_at, task, name, image FROM contest_participants
		WHERE contest_id = ? ORDER BY rowid`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []contest.Participant
	for rows.Next() {
		var p contest.Participant
		var paymentAt int64
		if err := rows.Scan(&p.Email, &paymentAt, &p.Task, &p.Name, &p.Image); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.PaymentAt = fromMillis(paymentAt)
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}
