package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nextchamp/nextchamp/internal/services/contest/domain/user"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
)

// PutUser persists a user account row, updating role on conflict by id.
func (s *Store) PutUser(ctx context.Context, u user.User) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, email, role, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			role = excluded.role`,
		u.ID, u.Email, u.Role, toMillis(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUserByEmail loads the account registered under email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, role, created_at FROM users WHERE email = ?`, email)
	loaded, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return loaded, nil
}

// ListUsers returns all accounts, or only the one matching email when set.
func (s *Store) ListUsers(ctx context.Context, email string) ([]user.User, error) {
	query := `SELECT id, email, role, created_at FROM users`
	var args []any
	if email != "" {
		query += ` WHERE email = ?`
		args = append(args, email)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		loaded, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, loaded)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// SetUserRole overwrites the role of the user with the given id.
func (s *Store) SetUserRole(ctx context.Context, id, role string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set user role rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Email, &u.Role, &createdAt); err != nil {
		return user.User{}, err
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}
