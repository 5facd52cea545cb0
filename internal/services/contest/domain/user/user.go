// Package user holds the platform user model.
package user

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/platform/id"
)

// DefaultRole is assigned when signup carries no role. Roles are open-ended
// labels ("user", "admin", organizer-defined); only the default is fixed.
const DefaultRole = "user"

// User is a platform account keyed by email.
type User struct {
	ID        string
	Email     string
	Role      string
	CreatedAt time.Time
}

// SignupInput describes the fields accepted at first signup.
type SignupInput struct {
	Email string
	Role  string
}

// Create builds a new user with a generated ID, defaulting the role.
func Create(input SignupInput, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		return User{}, apperrors.New(apperrors.CodeUserEmailEmpty, "user email is required")
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = DefaultRole
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	return User{
		ID:        userID,
		Email:     email,
		Role:      role,
		CreatedAt: now().UTC(),
	}, nil
}
