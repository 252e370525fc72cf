package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medsheet/medsheet/internal/platform/db"
)

var (
	// ErrDuplicate is returned when the username or email is already taken.
	ErrDuplicate = errors.New("username or email already in use")
	// ErrWrongPassword distinguishes a bad password from an unknown user.
	ErrWrongPassword = errors.New("wrong password")
)

// ValidationError marks model-shape failures, as opposed to missing
// required fields. Handlers map it to 422.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

// Create registers a new user. Username, email, and password are required;
// the email is normalized and checked for shape; duplicates are rejected
// before the DB unique indexes get a chance to.
func (s *Service) Create(ctx context.Context, username, email, password, role string) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, &ValidationError{msg: err.Error()}
	}
	if role == "" {
		role = RoleUser
	}
	if !validRoles[role] {
		return nil, &ValidationError{msg: fmt.Sprintf("invalid role: %s", role)}
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrDuplicate
	} else if !db.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicate
	} else if !db.IsNotFound(err) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies a username/password pair. An unknown user surfaces
// db.ErrNotFound; a known user with the wrong password surfaces
// ErrWrongPassword.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrWrongPassword
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.users.List(ctx)
}

func (s *Service) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return &ValidationError{msg: err.Error()}
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != id {
		return ErrDuplicate
	} else if err != nil && !db.IsNotFound(err) {
		return err
	}
	return s.users.UpdateEmail(ctx, id, email)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}
