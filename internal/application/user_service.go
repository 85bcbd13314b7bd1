package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/example/conference-planner/internal/persistence"
)

// UserStore captures the persistence operations needed by the user service.
type UserStore interface {
	CreateUser(ctx context.Context, user persistence.User, passwordHash string) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	UpdateUser(ctx context.Context, user persistence.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]persistence.User, error)
}

const minPasswordLength = 8

// UserService orchestrates validation, authorization, and persistence for
// organizer accounts. All mutations are admin-only.
type UserService struct {
	users        UserStore
	hashPassword func(password string) (string, error)
	idGenerator  func() string
	now          func() time.Time
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserStore, idGenerator func() string, now func() time.Time) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users: users,
		hashPassword: func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		},
		idGenerator: idGenerator,
		now:         now,
	}
}

// CreateUser validates input, hashes the initial password and persists a new
// account for administrators.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.IsAdmin {
		return persistence.User{}, ErrUnauthorized
	}
	if s.users == nil {
		return persistence.User{}, fmt.Errorf("user store not configured")
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized)
	if len(params.Password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return persistence.User{}, err
	}

	user := persistence.User{
		ID:          s.idGenerator(),
		Email:       normalized.Email,
		DisplayName: normalized.DisplayName,
		IsAdmin:     normalized.IsAdmin,
		CreatedAt:   s.now(),
	}
	user.UpdatedAt = user.CreatedAt

	if err := s.users.CreateUser(ctx, user, hash); err != nil {
		return persistence.User{}, mapStorageError(err)
	}
	return user, nil
}

// UpdateUser validates input and updates an existing account for administrators.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.IsAdmin {
		return persistence.User{}, ErrUnauthorized
	}
	if s.users == nil {
		return persistence.User{}, fmt.Errorf("user store not configured")
	}

	existing, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return persistence.User{}, mapStorageError(err)
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized)
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	updated := existing
	updated.Email = normalized.Email
	updated.DisplayName = normalized.DisplayName
	updated.IsAdmin = normalized.IsAdmin
	updated.UpdatedAt = s.now()

	if err := s.users.UpdateUser(ctx, updated); err != nil {
		return persistence.User{}, mapStorageError(err)
	}
	return updated, nil
}

// GetUser loads one account for administrators, or the caller's own account.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin && principal.UserID != userID {
		return persistence.User{}, ErrUnauthorized
	}
	if s.users == nil {
		return persistence.User{}, fmt.Errorf("user store not configured")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return persistence.User{}, mapStorageError(err)
	}
	return user, nil
}

// DeleteUser removes an account when requested by an administrator.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user store not configured")
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(mapStorageError(err), ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListUsers returns all accounts for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]persistence.User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, nil
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}

	out := make([]persistence.User, len(users))
	copy(out, users)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Email, out[j].Email) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})

	return out, nil
}

func normalizeUserInput(input UserInput) UserInput {
	return UserInput{
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName: strings.TrimSpace(input.DisplayName),
		IsAdmin:     input.IsAdmin,
	}
}

func validateUserInput(input UserInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}

	return vErr
}
