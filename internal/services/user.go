package services

import (
	"context"
	"errors"

	"github.com/edusurvey/apiserver/internal/store"
	"github.com/edusurvey/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on any login failure: unknown
// account, wrong password, or role mismatch. Callers must not be able
// to tell which.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	ListByRole(ctx context.Context, role types.Role) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, id int, update types.UserUpdate) (types.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Delete(ctx context.Context, id int) error
	Statistics(ctx context.Context) (types.UserStatistics, error)
}

// UserService encapsulates account use-cases: registration, credential
// verification, and profile maintenance.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register hashes the password and stores a new account. Uniqueness is
// resolved by the store's constraints, never by a pre-check, so
// concurrent registrations with the same email cannot both succeed.
func (s *UserService) Register(ctx context.Context, username, email, password string, role types.Role) (types.User, error) {
	if role == "" {
		role = types.RoleStudent
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: string(hashed),
	})
}

// Authenticate verifies email, password and the asserted role. Every
// failure mode collapses into ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string, role types.Role) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if user.Role != role {
		return types.User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword re-hashes and overwrites after proving knowledge of
// the current password.
func (s *UserService) ChangePassword(ctx context.Context, id int, currentPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hashed))
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) ListByRole(ctx context.Context, role types.Role) ([]types.User, error) {
	return s.repo.ListByRole(ctx, role)
}

func (s *UserService) Update(ctx context.Context, id int, update types.UserUpdate) (types.User, error) {
	return s.repo.Update(ctx, id, update)
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *UserService) Statistics(ctx context.Context) (types.UserStatistics, error) {
	return s.repo.Statistics(ctx)
}
