package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository"
)

const minPasswordLength = 8

type UserService struct {
	repo repository.UserRepository
	auth *AuthService
}

func NewUserService(repo repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{repo: repo, auth: auth}
}

func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return s.repo.ListUsers(ctx, filter)
}

// Create adds a user. A password is required for new accounts.
func (s *UserService) Create(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	user, err := buildUser("", in)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if user.PasswordHash, err = s.auth.HashPassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update rewrites a user's profile; the password changes only when given.
func (s *UserService) Update(ctx context.Context, id string, in domain.UserInput) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	user, err := buildUser(id, in)
	if err != nil {
		return nil, err
	}

	updatePassword := in.Password != ""
	if updatePassword {
		if len(in.Password) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLength)
		}
		if user.PasswordHash, err = s.auth.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateUser(ctx, user, updatePassword); err != nil {
		return nil, err
	}
	s.auth.Forget(ctx)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.auth.Forget(ctx)
	return nil
}

func buildUser(id string, in domain.UserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || strings.TrimSpace(in.Role) == "" {
		return nil, fmt.Errorf("%w: email, name and role are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidInput, in.Email)
	}
	return &domain.User{
		ID:     id,
		Email:  email,
		Name:   name,
		Role:   domain.NormalizeRole(in.Role),
		Stores: cleanStores(in.Stores),
	}, nil
}

// cleanStores trims names and drops blanks and duplicates, comparing names
// the way store scoping does.
func cleanStores(stores []string) []string {
	out := make([]string, 0, len(stores))
	seen := make(map[string]bool, len(stores))
	for _, s := range stores {
		s = strings.TrimSpace(s)
		key := strings.ToLower(strings.Join(strings.Fields(s), ""))
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
