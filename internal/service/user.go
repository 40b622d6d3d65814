package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"promptplay-api/internal/model"
	"promptplay-api/internal/repository"
)

// UserService handles business logic for account operations
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new account. Guests never get a password hash; for
// non-guests the password is optional, but without one the account cannot
// log in by password later.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, model.ErrUsernameRequired
	}

	// Check if username already exists
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	// Check if email already exists (if provided)
	if req.Email != nil && *req.Email != "" {
		emailExists, err := s.repo.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if emailExists {
			return nil, model.ErrEmailExists
		}
	}

	user := &model.User{
		Username: username,
		IsGuest:  req.IsGuest,
	}
	if req.Email != nil && *req.Email != "" {
		user.Email = req.Email
	}

	if !req.IsGuest && req.Password != "" {
		hashed, err := HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHashed = &hashed
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with username and password. Unknown usernames,
// guest accounts and wrong passwords all collapse to ErrInvalidCredentials so
// the response doesn't reveal which check failed.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	// Guests have no usable password
	if user.IsGuest || user.PasswordHashed == nil {
		return nil, model.ErrInvalidCredentials
	}

	if !CheckPassword(req.Password, *user.PasswordHashed) {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// CreateGuest registers a guest account with an auto-generated unique
// "GuestNNNN" username.
func (s *UserService) CreateGuest(ctx context.Context) (*model.User, error) {
	var username string
	for {
		username = fmt.Sprintf("Guest%d", 1000+rand.Intn(9000))
		exists, err := s.repo.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to check guest username: %w", err)
		}
		if !exists {
			break
		}
	}

	user := &model.User{
		Username: username,
		IsGuest:  true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}
