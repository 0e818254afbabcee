package user

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

type service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RegisterUser(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = RoleViewer
	}

	user := &User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SeedAdmin registers an ADMIN account when no users exist yet. User
// registration sits behind an authenticated route, so a fresh deployment
// needs this startup path to create its first account. Returns nil without
// error when users already exist.
func (s *service) SeedAdmin(ctx context.Context, email, password string) (*User, error) {
	existing, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, nil
	}
	return s.RegisterUser(ctx, RegisterRequest{
		Email:    email,
		Password: password,
		Role:     RoleAdmin,
	})
}

func validateRegister(req RegisterRequest) error {
	errv := apperror.Validation("invalid registration request")
	valid := true
	if req.Email == "" {
		errv.WithField("email", "is required")
		valid = false
	}
	if len(req.Password) < 8 {
		errv.WithField("password", "must be at least 8 characters")
		valid = false
	}
	if req.Role != "" && !ValidRole(req.Role) {
		errv.WithField("role", "must be one of ADMIN, MANAGER, OPERATOR, VIEWER")
		valid = false
	}
	if !valid {
		return errv
	}
	return nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}
