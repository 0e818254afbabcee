package clients

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// Service manages client records. Clients referenced by projects or quotes
// are deactivated instead of deleted.
type Service interface {
	Create(ctx context.Context, req Request) (*Client, error)
	Get(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context, search string, activeOnly bool) ([]*Client, error)
	Update(ctx context.Context, id string, req Request) (*Client, error)
	Deactivate(ctx context.Context, id string) error
}

// Request carries client fields for create and update.
type Request struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	TaxID       string `json:"tax_id"`
	Notes       string `json:"notes"`
	IsActive    *bool  `json:"is_active"`
}

type service struct {
	repo Repository
}

// NewService creates a new client service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, req Request) (*Client, error) {
	c, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.New()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, c.ID)
}

func (s *service) Get(ctx context.Context, id string) (*Client, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid client id").WithField("id", "must be a UUID")
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) List(ctx context.Context, search string, activeOnly bool) ([]*Client, error) {
	return s.repo.List(ctx, strings.TrimSpace(search), activeOnly)
}

func (s *service) Update(ctx context.Context, id string, req Request) (*Client, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid client id").WithField("id", "must be a UUID")
	}
	c, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	c.ID = uid
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid client id").WithField("id", "must be a UUID")
	}
	return s.repo.Deactivate(ctx, uid)
}

func fromRequest(req Request) (*Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("invalid client").WithField("name", "is required")
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &Client{
		Name:        name,
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		TaxID:       strings.TrimSpace(req.TaxID),
		Notes:       req.Notes,
		IsActive:    active,
	}, nil
}
