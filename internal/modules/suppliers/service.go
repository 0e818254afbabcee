package suppliers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// Service manages supplier and contractor records.
type Service interface {
	Create(ctx context.Context, req Request) (*Supplier, error)
	Get(ctx context.Context, id string) (*Supplier, error)
	List(ctx context.Context, kind string, activeOnly bool) ([]*Supplier, error)
	Update(ctx context.Context, id string, req Request) (*Supplier, error)
	Deactivate(ctx context.Context, id string) error
}

// Request carries supplier fields for create and update.
type Request struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	TaxID       string `json:"tax_id"`
	Notes       string `json:"notes"`
	IsActive    *bool  `json:"is_active"`
}

type service struct {
	repo Repository
}

// NewService creates a new supplier service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, req Request) (*Supplier, error) {
	sup, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	sup.ID = uuid.New()
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, sup.ID)
}

func (s *service) Get(ctx context.Context, id string) (*Supplier, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid supplier id").WithField("id", "must be a UUID")
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) List(ctx context.Context, kind string, activeOnly bool) ([]*Supplier, error) {
	if kind != "" && kind != KindSupplier && kind != KindContractor {
		return nil, apperror.Validation("invalid kind filter").WithField("kind", "must be SUPPLIER or CONTRACTOR")
	}
	return s.repo.List(ctx, kind, activeOnly)
}

func (s *service) Update(ctx context.Context, id string, req Request) (*Supplier, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid supplier id").WithField("id", "must be a UUID")
	}
	sup, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	sup.ID = uid
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid supplier id").WithField("id", "must be a UUID")
	}
	return s.repo.Deactivate(ctx, uid)
}

func fromRequest(req Request) (*Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("invalid supplier").WithField("name", "is required")
	}
	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = KindSupplier
	}
	if kind != KindSupplier && kind != KindContractor {
		return nil, apperror.Validation("invalid supplier").WithField("kind", "must be SUPPLIER or CONTRACTOR")
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &Supplier{
		Name:        name,
		Kind:        kind,
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		TaxID:       strings.TrimSpace(req.TaxID),
		Notes:       req.Notes,
		IsActive:    active,
	}, nil
}
