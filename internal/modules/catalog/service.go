package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// Service defines catalog business logic.
type Service interface {
	CreateCategory(ctx context.Context, name, description string) (*ProductCategory, error)
	ListCategories(ctx context.Context) ([]*ProductCategory, error)

	CreateProduct(ctx context.Context, req ProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, categoryID string, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, id string, req ProductRequest) (*Product, error)
}

// ProductRequest holds the data for creating or updating a product.
type ProductRequest struct {
	CategoryID  string  `json:"category_id"`
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	IsActive    *bool   `json:"is_active"`
}

type service struct{ repo Repository }

// NewService creates a new catalog service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateCategory(ctx context.Context, name, description string) (*ProductCategory, error) {
	if name == "" {
		return nil, apperror.Validation("invalid category").WithField("name", "is required")
	}
	c := &ProductCategory{ID: uuid.New(), Name: name, Description: description}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) ListCategories(ctx context.Context) ([]*ProductCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	categoryID, err := parseProductRequest(req)
	if err != nil {
		return nil, err
	}

	p := &Product{
		ID:          uuid.New(),
		CategoryID:  categoryID,
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func parseProductRequest(req ProductRequest) (*uuid.UUID, error) {
	errv := apperror.Validation("invalid product")
	valid := true
	if req.Name == "" {
		errv.WithField("name", "is required")
		valid = false
	}
	if req.UnitPrice < 0 {
		errv.WithField("unit_price", "must not be negative")
		valid = false
	}
	var categoryID *uuid.UUID
	if req.CategoryID != "" {
		uid, err := uuid.Parse(req.CategoryID)
		if err != nil {
			errv.WithField("category_id", "must be a UUID")
			valid = false
		} else {
			categoryID = &uid
		}
	}
	if !valid {
		return nil, errv
	}
	return categoryID, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, categoryID string, activeOnly bool) ([]*Product, error) {
	return s.repo.List(ctx, categoryID, activeOnly)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req ProductRequest) (*Product, error) {
	categoryID, err := parseProductRequest(req)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.CategoryID = categoryID
	p.Name = req.Name
	p.SKU = req.SKU
	p.Description = req.Description
	p.UnitPrice = req.UnitPrice
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
