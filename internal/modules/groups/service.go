package groups

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// Service manages bundle composition.
type Service interface {
	CreateGroup(ctx context.Context, req GroupRequest) (*Group, error)
	GetGroup(ctx context.Context, id string) (*Group, error)
	ListGroups(ctx context.Context) ([]*Group, error)
	UpdateGroup(ctx context.Context, id string, req GroupRequest) (*Group, error)
	DeleteGroup(ctx context.Context, id string) error

	AddItem(ctx context.Context, groupID string, req AddItemRequest) (*GroupItem, error)
	RemoveItem(ctx context.Context, groupID, itemID string) error
	ListItems(ctx context.Context, groupID string) ([]*GroupItem, error)
}

// GroupRequest carries group header fields.
type GroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddItemRequest adds one inventory item to a group.
type AddItemRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	Quantity        int    `json:"quantity"`
	Notes           string `json:"notes"`
}

type service struct {
	repo Repository
}

// NewService creates a new group service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateGroup(ctx context.Context, req GroupRequest) (*Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, apperror.Validation("invalid group").WithField("name", "is required")
	}
	g := &Group{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	return s.repo.GetGroup(ctx, g.ID)
}

func (s *service) GetGroup(ctx context.Context, id string) (*Group, error) {
	uid, err := parseID(id, "group")
	if err != nil {
		return nil, err
	}
	return s.repo.GetGroup(ctx, uid)
}

func (s *service) ListGroups(ctx context.Context) ([]*Group, error) {
	return s.repo.ListGroups(ctx)
}

func (s *service) UpdateGroup(ctx context.Context, id string, req GroupRequest) (*Group, error) {
	uid, err := parseID(id, "group")
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, apperror.Validation("invalid group").WithField("name", "is required")
	}
	g := &Group{ID: uid, Name: req.Name, Description: strings.TrimSpace(req.Description)}
	if err := s.repo.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}
	return s.repo.GetGroup(ctx, uid)
}

func (s *service) DeleteGroup(ctx context.Context, id string) error {
	uid, err := parseID(id, "group")
	if err != nil {
		return err
	}
	return s.repo.DeleteGroup(ctx, uid)
}

func (s *service) AddItem(ctx context.Context, groupID string, req AddItemRequest) (*GroupItem, error) {
	gid, err := parseID(groupID, "group")
	if err != nil {
		return nil, err
	}
	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		return nil, apperror.Validation("invalid membership").WithField("inventory_item_id", "must be a UUID")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return nil, apperror.Validation("invalid membership").WithField("quantity", "must be at least 1")
	}
	gi := &GroupItem{
		ID:              uuid.New(),
		GroupID:         gid,
		InventoryItemID: itemID,
		Quantity:        req.Quantity,
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := s.repo.AddItem(ctx, gi); err != nil {
		return nil, err
	}
	return gi, nil
}

func (s *service) RemoveItem(ctx context.Context, groupID, itemID string) error {
	gid, err := parseID(groupID, "group")
	if err != nil {
		return err
	}
	iid, err := parseID(itemID, "item")
	if err != nil {
		return err
	}
	return s.repo.RemoveItem(ctx, gid, iid)
}

func (s *service) ListItems(ctx context.Context, groupID string) ([]*GroupItem, error) {
	gid, err := parseID(groupID, "group")
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetGroup(ctx, gid); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, gid)
}

func parseID(raw, what string) (uuid.UUID, error) {
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid %s id", what).WithField("id", "must be a UUID")
	}
	return uid, nil
}
