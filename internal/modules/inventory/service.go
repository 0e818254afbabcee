package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
	"github.com/xenith-eng/xenith-backend/internal/metrics"
)

// Service defines the inventory registry, the movement ledger, and the
// summary derivation. Status and location only ever change through the
// ledger operations; UpdateItem rejects attempts to write them directly.
type Service interface {
	CreateItem(ctx context.Context, req CreateItemRequest, performedBy *uuid.UUID) (*InventoryItem, error)
	GetItem(ctx context.Context, id string) (*InventoryItem, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]*InventoryItem, error)
	ListContents(ctx context.Context, containerID string) ([]*InventoryItem, error)
	UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error

	CheckIn(ctx context.Context, itemID string, req MovementRequest, performedBy *uuid.UUID) (*InventoryMovement, error)
	CheckOut(ctx context.Context, itemID string, req MovementRequest, performedBy *uuid.UUID) (*InventoryMovement, error)
	Adjust(ctx context.Context, itemID string, req AdjustRequest, performedBy *uuid.UUID) (*InventoryMovement, error)
	Transfer(ctx context.Context, itemID string, req TransferRequest, performedBy *uuid.UUID) (*InventoryMovement, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]*InventoryMovement, error)

	Summary(ctx context.Context) (*Summary, error)
}

// CreateItemRequest holds the data for registering an item.
type CreateItemRequest struct {
	ProductID      string     `json:"product_id"`
	SerialNumber   string     `json:"serial_number"`
	AssetTag       string     `json:"asset_tag"`
	Type           ItemType   `json:"type"`
	Status         ItemStatus `json:"status"`
	Condition      string     `json:"condition"`
	Location       string     `json:"location"`
	ContainerID    string     `json:"container_id"`
	PurchaseDate   *time.Time `json:"purchase_date"`
	PurchasePrice  *float64   `json:"purchase_price"`
	WarrantyExpiry *time.Time `json:"warranty_expiry"`
	Notes          string     `json:"notes"`
}

// UpdateItemRequest patches descriptive fields. Status and Location are
// accepted in the payload only so they can be rejected explicitly.
type UpdateItemRequest struct {
	SerialNumber   *string    `json:"serial_number"`
	AssetTag       *string    `json:"asset_tag"`
	Condition      *string    `json:"condition"`
	ContainerID    *string    `json:"container_id"` // empty string clears the container
	PurchaseDate   *time.Time `json:"purchase_date"`
	PurchasePrice  *float64   `json:"purchase_price"`
	WarrantyExpiry *time.Time `json:"warranty_expiry"`
	Notes          *string    `json:"notes"`
	Status         *string    `json:"status"`
	Location       *string    `json:"location"`
}

// MovementRequest holds the data for check-in and check-out.
type MovementRequest struct {
	Location  string `json:"location"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
}

// AdjustRequest holds the data for a free-form status correction.
type AdjustRequest struct {
	ToStatus ItemStatus `json:"to_status"`
	Reason   string     `json:"reason"`
}

// TransferRequest holds the data for a location-only move.
type TransferRequest struct {
	ToLocation string `json:"to_location"`
	Reason     string `json:"reason"`
}

const recentMovementsInSummary = 10

// maxContainerDepth bounds the container-chain walk; chains deeper than
// this are treated as cycles.
const maxContainerDepth = 32

type service struct {
	items     ItemRepository
	movements MovementRepository
	summaries SummaryRepository
}

// NewService creates a new inventory service.
func NewService(items ItemRepository, movements MovementRepository, summaries SummaryRepository) Service {
	return &service{items: items, movements: movements, summaries: summaries}
}

func (s *service) CreateItem(ctx context.Context, req CreateItemRequest, performedBy *uuid.UUID) (*InventoryItem, error) {
	errv := apperror.Validation("invalid inventory item")
	valid := true

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		errv.WithField("product_id", "must be a UUID")
		valid = false
	}
	itemType := req.Type
	if itemType == "" {
		itemType = TypeUnit
	}
	if !ValidItemType(itemType) {
		errv.WithField("type", "must be one of UNIT, CONTAINER, BULK")
		valid = false
	}
	status := req.Status
	if status == "" {
		status = StatusIn
	}
	if !ValidItemStatus(status) {
		errv.WithField("status", "must be one of IN, OUT, MAINTENANCE, LOST")
		valid = false
	}
	var containerID *uuid.UUID
	if req.ContainerID != "" {
		uid, err := uuid.Parse(req.ContainerID)
		if err != nil {
			errv.WithField("container_id", "must be a UUID")
			valid = false
		} else {
			containerID = &uid
		}
	}
	if !valid {
		return nil, errv
	}

	if containerID != nil {
		if err := s.validateContainer(ctx, *containerID, nil); err != nil {
			return nil, err
		}
	}

	item := &InventoryItem{
		ID:             uuid.New(),
		ProductID:      productID,
		SerialNumber:   req.SerialNumber,
		AssetTag:       req.AssetTag,
		Type:           itemType,
		Status:         status,
		Condition:      req.Condition,
		Location:       req.Location,
		ContainerID:    containerID,
		PurchaseDate:   req.PurchaseDate,
		PurchasePrice:  req.PurchasePrice,
		WarrantyExpiry: req.WarrantyExpiry,
		Notes:          req.Notes,
	}

	// Registration always opens the ledger with an ENROLLMENT movement, in
	// the same transaction as the item row.
	enrollment := &InventoryMovement{
		ID:              uuid.New(),
		InventoryItemID: item.ID,
		Type:            MovementEnrollment,
		FromStatus:      nil,
		ToStatus:        status,
		ToLocation:      req.Location,
		Reason:          "initial registration",
		PerformedBy:     performedBy,
	}

	if err := s.items.CreateItem(ctx, item, enrollment); err != nil {
		return nil, err
	}
	metrics.RecordMovement(string(MovementEnrollment))
	return s.items.GetItem(ctx, item.ID)
}

// validateContainer checks that containerID names an existing CONTAINER item
// and, when itemID is known, that linking to it would not close a cycle.
func (s *service) validateContainer(ctx context.Context, containerID uuid.UUID, itemID *uuid.UUID) error {
	container, err := s.items.GetItem(ctx, containerID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return apperror.Validation("referenced container does not exist").WithField("container_id", "unknown container")
		}
		return err
	}
	if container.Type != TypeContainer {
		return apperror.Validation("referenced item is not a container").WithField("container_id", "item type must be CONTAINER")
	}
	if itemID == nil {
		return nil
	}
	if containerID == *itemID {
		return apperror.Conflict("an item cannot contain itself")
	}

	// Walk up the container chain; reaching the item means a cycle.
	current := container
	for depth := 0; depth < maxContainerDepth; depth++ {
		if current.ContainerID == nil {
			return nil
		}
		if *current.ContainerID == *itemID {
			return apperror.Conflict("setting this container would create a cycle")
		}
		current, err = s.items.GetItem(ctx, *current.ContainerID)
		if err != nil {
			return err
		}
	}
	return apperror.Conflict("container chain too deep")
}

func (s *service) GetItem(ctx context.Context, id string) (*InventoryItem, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid item id").WithField("id", "must be a UUID")
	}
	return s.items.GetItem(ctx, uid)
}

func (s *service) ListItems(ctx context.Context, filter ItemFilter) ([]*InventoryItem, error) {
	if filter.Status != "" && !ValidItemStatus(filter.Status) {
		return nil, apperror.Validation("invalid status filter").WithField("status", "unknown status")
	}
	if filter.Type != "" && !ValidItemType(filter.Type) {
		return nil, apperror.Validation("invalid type filter").WithField("type", "unknown type")
	}
	return s.items.ListItems(ctx, filter)
}

func (s *service) ListContents(ctx context.Context, containerID string) ([]*InventoryItem, error) {
	uid, err := uuid.Parse(containerID)
	if err != nil {
		return nil, apperror.Validation("invalid container id").WithField("id", "must be a UUID")
	}
	container, err := s.items.GetItem(ctx, uid)
	if err != nil {
		return nil, err
	}
	if container.Type != TypeContainer {
		return nil, apperror.Validation("item is not a container").WithField("id", "item type must be CONTAINER")
	}
	return s.items.ListContents(ctx, uid)
}

func (s *service) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*InventoryItem, error) {
	if req.Status != nil || req.Location != nil {
		return nil, apperror.Validation("status and location change only through movements").
			WithField("status", "use check-in, check-out, adjust, or transfer")
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid item id").WithField("id", "must be a UUID")
	}
	item, err := s.items.GetItem(ctx, uid)
	if err != nil {
		return nil, err
	}

	if req.SerialNumber != nil {
		item.SerialNumber = *req.SerialNumber
	}
	if req.AssetTag != nil {
		item.AssetTag = *req.AssetTag
	}
	if req.Condition != nil {
		item.Condition = *req.Condition
	}
	if req.PurchaseDate != nil {
		item.PurchaseDate = req.PurchaseDate
	}
	if req.PurchasePrice != nil {
		item.PurchasePrice = req.PurchasePrice
	}
	if req.WarrantyExpiry != nil {
		item.WarrantyExpiry = req.WarrantyExpiry
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.ContainerID != nil {
		if *req.ContainerID == "" {
			item.ContainerID = nil
		} else {
			cid, err := uuid.Parse(*req.ContainerID)
			if err != nil {
				return nil, apperror.Validation("invalid container id").WithField("container_id", "must be a UUID")
			}
			if err := s.validateContainer(ctx, cid, &uid); err != nil {
				return nil, err
			}
			item.ContainerID = &cid
		}
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return s.items.GetItem(ctx, uid)
}

func (s *service) DeleteItem(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid item id").WithField("id", "must be a UUID")
	}
	return s.items.DeleteItem(ctx, uid)
}

func (s *service) CheckIn(ctx context.Context, itemID string, req MovementRequest, performedBy *uuid.UUID) (*InventoryMovement, error) {
	return s.apply(ctx, itemID, MovementInput{
		Type:        MovementCheckIn,
		ToStatus:    StatusIn,
		ToLocation:  optionalLocation(req.Location),
		Reason:      req.Reason,
		Reference:   req.Reference,
		PerformedBy: performedBy,
		AllowedFrom: []ItemStatus{StatusOut, StatusMaintenance},
	})
}

func (s *service) CheckOut(ctx context.Context, itemID string, req MovementRequest, performedBy *uuid.UUID) (*InventoryMovement, error) {
	return s.apply(ctx, itemID, MovementInput{
		Type:        MovementCheckOut,
		ToStatus:    StatusOut,
		ToLocation:  optionalLocation(req.Location),
		Reason:      req.Reason,
		Reference:   req.Reference,
		PerformedBy: performedBy,
		AllowedFrom: []ItemStatus{StatusIn},
	})
}

// Adjust is the operator override: any state to any state, no guard.
func (s *service) Adjust(ctx context.Context, itemID string, req AdjustRequest, performedBy *uuid.UUID) (*InventoryMovement, error) {
	if !ValidItemStatus(req.ToStatus) {
		return nil, apperror.Validation("invalid adjustment").WithField("to_status", "must be one of IN, OUT, MAINTENANCE, LOST")
	}
	return s.apply(ctx, itemID, MovementInput{
		Type:        MovementAdjustment,
		ToStatus:    req.ToStatus,
		Reason:      req.Reason,
		PerformedBy: performedBy,
	})
}

func (s *service) Transfer(ctx context.Context, itemID string, req TransferRequest, performedBy *uuid.UUID) (*InventoryMovement, error) {
	if req.ToLocation == "" {
		return nil, apperror.Validation("invalid transfer").WithField("to_location", "is required")
	}
	return s.apply(ctx, itemID, MovementInput{
		Type:        MovementTransfer,
		ToLocation:  &req.ToLocation,
		Reason:      req.Reason,
		PerformedBy: performedBy,
	})
}

func (s *service) apply(ctx context.Context, itemID string, in MovementInput) (*InventoryMovement, error) {
	uid, err := uuid.Parse(itemID)
	if err != nil {
		return nil, apperror.Validation("invalid item id").WithField("id", "must be a UUID")
	}
	movement, err := s.movements.ApplyMovement(ctx, uid, in)
	if err != nil {
		return nil, err
	}
	metrics.RecordMovement(string(in.Type))
	return movement, nil
}

func optionalLocation(location string) *string {
	if location == "" {
		return nil
	}
	return &location
}

func (s *service) ListMovements(ctx context.Context, filter MovementFilter) ([]*InventoryMovement, error) {
	return s.movements.ListMovements(ctx, filter)
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	return s.summaries.Summary(ctx, recentMovementsInSummary)
}
