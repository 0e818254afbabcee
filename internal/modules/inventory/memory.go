package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

type memoryProduct struct {
	name     string
	category string
}

// MemoryStore is an in-memory implementation of the inventory repositories
// with the same guard semantics as the PostgreSQL one. It backs the service
// tests and doubles as a reference for the invariants the SQL layer must
// uphold.
type MemoryStore struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*InventoryItem
	movements []*InventoryMovement
	products  map[uuid.UUID]memoryProduct
	enrolled  map[uuid.UUID]bool // item ids bound to an ENROLLED tag
	grouped   map[uuid.UUID]int  // item id -> group membership count
	seq       int
}

// NewMemoryStore creates an empty in-memory inventory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:    map[uuid.UUID]*InventoryItem{},
		products: map[uuid.UUID]memoryProduct{},
		enrolled: map[uuid.UUID]bool{},
		grouped:  map[uuid.UUID]int{},
	}
}

// AddProduct registers a product the store will accept item references to.
func (s *MemoryStore) AddProduct(id uuid.UUID, name, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = memoryProduct{name: name, category: category}
}

// MarkEnrolled flags an item as bound to an ENROLLED RFID tag.
func (s *MemoryStore) MarkEnrolled(itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrolled[itemID] = true
}

// MarkGrouped flags an item as a member of an item group.
func (s *MemoryStore) MarkGrouped(itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grouped[itemID]++
}

// MovementCount returns the total number of ledger entries.
func (s *MemoryStore) MovementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *MemoryStore) CreateItem(ctx context.Context, item *InventoryItem, enrollment *InventoryMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[item.ProductID]; !ok {
		return apperror.Validation("referenced product does not exist").WithField("product_id", "unknown product")
	}
	for _, existing := range s.items {
		if item.SerialNumber != "" && existing.SerialNumber == item.SerialNumber {
			return apperror.Conflict("an item with this serial number already exists")
		}
		if item.AssetTag != "" && existing.AssetTag == item.AssetTag {
			return apperror.Conflict("an item with this asset tag already exists")
		}
	}

	copied := *item
	now := time.Now()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	s.items[item.ID] = &copied
	s.appendMovement(enrollment)
	return nil
}

func (s *MemoryStore) appendMovement(m *InventoryMovement) {
	copied := *m
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	s.seq++
	s.movements = append(s.movements, &copied)
}

func (s *MemoryStore) GetItem(ctx context.Context, id uuid.UUID) (*InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getItemLocked(id)
}

func (s *MemoryStore) getItemLocked(id uuid.UUID) (*InventoryItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, apperror.NotFound("inventory item %s not found", id)
	}
	copied := *item
	if p, ok := s.products[item.ProductID]; ok {
		copied.ProductName = p.name
		copied.CategoryName = p.category
	}
	return &copied, nil
}

func (s *MemoryStore) ListItems(ctx context.Context, filter ItemFilter) ([]*InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*InventoryItem
	for id := range s.items {
		item, _ := s.getItemLocked(id)
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(item.SerialNumber), needle) &&
				!strings.Contains(strings.ToLower(item.AssetTag), needle) &&
				!strings.Contains(strings.ToLower(item.ProductName), needle) {
				continue
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (s *MemoryStore) ListContents(ctx context.Context, containerID uuid.UUID) ([]*InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*InventoryItem
	for id, item := range s.items {
		if item.ContainerID != nil && *item.ContainerID == containerID {
			copied, _ := s.getItemLocked(id)
			items = append(items, copied)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (s *MemoryStore) UpdateItem(ctx context.Context, item *InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[item.ID]
	if !ok {
		return apperror.NotFound("inventory item %s not found", item.ID)
	}
	for id, other := range s.items {
		if id == item.ID {
			continue
		}
		if item.SerialNumber != "" && other.SerialNumber == item.SerialNumber {
			return apperror.Conflict("an item with this serial number already exists")
		}
		if item.AssetTag != "" && other.AssetTag == item.AssetTag {
			return apperror.Conflict("an item with this asset tag already exists")
		}
	}

	existing.SerialNumber = item.SerialNumber
	existing.AssetTag = item.AssetTag
	existing.Condition = item.Condition
	existing.ContainerID = item.ContainerID
	existing.PurchaseDate = item.PurchaseDate
	existing.PurchasePrice = item.PurchasePrice
	existing.WarrantyExpiry = item.WarrantyExpiry
	existing.Notes = item.Notes
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return apperror.NotFound("inventory item %s not found", id)
	}
	for _, m := range s.movements {
		if m.InventoryItemID == id {
			return apperror.Conflict("cannot delete: item has movement history")
		}
	}
	if s.enrolled[id] {
		return apperror.Conflict("cannot delete: item has an enrolled RFID tag")
	}
	if s.grouped[id] > 0 {
		return apperror.Conflict("cannot delete: item belongs to one or more item groups")
	}
	for _, item := range s.items {
		if item.ContainerID != nil && *item.ContainerID == id {
			return apperror.Conflict("cannot delete: container still holds items")
		}
	}

	delete(s.items, id)
	return nil
}

func (s *MemoryStore) ApplyMovement(ctx context.Context, itemID uuid.UUID, in MovementInput) (*InventoryMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, apperror.NotFound("inventory item %s not found", itemID)
	}

	if len(in.AllowedFrom) > 0 {
		allowed := false
		for _, st := range in.AllowedFrom {
			if st == item.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, apperror.State("item is %s; %s is not possible from this state", item.Status, in.Type)
		}
	}

	toStatus := in.ToStatus
	if in.Type == MovementTransfer {
		toStatus = item.Status
	}
	toLocation := item.Location
	if in.ToLocation != nil {
		toLocation = *in.ToLocation
	}

	fromStatus := item.Status
	movement := &InventoryMovement{
		ID:              uuid.New(),
		InventoryItemID: itemID,
		Type:            in.Type,
		FromStatus:      &fromStatus,
		ToStatus:        toStatus,
		FromLocation:    item.Location,
		ToLocation:      toLocation,
		Reason:          in.Reason,
		Reference:       in.Reference,
		PerformedBy:     in.PerformedBy,
		CreatedAt:       time.Now(),
	}
	s.appendMovement(movement)

	item.Status = toStatus
	item.Location = toLocation
	item.UpdatedAt = time.Now()
	return movement, nil
}

func (s *MemoryStore) ListMovements(ctx context.Context, filter MovementFilter) ([]*InventoryMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var movements []*InventoryMovement
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.ItemID != nil && m.InventoryItemID != *filter.ItemID {
			continue
		}
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		copied := *m
		movements = append(movements, &copied)
		if filter.Limit > 0 && len(movements) == filter.Limit {
			break
		}
	}
	return movements, nil
}

func (s *MemoryStore) Summary(ctx context.Context, recentMovements int) (*Summary, error) {
	s.mu.Lock()
	summary := &Summary{
		TotalItems: len(s.items),
		ByStatus:   map[ItemStatus]int{},
		ByType:     map[ItemType]int{},
	}
	categories := map[string]int{}
	for _, item := range s.items {
		summary.ByStatus[item.Status]++
		summary.ByType[item.Type]++
		category := s.products[item.ProductID].category
		if category == "" {
			category = "Sin categoría"
		}
		categories[category]++
	}
	for category, count := range categories {
		summary.ByCategory = append(summary.ByCategory, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].Count > summary.ByCategory[j].Count
	})
	s.mu.Unlock()

	recent, err := s.ListMovements(ctx, MovementFilter{Limit: recentMovements})
	if err != nil {
		return nil, err
	}
	summary.RecentMovements = recent
	return summary, nil
}
