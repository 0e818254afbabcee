package groups

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// MemoryStore is an in-memory Repository with the same membership
// semantics as the PostgreSQL one, used in tests.
type MemoryStore struct {
	mu      sync.Mutex
	groups  map[uuid.UUID]*Group
	members map[uuid.UUID][]*GroupItem // by group id
	items   map[uuid.UUID]bool         // known inventory item ids
}

// NewMemoryStore creates an empty in-memory group store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		groups:  map[uuid.UUID]*Group{},
		members: map[uuid.UUID][]*GroupItem{},
		items:   map[uuid.UUID]bool{},
	}
}

// AddInventoryItem registers an inventory item memberships may reference.
func (s *MemoryStore) AddInventoryItem(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = true
}

func (s *MemoryStore) CreateGroup(ctx context.Context, g *Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	copied := *g
	copied.CreatedAt = now
	copied.UpdatedAt = now
	s.groups[g.ID] = &copied
	return nil
}

func (s *MemoryStore) GetGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, apperror.NotFound("group %s not found", id)
	}
	copied := *g
	copied.ItemCount = int64(len(s.members[id]))
	return &copied, nil
}

func (s *MemoryStore) ListGroups(ctx context.Context) ([]*Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*Group
	for id, g := range s.groups {
		copied := *g
		copied.ItemCount = int64(len(s.members[id]))
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *MemoryStore) UpdateGroup(ctx context.Context, g *Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.groups[g.ID]
	if !ok {
		return apperror.NotFound("group %s not found", g.ID)
	}
	existing.Name = g.Name
	existing.Description = g.Description
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return apperror.NotFound("group %s not found", id)
	}
	delete(s.groups, id)
	delete(s.members, id)
	return nil
}

func (s *MemoryStore) AddItem(ctx context.Context, gi *GroupItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[gi.GroupID]; !ok {
		return apperror.NotFound("group not found")
	}
	if !s.items[gi.InventoryItemID] {
		return apperror.NotFound("inventory item not found")
	}
	for _, existing := range s.members[gi.GroupID] {
		if existing.InventoryItemID == gi.InventoryItemID {
			return apperror.Conflict("item already in group")
		}
	}

	gi.CreatedAt = time.Now()
	copied := *gi
	s.members[gi.GroupID] = append(s.members[gi.GroupID], &copied)
	return nil
}

func (s *MemoryStore) RemoveItem(ctx context.Context, groupID, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.members[groupID]
	for i, gi := range rows {
		if gi.InventoryItemID == itemID {
			s.members[groupID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("item is not a member of this group")
}

func (s *MemoryStore) ListItems(ctx context.Context, groupID uuid.UUID) ([]*GroupItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*GroupItem
	for _, gi := range s.members[groupID] {
		copied := *gi
		items = append(items, &copied)
	}
	return items, nil
}
