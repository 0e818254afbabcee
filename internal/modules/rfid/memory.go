package rfid

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// MemoryStore is an in-memory Repository with the same binding semantics as
// the PostgreSQL one, used in tests.
type MemoryStore struct {
	mu         sync.Mutex
	tags       map[uuid.UUID]*Tag
	detections []*Detection
	items      map[uuid.UUID]bool // known inventory item ids
}

// NewMemoryStore creates an empty in-memory tag store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tags:  map[uuid.UUID]*Tag{},
		items: map[uuid.UUID]bool{},
	}
}

// AddItem registers an inventory item tags may be enrolled to.
func (s *MemoryStore) AddItem(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = true
}

func (s *MemoryStore) findByEPC(epc string) *Tag {
	for _, tag := range s.tags {
		if tag.EPC == epc {
			return tag
		}
	}
	return nil
}

func (s *MemoryStore) RecordDetection(ctx context.Context, epc, tid string) (*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	tag := s.findByEPC(epc)
	if tag == nil {
		tag = &Tag{
			ID:          uuid.New(),
			EPC:         epc,
			TID:         tid,
			Status:      StatusUnknown,
			FirstSeenAt: now,
			CreatedAt:   now,
		}
		s.tags[tag.ID] = tag
	}
	tag.LastSeenAt = now
	tag.DetectionCount++
	if tid != "" {
		tag.TID = tid
	}
	tag.UpdatedAt = now

	s.detections = append(s.detections, &Detection{
		ID: uuid.New(), TagID: tag.ID, EPC: epc, DetectedAt: now,
	})

	copied := *tag
	return &copied, nil
}

func (s *MemoryStore) GetTagByEPC(ctx context.Context, epc string) (*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag := s.findByEPC(epc)
	if tag == nil {
		return nil, apperror.NotFound("tag with EPC %q not found", epc)
	}
	copied := *tag
	return &copied, nil
}

func (s *MemoryStore) GetTagByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag, ok := s.tags[id]
	if !ok {
		return nil, apperror.NotFound("tag %s not found", id)
	}
	copied := *tag
	return &copied, nil
}

func (s *MemoryStore) ListTags(ctx context.Context, status TagStatus) ([]*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tags []*Tag
	for _, tag := range s.tags {
		if status != "" && tag.Status != status {
			continue
		}
		copied := *tag
		tags = append(tags, &copied)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].LastSeenAt.After(tags[j].LastSeenAt) })
	return tags, nil
}

func (s *MemoryStore) Enroll(ctx context.Context, epc string, itemID uuid.UUID) (*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag := s.findByEPC(epc)
	if tag == nil {
		return nil, apperror.NotFound("tag with EPC %q not found", epc)
	}
	if tag.Status == StatusEnrolled {
		if tag.InventoryItemID != nil && *tag.InventoryItemID == itemID {
			return nil, apperror.Conflict("tag is already enrolled to this item")
		}
		return nil, apperror.Conflict("tag is already enrolled to another item")
	}
	if !s.items[itemID] {
		return nil, apperror.NotFound("inventory item %s not found", itemID)
	}
	for _, other := range s.tags {
		if other.ID != tag.ID && other.Status == StatusEnrolled &&
			other.InventoryItemID != nil && *other.InventoryItemID == itemID {
			return nil, apperror.Conflict("item already has an enrolled tag")
		}
	}

	tag.Status = StatusEnrolled
	tag.InventoryItemID = &itemID
	tag.UpdatedAt = time.Now()
	copied := *tag
	return &copied, nil
}

func (s *MemoryStore) Unenroll(ctx context.Context, epc string) (*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag := s.findByEPC(epc)
	if tag == nil {
		return nil, apperror.NotFound("tag with EPC %q not found", epc)
	}
	tag.Status = StatusUnassigned
	tag.InventoryItemID = nil
	tag.UpdatedAt = time.Now()
	copied := *tag
	return &copied, nil
}

func (s *MemoryStore) DeleteTag(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[id]; !ok {
		return apperror.NotFound("tag %s not found", id)
	}
	delete(s.tags, id)
	var kept []*Detection
	for _, d := range s.detections {
		if d.TagID != id {
			kept = append(kept, d)
		}
	}
	s.detections = kept
	return nil
}

func (s *MemoryStore) ListDetections(ctx context.Context, tagID uuid.UUID, limit int) ([]*Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	var detections []*Detection
	for i := len(s.detections) - 1; i >= 0 && len(detections) < limit; i-- {
		if s.detections[i].TagID == tagID {
			copied := *s.detections[i]
			detections = append(detections, &copied)
		}
	}
	return detections, nil
}
