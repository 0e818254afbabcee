package rfid

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
	"github.com/xenith-eng/xenith-backend/internal/metrics"
)

// Service reconciles physical tag reads with inventory identity.
type Service interface {
	RecordDetection(ctx context.Context, epc, tid string) (*Tag, error)
	Enroll(ctx context.Context, epc, itemID string) (*Tag, error)
	Unenroll(ctx context.Context, epc string) (*Tag, error)
	GetTag(ctx context.Context, id string) (*Tag, error)
	ListTags(ctx context.Context, status TagStatus) ([]*Tag, error)
	ListUnknownTags(ctx context.Context) ([]*Tag, error)
	ListDetections(ctx context.Context, tagID string, limit int) ([]*Detection, error)
	DeleteTag(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

// NewService creates a new RFID binding service.
func NewService(repo Repository) Service { return &service{repo: repo} }

// normalizeEPC uppercases and trims the EPC so reader case differences do
// not split one physical tag into two rows.
func normalizeEPC(epc string) string {
	return strings.ToUpper(strings.TrimSpace(epc))
}

func (s *service) RecordDetection(ctx context.Context, epc, tid string) (*Tag, error) {
	epc = normalizeEPC(epc)
	if epc == "" {
		return nil, apperror.Validation("invalid detection").WithField("epc", "is required")
	}
	tag, err := s.repo.RecordDetection(ctx, epc, strings.TrimSpace(tid))
	if err != nil {
		return nil, err
	}
	metrics.RecordRfidDetection()
	return tag, nil
}

func (s *service) Enroll(ctx context.Context, epc, itemID string) (*Tag, error) {
	epc = normalizeEPC(epc)
	if epc == "" {
		return nil, apperror.Validation("invalid enrollment").WithField("epc", "is required")
	}
	uid, err := uuid.Parse(itemID)
	if err != nil {
		return nil, apperror.Validation("invalid enrollment").WithField("inventory_item_id", "must be a UUID")
	}
	return s.repo.Enroll(ctx, epc, uid)
}

func (s *service) Unenroll(ctx context.Context, epc string) (*Tag, error) {
	epc = normalizeEPC(epc)
	if epc == "" {
		return nil, apperror.Validation("invalid request").WithField("epc", "is required")
	}
	return s.repo.Unenroll(ctx, epc)
}

func (s *service) GetTag(ctx context.Context, id string) (*Tag, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid tag id").WithField("id", "must be a UUID")
	}
	return s.repo.GetTagByID(ctx, uid)
}

func (s *service) ListTags(ctx context.Context, status TagStatus) ([]*Tag, error) {
	switch status {
	case "", StatusEnrolled, StatusUnassigned, StatusUnknown:
	default:
		return nil, apperror.Validation("invalid status filter").WithField("status", "unknown status")
	}
	return s.repo.ListTags(ctx, status)
}

func (s *service) ListUnknownTags(ctx context.Context) ([]*Tag, error) {
	return s.repo.ListTags(ctx, StatusUnknown)
}

func (s *service) ListDetections(ctx context.Context, tagID string, limit int) ([]*Detection, error) {
	uid, err := uuid.Parse(tagID)
	if err != nil {
		return nil, apperror.Validation("invalid tag id").WithField("id", "must be a UUID")
	}
	return s.repo.ListDetections(ctx, uid, limit)
}

func (s *service) DeleteTag(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid tag id").WithField("id", "must be a UUID")
	}
	return s.repo.DeleteTag(ctx, uid)
}
