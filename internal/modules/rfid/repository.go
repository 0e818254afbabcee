package rfid

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines tag data storage. RecordDetection and Enroll are
// atomic: the uniqueness checks and the writes happen in one transaction.
type Repository interface {
	RecordDetection(ctx context.Context, epc, tid string) (*Tag, error)
	GetTagByEPC(ctx context.Context, epc string) (*Tag, error)
	GetTagByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	ListTags(ctx context.Context, status TagStatus) ([]*Tag, error)
	Enroll(ctx context.Context, epc string, itemID uuid.UUID) (*Tag, error)
	Unenroll(ctx context.Context, epc string) (*Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
	ListDetections(ctx context.Context, tagID uuid.UUID, limit int) ([]*Detection, error)
}
