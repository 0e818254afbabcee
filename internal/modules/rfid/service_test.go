package rfid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

func newTestService() (Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store), store
}

func TestRecordDetectionIsIdempotentPerEPC(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.RecordDetection(ctx, "E28011606000020000000001", "")
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, first.Status)
	assert.EqualValues(t, 1, first.DetectionCount)

	second, err := svc.RecordDetection(ctx, "E28011606000020000000001", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 2, second.DetectionCount)
	assert.False(t, second.LastSeenAt.Before(first.LastSeenAt))

	tags, err := svc.ListTags(ctx, "")
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestRecordDetectionNormalizesEPC(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.RecordDetection(ctx, "  e28011606000020000000002 ", "")
	require.NoError(t, err)
	assert.Equal(t, "E28011606000020000000002", first.EPC)

	second, err := svc.RecordDetection(ctx, "E28011606000020000000002", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordDetectionEmptyTIDDoesNotClear(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RecordDetection(ctx, "E2801160600002000000000A", "")
	require.NoError(t, err)

	tag, err := svc.RecordDetection(ctx, "E2801160600002000000000A", "E200341201B1")
	require.NoError(t, err)
	assert.Equal(t, "E200341201B1", tag.TID)

	tag, err = svc.RecordDetection(ctx, "E2801160600002000000000A", "")
	require.NoError(t, err)
	assert.Equal(t, "E200341201B1", tag.TID)
}

func TestRecordDetectionRequiresEPC(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RecordDetection(context.Background(), "   ", "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestEnrollBindsTagToItem(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	itemID := uuid.New()
	store.AddItem(itemID)

	_, err := svc.RecordDetection(ctx, "E28011606000020000000010", "")
	require.NoError(t, err)

	tag, err := svc.Enroll(ctx, "e28011606000020000000010", itemID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusEnrolled, tag.Status)
	require.NotNil(t, tag.InventoryItemID)
	assert.Equal(t, itemID, *tag.InventoryItemID)
}

func TestEnrollIsExclusiveBothWays(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	itemID := uuid.New()
	otherItem := uuid.New()
	store.AddItem(itemID)
	store.AddItem(otherItem)

	_, err := svc.RecordDetection(ctx, "E28011606000020000000011", "")
	require.NoError(t, err)
	_, err = svc.RecordDetection(ctx, "E28011606000020000000012", "")
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, "E28011606000020000000011", itemID.String())
	require.NoError(t, err)

	// second tag on the same item
	_, err = svc.Enroll(ctx, "E28011606000020000000012", itemID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	// enrolled tag on another item
	_, err = svc.Enroll(ctx, "E28011606000020000000011", otherItem.String())
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestEnrollUnknownTagOrItem(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	itemID := uuid.New()
	store.AddItem(itemID)

	_, err := svc.Enroll(ctx, "E28011606000020000000013", itemID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = svc.RecordDetection(ctx, "E28011606000020000000013", "")
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, "E28011606000020000000013", uuid.New().String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = svc.Enroll(ctx, "E28011606000020000000013", "not-a-uuid")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestUnenrollKeepsDetectionHistory(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	itemID := uuid.New()
	store.AddItem(itemID)

	tag, err := svc.RecordDetection(ctx, "E28011606000020000000014", "")
	require.NoError(t, err)
	_, err = svc.RecordDetection(ctx, "E28011606000020000000014", "")
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, "E28011606000020000000014", itemID.String())
	require.NoError(t, err)

	freed, err := svc.Unenroll(ctx, "E28011606000020000000014")
	require.NoError(t, err)
	assert.Equal(t, StatusUnassigned, freed.Status)
	assert.Nil(t, freed.InventoryItemID)
	assert.EqualValues(t, 2, freed.DetectionCount)

	detections, err := svc.ListDetections(ctx, tag.ID.String(), 0)
	require.NoError(t, err)
	assert.Len(t, detections, 2)

	// the item is free for another tag now
	_, err = svc.RecordDetection(ctx, "E28011606000020000000015", "")
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, "E28011606000020000000015", itemID.String())
	assert.NoError(t, err)
}

func TestListUnknownTags(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	itemID := uuid.New()
	store.AddItem(itemID)

	_, err := svc.RecordDetection(ctx, "E28011606000020000000016", "")
	require.NoError(t, err)
	_, err = svc.RecordDetection(ctx, "E28011606000020000000017", "")
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, "E28011606000020000000016", itemID.String())
	require.NoError(t, err)

	unknown, err := svc.ListUnknownTags(ctx)
	require.NoError(t, err)
	require.Len(t, unknown, 1)
	assert.Equal(t, "E28011606000020000000017", unknown[0].EPC)

	_, err = svc.ListTags(ctx, TagStatus("BOGUS"))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestDeleteTag(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tag, err := svc.RecordDetection(ctx, "E28011606000020000000018", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTag(ctx, tag.ID.String()))

	_, err = svc.GetTag(ctx, tag.ID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = svc.DeleteTag(ctx, tag.ID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
