package groups

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

func newTestService(t *testing.T) (Service, *MemoryStore, *Group) {
	t.Helper()
	store := NewMemoryStore()
	svc := NewService(store)
	g, err := svc.CreateGroup(context.Background(), GroupRequest{Name: "Stage kit A"})
	require.NoError(t, err)
	return svc, store, g
}

func TestCreateGroupRequiresName(t *testing.T) {
	svc := NewService(NewMemoryStore())
	_, err := svc.CreateGroup(context.Background(), GroupRequest{Name: "   "})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestAddItemRejectsDuplicateMembership(t *testing.T) {
	svc, store, g := newTestService(t)
	ctx := context.Background()
	itemID := uuid.New()
	store.AddInventoryItem(itemID)

	_, err := svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: itemID.String(), Quantity: 1})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: itemID.String(), Quantity: 2})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	items, err := svc.ListItems(ctx, g.ID.String())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestItemMayBelongToSeveralGroups(t *testing.T) {
	svc, store, g := newTestService(t)
	ctx := context.Background()
	itemID := uuid.New()
	store.AddInventoryItem(itemID)

	other, err := svc.CreateGroup(ctx, GroupRequest{Name: "Stage kit B"})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: itemID.String()})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, other.ID.String(), AddItemRequest{InventoryItemID: itemID.String()})
	assert.NoError(t, err)
}

func TestAddItemValidation(t *testing.T) {
	svc, store, g := newTestService(t)
	ctx := context.Background()
	itemID := uuid.New()
	store.AddInventoryItem(itemID)

	_, err := svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: "nope"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: itemID.String(), Quantity: -1})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	// quantity defaults to 1
	gi, err := svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: itemID.String()})
	require.NoError(t, err)
	assert.Equal(t, 1, gi.Quantity)

	_, err = svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: uuid.New().String()})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = svc.AddItem(ctx, uuid.New().String(), AddItemRequest{InventoryItemID: itemID.String()})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRemoveAbsentMembershipIsNotFound(t *testing.T) {
	svc, store, g := newTestService(t)
	ctx := context.Background()
	itemID := uuid.New()
	store.AddInventoryItem(itemID)

	err := svc.RemoveItem(ctx, g.ID.String(), itemID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: itemID.String()})
	require.NoError(t, err)
	require.NoError(t, svc.RemoveItem(ctx, g.ID.String(), itemID.String()))

	// second removal is again a 404, not a silent no-op
	err = svc.RemoveItem(ctx, g.ID.String(), itemID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDeleteGroupCascadesMembershipsOnly(t *testing.T) {
	svc, store, g := newTestService(t)
	ctx := context.Background()
	itemID := uuid.New()
	store.AddInventoryItem(itemID)

	_, err := svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: itemID.String()})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGroup(ctx, g.ID.String()))

	_, err = svc.GetGroup(ctx, g.ID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// the item survives and can join a new group
	fresh, err := svc.CreateGroup(ctx, GroupRequest{Name: "Replacement"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, fresh.ID.String(), AddItemRequest{InventoryItemID: itemID.String()})
	assert.NoError(t, err)
}

func TestGroupItemCount(t *testing.T) {
	svc, store, g := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		itemID := uuid.New()
		store.AddInventoryItem(itemID)
		_, err := svc.AddItem(ctx, g.ID.String(), AddItemRequest{InventoryItemID: itemID.String()})
		require.NoError(t, err)
	}

	got, err := svc.GetGroup(ctx, g.ID.String())
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.ItemCount)
}
