package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

func newTestService(t *testing.T) (Service, *MemoryStore, uuid.UUID) {
	t.Helper()
	store := NewMemoryStore()
	productID := uuid.New()
	store.AddProduct(productID, "Cámara térmica", "Instrumentación")
	return NewService(store, store, store), store, productID
}

func createTestItem(t *testing.T, svc Service, productID uuid.UUID, req CreateItemRequest) *InventoryItem {
	t.Helper()
	if req.ProductID == "" {
		req.ProductID = productID.String()
	}
	item, err := svc.CreateItem(context.Background(), req, nil)
	require.NoError(t, err)
	return item
}

func TestCreateItemWritesEnrollmentMovement(t *testing.T) {
	svc, store, productID := newTestService(t)
	ctx := context.Background()

	item := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-001"})
	assert.Equal(t, StatusIn, item.Status)
	assert.Equal(t, TypeUnit, item.Type)

	movements, err := svc.ListMovements(ctx, MovementFilter{ItemID: &item.ID})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, MovementEnrollment, movements[0].Type)
	assert.Nil(t, movements[0].FromStatus)
	assert.Equal(t, StatusIn, movements[0].ToStatus)
	assert.Equal(t, 1, store.MovementCount())
}

func TestCreateItemValidation(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateItemRequest
		kind apperror.Kind
	}{
		{"missing product", CreateItemRequest{ProductID: "not-a-uuid"}, apperror.KindValidation},
		{"unknown product", CreateItemRequest{ProductID: uuid.NewString()}, apperror.KindValidation},
		{"bad type", CreateItemRequest{ProductID: productID.String(), Type: "CRATE"}, apperror.KindValidation},
		{"bad status", CreateItemRequest{ProductID: productID.String(), Status: "GONE"}, apperror.KindValidation},
		{"unknown container", CreateItemRequest{ProductID: productID.String(), ContainerID: uuid.NewString()}, apperror.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(ctx, tt.req, nil)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestCreateItemDuplicateSerial(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-DUP"})
	_, err := svc.CreateItem(ctx, CreateItemRequest{ProductID: productID.String(), SerialNumber: "SN-DUP"}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

// Scenario: IN item checked out to a venue, then checked back in. The item
// status must mirror the latest movement at each step.
func TestCheckOutThenCheckIn(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	item := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-100", Location: "Almacén"})

	out, err := svc.CheckOut(ctx, item.ID.String(), MovementRequest{Location: "Venue A", Reference: "OT-55"}, nil)
	require.NoError(t, err)
	assert.Equal(t, MovementCheckOut, out.Type)
	require.NotNil(t, out.FromStatus)
	assert.Equal(t, StatusIn, *out.FromStatus)
	assert.Equal(t, StatusOut, out.ToStatus)
	assert.Equal(t, "Almacén", out.FromLocation)
	assert.Equal(t, "Venue A", out.ToLocation)

	updated, err := svc.GetItem(ctx, item.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusOut, updated.Status)
	assert.Equal(t, "Venue A", updated.Location)

	in, err := svc.CheckIn(ctx, item.ID.String(), MovementRequest{Location: "Almacén"}, nil)
	require.NoError(t, err)
	assert.Equal(t, MovementCheckIn, in.Type)
	require.NotNil(t, in.FromStatus)
	assert.Equal(t, StatusOut, *in.FromStatus)

	updated, err = svc.GetItem(ctx, item.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusIn, updated.Status)

	movements, err := svc.ListMovements(ctx, MovementFilter{ItemID: &item.ID})
	require.NoError(t, err)
	require.Len(t, movements, 3) // enrollment, check-out, check-in
	assert.Equal(t, MovementCheckIn, movements[0].Type)
}

func TestStateGuards(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	item := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-200"})

	// Already IN: check-in must fail with a state error.
	_, err := svc.CheckIn(ctx, item.ID.String(), MovementRequest{}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindState))

	_, err = svc.CheckOut(ctx, item.ID.String(), MovementRequest{}, nil)
	require.NoError(t, err)

	// Already OUT: second check-out must fail, and the ledger must not grow.
	before, _ := svc.ListMovements(ctx, MovementFilter{ItemID: &item.ID})
	_, err = svc.CheckOut(ctx, item.ID.String(), MovementRequest{}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindState))
	after, _ := svc.ListMovements(ctx, MovementFilter{ItemID: &item.ID})
	assert.Len(t, after, len(before))
}

func TestAdjustAllowsAnyTransition(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	item := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-300"})

	for _, status := range []ItemStatus{StatusLost, StatusMaintenance, StatusIn, StatusOut} {
		m, err := svc.Adjust(ctx, item.ID.String(), AdjustRequest{ToStatus: status, Reason: "corrección"}, nil)
		require.NoError(t, err)
		assert.Equal(t, status, m.ToStatus)

		got, err := svc.GetItem(ctx, item.ID.String())
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}
}

func TestTransferKeepsStatus(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	item := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-400", Location: "Taller"})

	m, err := svc.Transfer(ctx, item.ID.String(), TransferRequest{ToLocation: "Bodega 2"}, nil)
	require.NoError(t, err)
	require.NotNil(t, m.FromStatus)
	assert.Equal(t, *m.FromStatus, m.ToStatus)
	assert.Equal(t, "Taller", m.FromLocation)
	assert.Equal(t, "Bodega 2", m.ToLocation)

	got, err := svc.GetItem(ctx, item.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusIn, got.Status)
	assert.Equal(t, "Bodega 2", got.Location)

	_, err = svc.Transfer(ctx, item.ID.String(), TransferRequest{}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

// The status-mirrors-ledger invariant: after an arbitrary operation mix,
// every item's status equals the to_status of its latest movement.
func TestStatusMirrorsLedger(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	a := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-A"})
	b := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-B"})

	svc.CheckOut(ctx, a.ID.String(), MovementRequest{Location: "Obra"}, nil)
	svc.Adjust(ctx, b.ID.String(), AdjustRequest{ToStatus: StatusMaintenance}, nil)
	svc.CheckIn(ctx, a.ID.String(), MovementRequest{}, nil)
	svc.Adjust(ctx, b.ID.String(), AdjustRequest{ToStatus: StatusIn}, nil)
	svc.CheckOut(ctx, b.ID.String(), MovementRequest{}, nil)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		item, err := svc.GetItem(ctx, id.String())
		require.NoError(t, err)
		movements, err := svc.ListMovements(ctx, MovementFilter{ItemID: &id})
		require.NoError(t, err)
		require.NotEmpty(t, movements)
		assert.Equal(t, movements[0].ToStatus, item.Status, "item %s", id)
	}
}

func TestUpdateItemRejectsStatusWrites(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	item := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-500"})

	status := "OUT"
	_, err := svc.UpdateItem(ctx, item.ID.String(), UpdateItemRequest{Status: &status})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	location := "Otra parte"
	_, err = svc.UpdateItem(ctx, item.ID.String(), UpdateItemRequest{Location: &location})
	require.Error(t, err)

	notes := "revisión anual pendiente"
	updated, err := svc.UpdateItem(ctx, item.ID.String(), UpdateItemRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, StatusIn, updated.Status)
}

func TestContainerValidationAndCycles(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	caseA := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "CASE-A", Type: TypeContainer})
	caseB := createTestItem(t, svc, productID, CreateItemRequest{
		SerialNumber: "CASE-B", Type: TypeContainer, ContainerID: caseA.ID.String(),
	})
	unit := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-600"})

	// A plain unit cannot act as a container.
	_, err := svc.CreateItem(ctx, CreateItemRequest{
		ProductID: productID.String(), ContainerID: unit.ID.String(),
	}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	// Self-reference.
	self := caseA.ID.String()
	_, err = svc.UpdateItem(ctx, caseA.ID.String(), UpdateItemRequest{ContainerID: &self})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	// A -> B while B -> A closes a cycle.
	intoB := caseB.ID.String()
	_, err = svc.UpdateItem(ctx, caseA.ID.String(), UpdateItemRequest{ContainerID: &intoB})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	// Moving the unit into case B is fine.
	moved, err := svc.UpdateItem(ctx, unit.ID.String(), UpdateItemRequest{ContainerID: &intoB})
	require.NoError(t, err)
	require.NotNil(t, moved.ContainerID)
	assert.Equal(t, caseB.ID, *moved.ContainerID)

	contents, err := svc.ListContents(ctx, caseB.ID.String())
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, unit.ID, contents[0].ID)
}

// Every registered item starts with an ENROLLMENT movement, so deletion is
// always blocked by the movement-history guard.
func TestDeleteItemAlwaysBlockedByHistory(t *testing.T) {
	svc, store, productID := newTestService(t)
	ctx := context.Background()

	item := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-700"})

	err := svc.DeleteItem(ctx, item.ID.String())
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	// The other guards are reported too when they are the first to trip.
	store.MarkGrouped(item.ID)
	err = svc.DeleteItem(ctx, item.ID.String())
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	err = svc.DeleteItem(ctx, uuid.NewString())
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestListItemsFilters(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-800"})
	out := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-801"})
	svc.CheckOut(ctx, out.ID.String(), MovementRequest{}, nil)

	items, err := svc.ListItems(ctx, ItemFilter{Status: StatusOut})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, out.ID, items[0].ID)

	items, err = svc.ListItems(ctx, ItemFilter{Search: "sn-80"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.ListItems(ctx, ItemFilter{Status: "NOPE"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSummary(t *testing.T) {
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-900"})
	createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-901", Type: TypeContainer})
	out := createTestItem(t, svc, productID, CreateItemRequest{SerialNumber: "SN-902"})
	svc.CheckOut(ctx, out.ID.String(), MovementRequest{}, nil)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalItems)
	assert.Equal(t, 2, summary.ByStatus[StatusIn])
	assert.Equal(t, 1, summary.ByStatus[StatusOut])
	assert.Equal(t, 2, summary.ByType[TypeUnit])
	assert.Equal(t, 1, summary.ByType[TypeContainer])
	require.Len(t, summary.ByCategory, 1)
	assert.Equal(t, "Instrumentación", summary.ByCategory[0].Category)
	assert.Equal(t, 3, summary.ByCategory[0].Count)
	require.NotEmpty(t, summary.RecentMovements)
	assert.Equal(t, MovementCheckOut, summary.RecentMovements[0].Type)
}
