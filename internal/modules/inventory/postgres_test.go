package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

func TestApplyMovementCommitsLedgerAndItemTogether(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	itemID := uuid.New()
	repo := NewMovementPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, location FROM inventory_items WHERE id = \$1 FOR UPDATE`).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "location"}).AddRow("IN", "Almacén"))
	mock.ExpectQuery(`INSERT INTO inventory_movements`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`UPDATE inventory_items SET status = \$1, location = \$2`).
		WithArgs("OUT", "Venue A", itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	location := "Venue A"
	movement, err := repo.ApplyMovement(context.Background(), itemID, MovementInput{
		Type:        MovementCheckOut,
		ToStatus:    StatusOut,
		ToLocation:  &location,
		AllowedFrom: []ItemStatus{StatusIn},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOut, movement.ToStatus)
	require.NotNil(t, movement.FromStatus)
	assert.Equal(t, StatusIn, *movement.FromStatus)
	assert.Equal(t, "Almacén", movement.FromLocation)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMovementGuardFailureWritesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	itemID := uuid.New()
	repo := NewMovementPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, location FROM inventory_items WHERE id = \$1 FOR UPDATE`).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "location"}).AddRow("OUT", "Venue A"))
	mock.ExpectRollback()

	_, err = repo.ApplyMovement(context.Background(), itemID, MovementInput{
		Type:        MovementCheckOut,
		ToStatus:    StatusOut,
		AllowedFrom: []ItemStatus{StatusIn},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindState))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMovementUnknownItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	itemID := uuid.New()
	repo := NewMovementPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, location FROM inventory_items WHERE id = \$1 FOR UPDATE`).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "location"}))
	mock.ExpectRollback()

	_, err = repo.ApplyMovement(context.Background(), itemID, MovementInput{
		Type:     MovementAdjustment,
		ToStatus: StatusLost,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

// The container chain is re-walked on locked rows inside the update
// transaction, so a cycle committed by a concurrent update is caught here
// even when the service-level pre-check passed.
func TestUpdateItemRecheckContainerCycleOnLockedRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	itemID := uuid.New()
	containerID := uuid.New()
	repo := NewItemPostgresRepository(db)

	mock.ExpectBegin()
	// container -> item: the walk reaches the item being updated.
	mock.ExpectQuery(`SELECT container_id FROM inventory_items WHERE id = \$1 FOR UPDATE`).
		WithArgs(containerID).
		WillReturnRows(sqlmock.NewRows([]string{"container_id"}).AddRow(itemID.String()))
	mock.ExpectRollback()

	err = repo.UpdateItem(context.Background(), &InventoryItem{
		ID:          itemID,
		ContainerID: &containerID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItemLocksChainBeforeWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	itemID := uuid.New()
	containerID := uuid.New()
	repo := NewItemPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT container_id FROM inventory_items WHERE id = \$1 FOR UPDATE`).
		WithArgs(containerID).
		WillReturnRows(sqlmock.NewRows([]string{"container_id"}).AddRow(nil))
	mock.ExpectExec(`UPDATE inventory_items`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.UpdateItem(context.Background(), &InventoryItem{
		ID:          itemID,
		ContainerID: &containerID,
	})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteItemBlockedByMovements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	itemID := uuid.New()
	repo := NewItemPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory_movements`).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err = repo.DeleteItem(context.Background(), itemID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	require.NoError(t, mock.ExpectationsWereMet())
}
