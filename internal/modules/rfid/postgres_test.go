package rfid

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// A second tag enrolled onto the same item passes the count check when the
// first enrollment has not committed yet; the partial unique index on
// ENROLLED inventory_item_id then rejects the update and the violation must
// surface as a conflict, not an internal error.
func TestEnrollConcurrentSecondTagConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	itemID := uuid.New()
	tagID := uuid.New()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, status, inventory_item_id FROM rfid_tags WHERE epc = \$1 FOR UPDATE`).
		WithArgs("E280-0002").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "inventory_item_id"}).
			AddRow(tagID, "UNASSIGNED", nil))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rfid_tags`).
		WithArgs(itemID, StatusEnrolled, tagID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE rfid_tags`).
		WithArgs(StatusEnrolled, itemID, tagID).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_rfid_tags_enrolled_item"})
	mock.ExpectRollback()

	_, err = repo.Enroll(context.Background(), "E280-0002", itemID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollItemAlreadyTaggedConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	itemID := uuid.New()
	tagID := uuid.New()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, status, inventory_item_id FROM rfid_tags WHERE epc = \$1 FOR UPDATE`).
		WithArgs("E280-0003").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "inventory_item_id"}).
			AddRow(tagID, "UNASSIGNED", nil))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rfid_tags`).
		WithArgs(itemID, StatusEnrolled, tagID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err = repo.Enroll(context.Background(), "E280-0003", itemID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	require.NoError(t, mock.ExpectationsWereMet())
}
