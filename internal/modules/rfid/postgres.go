package rfid

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// mapEnrollError translates the partial unique index on ENROLLED tags into a
// conflict. Two concurrent enrolls of different tags onto the same item both
// pass the count check; the index makes the loser fail here instead.
func mapEnrollError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "idx_rfid_tags_enrolled_item" {
		return apperror.Conflict("item already has an enrolled tag")
	}
	return err
}

type postgresRepository struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL tag repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

const tagSelect = `
	SELECT t.id, t.epc, COALESCE(t.tid, ''), t.status, t.inventory_item_id,
	       t.first_seen_at, t.last_seen_at, t.detection_count, t.created_at, t.updated_at,
	       COALESCE(i.serial_number, i.asset_tag, '') AS item_serial,
	       COALESCE(p.name, '') AS product_name
	FROM rfid_tags t
	LEFT JOIN inventory_items i ON i.id = t.inventory_item_id
	LEFT JOIN products p ON p.id = i.product_id`

func scanTag(row interface{ Scan(...interface{}) error }) (*Tag, error) {
	t := &Tag{}
	err := row.Scan(
		&t.ID, &t.EPC, &t.TID, &t.Status, &t.InventoryItemID,
		&t.FirstSeenAt, &t.LastSeenAt, &t.DetectionCount, &t.CreatedAt, &t.UpdatedAt,
		&t.ItemSerial, &t.ProductName)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// RecordDetection upserts the tag by EPC and logs the sighting. Repeated
// scans of the same EPC only bump last_seen_at and the counter; they never
// create a second tag row.
func (r *postgresRepository) RecordDetection(ctx context.Context, epc, tid string) (*Tag, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var tagID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO rfid_tags (id, epc, tid, status, detection_count)
		VALUES ($1, $2, NULLIF($3, ''), $4, 1)
		ON CONFLICT (epc) DO UPDATE
		SET last_seen_at = NOW(),
		    detection_count = rfid_tags.detection_count + 1,
		    tid = COALESCE(NULLIF(EXCLUDED.tid, ''), rfid_tags.tid),
		    updated_at = NOW()
		RETURNING id`,
		uuid.New(), epc, tid, StatusUnknown).Scan(&tagID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rfid_detections (id, tag_id, epc) VALUES ($1, $2, $3)`,
		uuid.New(), tagID, epc)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetTagByID(ctx, tagID)
}

func (r *postgresRepository) GetTagByEPC(ctx context.Context, epc string) (*Tag, error) {
	tag, err := scanTag(r.db.QueryRowContext(ctx, tagSelect+` WHERE t.epc = $1`, epc))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("tag with EPC %q not found", epc)
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *postgresRepository) GetTagByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	tag, err := scanTag(r.db.QueryRowContext(ctx, tagSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("tag %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *postgresRepository) ListTags(ctx context.Context, status TagStatus) ([]*Tag, error) {
	query := tagSelect
	var args []interface{}
	if status != "" {
		args = append(args, status)
		query += ` WHERE t.status = $1`
	}
	query += ` ORDER BY t.last_seen_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Enroll binds the tag to the item. The tag row is locked for the status
// check; the item side is enforced by the unique index on ENROLLED
// inventory_item_id, so a concurrent enroll onto the same item loses with a
// conflict.
func (r *postgresRepository) Enroll(ctx context.Context, epc string, itemID uuid.UUID) (*Tag, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var tagID uuid.UUID
	var status TagStatus
	var boundItem *uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT id, status, inventory_item_id FROM rfid_tags WHERE epc = $1 FOR UPDATE`, epc).
		Scan(&tagID, &status, &boundItem)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("tag with EPC %q not found", epc)
	}
	if err != nil {
		return nil, err
	}
	if status == StatusEnrolled {
		if boundItem != nil && *boundItem == itemID {
			return nil, apperror.Conflict("tag is already enrolled to this item")
		}
		return nil, apperror.Conflict("tag is already enrolled to another item")
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory_items WHERE id = $1)`, itemID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound("inventory item %s not found", itemID)
	}

	var otherTags int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rfid_tags
		WHERE inventory_item_id = $1 AND status = $2 AND id <> $3`,
		itemID, StatusEnrolled, tagID).Scan(&otherTags)
	if err != nil {
		return nil, err
	}
	if otherTags > 0 {
		return nil, apperror.Conflict("item already has an enrolled tag")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE rfid_tags
		SET status = $1, inventory_item_id = $2, updated_at = NOW()
		WHERE id = $3`,
		StatusEnrolled, itemID, tagID)
	if err != nil {
		return nil, mapEnrollError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapEnrollError(err)
	}
	return r.GetTagByID(ctx, tagID)
}

func (r *postgresRepository) Unenroll(ctx context.Context, epc string) (*Tag, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rfid_tags
		SET status = $1, inventory_item_id = NULL, updated_at = NOW()
		WHERE epc = $2`,
		StatusUnassigned, epc)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, apperror.NotFound("tag with EPC %q not found", epc)
	}
	return r.GetTagByEPC(ctx, epc)
}

// DeleteTag is a hard delete; tags are disposable hardware identifiers and
// their detection rows go with them.
func (r *postgresRepository) DeleteTag(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rfid_tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("tag %s not found", id)
	}
	return nil
}

func (r *postgresRepository) ListDetections(ctx context.Context, tagID uuid.UUID, limit int) ([]*Detection, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tag_id, epc, detected_at
		FROM rfid_detections
		WHERE tag_id = $1
		ORDER BY detected_at DESC
		LIMIT $2`, tagID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		d := &Detection{}
		if err := rows.Scan(&d.ID, &d.TagID, &d.EPC, &d.DetectedAt); err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}
	return detections, rows.Err()
}
