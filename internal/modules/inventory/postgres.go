package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

func pqCode(err error, code pq.ErrorCode) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == code {
		return pqErr, true
	}
	return nil, false
}

// mapItemWriteError translates constraint violations on inventory_items into
// the error kinds the API promises.
func mapItemWriteError(err error) error {
	if pqErr, ok := pqCode(err, "23505"); ok {
		if strings.Contains(pqErr.Constraint, "serial") {
			return apperror.Conflict("an item with this serial number already exists")
		}
		if strings.Contains(pqErr.Constraint, "asset") {
			return apperror.Conflict("an item with this asset tag already exists")
		}
		return apperror.Conflict("duplicate inventory item")
	}
	if pqErr, ok := pqCode(err, "23503"); ok {
		if strings.Contains(pqErr.Constraint, "product") {
			return apperror.Validation("referenced product does not exist").WithField("product_id", "unknown product")
		}
		if strings.Contains(pqErr.Constraint, "container") {
			return apperror.Validation("referenced container does not exist").WithField("container_id", "unknown container")
		}
	}
	return err
}

// ---- Item registry ----

type itemPostgres struct{ db *sql.DB }

// NewItemPostgresRepository creates the PostgreSQL item registry.
func NewItemPostgresRepository(db *sql.DB) ItemRepository { return &itemPostgres{db: db} }

func (r *itemPostgres) CreateItem(ctx context.Context, item *InventoryItem, enrollment *InventoryMovement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventory_items
		  (id, product_id, serial_number, asset_tag, item_type, status, condition, location,
		   container_id, purchase_date, purchase_price, warranty_expiry, notes)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		item.ID, item.ProductID, item.SerialNumber, item.AssetTag, item.Type, item.Status,
		item.Condition, item.Location, item.ContainerID, item.PurchaseDate, item.PurchasePrice,
		item.WarrantyExpiry, item.Notes)
	if err != nil {
		return mapItemWriteError(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventory_movements
		  (id, inventory_item_id, movement_type, from_status, to_status, from_location, to_location,
		   reason, reference, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		enrollment.ID, enrollment.InventoryItemID, enrollment.Type, enrollment.FromStatus,
		enrollment.ToStatus, enrollment.FromLocation, enrollment.ToLocation,
		enrollment.Reason, enrollment.Reference, enrollment.PerformedBy)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const itemSelect = `
	SELECT i.id, i.product_id, i.serial_number, i.asset_tag, i.item_type, i.status,
	       i.condition, i.location, i.container_id, i.purchase_date, i.purchase_price,
	       i.warranty_expiry, i.notes, i.created_at, i.updated_at,
	       p.name AS product_name, COALESCE(c.name, '') AS category_name,
	       COALESCE(cont.serial_number, cont.asset_tag, '') AS container_name
	FROM inventory_items i
	JOIN products p ON p.id = i.product_id
	LEFT JOIN product_categories c ON c.id = p.category_id
	LEFT JOIN inventory_items cont ON cont.id = i.container_id`

func scanItem(row interface{ Scan(...interface{}) error }) (*InventoryItem, error) {
	item := &InventoryItem{}
	var serial, assetTag sql.NullString
	err := row.Scan(
		&item.ID, &item.ProductID, &serial, &assetTag, &item.Type, &item.Status,
		&item.Condition, &item.Location, &item.ContainerID, &item.PurchaseDate,
		&item.PurchasePrice, &item.WarrantyExpiry, &item.Notes, &item.CreatedAt,
		&item.UpdatedAt, &item.ProductName, &item.CategoryName, &item.ContainerName)
	if err != nil {
		return nil, err
	}
	item.SerialNumber = serial.String
	item.AssetTag = assetTag.String
	return item, nil
}

func (r *itemPostgres) GetItem(ctx context.Context, id uuid.UUID) (*InventoryItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, itemSelect+` WHERE i.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("inventory item %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemPostgres) ListItems(ctx context.Context, filter ItemFilter) ([]*InventoryItem, error) {
	query := itemSelect + ` WHERE 1=1`
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND i.status = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(` AND i.item_type = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (i.serial_number ILIKE $%d OR i.asset_tag ILIKE $%d OR p.name ILIKE $%d)`, n, n, n)
	}
	query += ` ORDER BY i.created_at DESC`

	return r.queryItems(ctx, query, args...)
}

func (r *itemPostgres) ListContents(ctx context.Context, containerID uuid.UUID) ([]*InventoryItem, error) {
	return r.queryItems(ctx, itemSelect+` WHERE i.container_id = $1 ORDER BY i.created_at`, containerID)
}

func (r *itemPostgres) queryItems(ctx context.Context, query string, args ...interface{}) ([]*InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem persists descriptive fields only. Status and location are
// deliberately absent from the statement; those change through the ledger.
func (r *itemPostgres) UpdateItem(ctx context.Context, item *InventoryItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The service pre-validates the container chain, but that walk runs
	// outside this transaction. Re-walk it here on locked rows so two
	// concurrent updates cannot each pass the check and commit a cycle.
	if item.ContainerID != nil {
		if err := lockContainerChain(ctx, tx, item.ID, *item.ContainerID); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE inventory_items
		SET serial_number=NULLIF($1, ''), asset_tag=NULLIF($2, ''), condition=$3,
		    container_id=$4, purchase_date=$5, purchase_price=$6, warranty_expiry=$7,
		    notes=$8, updated_at=NOW()
		WHERE id=$9`,
		item.SerialNumber, item.AssetTag, item.Condition, item.ContainerID,
		item.PurchaseDate, item.PurchasePrice, item.WarrantyExpiry, item.Notes, item.ID)
	if err != nil {
		return mapItemWriteError(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("inventory item %s not found", item.ID)
	}
	return tx.Commit()
}

// lockContainerChain walks from containerID up to the root, locking every
// row on the way. Reaching itemID means the update would close a cycle.
// Opposing concurrent updates lock the chain from both ends; the database
// resolves that as a deadlock and one side retries against committed state.
func lockContainerChain(ctx context.Context, tx *sql.Tx, itemID, containerID uuid.UUID) error {
	current := containerID
	for depth := 0; depth < maxContainerDepth; depth++ {
		if current == itemID {
			return apperror.Conflict("setting this container would create a cycle")
		}
		var next *uuid.UUID
		err := tx.QueryRowContext(ctx,
			`SELECT container_id FROM inventory_items WHERE id = $1 FOR UPDATE`, current).
			Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.Validation("referenced container does not exist").
				WithField("container_id", "unknown container")
		}
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		current = *next
	}
	return apperror.Conflict("container chain too deep")
}

// DeleteItem refuses to delete an item that anything still references.
// Checks run in a fixed order: movements, enrolled tag, group memberships,
// contained items.
func (r *itemPostgres) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	guards := []struct {
		query   string
		message string
	}{
		{`SELECT COUNT(*) FROM inventory_movements WHERE inventory_item_id = $1`,
			"item has movement history"},
		{`SELECT COUNT(*) FROM rfid_tags WHERE inventory_item_id = $1 AND status = 'ENROLLED'`,
			"item has an enrolled RFID tag"},
		{`SELECT COUNT(*) FROM item_group_items WHERE inventory_item_id = $1`,
			"item belongs to one or more item groups"},
		{`SELECT COUNT(*) FROM inventory_items WHERE container_id = $1`,
			"container still holds items"},
	}
	for _, g := range guards {
		var count int
		if err := tx.QueryRowContext(ctx, g.query, id).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return apperror.Conflict("cannot delete: %s", g.message)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("inventory item %s not found", id)
	}

	return tx.Commit()
}

// ---- Movement ledger ----

type movementPostgres struct{ db *sql.DB }

// NewMovementPostgresRepository creates the PostgreSQL movement ledger.
func NewMovementPostgresRepository(db *sql.DB) MovementRepository { return &movementPostgres{db: db} }

// ApplyMovement locks the item row, re-checks the guard, writes the movement,
// and updates the item's current state, all in one transaction. A concurrent
// operation on the same item blocks on the lock and then fails its guard.
func (r *movementPostgres) ApplyMovement(ctx context.Context, itemID uuid.UUID, in MovementInput) (*InventoryMovement, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var currentStatus ItemStatus
	var currentLocation string
	err = tx.QueryRowContext(ctx,
		`SELECT status, location FROM inventory_items WHERE id = $1 FOR UPDATE`, itemID).
		Scan(&currentStatus, &currentLocation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("inventory item %s not found", itemID)
	}
	if err != nil {
		return nil, err
	}

	if len(in.AllowedFrom) > 0 {
		allowed := false
		for _, s := range in.AllowedFrom {
			if s == currentStatus {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, apperror.State("item is %s; %s is not possible from this state", currentStatus, in.Type)
		}
	}

	toStatus := in.ToStatus
	if in.Type == MovementTransfer {
		toStatus = currentStatus
	}
	toLocation := currentLocation
	if in.ToLocation != nil {
		toLocation = *in.ToLocation
	}

	fromStatus := currentStatus
	movement := &InventoryMovement{
		ID:              uuid.New(),
		InventoryItemID: itemID,
		Type:            in.Type,
		FromStatus:      &fromStatus,
		ToStatus:        toStatus,
		FromLocation:    currentLocation,
		ToLocation:      toLocation,
		Reason:          in.Reason,
		Reference:       in.Reference,
		PerformedBy:     in.PerformedBy,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO inventory_movements
		  (id, inventory_item_id, movement_type, from_status, to_status, from_location, to_location,
		   reason, reference, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		movement.ID, movement.InventoryItemID, movement.Type, movement.FromStatus,
		movement.ToStatus, movement.FromLocation, movement.ToLocation,
		movement.Reason, movement.Reference, movement.PerformedBy).
		Scan(&movement.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE inventory_items SET status = $1, location = $2, updated_at = NOW() WHERE id = $3`,
		toStatus, toLocation, itemID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return movement, nil
}

const movementSelect = `
	SELECT m.id, m.inventory_item_id, m.movement_type, m.from_status, m.to_status,
	       m.from_location, m.to_location, m.reason, m.reference, m.performed_by, m.created_at,
	       COALESCE(i.serial_number, i.asset_tag, '') AS serial_number, p.name AS product_name
	FROM inventory_movements m
	JOIN inventory_items i ON i.id = m.inventory_item_id
	JOIN products p ON p.id = i.product_id`

func scanMovement(row interface{ Scan(...interface{}) error }) (*InventoryMovement, error) {
	m := &InventoryMovement{}
	var fromStatus sql.NullString
	err := row.Scan(
		&m.ID, &m.InventoryItemID, &m.Type, &fromStatus, &m.ToStatus,
		&m.FromLocation, &m.ToLocation, &m.Reason, &m.Reference, &m.PerformedBy,
		&m.CreatedAt, &m.SerialNumber, &m.ProductName)
	if err != nil {
		return nil, err
	}
	if fromStatus.Valid {
		s := ItemStatus(fromStatus.String)
		m.FromStatus = &s
	}
	return m, nil
}

func (r *movementPostgres) ListMovements(ctx context.Context, filter MovementFilter) ([]*InventoryMovement, error) {
	query := movementSelect + ` WHERE 1=1`
	var args []interface{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(` AND m.movement_type = $%d`, len(args))
	}
	if filter.ItemID != nil {
		args = append(args, *filter.ItemID)
		query += fmt.Sprintf(` AND m.inventory_item_id = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND m.created_at >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND m.created_at <= $%d`, len(args))
	}
	query += ` ORDER BY m.created_at DESC, m.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ---- Summary ----

type summaryPostgres struct{ db *sql.DB }

// NewSummaryPostgresRepository creates the PostgreSQL summary reader.
func NewSummaryPostgresRepository(db *sql.DB) SummaryRepository { return &summaryPostgres{db: db} }

func (r *summaryPostgres) Summary(ctx context.Context, recentMovements int) (*Summary, error) {
	summary := &Summary{
		ByStatus: map[ItemStatus]int{},
		ByType:   map[ItemType]int{},
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_items`).Scan(&summary.TotalItems); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM inventory_items GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status ItemStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		summary.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT item_type, COUNT(*) FROM inventory_items GROUP BY item_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var itemType ItemType
		var count int
		if err := rows.Scan(&itemType, &count); err != nil {
			return nil, err
		}
		summary.ByType[itemType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT COALESCE(c.name, 'Sin categoría'), COUNT(*)
		FROM inventory_items i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN product_categories c ON c.id = p.category_id
		GROUP BY c.name
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		summary.ByCategory = append(summary.ByCategory, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	movementRepo := &movementPostgres{db: r.db}
	summary.RecentMovements, err = movementRepo.ListMovements(ctx, MovementFilter{Limit: recentMovements})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
