package groups

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

type postgresRepository struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL group repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func mapMembershipError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		return apperror.Conflict("item already in group")
	case "23503":
		if pqErr.Constraint == "item_group_items_group_id_fkey" {
			return apperror.NotFound("group not found")
		}
		return apperror.NotFound("inventory item not found")
	}
	return err
}

func (r *postgresRepository) CreateGroup(ctx context.Context, g *Group) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO item_groups (id, name, description)
		VALUES ($1, $2, $3)`,
		g.ID, g.Name, g.Description)
	return err
}

const groupSelect = `
	SELECT g.id, g.name, g.description, g.created_at, g.updated_at,
	       (SELECT COUNT(*) FROM item_group_items gi WHERE gi.group_id = g.id) AS item_count
	FROM item_groups g`

func (r *postgresRepository) GetGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	g := &Group{}
	err := r.db.QueryRowContext(ctx, groupSelect+` WHERE g.id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt, &g.ItemCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("group %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *postgresRepository) ListGroups(ctx context.Context) ([]*Group, error) {
	rows, err := r.db.QueryContext(ctx, groupSelect+` ORDER BY g.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Group
	for rows.Next() {
		g := &Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt, &g.ItemCount); err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *postgresRepository) UpdateGroup(ctx context.Context, g *Group) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE item_groups SET name=$1, description=$2, updated_at=NOW()
		WHERE id=$3`,
		g.Name, g.Description, g.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("group %s not found", g.ID)
	}
	return nil
}

func (r *postgresRepository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	// item_group_items.group_id cascades on delete.
	res, err := r.db.ExecContext(ctx, `DELETE FROM item_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("group %s not found", id)
	}
	return nil
}

func (r *postgresRepository) AddItem(ctx context.Context, gi *GroupItem) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO item_group_items (id, group_id, inventory_item_id, quantity, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		gi.ID, gi.GroupID, gi.InventoryItemID, gi.Quantity, gi.Notes).
		Scan(&gi.CreatedAt)
	if err != nil {
		return mapMembershipError(err)
	}
	return nil
}

func (r *postgresRepository) RemoveItem(ctx context.Context, groupID, itemID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM item_group_items
		WHERE group_id = $1 AND inventory_item_id = $2`,
		groupID, itemID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("item is not a member of this group")
	}
	return nil
}

func (r *postgresRepository) ListItems(ctx context.Context, groupID uuid.UUID) ([]*GroupItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT gi.id, gi.group_id, gi.inventory_item_id, gi.quantity, gi.notes, gi.created_at,
		       COALESCE(i.serial_number, i.asset_tag, '') AS item_serial,
		       i.status, p.name AS product_name
		FROM item_group_items gi
		JOIN inventory_items i ON i.id = gi.inventory_item_id
		JOIN products p ON p.id = i.product_id
		WHERE gi.group_id = $1
		ORDER BY gi.created_at ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*GroupItem
	for rows.Next() {
		gi := &GroupItem{}
		if err := rows.Scan(&gi.ID, &gi.GroupID, &gi.InventoryItemID, &gi.Quantity, &gi.Notes,
			&gi.CreatedAt, &gi.ItemSerial, &gi.ItemStatus, &gi.ProductName); err != nil {
			return nil, err
		}
		items = append(items, gi)
	}
	return items, rows.Err()
}
