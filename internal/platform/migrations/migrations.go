// Package migrations applies the database schema at startup. Statements are
// idempotent (CREATE ... IF NOT EXISTS) so Apply can run on every boot.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'VIEWER',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS product_categories (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		category_id UUID REFERENCES product_categories(id),
		name TEXT NOT NULL,
		sku TEXT UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES products(id),
		serial_number TEXT UNIQUE,
		asset_tag TEXT UNIQUE,
		item_type TEXT NOT NULL DEFAULT 'UNIT',
		status TEXT NOT NULL DEFAULT 'IN',
		condition TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		container_id UUID REFERENCES inventory_items(id),
		purchase_date DATE,
		purchase_price DOUBLE PRECISION,
		warranty_expiry DATE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_items_container ON inventory_items(container_id)`,
	`CREATE TABLE IF NOT EXISTS inventory_movements (
		id UUID PRIMARY KEY,
		inventory_item_id UUID NOT NULL REFERENCES inventory_items(id),
		movement_type TEXT NOT NULL,
		from_status TEXT,
		to_status TEXT NOT NULL,
		from_location TEXT NOT NULL DEFAULT '',
		to_location TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		reference TEXT NOT NULL DEFAULT '',
		performed_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_movements_item ON inventory_movements(inventory_item_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS rfid_tags (
		id UUID PRIMARY KEY,
		epc TEXT NOT NULL UNIQUE,
		tid TEXT,
		status TEXT NOT NULL DEFAULT 'UNKNOWN',
		inventory_item_id UUID REFERENCES inventory_items(id),
		first_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		detection_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_rfid_tags_enrolled_item
		ON rfid_tags(inventory_item_id) WHERE status = 'ENROLLED'`,
	`CREATE TABLE IF NOT EXISTS rfid_detections (
		id UUID PRIMARY KEY,
		tag_id UUID NOT NULL REFERENCES rfid_tags(id) ON DELETE CASCADE,
		epc TEXT NOT NULL,
		detected_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS item_groups (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS item_group_items (
		id UUID PRIMARY KEY,
		group_id UUID NOT NULL REFERENCES item_groups(id) ON DELETE CASCADE,
		inventory_item_id UUID NOT NULL REFERENCES inventory_items(id),
		quantity INT NOT NULL DEFAULT 1,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (group_id, inventory_item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		contact_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		tax_id TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		client_id UUID NOT NULL REFERENCES clients(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PLANNED',
		start_date DATE,
		end_date DATE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'SUPPLIER',
		contact_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		tax_id TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		project_id UUID REFERENCES projects(id),
		assignee_id UUID REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'OPEN',
		priority TEXT NOT NULL DEFAULT 'NORMAL',
		due_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS quotes (
		id UUID PRIMARY KEY,
		client_id UUID NOT NULL REFERENCES clients(id),
		project_id UUID REFERENCES projects(id),
		quote_number TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		currency TEXT NOT NULL DEFAULT 'EUR',
		subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
		tax DOUBLE PRECISION NOT NULL DEFAULT 0,
		total DOUBLE PRECISION NOT NULL DEFAULT 0,
		valid_until DATE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS quote_lines (
		id UUID PRIMARY KEY,
		quote_id UUID NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
		kind TEXT NOT NULL DEFAULT 'PRODUCT',
		product_id UUID REFERENCES products(id),
		group_id UUID REFERENCES item_groups(id),
		description TEXT NOT NULL DEFAULT '',
		quantity INT NOT NULL DEFAULT 1,
		unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		line_total DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Apply runs every schema statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying migration %d: %w", i, err)
		}
	}
	return nil
}
