package clients

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

type postgresRepository struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL client repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

const clientColumns = `id, name, contact_name, email, phone, address, tax_id, notes,
	is_active, created_at, updated_at`

func scanClient(row interface{ Scan(...interface{}) error }) (*Client, error) {
	c := &Client{}
	err := row.Scan(&c.ID, &c.Name, &c.ContactName, &c.Email, &c.Phone, &c.Address,
		&c.TaxID, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, contact_name, email, phone, address, tax_id, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.ContactName, c.Email, c.Phone, c.Address, c.TaxID, c.Notes, c.IsActive)
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, `
		SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("client %s not found", id)
	}
	return c, err
}

func (r *postgresRepository) List(ctx context.Context, search string, activeOnly bool) ([]*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	var args []interface{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` AND (name ILIKE $1 OR contact_name ILIKE $1 OR email ILIKE $1)`
	}
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, c *Client) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET name=$1, contact_name=$2, email=$3, phone=$4, address=$5, tax_id=$6,
		    notes=$7, is_active=$8, updated_at=NOW()
		WHERE id=$9`,
		c.Name, c.ContactName, c.Email, c.Phone, c.Address, c.TaxID, c.Notes, c.IsActive, c.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("client %s not found", c.ID)
	}
	return nil
}

func (r *postgresRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("client %s not found", id)
	}
	return nil
}
