package suppliers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

type postgresRepository struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL supplier repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

const supplierColumns = `id, name, kind, contact_name, email, phone, tax_id, notes,
	is_active, created_at, updated_at`

func scanSupplier(row interface{ Scan(...interface{}) error }) (*Supplier, error) {
	s := &Supplier{}
	err := row.Scan(&s.ID, &s.Name, &s.Kind, &s.ContactName, &s.Email, &s.Phone,
		&s.TaxID, &s.Notes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepository) Create(ctx context.Context, s *Supplier) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, kind, contact_name, email, phone, tax_id, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Name, s.Kind, s.ContactName, s.Email, s.Phone, s.TaxID, s.Notes, s.IsActive)
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	s, err := scanSupplier(r.db.QueryRowContext(ctx, `
		SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("supplier %s not found", id)
	}
	return s, err
}

func (r *postgresRepository) List(ctx context.Context, kind string, activeOnly bool) ([]*Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE 1=1`
	var args []interface{}
	if kind != "" {
		args = append(args, kind)
		query += ` AND kind = $1`
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

	var list []*Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, s *Supplier) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE suppliers
		SET name=$1, kind=$2, contact_name=$3, email=$4, phone=$5, tax_id=$6,
		    notes=$7, is_active=$8, updated_at=NOW()
		WHERE id=$9`,
		s.Name, s.Kind, s.ContactName, s.Email, s.Phone, s.TaxID, s.Notes, s.IsActive, s.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("supplier %s not found", s.ID)
	}
	return nil
}

func (r *postgresRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE suppliers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("supplier %s not found", id)
	}
	return nil
}
