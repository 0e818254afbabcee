package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

type postgresRepository struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *postgresRepository) CreateCategory(ctx context.Context, c *ProductCategory) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO product_categories (id, name, description)
		VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.Description)
	if isUniqueViolation(err) {
		return apperror.Conflict("a category named %q already exists", c.Name)
	}
	return err
}

func (r *postgresRepository) ListCategories(ctx context.Context) ([]*ProductCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM product_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*ProductCategory
	for rows.Next() {
		c := &ProductCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, category_id, name, sku, description, unit_price, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`,
		p.ID, p.CategoryID, p.Name, p.SKU, p.Description, p.UnitPrice, p.IsActive)
	if isUniqueViolation(err) {
		return apperror.Conflict("a product with SKU %q already exists", p.SKU)
	}
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid product id").WithField("id", "must be a UUID")
	}

	p := &Product{}
	var sku, categoryName sql.NullString
	err = r.db.QueryRowContext(ctx, `
		SELECT p.id, p.category_id, p.name, p.sku, p.description, p.unit_price, p.is_active,
		       p.created_at, p.updated_at, c.name AS category_name
		FROM products p
		LEFT JOIN product_categories c ON c.id = p.category_id
		WHERE p.id = $1`, uid).
		Scan(&p.ID, &p.CategoryID, &p.Name, &sku, &p.Description, &p.UnitPrice, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt, &categoryName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("product %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	p.SKU = sku.String
	p.CategoryName = categoryName.String
	return p, nil
}

func (r *postgresRepository) List(ctx context.Context, categoryID string, activeOnly bool) ([]*Product, error) {
	query := `
		SELECT p.id, p.category_id, p.name, p.sku, p.description, p.unit_price, p.is_active,
		       p.created_at, p.updated_at, c.name AS category_name
		FROM products p
		LEFT JOIN product_categories c ON c.id = p.category_id
		WHERE 1=1`
	var args []interface{}
	if categoryID != "" {
		uid, err := uuid.Parse(categoryID)
		if err != nil {
			return nil, apperror.Validation("invalid category id").WithField("category_id", "must be a UUID")
		}
		args = append(args, uid)
		query += ` AND p.category_id = $1`
	}
	if activeOnly {
		query += ` AND p.is_active`
	}
	query += ` ORDER BY p.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p := &Product{}
		var sku, categoryName sql.NullString
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &sku, &p.Description, &p.UnitPrice,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &categoryName); err != nil {
			return nil, err
		}
		p.SKU = sku.String
		p.CategoryName = categoryName.String
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET category_id=$1, name=$2, sku=NULLIF($3, ''), description=$4,
		    unit_price=$5, is_active=$6, updated_at=NOW()
		WHERE id=$7`,
		p.CategoryID, p.Name, p.SKU, p.Description, p.UnitPrice, p.IsActive, p.ID)
	if isUniqueViolation(err) {
		return apperror.Conflict("a product with SKU %q already exists", p.SKU)
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("product %s not found", p.ID)
	}
	return nil
}
