package quotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

type postgresRepository struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL quote repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func mapQuoteWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		return apperror.Conflict("quote number already exists")
	case "23503":
		switch pqErr.Constraint {
		case "quotes_client_id_fkey":
			return apperror.Validation("invalid quote").WithField("client_id", "client does not exist")
		case "quotes_project_id_fkey":
			return apperror.Validation("invalid quote").WithField("project_id", "project does not exist")
		}
	}
	return err
}

// Create inserts the quote and all its lines inside a single transaction.
func (r *postgresRepository) Create(ctx context.Context, q *Quote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quotes
		  (id, client_id, project_id, quote_number, status, currency,
		   subtotal, tax, total, valid_until, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		q.ID, q.ClientID, q.ProjectID, q.QuoteNumber, q.Status, q.Currency,
		q.Subtotal, q.Tax, q.Total, q.ValidUntil, q.Notes)
	if err != nil {
		return mapQuoteWriteError(err)
	}

	for _, line := range q.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO quote_lines
			  (id, quote_id, kind, product_id, group_id, description, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			line.ID, q.ID, line.Kind, line.ProductID, line.GroupID,
			line.Description, line.Quantity, line.UnitPrice, line.LineTotal)
		if err != nil {
			return fmt.Errorf("insert quote line: %w", err)
		}
	}

	return tx.Commit()
}

const quoteSelect = `
	SELECT q.id, q.client_id, q.project_id, q.quote_number, q.status, q.currency,
	       q.subtotal, q.tax, q.total, q.valid_until, q.notes, q.created_at, q.updated_at,
	       c.name AS client_name
	FROM quotes q
	JOIN clients c ON c.id = q.client_id`

func scanQuote(row interface{ Scan(...interface{}) error }) (*Quote, error) {
	q := &Quote{}
	err := row.Scan(&q.ID, &q.ClientID, &q.ProjectID, &q.QuoteNumber, &q.Status,
		&q.Currency, &q.Subtotal, &q.Tax, &q.Total, &q.ValidUntil, &q.Notes,
		&q.CreatedAt, &q.UpdatedAt, &q.ClientName)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	q, err := scanQuote(r.db.QueryRowContext(ctx, quoteSelect+` WHERE q.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("quote %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	q.Lines, err = r.listLines(ctx, id)
	return q, err
}

func (r *postgresRepository) listLines(ctx context.Context, quoteID uuid.UUID) ([]*Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, quote_id, kind, product_id, group_id, description, quantity,
		       unit_price, line_total, created_at
		FROM quote_lines WHERE quote_id = $1 ORDER BY created_at ASC`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*Line
	for rows.Next() {
		line := &Line{}
		if err := rows.Scan(&line.ID, &line.QuoteID, &line.Kind, &line.ProductID,
			&line.GroupID, &line.Description, &line.Quantity, &line.UnitPrice,
			&line.LineTotal, &line.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, clientID uuid.UUID, status QuoteStatus) ([]*Quote, error) {
	query := quoteSelect + ` WHERE 1=1`
	var args []interface{}
	if clientID != uuid.Nil {
		args = append(args, clientID)
		query += fmt.Sprintf(` AND q.client_id = $%d`, len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND q.status = $%d`, len(args))
	}
	query += ` ORDER BY q.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []*Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status QuoteStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quotes SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("quote %s not found", id)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// quote_lines.quote_id cascades on delete.
	res, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("quote %s not found", id)
	}
	return nil
}

func (r *postgresRepository) GetProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	p := &ProductInfo{}
	err := r.db.QueryRowContext(ctx, `
		SELECT name, unit_price, is_active FROM products WHERE id = $1`, id).
		Scan(&p.Name, &p.UnitPrice, &p.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("product %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepository) GetGroupName(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM item_groups WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperror.NotFound("group %s not found", id)
	}
	return name, err
}
