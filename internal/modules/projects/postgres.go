package projects

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

// NewPostgresRepository creates a new PostgreSQL project repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func mapClientFK(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return apperror.Validation("invalid project").WithField("client_id", "client does not exist")
	}
	return err
}

const projectSelect = `
	SELECT p.id, p.client_id, p.name, p.description, p.status, p.start_date, p.end_date,
	       p.notes, p.created_at, p.updated_at, c.name AS client_name
	FROM projects p
	JOIN clients c ON c.id = p.client_id`

func scanProject(row interface{ Scan(...interface{}) error }) (*Project, error) {
	p := &Project{}
	err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.Description, &p.Status,
		&p.StartDate, &p.EndDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt, &p.ClientName)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, client_id, name, description, status, start_date, end_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.ClientID, p.Name, p.Description, p.Status, p.StartDate, p.EndDate, p.Notes)
	return mapClientFK(err)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("project %s not found", id)
	}
	return p, err
}

func (r *postgresRepository) List(ctx context.Context, clientID uuid.UUID, status string) ([]*Project, error) {
	query := projectSelect + ` WHERE 1=1`
	var args []interface{}
	if clientID != uuid.Nil {
		args = append(args, clientID)
		query += fmt.Sprintf(` AND p.client_id = $%d`, len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND p.status = $%d`, len(args))
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, p *Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET client_id=$1, name=$2, description=$3, status=$4, start_date=$5,
		    end_date=$6, notes=$7, updated_at=NOW()
		WHERE id=$8`,
		p.ClientID, p.Name, p.Description, p.Status, p.StartDate, p.EndDate, p.Notes, p.ID)
	if err != nil {
		return mapClientFK(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("project %s not found", p.ID)
	}
	return nil
}

// Delete hard-deletes the project. Tasks and quotes keep plain FKs to
// projects, so a referenced project surfaces as a conflict instead of
// cascading.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			if pqErr.Constraint == "quotes_project_id_fkey" {
				return apperror.Conflict("project has quotes attached")
			}
			return apperror.Conflict("project has tasks attached")
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("project %s not found", id)
	}
	return nil
}
