package tasks

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

// NewPostgresRepository creates a new PostgreSQL task repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func mapTaskFK(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		if pqErr.Constraint == "tasks_project_id_fkey" {
			return apperror.Validation("invalid task").WithField("project_id", "project does not exist")
		}
		return apperror.Validation("invalid task").WithField("assignee_id", "user does not exist")
	}
	return err
}

const taskSelect = `
	SELECT t.id, t.project_id, t.assignee_id, t.title, t.description, t.status,
	       t.priority, t.due_date, t.created_at, t.updated_at,
	       COALESCE(p.name, '') AS project_name,
	       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.email, '') AS assignee_name
	FROM tasks t
	LEFT JOIN projects p ON p.id = t.project_id
	LEFT JOIN users u ON u.id = t.assignee_id`

func scanTask(row interface{ Scan(...interface{}) error }) (*Task, error) {
	t := &Task{}
	err := row.Scan(&t.ID, &t.ProjectID, &t.AssigneeID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		&t.ProjectName, &t.AssigneeName)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresRepository) Create(ctx context.Context, t *Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, assignee_id, title, description, status, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.ProjectID, t.AssigneeID, t.Title, t.Description, t.Status, t.Priority, t.DueDate)
	return mapTaskFK(err)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("task %s not found", id)
	}
	return t, err
}

func (r *postgresRepository) List(ctx context.Context, f Filter) ([]*Task, error) {
	query := taskSelect + ` WHERE 1=1`
	var args []interface{}
	if f.ProjectID != uuid.Nil {
		args = append(args, f.ProjectID)
		query += fmt.Sprintf(` AND t.project_id = $%d`, len(args))
	}
	if f.AssigneeID != uuid.Nil {
		args = append(args, f.AssigneeID)
		query += fmt.Sprintf(` AND t.assignee_id = $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND t.status = $%d`, len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		query += fmt.Sprintf(` AND t.priority = $%d`, len(args))
	}
	query += ` ORDER BY t.due_date NULLS LAST, t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, t *Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET project_id=$1, assignee_id=$2, title=$3, description=$4, status=$5,
		    priority=$6, due_date=$7, updated_at=NOW()
		WHERE id=$8`,
		t.ProjectID, t.AssigneeID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.ID)
	if err != nil {
		return mapTaskFK(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("task %s not found", t.ID)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperror.NotFound("task %s not found", id)
	}
	return nil
}
