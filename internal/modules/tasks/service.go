package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// Service manages task records.
type Service interface {
	Create(ctx context.Context, req Request) (*Task, error)
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, req ListRequest) ([]*Task, error)
	Update(ctx context.Context, id string, req Request) (*Task, error)
	Delete(ctx context.Context, id string) error
}

// Request carries task fields for create and update.
type Request struct {
	ProjectID   string `json:"project_id"`
	AssigneeID  string `json:"assignee_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"` // YYYY-MM-DD
}

// ListRequest carries task list filters.
type ListRequest struct {
	ProjectID  string
	AssigneeID string
	Status     string
	Priority   string
}

type service struct {
	repo Repository
}

// NewService creates a new task service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, req Request) (*Task, error) {
	t, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	t.ID = uuid.New()
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, t.ID)
}

func (s *service) Get(ctx context.Context, id string) (*Task, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid task id").WithField("id", "must be a UUID")
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) List(ctx context.Context, req ListRequest) ([]*Task, error) {
	var f Filter
	if req.ProjectID != "" {
		uid, err := uuid.Parse(req.ProjectID)
		if err != nil {
			return nil, apperror.Validation("invalid filter").WithField("project_id", "must be a UUID")
		}
		f.ProjectID = uid
	}
	if req.AssigneeID != "" {
		uid, err := uuid.Parse(req.AssigneeID)
		if err != nil {
			return nil, apperror.Validation("invalid filter").WithField("assignee_id", "must be a UUID")
		}
		f.AssigneeID = uid
	}
	if req.Status != "" && !validStatus(req.Status) {
		return nil, apperror.Validation("invalid filter").WithField("status", "unknown status")
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		return nil, apperror.Validation("invalid filter").WithField("priority", "unknown priority")
	}
	f.Status = req.Status
	f.Priority = req.Priority
	return s.repo.List(ctx, f)
}

func (s *service) Update(ctx context.Context, id string, req Request) (*Task, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid task id").WithField("id", "must be a UUID")
	}
	t, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	t.ID = uid
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid task id").WithField("id", "must be a UUID")
	}
	return s.repo.Delete(ctx, uid)
}

func fromRequest(req Request) (*Task, error) {
	appErr := apperror.Validation("invalid task")
	title := strings.TrimSpace(req.Title)
	if title == "" {
		appErr = appErr.WithField("title", "is required")
	}
	var projectID, assigneeID *uuid.UUID
	if req.ProjectID != "" {
		uid, err := uuid.Parse(req.ProjectID)
		if err != nil {
			appErr = appErr.WithField("project_id", "must be a UUID")
		} else {
			projectID = &uid
		}
	}
	if req.AssigneeID != "" {
		uid, err := uuid.Parse(req.AssigneeID)
		if err != nil {
			appErr = appErr.WithField("assignee_id", "must be a UUID")
		} else {
			assigneeID = &uid
		}
	}
	status := req.Status
	if status == "" {
		status = StatusOpen
	}
	if !validStatus(status) {
		appErr = appErr.WithField("status", "unknown status")
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	if !validPriority(priority) {
		appErr = appErr.WithField("priority", "unknown priority")
	}
	var due *time.Time
	if req.DueDate != "" {
		t, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			appErr = appErr.WithField("due_date", "must be YYYY-MM-DD")
		} else {
			due = &t
		}
	}
	if len(appErr.Fields) > 0 {
		return nil, appErr
	}
	return &Task{
		ProjectID:   projectID,
		AssigneeID:  assigneeID,
		Title:       title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     due,
	}, nil
}
