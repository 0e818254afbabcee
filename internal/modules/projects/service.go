package projects

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// Service manages project records.
type Service interface {
	Create(ctx context.Context, req Request) (*Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, clientID, status string) ([]*Project, error)
	Update(ctx context.Context, id string, req Request) (*Project, error)
	Delete(ctx context.Context, id string) error
}

// Request carries project fields for create and update. Dates use the
// YYYY-MM-DD form.
type Request struct {
	ClientID    string `json:"client_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Notes       string `json:"notes"`
}

type service struct {
	repo Repository
}

// NewService creates a new project service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, req Request) (*Project, error) {
	p, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	p.ID = uuid.New()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, p.ID)
}

func (s *service) Get(ctx context.Context, id string) (*Project, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid project id").WithField("id", "must be a UUID")
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) List(ctx context.Context, clientID, status string) ([]*Project, error) {
	cid := uuid.Nil
	if clientID != "" {
		parsed, err := uuid.Parse(clientID)
		if err != nil {
			return nil, apperror.Validation("invalid client id").WithField("client_id", "must be a UUID")
		}
		cid = parsed
	}
	if status != "" && !validStatus(status) {
		return nil, apperror.Validation("invalid status filter").WithField("status", "unknown status")
	}
	return s.repo.List(ctx, cid, status)
}

func (s *service) Update(ctx context.Context, id string, req Request) (*Project, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid project id").WithField("id", "must be a UUID")
	}
	p, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	p.ID = uid
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid project id").WithField("id", "must be a UUID")
	}
	return s.repo.Delete(ctx, uid)
}

func fromRequest(req Request) (*Project, error) {
	appErr := apperror.Validation("invalid project")
	name := strings.TrimSpace(req.Name)
	if name == "" {
		appErr = appErr.WithField("name", "is required")
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		appErr = appErr.WithField("client_id", "must be a UUID")
	}
	status := req.Status
	if status == "" {
		status = StatusPlanned
	}
	if !validStatus(status) {
		appErr = appErr.WithField("status", "unknown status")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		appErr = appErr.WithField("start_date", "must be YYYY-MM-DD")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		appErr = appErr.WithField("end_date", "must be YYYY-MM-DD")
	}
	if start != nil && end != nil && end.Before(*start) {
		appErr = appErr.WithField("end_date", "must not precede start_date")
	}
	if len(appErr.Fields) > 0 {
		return nil, appErr
	}
	return &Project{
		ClientID:    clientID,
		Name:        name,
		Description: req.Description,
		Status:      status,
		StartDate:   start,
		EndDate:     end,
		Notes:       req.Notes,
	}, nil
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
