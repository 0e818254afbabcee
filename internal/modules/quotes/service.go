package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// Standard VAT rate applied to quote subtotals.
const taxRate = 0.21

// Service manages quotations. Totals are always computed server side.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Quote, error)
	Get(ctx context.Context, id string) (*Quote, error)
	List(ctx context.Context, clientID, status string) ([]*Quote, error)
	UpdateStatus(ctx context.Context, id, status string) (*Quote, error)
	Delete(ctx context.Context, id string) error
}

// LineRequest describes one requested quote line. PRODUCT lines price
// from the catalog unless unitPrice is given; GROUP and CUSTOM lines
// must carry their own price.
type LineRequest struct {
	Kind        string   `json:"kind"`
	ProductID   string   `json:"product_id,omitempty"`
	GroupID     string   `json:"group_id,omitempty"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
}

// CreateRequest is the payload for creating a quote.
type CreateRequest struct {
	ClientID   string        `json:"client_id"`
	ProjectID  string        `json:"project_id,omitempty"`
	Currency   string        `json:"currency,omitempty"`
	ValidUntil string        `json:"valid_until,omitempty"` // YYYY-MM-DD
	Notes      string        `json:"notes,omitempty"`
	Lines      []LineRequest `json:"lines"`
}

type service struct {
	repo Repository
}

// NewService creates a new quote service.
func NewService(repo Repository) Service { return &service{repo: repo} }

var validTransitions = map[QuoteStatus][]QuoteStatus{
	StatusDraft:    {StatusSent, StatusRejected},
	StatusSent:     {StatusAccepted, StatusRejected, StatusExpired},
	StatusAccepted: {},
	StatusRejected: {StatusDraft},
	StatusExpired:  {StatusDraft},
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Quote, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apperror.Validation("invalid quote").WithField("client_id", "must be a UUID")
	}
	if len(req.Lines) == 0 {
		return nil, apperror.Validation("invalid quote").WithField("lines", "at least one line is required")
	}

	var projectID *uuid.UUID
	if req.ProjectID != "" {
		uid, err := uuid.Parse(req.ProjectID)
		if err != nil {
			return nil, apperror.Validation("invalid quote").WithField("project_id", "must be a UUID")
		}
		projectID = &uid
	}

	var validUntil *time.Time
	if req.ValidUntil != "" {
		t, err := time.Parse("2006-01-02", req.ValidUntil)
		if err != nil {
			return nil, apperror.Validation("invalid quote").WithField("valid_until", "must be YYYY-MM-DD")
		}
		validUntil = &t
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "EUR"
	}

	var lines []*Line
	var subtotal float64
	for i, lr := range req.Lines {
		line, err := s.buildLine(ctx, i, lr)
		if err != nil {
			return nil, err
		}
		subtotal += line.LineTotal
		lines = append(lines, line)
	}

	tax := subtotal * taxRate
	q := &Quote{
		ID:          uuid.New(),
		ClientID:    clientID,
		ProjectID:   projectID,
		QuoteNumber: generateQuoteNumber(),
		Status:      StatusDraft,
		Currency:    currency,
		Subtotal:    round2(subtotal),
		Tax:         round2(tax),
		Total:       round2(subtotal + tax),
		ValidUntil:  validUntil,
		Notes:       req.Notes,
		Lines:       lines,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *service) buildLine(ctx context.Context, idx int, lr LineRequest) (*Line, error) {
	field := func(name string) string { return fmt.Sprintf("lines[%d].%s", idx, name) }

	if lr.Quantity <= 0 {
		return nil, apperror.Validation("invalid quote").WithField(field("quantity"), "must be at least 1")
	}

	line := &Line{
		ID:          uuid.New(),
		Kind:        LineKind(strings.ToUpper(lr.Kind)),
		Description: strings.TrimSpace(lr.Description),
		Quantity:    lr.Quantity,
	}

	switch line.Kind {
	case LineProduct:
		pid, err := uuid.Parse(lr.ProductID)
		if err != nil {
			return nil, apperror.Validation("invalid quote").WithField(field("product_id"), "must be a UUID")
		}
		product, err := s.repo.GetProduct(ctx, pid)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, apperror.Validation("invalid quote").WithField(field("product_id"), "product is inactive")
		}
		line.ProductID = &pid
		line.UnitPrice = product.UnitPrice
		if lr.UnitPrice != nil {
			line.UnitPrice = *lr.UnitPrice
		}
		if line.Description == "" {
			line.Description = product.Name
		}
	case LineGroup:
		gid, err := uuid.Parse(lr.GroupID)
		if err != nil {
			return nil, apperror.Validation("invalid quote").WithField(field("group_id"), "must be a UUID")
		}
		name, err := s.repo.GetGroupName(ctx, gid)
		if err != nil {
			return nil, err
		}
		if lr.UnitPrice == nil {
			return nil, apperror.Validation("invalid quote").WithField(field("unit_price"), "is required for GROUP lines")
		}
		line.GroupID = &gid
		line.UnitPrice = *lr.UnitPrice
		if line.Description == "" {
			line.Description = name
		}
	case LineCustom:
		if line.Description == "" {
			return nil, apperror.Validation("invalid quote").WithField(field("description"), "is required for CUSTOM lines")
		}
		if lr.UnitPrice == nil {
			return nil, apperror.Validation("invalid quote").WithField(field("unit_price"), "is required for CUSTOM lines")
		}
		line.UnitPrice = *lr.UnitPrice
	default:
		return nil, apperror.Validation("invalid quote").WithField(field("kind"), "must be PRODUCT, GROUP or CUSTOM")
	}

	if line.UnitPrice < 0 {
		return nil, apperror.Validation("invalid quote").WithField(field("unit_price"), "must not be negative")
	}
	line.LineTotal = round2(line.UnitPrice * float64(line.Quantity))
	return line, nil
}

func (s *service) Get(ctx context.Context, id string) (*Quote, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid quote id").WithField("id", "must be a UUID")
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) List(ctx context.Context, clientID, status string) ([]*Quote, error) {
	cid := uuid.Nil
	if clientID != "" {
		parsed, err := uuid.Parse(clientID)
		if err != nil {
			return nil, apperror.Validation("invalid client id").WithField("client_id", "must be a UUID")
		}
		cid = parsed
	}
	qs := QuoteStatus(status)
	switch qs {
	case "", StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired:
	default:
		return nil, apperror.Validation("invalid status filter").WithField("status", "unknown status")
	}
	return s.repo.List(ctx, cid, qs)
}

func (s *service) UpdateStatus(ctx context.Context, id, status string) (*Quote, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid quote id").WithField("id", "must be a UUID")
	}
	q, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	next := QuoteStatus(strings.ToUpper(status))
	allowed := false
	for _, candidate := range validTransitions[q.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperror.State("cannot move quote from %s to %s", q.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, uid, next); err != nil {
		return nil, err
	}
	q.Status = next
	return q, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid quote id").WithField("id", "must be a UUID")
	}
	q, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	if q.Status != StatusDraft {
		return apperror.State("only DRAFT quotes can be deleted")
	}
	return s.repo.Delete(ctx, uid)
}

// generateQuoteNumber creates a human readable number: QT-YYYYMMDD-XXXX.
func generateQuoteNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("QT-%s-%s", date, suffix)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
