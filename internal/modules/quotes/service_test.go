package quotes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

type fakeRepo struct {
	quotes   map[uuid.UUID]*Quote
	products map[uuid.UUID]*ProductInfo
	groups   map[uuid.UUID]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		quotes:   map[uuid.UUID]*Quote{},
		products: map[uuid.UUID]*ProductInfo{},
		groups:   map[uuid.UUID]string{},
	}
}

func (f *fakeRepo) Create(ctx context.Context, q *Quote) error {
	f.quotes[q.ID] = q
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	q, ok := f.quotes[id]
	if !ok {
		return nil, apperror.NotFound("quote %s not found", id)
	}
	return q, nil
}

func (f *fakeRepo) List(ctx context.Context, clientID uuid.UUID, status QuoteStatus) ([]*Quote, error) {
	var list []*Quote
	for _, q := range f.quotes {
		if clientID != uuid.Nil && q.ClientID != clientID {
			continue
		}
		if status != "" && q.Status != status {
			continue
		}
		list = append(list, q)
	}
	return list, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status QuoteStatus) error {
	q, ok := f.quotes[id]
	if !ok {
		return apperror.NotFound("quote %s not found", id)
	}
	q.Status = status
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.quotes[id]; !ok {
		return apperror.NotFound("quote %s not found", id)
	}
	delete(f.quotes, id)
	return nil
}

func (f *fakeRepo) GetProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.NotFound("product %s not found", id)
	}
	return p, nil
}

func (f *fakeRepo) GetGroupName(ctx context.Context, id uuid.UUID) (string, error) {
	name, ok := f.groups[id]
	if !ok {
		return "", apperror.NotFound("group %s not found", id)
	}
	return name, nil
}

func priceOf(v float64) *float64 { return &v }

func TestCreateQuoteComputesTotalsServerSide(t *testing.T) {
	repo := newFakeRepo()
	productID := uuid.New()
	groupID := uuid.New()
	repo.products[productID] = &ProductInfo{Name: "PAR LED 64", UnitPrice: 120, IsActive: true}
	repo.groups[groupID] = "Stage kit A"
	svc := NewService(repo)

	q, err := svc.Create(context.Background(), CreateRequest{
		ClientID: uuid.New().String(),
		Lines: []LineRequest{
			{Kind: "PRODUCT", ProductID: productID.String(), Quantity: 2},
			{Kind: "GROUP", GroupID: groupID.String(), Quantity: 1, UnitPrice: priceOf(500)},
			{Kind: "CUSTOM", Description: "Delivery", Quantity: 1, UnitPrice: priceOf(60)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, q.Status)
	assert.Equal(t, "EUR", q.Currency)
	assert.InDelta(t, 800.0, q.Subtotal, 0.001) // 240 + 500 + 60
	assert.InDelta(t, 168.0, q.Tax, 0.001)
	assert.InDelta(t, 968.0, q.Total, 0.001)
	require.Len(t, q.Lines, 3)
	assert.Equal(t, "PAR LED 64", q.Lines[0].Description)
	assert.InDelta(t, 240.0, q.Lines[0].LineTotal, 0.001)
	assert.Equal(t, "Stage kit A", q.Lines[1].Description)
	assert.Contains(t, q.QuoteNumber, "QT-")
}

func TestCreateQuoteOverridesProductPrice(t *testing.T) {
	repo := newFakeRepo()
	productID := uuid.New()
	repo.products[productID] = &ProductInfo{Name: "Truss", UnitPrice: 80, IsActive: true}
	svc := NewService(repo)

	q, err := svc.Create(context.Background(), CreateRequest{
		ClientID: uuid.New().String(),
		Lines: []LineRequest{
			{Kind: "PRODUCT", ProductID: productID.String(), Quantity: 1, UnitPrice: priceOf(75)},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 75.0, q.Lines[0].UnitPrice, 0.001)
}

func TestCreateQuoteValidation(t *testing.T) {
	repo := newFakeRepo()
	productID := uuid.New()
	repo.products[productID] = &ProductInfo{Name: "Inactive", UnitPrice: 10, IsActive: false}
	svc := NewService(repo)
	ctx := context.Background()
	clientID := uuid.New().String()

	cases := []struct {
		name string
		req  CreateRequest
		kind apperror.Kind
	}{
		{"no lines", CreateRequest{ClientID: clientID}, apperror.KindValidation},
		{"bad client id", CreateRequest{ClientID: "nope", Lines: []LineRequest{{Kind: "CUSTOM", Description: "x", Quantity: 1, UnitPrice: priceOf(1)}}}, apperror.KindValidation},
		{"zero quantity", CreateRequest{ClientID: clientID, Lines: []LineRequest{{Kind: "CUSTOM", Description: "x", Quantity: 0, UnitPrice: priceOf(1)}}}, apperror.KindValidation},
		{"custom without price", CreateRequest{ClientID: clientID, Lines: []LineRequest{{Kind: "CUSTOM", Description: "x", Quantity: 1}}}, apperror.KindValidation},
		{"custom without description", CreateRequest{ClientID: clientID, Lines: []LineRequest{{Kind: "CUSTOM", Quantity: 1, UnitPrice: priceOf(1)}}}, apperror.KindValidation},
		{"unknown kind", CreateRequest{ClientID: clientID, Lines: []LineRequest{{Kind: "BUNDLE", Quantity: 1}}}, apperror.KindValidation},
		{"inactive product", CreateRequest{ClientID: clientID, Lines: []LineRequest{{Kind: "PRODUCT", ProductID: productID.String(), Quantity: 1}}}, apperror.KindValidation},
		{"negative price", CreateRequest{ClientID: clientID, Lines: []LineRequest{{Kind: "CUSTOM", Description: "x", Quantity: 1, UnitPrice: priceOf(-5)}}}, apperror.KindValidation},
		{"unknown product", CreateRequest{ClientID: clientID, Lines: []LineRequest{{Kind: "PRODUCT", ProductID: uuid.New().String(), Quantity: 1}}}, apperror.KindNotFound},
		{"unknown group", CreateRequest{ClientID: clientID, Lines: []LineRequest{{Kind: "GROUP", GroupID: uuid.New().String(), Quantity: 1, UnitPrice: priceOf(1)}}}, apperror.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.True(t, apperror.IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func createDraft(t *testing.T, svc Service) *Quote {
	t.Helper()
	q, err := svc.Create(context.Background(), CreateRequest{
		ClientID: uuid.New().String(),
		Lines:    []LineRequest{{Kind: "CUSTOM", Description: "Labor", Quantity: 1, UnitPrice: priceOf(100)}},
	})
	require.NoError(t, err)
	return q
}

func TestQuoteStatusTransitions(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()
	q := createDraft(t, svc)

	// DRAFT cannot jump straight to ACCEPTED
	_, err := svc.UpdateStatus(ctx, q.ID.String(), "ACCEPTED")
	assert.True(t, apperror.IsKind(err, apperror.KindState))

	q, err = svc.UpdateStatus(ctx, q.ID.String(), "SENT")
	require.NoError(t, err)
	assert.Equal(t, StatusSent, q.Status)

	q, err = svc.UpdateStatus(ctx, q.ID.String(), "ACCEPTED")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, q.Status)

	// ACCEPTED is final
	_, err = svc.UpdateStatus(ctx, q.ID.String(), "DRAFT")
	assert.True(t, apperror.IsKind(err, apperror.KindState))
}

func TestDeleteOnlyDraftQuotes(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	q := createDraft(t, svc)
	_, err := svc.UpdateStatus(ctx, q.ID.String(), "SENT")
	require.NoError(t, err)
	err = svc.Delete(ctx, q.ID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindState))

	draft := createDraft(t, svc)
	require.NoError(t, svc.Delete(ctx, draft.ID.String()))
	_, err = svc.Get(ctx, draft.ID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
