package discountservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/service/discountservice"
)

type MockDiscountRepository struct {
	mock.Mock
}

func (m *MockDiscountRepository) CreateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error) {
	args := m.Called(ctx, rule)
	return args.Get(0).(domain.DiscountRule), args.Error(1)
}

func (m *MockDiscountRepository) GetDiscountByID(ctx context.Context, id string) (domain.DiscountRule, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.DiscountRule), args.Error(1)
}

func (m *MockDiscountRepository) ListDiscounts(ctx context.Context) ([]domain.DiscountRule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.DiscountRule), args.Error(1)
}

func (m *MockDiscountRepository) UpdateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error) {
	args := m.Called(ctx, rule)
	return args.Get(0).(domain.DiscountRule), args.Error(1)
}

func (m *MockDiscountRepository) DeleteDiscount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductFinder struct {
	mock.Mock
}

func (m *MockProductFinder) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]domain.Product), args.Error(1)
}

type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *discountservice.Service
	repo     *MockDiscountRepository
	products *MockProductFinder
	users    *MockUserFinder
}

func newFixture() fixture {
	f := fixture{
		repo:     new(MockDiscountRepository),
		products: new(MockProductFinder),
		users:    new(MockUserFinder),
	}
	f.svc = discountservice.NewService(f.repo, f.products, f.users, logger.NewLogger("error"),
		discountservice.WithClock(func() time.Time { return fixedNow }))
	return f
}

func catalog() map[string]domain.Product {
	return map[string]domain.Product{
		"p1": {ID: "p1", Name: "Anillo", Category: "Anillos", Price: decimal.NewFromInt(10000), IsActive: true},
		"p2": {ID: "p2", Name: "Aros", Category: "Aros", Price: decimal.NewFromInt(3000), IsActive: true},
		"p3": {ID: "p3", Name: "Descontinuado", Price: decimal.NewFromInt(500), IsActive: false},
	}
}

func rules() []domain.DiscountRule {
	return []domain.DiscountRule{
		{ID: "r1", Code: "TODO10", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(10), AppliesTo: domain.ScopeAllProducts, IsActive: true},
		{ID: "r2", Code: "AROS2500", Kind: domain.DiscountFixed, Value: decimal.NewFromInt(2500), AppliesTo: domain.ScopeSpecificProducts, ProductIDs: []string{"p2"}, IsActive: true},
	}
}

func TestQuote_BestDiscountPerLine(t *testing.T) {
	f := newFixture()
	f.products.On("FindByIDs", mock.Anything, []string{"p1", "p2"}).Return(catalog(), nil)
	f.repo.On("ListDiscounts", mock.Anything).Return(rules(), nil)

	req := domain.QuoteRequest{Lines: []domain.CartLineRequest{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}}
	quote, err := f.svc.Quote(context.Background(), req, "")

	require.NoError(t, err)
	assert.True(t, quote.Subtotal.Equal(decimal.NewFromInt(23000)))
	assert.True(t, quote.DiscountTotal.Equal(decimal.NewFromInt(4500)))
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(18500)))
	assert.Equal(t, "TODO10", quote.Lines[0].RuleCode)
	assert.Equal(t, "AROS2500", quote.Lines[1].RuleCode)
	f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestQuote_AppliesAuthenticatedUserDiscount(t *testing.T) {
	f := newFixture()
	userID := uuid.New().String()
	f.products.On("FindByIDs", mock.Anything, []string{"p1", "p2"}).Return(catalog(), nil)
	f.repo.On("ListDiscounts", mock.Anything).Return(rules(), nil)
	f.users.On("FindByID", mock.Anything, userID).Return(domain.User{
		ID: userID, IsActive: true, DiscountCode: "VIP15", Discount: decimal.NewFromInt(15),
	}, nil)

	req := domain.QuoteRequest{Lines: []domain.CartLineRequest{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}}
	quote, err := f.svc.Quote(context.Background(), req, userID)

	require.NoError(t, err)
	assert.Equal(t, "VIP15", quote.Lines[0].RuleCode)
	assert.True(t, quote.DiscountTotal.Equal(decimal.NewFromInt(5500)))
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(17500)))
}

func TestQuote_RejectsInactiveOrUnknownProduct(t *testing.T) {
	f := newFixture()
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return(catalog(), nil)

	_, err := f.svc.Quote(context.Background(), domain.QuoteRequest{Lines: []domain.CartLineRequest{{ProductID: "p3", Quantity: 1}}}, "")
	var vErr *apperror.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "lines[0].productId", vErr.Field)

	_, err = f.svc.Quote(context.Background(), domain.QuoteRequest{Lines: []domain.CartLineRequest{{ProductID: "p1", Quantity: 1}, {ProductID: "zz", Quantity: 1}}}, "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "lines[1].productId", vErr.Field)

	f.repo.AssertNotCalled(t, "ListDiscounts", mock.Anything)
}

func TestQuote_RejectsZeroQuantity(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Quote(context.Background(), domain.QuoteRequest{Lines: []domain.CartLineRequest{{ProductID: "p1", Quantity: 0}}}, "")

	var vErr *apperror.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "lines[0].quantity", vErr.Field)
	f.products.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestQuote_EmptyCart(t *testing.T) {
	f := newFixture()
	f.products.On("FindByIDs", mock.Anything, []string{}).Return(map[string]domain.Product{}, nil)
	f.repo.On("ListDiscounts", mock.Anything).Return(rules(), nil)

	quote, err := f.svc.Quote(context.Background(), domain.QuoteRequest{}, "")

	require.NoError(t, err)
	assert.True(t, quote.Total.IsZero())
	assert.Empty(t, quote.Lines)
}

func TestListActive_FiltersByWindow(t *testing.T) {
	f := newFixture()
	past := fixedNow.Add(-48 * time.Hour)
	yesterday := fixedNow.Add(-24 * time.Hour)
	all := rules()
	all = append(all, domain.DiscountRule{
		ID: "r3", Code: "VENCIDO", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(5),
		AppliesTo: domain.ScopeAllProducts, IsActive: true, StartsAt: &past, EndsAt: &yesterday,
	})
	f.repo.On("ListDiscounts", mock.Anything).Return(all, nil)

	active, err := f.svc.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "TODO10", active[0].Code)
}

func TestCreateDiscount_Validation(t *testing.T) {
	start := fixedNow
	end := fixedNow.Add(-time.Hour)

	cases := map[string]struct {
		rule  domain.DiscountRule
		field string
	}{
		"sem código":          {domain.DiscountRule{Kind: domain.DiscountFixed, Value: decimal.NewFromInt(1), AppliesTo: domain.ScopeAllProducts}, "code"},
		"tipo inválido":       {domain.DiscountRule{Code: "X", Kind: "bogo", Value: decimal.NewFromInt(1), AppliesTo: domain.ScopeAllProducts}, "kind"},
		"percentual > 100":    {domain.DiscountRule{Code: "X", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(120), AppliesTo: domain.ScopeAllProducts}, "value"},
		"valor zero":          {domain.DiscountRule{Code: "X", Kind: domain.DiscountFixed, Value: decimal.Zero, AppliesTo: domain.ScopeAllProducts}, "value"},
		"janela invertida":    {domain.DiscountRule{Code: "X", Kind: domain.DiscountFixed, Value: decimal.NewFromInt(1), AppliesTo: domain.ScopeAllProducts, StartsAt: &start, EndsAt: &end}, "endsAt"},
		"produtos sem lista":  {domain.DiscountRule{Code: "X", Kind: domain.DiscountFixed, Value: decimal.NewFromInt(1), AppliesTo: domain.ScopeSpecificProducts}, "productIds"},
		"usuário inválido":    {domain.DiscountRule{Code: "X", Kind: domain.DiscountFixed, Value: decimal.NewFromInt(1), AppliesTo: domain.ScopeAllProducts, UserID: "abc"}, "userId"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.CreateDiscount(context.Background(), tc.rule)

			var vErr *apperror.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
			f.repo.AssertNotCalled(t, "CreateDiscount", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateDiscount_TrimsCode(t *testing.T) {
	f := newFixture()
	f.repo.On("CreateDiscount", mock.Anything, mock.MatchedBy(func(r domain.DiscountRule) bool {
		return r.Code == "NAVIDAD"
	})).Return(domain.DiscountRule{ID: "d1", Code: "NAVIDAD"}, nil)

	created, err := f.svc.CreateDiscount(context.Background(), domain.DiscountRule{
		Code: "  NAVIDAD ", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(20), AppliesTo: domain.ScopeAllProducts, IsActive: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "d1", created.ID)
	f.repo.AssertExpectations(t)
}

func TestCreateDiscount_AllProductsRuleGetsEmptyProductList(t *testing.T) {
	f := newFixture()
	f.repo.On("CreateDiscount", mock.Anything, mock.MatchedBy(func(r domain.DiscountRule) bool {
		return r.ProductIDs != nil && len(r.ProductIDs) == 0
	})).Return(domain.DiscountRule{ID: "d1", Code: "VERAO"}, nil).Once()

	_, err := f.svc.CreateDiscount(context.Background(), domain.DiscountRule{
		Code: "VERAO", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(10), AppliesTo: domain.ScopeAllProducts, IsActive: true,
	})

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}
