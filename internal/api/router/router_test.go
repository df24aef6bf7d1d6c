package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gojoyas/internal/api/cart"
	"gojoyas/internal/api/discount"
	"gojoyas/internal/api/expense"
	"gojoyas/internal/api/product"
	"gojoyas/internal/api/router"
	"gojoyas/internal/api/schema"
	"gojoyas/internal/api/user"
	"gojoyas/internal/api/warehouse"
	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/pkg/token"
)

type MockDiscountService struct {
	mock.Mock
}

func (m *MockDiscountService) CreateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error) {
	args := m.Called(ctx, rule)
	return args.Get(0).(domain.DiscountRule), args.Error(1)
}

func (m *MockDiscountService) GetDiscount(ctx context.Context, id string) (domain.DiscountRule, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.DiscountRule), args.Error(1)
}

func (m *MockDiscountService) ListDiscounts(ctx context.Context) ([]domain.DiscountRule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.DiscountRule), args.Error(1)
}

func (m *MockDiscountService) ListActive(ctx context.Context) ([]domain.DiscountRule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.DiscountRule), args.Error(1)
}

func (m *MockDiscountService) UpdateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error) {
	args := m.Called(ctx, rule)
	return args.Get(0).(domain.DiscountRule), args.Error(1)
}

func (m *MockDiscountService) DeleteDiscount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeCache conta requisições em memória.
type fakeCache struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (c *fakeCache) Delete(ctx context.Context, key string) error { return nil }
func (c *fakeCache) Incr(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

func setup(t *testing.T, opts router.Options) (http.Handler, *MockDiscountService, *token.Service) {
	t.Helper()
	log := logger.NewLogger("error")
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	discountSvc := new(MockDiscountService)

	opts.TokenSvc = tokenSvc
	opts.Logger = log
	h := router.Handlers{
		Product:   product.NewHandler(nil, log),
		User:      user.NewHandler(nil, log),
		Warehouse: warehouse.NewHandler(nil, log),
		Expense:   expense.NewHandler(nil, log),
		Discount:  discount.NewHandler(discountSvc, log),
		Cart:      cart.NewHandler(nil, log),
		Schema:    schema.NewHandler(log),
	}
	return router.NewRouter(h, opts), discountSvc, tokenSvc
}

func do(t *testing.T, h http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	h, discountSvc, _ := setup(t, router.Options{})
	discountSvc.On("ListActive", mock.Anything).Return([]domain.DiscountRule{}, nil)

	rec := do(t, h, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/schemas/warehouse", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/discounts/active", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gojoyas API")

	discountSvc.AssertExpectations(t)
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	h, discountSvc, tokenSvc := setup(t, router.Options{})

	rec := do(t, h, http.MethodGet, "/v1/discounts", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	buyerToken, err := tokenSvc.GenerateToken("u-1", string(domain.UserBuyer))
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/v1/discounts", buyerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodDelete, "/v1/warehouses/abc/items/0", buyerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := tokenSvc.GenerateToken("u-2", string(domain.UserAdmin))
	require.NoError(t, err)
	discountSvc.On("ListDiscounts", mock.Anything).Return([]domain.DiscountRule{{ID: "d1", Code: "VIP"}}, nil)
	rec = do(t, h, http.MethodGet, "/v1/discounts", adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"VIP"`)

	discountSvc.AssertExpectations(t)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h, _, _ := setup(t, router.Options{})

	rec := do(t, h, http.MethodPost, "/ping", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	c := &fakeCache{counts: map[string]int64{}}
	h, _, _ := setup(t, router.Options{Cache: c, RateLimit: 2, RateWindow: time.Minute})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/ping", "").Code)
	rec := do(t, h, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}
