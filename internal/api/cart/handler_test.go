package cart_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gojoyas/internal/api/cart"
	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/pkg/middleware"
)

type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) Quote(ctx context.Context, req domain.QuoteRequest, userID string) (domain.Quote, error) {
	args := m.Called(ctx, req, userID)
	return args.Get(0).(domain.Quote), args.Error(1)
}

func TestQuoteHandler_PassesAuthenticatedUser(t *testing.T) {
	svc := new(MockQuoteService)
	h := cart.NewHandler(svc, logger.NewLogger("error"))

	expectedReq := domain.QuoteRequest{Lines: []domain.CartLineRequest{{ProductID: "p1", Quantity: 2}}}
	svc.On("Quote", mock.Anything, expectedReq, "u-42").Return(domain.Quote{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/cart/quote", strings.NewReader(`{"lines":[{"productId":"p1","quantity":2}]}`))
	req = req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: "u-42", TypeUser: domain.UserBuyer}))
	rec := httptest.NewRecorder()

	h.QuoteHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestQuoteHandler_InvalidJSON(t *testing.T) {
	svc := new(MockQuoteService)
	h := cart.NewHandler(svc, logger.NewLogger("error"))

	req := httptest.NewRequest(http.MethodPost, "/v1/cart/quote", strings.NewReader(`[`))
	rec := httptest.NewRecorder()

	h.QuoteHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything, mock.Anything)
}
