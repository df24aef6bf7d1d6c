package expenseservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/service/expenseservice"
)

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) CreateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	args := m.Called(ctx, expense)
	return args.Get(0).(domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) GetExpenseByID(ctx context.Context, id string) (domain.Expense, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	args := m.Called(ctx, expense)
	return args.Get(0).(domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) DeleteExpense(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreateExpense_Success(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := expenseservice.NewService(repo, logger.NewLogger("error"))

	input := domain.Expense{Description: "  Embalagens ", Category: "insumos", Amount: decimal.RequireFromString("15990.50")}
	repo.On("CreateExpense", mock.Anything, mock.MatchedBy(func(e domain.Expense) bool {
		return e.Description == "Embalagens"
	})).Return(domain.Expense{ID: "e1", Description: "Embalagens"}, nil)

	created, err := svc.CreateExpense(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "e1", created.ID)
	repo.AssertExpectations(t)
}

func TestCreateExpense_Validation(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := expenseservice.NewService(repo, logger.NewLogger("error"))

	cases := []struct {
		expense domain.Expense
		field   string
	}{
		{domain.Expense{Amount: decimal.NewFromInt(10)}, "description"},
		{domain.Expense{Description: "Frete", Amount: decimal.NewFromInt(-1)}, "amount"},
		{domain.Expense{Description: "Frete", Amount: decimal.NewFromInt(1), WarehouseID: "bodega-1"}, "warehouseId"},
	}
	for _, tc := range cases {
		_, err := svc.CreateExpense(context.Background(), tc.expense)

		var vErr *apperror.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, tc.field, vErr.Field)
	}
	repo.AssertNotCalled(t, "CreateExpense", mock.Anything, mock.Anything)
}

func TestListExpenses_PassesFilter(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := expenseservice.NewService(repo, logger.NewLogger("error"))

	filter := domain.ExpenseFilter{Category: "frete"}
	repo.On("ListExpenses", mock.Anything, filter).Return([]domain.Expense{{ID: "e1"}}, nil)

	list, err := svc.ListExpenses(context.Background(), filter)

	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := expenseservice.NewService(repo, logger.NewLogger("error"))

	id := uuid.New().String()
	repo.On("UpdateExpense", mock.Anything, mock.Anything).Return(domain.Expense{}, apperror.NewNotFoundError("x"))
	repo.On("DeleteExpense", mock.Anything, id).Return(apperror.NewNotFoundError("x"))

	_, err := svc.UpdateExpense(context.Background(), domain.Expense{ID: id, Description: "Frete", Amount: decimal.NewFromInt(5)})
	assert.IsType(t, &apperror.NotFoundError{}, err)

	err = svc.DeleteExpense(context.Background(), id)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}
