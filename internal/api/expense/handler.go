package expense

import (
	"context"
	"net/http"

	"gojoyas/internal/api/response"
	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/logger"
)

// ExpenseService define o contrato que o Handler espera da camada de Serviço.
type ExpenseService interface {
	CreateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error)
	GetExpense(ctx context.Context, id string) (domain.Expense, error)
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error)
	UpdateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// Handler agrupa os endpoints de despesas.
type Handler struct {
	Service ExpenseService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler de despesas.
func NewHandler(svc ExpenseService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Write(w, r, h.Logger, data, err, successStatus)
}

// ListExpensesHandler lida com a requisição GET /v1/expenses.
// @Summary Lista despesas
// @Tags expenses
// @Produce json
// @Param category query string false "Filtro por categoria"
// @Param warehouseId query string false "Filtro por armazém"
// @Success 200 {array} domain.Expense
// @Security ApiKeyAuth
// @Router /expenses [get]
func (h *Handler) ListExpensesHandler(w http.ResponseWriter, r *http.Request) {
	filter := domain.ExpenseFilter{
		Category:    r.URL.Query().Get("category"),
		WarehouseID: r.URL.Query().Get("warehouseId"),
	}
	expenses, err := h.Service.ListExpenses(r.Context(), filter)
	h.handleServiceResponse(w, r, expenses, err, http.StatusOK)
}

// GetExpenseHandler lida com a requisição GET /v1/expenses/{id}.
// @Summary Obtém uma despesa
// @Tags expenses
// @Produce json
// @Param id path string true "ID da despesa"
// @Success 200 {object} domain.Expense
// @Failure 404 {object} domain.ErrorResponse "Despesa não encontrada"
// @Security ApiKeyAuth
// @Router /expenses/{id} [get]
func (h *Handler) GetExpenseHandler(w http.ResponseWriter, r *http.Request) {
	expense, err := h.Service.GetExpense(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, expense, err, http.StatusOK)
}

// CreateExpenseHandler lida com a requisição POST /v1/expenses.
// @Summary Registra uma despesa
// @Tags expenses
// @Accept json
// @Produce json
// @Param expense body domain.Expense true "Despesa"
// @Success 201 {object} domain.Expense
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Security ApiKeyAuth
// @Router /expenses [post]
func (h *Handler) CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	var expense domain.Expense
	if err := response.Decode(w, r, &expense); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	created, err := h.Service.CreateExpense(r.Context(), expense)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// UpdateExpenseHandler lida com a requisição PUT /v1/expenses/{id}.
// @Summary Atualiza uma despesa
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "ID da despesa"
// @Param expense body domain.Expense true "Despesa"
// @Success 200 {object} domain.Expense
// @Failure 404 {object} domain.ErrorResponse "Despesa não encontrada"
// @Security ApiKeyAuth
// @Router /expenses/{id} [put]
func (h *Handler) UpdateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	var expense domain.Expense
	if err := response.Decode(w, r, &expense); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	expense.ID = r.PathValue("id")

	updated, err := h.Service.UpdateExpense(r.Context(), expense)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

// DeleteExpenseHandler lida com a requisição DELETE /v1/expenses/{id}.
// @Summary Remove uma despesa
// @Tags expenses
// @Param id path string true "ID da despesa"
// @Success 204 "Despesa removida"
// @Failure 404 {object} domain.ErrorResponse "Despesa não encontrada"
// @Security ApiKeyAuth
// @Router /expenses/{id} [delete]
func (h *Handler) DeleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteExpense(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
