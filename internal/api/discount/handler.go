package discount

import (
	"context"
	"net/http"

	"gojoyas/internal/api/response"
	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/logger"
)

// DiscountService define o contrato que o Handler espera da camada de Serviço.
type DiscountService interface {
	CreateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error)
	GetDiscount(ctx context.Context, id string) (domain.DiscountRule, error)
	ListDiscounts(ctx context.Context) ([]domain.DiscountRule, error)
	ListActive(ctx context.Context) ([]domain.DiscountRule, error)
	UpdateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error)
	DeleteDiscount(ctx context.Context, id string) error
}

// Handler agrupa os endpoints de códigos de desconto.
type Handler struct {
	Service DiscountService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler de descontos.
func NewHandler(svc DiscountService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Write(w, r, h.Logger, data, err, successStatus)
}

// ListDiscountsHandler lida com a requisição GET /v1/discounts.
// @Summary Lista todos os códigos de desconto
// @Tags discounts
// @Produce json
// @Success 200 {array} domain.DiscountRule
// @Security ApiKeyAuth
// @Router /discounts [get]
func (h *Handler) ListDiscountsHandler(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Service.ListDiscounts(r.Context())
	h.handleServiceResponse(w, r, rules, err, http.StatusOK)
}

// ListActiveHandler lida com a requisição GET /v1/discounts/active.
// @Summary Lista as promoções vigentes
// @Description Apenas regras globais, ativas e dentro da janela de validade.
// @Tags discounts
// @Produce json
// @Success 200 {array} domain.DiscountRule
// @Router /discounts/active [get]
func (h *Handler) ListActiveHandler(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Service.ListActive(r.Context())
	h.handleServiceResponse(w, r, rules, err, http.StatusOK)
}

// GetDiscountHandler lida com a requisição GET /v1/discounts/{id}.
// @Summary Obtém um código de desconto
// @Tags discounts
// @Produce json
// @Param id path string true "ID do desconto"
// @Success 200 {object} domain.DiscountRule
// @Failure 404 {object} domain.ErrorResponse "Desconto não encontrado"
// @Security ApiKeyAuth
// @Router /discounts/{id} [get]
func (h *Handler) GetDiscountHandler(w http.ResponseWriter, r *http.Request) {
	rule, err := h.Service.GetDiscount(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, rule, err, http.StatusOK)
}

// CreateDiscountHandler lida com a requisição POST /v1/discounts.
// @Summary Cria um código de desconto
// @Tags discounts
// @Accept json
// @Produce json
// @Param rule body domain.DiscountRule true "Regra"
// @Success 201 {object} domain.DiscountRule
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Código duplicado"
// @Security ApiKeyAuth
// @Router /discounts [post]
func (h *Handler) CreateDiscountHandler(w http.ResponseWriter, r *http.Request) {
	var rule domain.DiscountRule
	if err := response.Decode(w, r, &rule); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	created, err := h.Service.CreateDiscount(r.Context(), rule)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// UpdateDiscountHandler lida com a requisição PUT /v1/discounts/{id}.
// @Summary Atualiza um código de desconto
// @Tags discounts
// @Accept json
// @Produce json
// @Param id path string true "ID do desconto"
// @Param rule body domain.DiscountRule true "Regra"
// @Success 200 {object} domain.DiscountRule
// @Failure 404 {object} domain.ErrorResponse "Desconto não encontrado"
// @Security ApiKeyAuth
// @Router /discounts/{id} [put]
func (h *Handler) UpdateDiscountHandler(w http.ResponseWriter, r *http.Request) {
	var rule domain.DiscountRule
	if err := response.Decode(w, r, &rule); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	rule.ID = r.PathValue("id")

	updated, err := h.Service.UpdateDiscount(r.Context(), rule)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

// DeleteDiscountHandler lida com a requisição DELETE /v1/discounts/{id}.
// @Summary Remove um código de desconto
// @Tags discounts
// @Param id path string true "ID do desconto"
// @Success 204 "Desconto removido"
// @Failure 404 {object} domain.ErrorResponse "Desconto não encontrado"
// @Security ApiKeyAuth
// @Router /discounts/{id} [delete]
func (h *Handler) DeleteDiscountHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteDiscount(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
