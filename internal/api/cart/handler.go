package cart

import (
	"context"
	"net/http"

	"gojoyas/internal/api/response"
	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/pkg/middleware"
)

// QuoteService calcula a cotação de um carrinho para o usuário (userID pode ser vazio).
type QuoteService interface {
	Quote(ctx context.Context, req domain.QuoteRequest, userID string) (domain.Quote, error)
}

// Handler expõe a cotação do carrinho da vitrine.
type Handler struct {
	Service QuoteService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler de carrinho.
func NewHandler(svc QuoteService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// QuoteHandler lida com a requisição POST /v1/cart/quote.
// @Summary Cota um carrinho
// @Description Resolve os produtos no catálogo e aplica o maior desconto individual por linha.
// @Tags cart
// @Accept json
// @Produce json
// @Param request body domain.QuoteRequest true "Linhas do carrinho"
// @Success 200 {object} domain.Quote
// @Failure 400 {object} domain.ErrorResponse "Linha inválida ou produto indisponível"
// @Security ApiKeyAuth
// @Router /cart/quote [post]
func (h *Handler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.QuoteRequest
	if err := response.Decode(w, r, &req); err != nil {
		response.Write(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	var userID string
	if claims, ok := middleware.GetUserClaimsFromContext(r.Context()); ok {
		userID = claims.UserID
	}

	quote, err := h.Service.Quote(r.Context(), req, userID)
	response.Write(w, r, h.Logger, quote, err, http.StatusOK)
}
