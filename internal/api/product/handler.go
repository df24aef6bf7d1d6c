package product

import (
	"context"
	"net/http"
	"strconv"

	"gojoyas/internal/api/response"
	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/logger"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	GetProducts(ctx context.Context, page, limit int, filters map[string]string) ([]domain.Product, error)
}

// Handler agrupa os endpoints do catálogo.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Write(w, r, h.Logger, data, err, successStatus)
}

// CreateProductHandler lida com a requisição POST /v1/products.
// @Summary Cadastra um produto
// @Tags products
// @Accept json
// @Produce json
// @Param product body domain.Product true "Produto"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "SKU duplicado"
// @Security ApiKeyAuth
// @Router /products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := response.Decode(w, r, &product); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	created, err := h.Service.CreateProduct(r.Context(), product)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// GetProductByIDHandler lida com a requisição GET /v1/products/{id}.
// @Summary Obtém um produto
// @Tags products
// @Produce json
// @Param id path string true "ID do produto"
// @Success 200 {object} domain.Product
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.GetProductByID(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, product, err, http.StatusOK)
}

// GetProductsHandler lida com a requisição GET /v1/products.
// @Summary Lista o catálogo
// @Tags products
// @Produce json
// @Param page query int false "Página (padrão 1)"
// @Param limit query int false "Itens por página (padrão 10)"
// @Param name query string false "Filtro por nome"
// @Param category query string false "Filtro por categoria"
// @Param is_active query bool false "Apenas ativos"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (h *Handler) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filters := map[string]string{}
	for _, key := range []string{"name", "category", "is_active"} {
		if v := q.Get(key); v != "" {
			filters[key] = v
		}
	}

	products, err := h.Service.GetProducts(r.Context(), page, limit, filters)
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}
