package warehouse

import (
	"context"
	"net/http"
	"strconv"

	"gojoyas/internal/api/response"
	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/ledger"
	"gojoyas/internal/pkg/logger"
)

// WarehouseService define o contrato que o Handler espera da camada de Serviço.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error)
	GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id string) error
	AddItem(ctx context.Context, warehouseID string, item domain.WarehouseItem) (domain.Warehouse, error)
	UpdateItem(ctx context.Context, warehouseID string, index int, field ledger.ItemField, value any) (domain.Warehouse, error)
	RemoveItem(ctx context.Context, warehouseID string, index int) (domain.Warehouse, error)
	AdjustItem(ctx context.Context, warehouseID string, index int, adj domain.StockAdjustment) (domain.Warehouse, error)
	Occupancy(ctx context.Context, warehouseID string) (domain.OccupancyReport, error)
}

// ItemPatch é o corpo de PATCH /v1/warehouses/{id}/items/{index}.
type ItemPatch struct {
	Field ledger.ItemField `json:"field" example:"quantity"`
	Value any              `json:"value" swaggertype:"string" example:"12"`
}

// Handler agrupa todos os métodos de Handler de armazéns.
type Handler struct {
	Service WarehouseService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc WarehouseService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Write(w, r, h.Logger, data, err, successStatus)
}

// CreateWarehouseHandler lida com a requisição POST /v1/warehouses.
// @Summary Cria um novo armazém
// @Description Cria um armazém; status e ocupação dos itens são derivados no servidor.
// @Tags warehouses
// @Accept json
// @Produce json
// @Param warehouse body domain.Warehouse true "Dados do armazém para criação"
// @Success 201 {object} domain.Warehouse "Armazém criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /warehouses [post]
func (h *Handler) CreateWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	var warehouse domain.Warehouse
	if err := response.Decode(w, r, &warehouse); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	createdWarehouse, err := h.Service.CreateWarehouse(r.Context(), warehouse)
	h.handleServiceResponse(w, r, createdWarehouse, err, http.StatusCreated)
}

// GetWarehouseByIDHandler lida com a requisição GET /v1/warehouses/{id}.
// @Summary Obtém um armazém por ID
// @Description Busca um armazém específico pelo seu ID, com os itens.
// @Tags warehouses
// @Produce json
// @Param id path string true "ID do Armazém"
// @Success 200 {object} domain.Warehouse "Armazém encontrado"
// @Failure 404 {object} domain.ErrorResponse "Armazém não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /warehouses/{id} [get]
func (h *Handler) GetWarehouseByIDHandler(w http.ResponseWriter, r *http.Request) {
	warehouse, err := h.Service.GetWarehouseByID(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, warehouse, err, http.StatusOK)
}

// GetAllWarehousesHandler lida com a requisição GET /v1/warehouses.
// @Summary Lista todos os armazéns
// @Description Retorna uma lista de todos os armazéns cadastrados.
// @Tags warehouses
// @Produce json
// @Success 200 {array} domain.Warehouse "Lista de armazéns"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /warehouses [get]
func (h *Handler) GetAllWarehousesHandler(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.Service.GetAllWarehouses(r.Context())
	h.handleServiceResponse(w, r, warehouses, err, http.StatusOK)
}

// UpdateWarehouseHandler lida com a requisição PUT /v1/warehouses/{id}.
// @Summary Atualiza um armazém
// @Description Substitui os dados do armazém. O campo version deve ser o lido; versões antigas retornam 409.
// @Tags warehouses
// @Accept json
// @Produce json
// @Param id path string true "ID do Armazém"
// @Param warehouse body domain.Warehouse true "Dados do armazém para atualização"
// @Success 200 {object} domain.Warehouse "Armazém atualizado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Armazém não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Versão desatualizada"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /warehouses/{id} [put]
func (h *Handler) UpdateWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	var warehouse domain.Warehouse
	if err := response.Decode(w, r, &warehouse); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	warehouse.ID = r.PathValue("id") // O ID da URL prevalece sobre o do corpo

	updatedWarehouse, err := h.Service.UpdateWarehouse(r.Context(), warehouse)
	h.handleServiceResponse(w, r, updatedWarehouse, err, http.StatusOK)
}

// DeleteWarehouseHandler lida com a requisição DELETE /v1/warehouses/{id}.
// @Summary Deleta um armazém
// @Description Remove um armazém e seus itens pelo ID.
// @Tags warehouses
// @Param id path string true "ID do Armazém"
// @Success 204 "Armazém deletado com sucesso"
// @Failure 404 {object} domain.ErrorResponse "Armazém não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /warehouses/{id} [delete]
func (h *Handler) DeleteWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteWarehouse(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}

// OccupancyHandler lida com a requisição GET /v1/warehouses/{id}/occupancy.
// @Summary Resumo de ocupação
// @Description Percentual de ocupação (uma casa decimal) e contagem de itens por status de estoque.
// @Tags warehouses
// @Produce json
// @Param id path string true "ID do Armazém"
// @Success 200 {object} domain.OccupancyReport
// @Failure 404 {object} domain.ErrorResponse "Armazém não encontrado"
// @Security ApiKeyAuth
// @Router /warehouses/{id}/occupancy [get]
func (h *Handler) OccupancyHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Occupancy(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, report, err, http.StatusOK)
}

// AddItemHandler lida com a requisição POST /v1/warehouses/{id}/items.
// @Summary Adiciona um item ao armazém
// @Tags warehouses
// @Accept json
// @Produce json
// @Param id path string true "ID do Armazém"
// @Param item body domain.WarehouseItem true "Item de estoque"
// @Success 200 {object} domain.Warehouse "Armazém atualizado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Modificação concorrente"
// @Security ApiKeyAuth
// @Router /warehouses/{id}/items [post]
func (h *Handler) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	var item domain.WarehouseItem
	if err := response.Decode(w, r, &item); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	warehouse, err := h.Service.AddItem(r.Context(), r.PathValue("id"), item)
	h.handleServiceResponse(w, r, warehouse, err, http.StatusOK)
}

// UpdateItemHandler lida com a requisição PATCH /v1/warehouses/{id}/items/{index}.
// @Summary Altera um campo de um item
// @Description field ∈ quantity, minimumStock, sku, productId, location. Quantidades recalculam status e ocupação.
// @Tags warehouses
// @Accept json
// @Produce json
// @Param id path string true "ID do Armazém"
// @Param index path int true "Posição do item"
// @Param patch body ItemPatch true "Campo e novo valor"
// @Success 200 {object} domain.Warehouse "Armazém atualizado"
// @Failure 400 {object} domain.ErrorResponse "Campo ou valor inválido"
// @Failure 404 {object} domain.ErrorResponse "Armazém ou item não encontrado"
// @Security ApiKeyAuth
// @Router /warehouses/{id}/items/{index} [patch]
func (h *Handler) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var patch ItemPatch
	if err := response.Decode(w, r, &patch); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	warehouse, err := h.Service.UpdateItem(r.Context(), r.PathValue("id"), index, patch.Field, patch.Value)
	h.handleServiceResponse(w, r, warehouse, err, http.StatusOK)
}

// RemoveItemHandler lida com a requisição DELETE /v1/warehouses/{id}/items/{index}.
// @Summary Remove um item do armazém
// @Tags warehouses
// @Produce json
// @Param id path string true "ID do Armazém"
// @Param index path int true "Posição do item"
// @Success 200 {object} domain.Warehouse "Armazém atualizado"
// @Failure 404 {object} domain.ErrorResponse "Armazém ou item não encontrado"
// @Security ApiKeyAuth
// @Router /warehouses/{id}/items/{index} [delete]
func (h *Handler) RemoveItemHandler(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	warehouse, err := h.Service.RemoveItem(r.Context(), r.PathValue("id"), index)
	h.handleServiceResponse(w, r, warehouse, err, http.StatusOK)
}

// AdjustItemHandler lida com a requisição POST /v1/warehouses/{id}/items/{index}/adjust.
// @Summary Ajusta a quantidade de um item por delta
// @Description Entrada (delta positivo) ou saída (delta negativo) de mercadoria. A quantidade final não pode ser negativa.
// @Tags warehouses
// @Accept json
// @Produce json
// @Param id path string true "ID do Armazém"
// @Param index path int true "Posição do item"
// @Param adjustment body domain.StockAdjustment true "Ajuste"
// @Success 200 {object} domain.Warehouse "Armazém atualizado"
// @Failure 400 {object} domain.ErrorResponse "Delta zero ou estoque insuficiente"
// @Failure 409 {object} domain.ErrorResponse "Armazém alterado por outra sessão"
// @Security ApiKeyAuth
// @Router /warehouses/{id}/items/{index}/adjust [post]
func (h *Handler) AdjustItemHandler(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var adj domain.StockAdjustment
	if err := response.Decode(w, r, &adj); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	warehouse, err := h.Service.AdjustItem(r.Context(), r.PathValue("id"), index, adj)
	h.handleServiceResponse(w, r, warehouse, err, http.StatusOK)
}

func itemIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, apperror.NewFieldError("index", "A posição do item deve ser um número inteiro.")
	}
	return index, nil
}
