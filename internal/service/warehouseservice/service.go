package warehouseservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/ledger"
	"gojoyas/internal/pkg/logger"
)

// WarehouseRepository define o contrato que o Serviço de Armazéns espera da camada de Persistência.
type WarehouseRepository interface {
	CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error)
	GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id string) error
}

// Service concentra as regras de negócio de armazéns.
// Toda mutação de itens passa pelo ledger, que mantém status e ocupação derivados.
type Service struct {
	repo   WarehouseRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Armazéns.
func NewService(repo WarehouseRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateWarehouse cria um novo armazém após validações de negócio.
func (s *Service) CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	s.logger.Debug("Iniciando criação de armazém no serviço.", map[string]interface{}{"name": warehouse.Name})

	if err := validateWarehouse(warehouse); err != nil {
		s.logger.Warn("Falha na validação do armazém.", map[string]interface{}{"name": warehouse.Name, "error": err.Error()})
		return domain.Warehouse{}, err
	}
	for i := range warehouse.Items {
		if warehouse.Items[i].ID == "" {
			warehouse.Items[i].ID = uuid.NewString()
		}
	}
	ledger.Recompute(&warehouse)

	createdWarehouse, err := s.repo.CreateWarehouse(ctx, warehouse)
	if err != nil {
		s.logger.Error("Falha ao criar armazém no repositório.", err)
		return domain.Warehouse{}, err
	}

	s.logger.Info("Armazém criado com sucesso.", map[string]interface{}{"id": createdWarehouse.ID, "name": createdWarehouse.Name})
	return createdWarehouse, nil
}

// GetWarehouseByID busca um armazém pelo ID após validações de formato.
func (s *Service) GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error) {
	s.logger.Debug("Iniciando busca de armazém por ID no serviço.", map[string]interface{}{"id": id})

	if err := validateID(id); err != nil {
		s.logger.Warn("ID de armazém inválido fornecido.", map[string]interface{}{"id": id})
		return domain.Warehouse{}, err
	}

	warehouse, err := s.repo.GetWarehouseByID(ctx, id)
	if err != nil {
		s.logger.Error("Falha ao buscar armazém no repositório.", err)
		return domain.Warehouse{}, err // Erros do repositório já são NotFoundError ou DBError
	}
	ledger.Recompute(&warehouse)

	return warehouse, nil
}

// GetAllWarehouses busca todos os armazéns com seus itens.
func (s *Service) GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	s.logger.Debug("Iniciando busca de todos os armazéns no serviço.", nil)

	warehouses, err := s.repo.GetAllWarehouses(ctx)
	if err != nil {
		s.logger.Error("Falha ao buscar todos os armazéns no repositório.", err)
		return nil, apperror.NewInternalError("Falha interna ao buscar armazéns.", err)
	}
	for i := range warehouses {
		ledger.Recompute(&warehouses[i])
	}

	s.logger.Info("Todos os armazéns encontrados com sucesso.", map[string]interface{}{"count": len(warehouses)})
	return warehouses, nil
}

// UpdateWarehouse grava a versão completa do armazém enviada pelo painel.
// warehouse.Version deve ser a versão lida; divergências resultam em ConflictError.
func (s *Service) UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	s.logger.Debug("Iniciando atualização de armazém no serviço.", map[string]interface{}{"id": warehouse.ID, "version": warehouse.Version})

	if err := validateID(warehouse.ID); err != nil {
		s.logger.Warn("ID de armazém inválido fornecido para atualização.", map[string]interface{}{"id": warehouse.ID})
		return domain.Warehouse{}, err
	}
	if err := validateWarehouse(warehouse); err != nil {
		s.logger.Warn("Falha na validação do armazém para atualização.", map[string]interface{}{"id": warehouse.ID, "error": err.Error()})
		return domain.Warehouse{}, err
	}
	for i := range warehouse.Items {
		if warehouse.Items[i].ID == "" {
			warehouse.Items[i].ID = uuid.NewString()
		}
	}
	ledger.Recompute(&warehouse)

	updatedWarehouse, err := s.repo.UpdateWarehouse(ctx, warehouse)
	if err != nil {
		s.logger.Error("Falha ao atualizar armazém no repositório.", err)
		return domain.Warehouse{}, err // NotFoundError, ConflictError (OCC) ou DBError
	}

	s.logger.Info("Armazém atualizado com sucesso.", map[string]interface{}{"id": updatedWarehouse.ID, "version": updatedWarehouse.Version})
	return updatedWarehouse, nil
}

// DeleteWarehouse remove um armazém.
func (s *Service) DeleteWarehouse(ctx context.Context, id string) error {
	s.logger.Debug("Iniciando exclusão de armazém no serviço.", map[string]interface{}{"id": id})

	if err := validateID(id); err != nil {
		s.logger.Warn("ID de armazém inválido fornecido para exclusão.", map[string]interface{}{"id": id})
		return err
	}

	if err := s.repo.DeleteWarehouse(ctx, id); err != nil {
		s.logger.Error("Falha ao deletar armazém no repositório.", err)
		return err
	}

	s.logger.Info("Armazém deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// AddItem acrescenta um item ao final da lista do armazém.
func (s *Service) AddItem(ctx context.Context, warehouseID string, item domain.WarehouseItem) (domain.Warehouse, error) {
	if err := validateItem(item, 0); err != nil {
		s.logger.Warn("Falha na validação do item.", map[string]interface{}{"warehouse_id": warehouseID, "error": err.Error()})
		return domain.Warehouse{}, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return s.mutate(ctx, warehouseID, "AddItem", func(w *domain.Warehouse) error {
		ledger.AddItem(w, item)
		return nil
	})
}

// UpdateItem altera um único campo do item na posição index.
func (s *Service) UpdateItem(ctx context.Context, warehouseID string, index int, field ledger.ItemField, value any) (domain.Warehouse, error) {
	return s.mutate(ctx, warehouseID, "UpdateItem", func(w *domain.Warehouse) error {
		if err := ledger.UpdateItem(w, index, field, value); err != nil {
			return ledgerError(err, index)
		}
		return validateItem(w.Items[index], index)
	})
}

// RemoveItem remove o item na posição index.
func (s *Service) RemoveItem(ctx context.Context, warehouseID string, index int) (domain.Warehouse, error) {
	return s.mutate(ctx, warehouseID, "RemoveItem", func(w *domain.Warehouse) error {
		if err := ledger.RemoveItem(w, index); err != nil {
			return ledgerError(err, index)
		}
		return nil
	})
}

// AdjustItem soma delta à quantidade do item na posição index.
// O resultado não pode ficar negativo.
func (s *Service) AdjustItem(ctx context.Context, warehouseID string, index int, adj domain.StockAdjustment) (domain.Warehouse, error) {
	if adj.Delta == 0 {
		return domain.Warehouse{}, apperror.NewFieldError("delta", "O ajuste de estoque (delta) não pode ser zero.")
	}
	return s.mutate(ctx, warehouseID, "AdjustItem", func(w *domain.Warehouse) error {
		if index < 0 || index >= len(w.Items) {
			return ledgerError(ledger.ErrIndexOutOfRange, index)
		}
		next := w.Items[index].Quantity + adj.Delta
		if next < 0 {
			return apperror.NewFieldError("delta", fmt.Sprintf("Estoque insuficiente: quantidade atual %d, ajuste %d.", w.Items[index].Quantity, adj.Delta))
		}
		if err := ledger.UpdateItem(w, index, ledger.FieldQuantity, next); err != nil {
			return ledgerError(err, index)
		}
		s.logger.Debug("Ajuste de estoque aplicado.", map[string]interface{}{"id": warehouseID, "index": index, "delta": adj.Delta, "reason": adj.Reason})
		return nil
	})
}

// Occupancy devolve o resumo de ocupação e a contagem de itens por status.
func (s *Service) Occupancy(ctx context.Context, warehouseID string) (domain.OccupancyReport, error) {
	warehouse, err := s.GetWarehouseByID(ctx, warehouseID)
	if err != nil {
		return domain.OccupancyReport{}, err
	}
	return ledger.Report(warehouse), nil
}

// mutate lê o armazém, aplica fn sobre ele e grava com a versão lida (OCC).
func (s *Service) mutate(ctx context.Context, warehouseID, op string, fn func(w *domain.Warehouse) error) (domain.Warehouse, error) {
	s.logger.Debug("Iniciando mutação de itens do armazém.", map[string]interface{}{"id": warehouseID, "op": op})

	warehouse, err := s.GetWarehouseByID(ctx, warehouseID)
	if err != nil {
		return domain.Warehouse{}, err
	}

	if err := fn(&warehouse); err != nil {
		s.logger.Warn("Mutação de item rejeitada.", map[string]interface{}{"id": warehouseID, "op": op, "error": err.Error()})
		return domain.Warehouse{}, err
	}

	updated, err := s.repo.UpdateWarehouse(ctx, warehouse)
	if err != nil {
		s.logger.Error("Falha ao gravar mutação de itens do armazém.", err)
		return domain.Warehouse{}, err
	}

	s.logger.Info("Itens do armazém atualizados.", map[string]interface{}{
		"id":                updated.ID,
		"op":                op,
		"current_occupancy": updated.CurrentOccupancy,
		"version":           updated.Version,
	})
	return updated, nil
}

func ledgerError(err error, index int) error {
	switch {
	case errors.Is(err, ledger.ErrIndexOutOfRange):
		return apperror.NewNotFoundError(fmt.Sprintf("Item na posição %d não existe.", index))
	case errors.Is(err, ledger.ErrUnknownField):
		return apperror.NewFieldError("field", "Campo de item desconhecido.")
	case errors.Is(err, ledger.ErrInvalidValue):
		return apperror.NewFieldError("value", "Valor inválido para o campo informado.")
	}
	return apperror.NewInternalError("Falha ao aplicar operação no item.", err)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do armazém deve ser um UUID válido.")
	}
	return nil
}

// validateWarehouse aplica as regras de formulário do painel antes da persistência.
func validateWarehouse(w domain.Warehouse) error {
	name := strings.TrimSpace(w.Name)
	if name == "" {
		return apperror.NewFieldError("name", "O nome do armazém não pode ser vazio.")
	}
	if len(name) > 100 {
		return apperror.NewFieldError("name", "O nome do armazém deve ter no máximo 100 caracteres.")
	}
	if strings.TrimSpace(w.Location) == "" {
		return apperror.NewFieldError("location", "A localização do armazém é obrigatória.")
	}
	if w.Capacity <= 0 {
		return apperror.NewFieldError("capacity", "A capacidade do armazém deve ser maior que zero.")
	}
	if !w.Status.Valid() {
		return apperror.NewFieldError("status", fmt.Sprintf("Status inválido: %q.", w.Status))
	}
	for i, it := range w.Items {
		if err := validateItem(it, i); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(it domain.WarehouseItem, index int) error {
	prefix := fmt.Sprintf("items[%d].", index)
	if strings.TrimSpace(it.ProductID) == "" {
		return apperror.NewFieldError(prefix+"productId", "O produto do item é obrigatório.")
	}
	if strings.TrimSpace(it.SKU) == "" {
		return apperror.NewFieldError(prefix+"sku", "O SKU do item é obrigatório.")
	}
	if it.Quantity < 0 {
		return apperror.NewFieldError(prefix+"quantity", "A quantidade não pode ser negativa.")
	}
	if it.MinimumStock < 0 {
		return apperror.NewFieldError(prefix+"minimumStock", "O estoque mínimo não pode ser negativo.")
	}
	return nil
}
